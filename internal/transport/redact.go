package transport

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// RedactURL убирает userinfo, query и fragment: платные RPC-узлы передают в них ключи.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// RedactURLs применяет RedactURL ко всем URL внутри текста (сообщения об ошибках solana-go и net/http содержат адрес запроса).
func RedactURLs(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(match string) string {
		trimmed := strings.TrimRight(match, ".,:;)]}")
		return RedactURL(trimmed) + match[len(trimmed):]
	})
}
