// internal/blockchain/solbc/rpc/errors.go
package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/rovshanmuradov/bonk-launcher/internal/transport"
)

var (
	// ErrRateLimit возникает при превышении лимита запросов
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrInvalidResponse возникает при получении некорректного ответа
	ErrInvalidResponse = errors.New("invalid RPC response")
)

// Error представляет ошибку RPC с дополнительным контекстом
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error. URL узла (и адреса внутри исходной ошибки)
// выводятся без userinfo и query.
func (e *Error) Error() string {
	return transport.RedactURLs(fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err))
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает новую ошибку RPC
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsRateLimitError сообщает, указывает ли ошибка на HTTP 429.
// Ответы solana-go проверяются по коду; текст проверяется только у прочих ошибок
// и без URL, иначе адрес узла вида ?api-key=...429... давал бы ложное срабатывание.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimit) {
		return true
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusTooManyRequests
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == http.StatusTooManyRequests || strings.Contains(rpcErr.Message, "Too Many Requests")
	}

	var wrapped *Error
	if errors.As(err, &wrapped) && wrapped.Err != nil {
		err = wrapped.Err
	}
	msg := stripURLs(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

func stripURLs(msg string) string {
	fields := strings.Fields(msg)
	kept := fields[:0]
	for _, f := range fields {
		if strings.Contains(f, "://") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
