// internal/logger/pretty.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// NewPrettyCore builds the console core. Without debug only the formatted
// message is printed; with debug the structured fields follow it.
func NewPrettyCore(out zapcore.WriteSyncer, level zapcore.LevelEnabler, debug bool) zapcore.Core {
	return &FieldFilterCore{
		core:       zapcore.NewCore(PrettyEncoder(), out, level),
		keepFields: debug,
	}
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields ...zap.Field) string {
	switch {
	case strings.Contains(msg, "Wallet balance"):
		sol := extractField(fields, "sol")
		return fmt.Sprintf("%s💼 Wallet balance: %s SOL%s", ColorBlue, sol, ColorReset)

	case strings.Contains(msg, "Metadata uploaded"):
		uri := extractField(fields, "uri")
		return fmt.Sprintf("%s📦 Metadata uploaded: %s%s", ColorBlue, uri, ColorReset)

	case strings.Contains(msg, "Sending launch transaction"):
		name := extractField(fields, "name")
		symbol := extractField(fields, "symbol")
		return fmt.Sprintf("%s🚀 Launching %s (%s) on letsbonk%s", ColorPurple, name, symbol, ColorReset)

	case strings.Contains(msg, "Transaction sent"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s📤 Transaction sent: %s%s", ColorYellow, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Transaction confirmed"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s✅ Transaction confirmed: %s%s", ColorGreen, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Rate limited"):
		delay := extractField(fields, "backoff")
		return fmt.Sprintf("%s⏳ RPC rate limited, retrying in %s%s", ColorYellow, delay, ColorReset)

	case strings.Contains(msg, "Token launched"):
		pool := extractField(fields, "pool")
		return fmt.Sprintf("%s🎉 Token launched! Pool: %s%s", ColorGreen+ColorBold, shortenAddress(pool), ColorReset)

	case strings.Contains(msg, "Initial buy succeeded"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s💸 Initial buy succeeded: %s%s", ColorGreen+ColorBold, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Token received"):
		balance := extractField(fields, "balance")
		return fmt.Sprintf("%s💰 Tokens received: %s%s", ColorGreen, balance, ColorReset)

	default:
		return msg
	}
}

// extractField returns the value of key as text. Fields are rendered through a
// map encoder because typed zap fields keep their value outside Interface.
func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		enc := zapcore.NewMapObjectEncoder()
		field.AddTo(enc)
		if v, ok := enc.Fields[key]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// FieldFilterCore wraps a zapcore.Core, rewrites known messages and drops
// structured fields unless keepFields is set.
type FieldFilterCore struct {
	core       zapcore.Core
	context    []zapcore.Field
	keepFields bool
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

// With keeps context fields for message formatting only.
func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	context := make([]zapcore.Field, 0, len(c.context)+len(fields))
	context = append(context, c.context...)
	context = append(context, fields...)
	return &FieldFilterCore{core: c.core, context: context, keepFields: c.keepFields}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.context)+len(fields))
	all = append(all, c.context...)
	all = append(all, fields...)

	cleanEntry := entry
	cleanEntry.Message = FormatMessage(entry.Message, all...)

	if c.keepFields {
		return c.core.Write(cleanEntry, fields)
	}
	return c.core.Write(cleanEntry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
