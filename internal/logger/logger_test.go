package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestLogger(t *testing.T, debug bool) (*Logger, *bytes.Buffer, string) {
	t.Helper()
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "launcher.log")

	cfg := DefaultConfig()
	cfg.LogFile = logFile
	cfg.Debug = debug

	log, err := newLogger(cfg, zapcore.AddSync(&console))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log, &console, logFile
}

func readFileEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_ConsoleIsPrettyFileIsStructured(t *testing.T) {
	log, console, logFile := newTestLogger(t, false)

	sig := "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
	log.Info("Transaction confirmed", zap.String("signature", sig))
	log.Debug("Derived pool accounts", zap.String("pool", "x"))

	out := console.String()
	assert.Contains(t, out, "Transaction confirmed: 5VERv8NM...diSZkQUW")
	assert.NotContains(t, out, `"signature"`)
	assert.NotContains(t, out, "Derived pool accounts", "debug hidden on console")

	entries := readFileEntries(t, logFile)
	require.Len(t, entries, 2, "file keeps debug entries")
	assert.Equal(t, "Transaction confirmed", entries[0]["msg"])
	assert.Equal(t, sig, entries[0]["signature"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
}

func TestLogger_DebugKeepsFields(t *testing.T) {
	log, console, _ := newTestLogger(t, true)

	log.Debug("Derived pool accounts", zap.String("pool", "PoolAddress"))

	assert.Contains(t, console.String(), "Derived pool accounts")
	assert.Contains(t, console.String(), "PoolAddress")
}

func TestLogger_WithOperation(t *testing.T) {
	log, console, logFile := newTestLogger(t, false)

	log.WithOperation("launch").Info("Token received", zap.Float64("balance", 1.5))

	assert.Contains(t, console.String(), "Tokens received: 1.5")
	assert.NotContains(t, console.String(), "correlation_id")

	entries := readFileEntries(t, logFile)
	require.Len(t, entries, 1)
	assert.Equal(t, "launch", entries[0]["operation"])
	assert.NotEmpty(t, entries[0]["correlation_id"])
}

func TestLogger_NoFile(t *testing.T) {
	var console bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogFile = ""

	log, err := newLogger(cfg, zapcore.AddSync(&console))
	require.NoError(t, err)

	log.Info("Launching")
	assert.Contains(t, console.String(), "Launching")
	assert.NoError(t, log.Close())
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		fields []zap.Field
		want   string
	}{
		{
			name:   "Launch",
			msg:    "Sending launch transaction",
			fields: []zap.Field{zap.String("name", "Bonk Dog"), zap.String("symbol", "BDOG")},
			want:   "Launching Bonk Dog (BDOG) on letsbonk",
		},
		{
			name:   "Rate limit",
			msg:    "Rate limited, backing off",
			fields: []zap.Field{zap.Duration("backoff", 2*time.Second)},
			want:   "retrying in 2s",
		},
		{
			name:   "Wallet",
			msg:    "Wallet balance",
			fields: []zap.Field{zap.Float64("sol", 0.2)},
			want:   "Wallet balance: 0.2 SOL",
		},
		{
			name: "Unknown message",
			msg:  "Something else",
			want: "Something else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, FormatMessage(tt.msg, tt.fields...), tt.want)
		})
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abcd...wxyz", shortenAddress("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "short", shortenAddress("short"))
	assert.Equal(t, "", shortenSignature(""))
}
