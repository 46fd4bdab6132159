package solbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("anchor error %s (%d): %s", e.Name, e.Code, e.Msg)
}

// SimulationLogs returns the program logs of a failed preflight simulation.
func SimulationLogs(err error) []string {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) || !strings.Contains(rpcErr.Message, "simulation failed") {
		return nil
	}
	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return nil
	}
	rawLogs, ok := dataMap["logs"].([]interface{})
	if !ok {
		return nil
	}

	logs := make([]string, 0, len(rawLogs))
	for _, entry := range rawLogs {
		if line, ok := entry.(string); ok {
			logs = append(logs, line)
		}
	}
	return logs
}

// FindAnchorError returns the first Anchor error reported in logs.
func FindAnchorError(logs []string) (*AnchorError, bool) {
	for _, line := range logs {
		if strings.Contains(line, "AnchorError occurred") || strings.Contains(line, "AnchorError thrown") {
			anchorErr := parseAnchorErrorLog(line)
			return &anchorErr, true
		}
	}
	return nil, false
}

// parseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
func parseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if _, rest, ok := strings.Cut(logStr, "Error Number:"); ok {
		num, _, _ := strings.Cut(rest, ".")
		_, _ = fmt.Sscanf(strings.TrimSpace(num), "%d", &result.Code)
	}

	if _, rest, ok := strings.Cut(logStr, "Error Code:"); ok {
		name, _, _ := strings.Cut(rest, ".")
		result.Name = strings.TrimSpace(name)
	}

	if _, rest, ok := strings.Cut(logStr, "Error Message:"); ok {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(rest), ".")
	}

	return result
}
