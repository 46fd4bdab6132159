package solbc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain"
	rpcerr "github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
)

const slippageLog = "Program log: AnchorError occurred. Error Code: ExceededSlippage. Error Number: 6005. Error Message: Exceeds desired slippage limit."

type rpcReply struct {
	result string
	error  string
}

func newTestClient(t *testing.T, replies map[string]rpcReply) *Client {
	t.Helper()
	srv := newTestServer(t, replies)
	return NewClient(srv.URL, srv.Client(), metrics.New(), zap.NewNop())
}

func newTestServer(t *testing.T, replies map[string]rpcReply) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		reply, ok := replies[req.Method]
		if !ok {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("Too Many Requests"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if reply.error != "" {
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":%s}`, req.ID, reply.error)
			return
		}
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, reply.result)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signedTestTx(t *testing.T) *solana.Transaction {
	t.Helper()
	payer := solana.NewWallet()
	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.Meta(payer.PublicKey()).SIGNER().WRITE(),
	}, []byte("bonk"))

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestGetBalance(t *testing.T) {
	client := newTestClient(t, map[string]rpcReply{
		"getBalance": {result: `{"context":{"slot":1},"value":1500000000}`},
	})

	lamports, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
}

func TestGetAccountInfo_NotFound(t *testing.T) {
	client := newTestClient(t, map[string]rpcReply{
		"getAccountInfo": {result: `{"context":{"slot":1},"value":null}`},
	})

	_, err := client.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.True(t, IsAccountNotFoundError(err))
}

func TestRateLimitIsWrapped(t *testing.T) {
	client := newTestClient(t, nil)

	_, err := client.GetMinimumBalanceForRentExemption(context.Background(), 165)
	require.Error(t, err)
	assert.True(t, rpcerr.IsRateLimitError(err))

	var wrapped *rpcerr.Error
	require.True(t, errors.As(err, &wrapped))
	assert.Equal(t, "getMinimumBalanceForRentExemption", wrapped.Method)
	assert.Equal(t, client.Endpoint(), wrapped.NodeURL)
}

func TestRateLimit_EndpointURLIgnored(t *testing.T) {
	srv := newTestServer(t, map[string]rpcReply{
		"sendTransaction": {error: `{"code":-32002,"message":"Transaction simulation failed: Blockhash not found"}`},
	})
	client := NewClient(srv.URL+"/?api-key=7f429c1e", srv.Client(), metrics.New(), zap.NewNop())

	_, err := client.SendTransactionWithOpts(context.Background(), signedTestTx(t), blockchain.TransactionOptions{MaxRetries: 1})
	require.Error(t, err)
	assert.False(t, rpcerr.IsRateLimitError(err))
	assert.Contains(t, err.Error(), "Blockhash not found")
	assert.NotContains(t, err.Error(), "7f429c1e")

	_, err = client.GetMinimumBalanceForRentExemption(context.Background(), 165)
	require.Error(t, err)
	assert.True(t, rpcerr.IsRateLimitError(err), "HTTP 429 from the node still counts")
	assert.NotContains(t, err.Error(), "api-key")
}

func TestSendTransaction_SimulationAnchorError(t *testing.T) {
	client := newTestClient(t, map[string]rpcReply{
		"sendTransaction": {error: fmt.Sprintf(`{
			"code": -32002,
			"message": "Transaction simulation failed: Error processing Instruction 2: custom program error: 0x1775",
			"data": {"err": {"InstructionError": [2, {"Custom": 6005}]}, "logs": [
				"Program LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj invoke [1]",
				%q
			]}
		}`, slippageLog)},
	})

	_, err := client.SendTransactionWithOpts(context.Background(), signedTestTx(t), blockchain.TransactionOptions{
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          1,
	})
	require.Error(t, err)

	var anchorErr *AnchorError
	require.True(t, errors.As(err, &anchorErr))
	assert.Equal(t, "ExceededSlippage", anchorErr.Name)
	assert.Equal(t, 6005, anchorErr.Code)
	assert.Equal(t, "Exceeds desired slippage limit", anchorErr.Msg)
	assert.False(t, rpcerr.IsRateLimitError(err))
}

func TestSendTransaction_Success(t *testing.T) {
	tx := signedTestTx(t)
	client := newTestClient(t, map[string]rpcReply{
		"sendTransaction": {result: fmt.Sprintf("%q", tx.Signatures[0].String())},
	})

	sig, err := client.SendTransactionWithOpts(context.Background(), tx, blockchain.TransactionOptions{SkipPreflight: true})
	require.NoError(t, err)
	assert.Equal(t, tx.Signatures[0], sig)
}

func TestWaitForTransactionConfirmation(t *testing.T) {
	sig := solana.SignatureFromBytes(make([]byte, 64))

	t.Run("Confirmed", func(t *testing.T) {
		client := newTestClient(t, map[string]rpcReply{
			"getSignatureStatuses": {result: `{"context":{"slot":1},"value":[{"slot":1,"confirmations":null,"err":null,"confirmationStatus":"confirmed"}]}`},
		})
		assert.NoError(t, client.WaitForTransactionConfirmation(context.Background(), sig, rpc.CommitmentConfirmed))
	})

	t.Run("Failed on chain", func(t *testing.T) {
		client := newTestClient(t, map[string]rpcReply{
			"getSignatureStatuses": {result: `{"context":{"slot":1},"value":[{"slot":1,"confirmations":null,"err":{"InstructionError":[0,"InvalidAccountData"]},"confirmationStatus":"confirmed"}]}`},
		})
		err := client.WaitForTransactionConfirmation(context.Background(), sig, rpc.CommitmentConfirmed)
		assert.ErrorIs(t, err, ErrTransactionFailed)
	})

	t.Run("Cancelled", func(t *testing.T) {
		client := newTestClient(t, map[string]rpcReply{
			"getSignatureStatuses": {result: `{"context":{"slot":1},"value":[null]}`},
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed), context.Canceled)
	})
}

func TestReached(t *testing.T) {
	tests := []struct {
		status     rpc.ConfirmationStatusType
		commitment rpc.CommitmentType
		want       bool
	}{
		{rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed, false},
		{rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed, true},
		{rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized, false},
		{rpc.ConfirmationStatusFinalized, rpc.CommitmentFinalized, true},
		{rpc.ConfirmationStatusProcessed, rpc.CommitmentProcessed, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reached(tt.status, tt.commitment), "%s vs %s", tt.status, tt.commitment)
	}
}

func TestFindAnchorError(t *testing.T) {
	_, ok := FindAnchorError([]string{"Program log: Instruction: BuyExactIn"})
	assert.False(t, ok)

	anchorErr, ok := FindAnchorError([]string{"Program log: Instruction: BuyExactIn", slippageLog})
	require.True(t, ok)
	assert.Equal(t, "ExceededSlippage", anchorErr.Name)
	assert.Contains(t, anchorErr.Error(), "6005")

	assert.Nil(t, SimulationLogs(errors.New("plain")))
}
