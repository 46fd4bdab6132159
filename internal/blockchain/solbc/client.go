// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain"
	rpcerr "github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
)

const confirmationTimeout = 30 * time.Second

// Определение ошибок
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrConfirmationTimeout  = errors.New("confirmation timeout")
	ErrTransactionFailed    = errors.New("transaction failed on-chain")
	ErrEmptyBlockhashResult = errors.New("empty getLatestBlockhash result")
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc      *rpc.Client
	endpoint string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAccountNotFound) || strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient создаёт новый клиент. HTTP-клиент передаётся явно, чтобы RPC
// использовал ту же TLS-конфигурацию, что и остальные сетевые вызовы.
// При httpClient == nil используется транспорт solana-go по умолчанию.
func NewClient(rpcURL string, httpClient *http.Client, m *metrics.Metrics, logger *zap.Logger) *Client {
	var rpcClient *rpc.Client
	if httpClient != nil {
		rpcClient = rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(rpcURL, &jsonrpc.RPCClientOpts{
			HTTPClient: httpClient,
		}))
	} else {
		rpcClient = rpc.New(rpcURL)
	}

	return &Client{
		rpc:      rpcClient,
		endpoint: rpcURL,
		metrics:  m,
		logger:   logger.Named("solbc-client"),
	}
}

// Endpoint возвращает URL RPC-узла.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// observe фиксирует метрики вызова и оборачивает ошибку контекстом узла.
func (c *Client) observe(method string, start time.Time, err error) error {
	c.metrics.RecordRPCCall(method, err, time.Since(start))
	if err == nil {
		return nil
	}
	if rpcerr.IsRateLimitError(err) {
		c.metrics.RecordRateLimitHit(method)
	}
	return rpcerr.NewError(err, c.endpoint, method)
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err = c.observe("getLatestBlockhash", start, err); err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, ErrEmptyBlockhashResult
	}
	return result.Value.Blockhash, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	txOpts := rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	}
	if opts.MaxRetries > 0 {
		maxRetries := opts.MaxRetries
		txOpts.MaxRetries = &maxRetries
	}

	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, txOpts)
	if err = c.observe("sendTransaction", start, err); err != nil {
		if anchorErr, ok := FindAnchorError(SimulationLogs(err)); ok {
			c.logger.Warn("Anchor error detected",
				zap.Int("code", anchorErr.Code),
				zap.String("name", anchorErr.Name),
				zap.String("message", anchorErr.Msg))
			err = fmt.Errorf("%w: %w", err, anchorErr)
		}
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	start := time.Now()
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err = c.observe("getSignatureStatuses", start, err); err != nil {
		c.logger.Debug("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// WaitForTransactionConfirmation ожидает подтверждения транзакции (с простым polling‑механизмом).
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(confirmationTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("%w: %s", ErrConfirmationTimeout, signature)
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
			}
			if reached(status.ConfirmationStatus, commitment) {
				return nil
			}
		}
	}
}

// reached сравнивает достигнутый статус с запрошенным уровнем.
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	default:
		return false
	}
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	start := time.Now()
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err = c.observe("getBalance", start, err); err != nil {
		c.logger.Error("GetBalance error", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return 0, err
	}
	if result == nil {
		return 0, rpcerr.NewError(rpcerr.ErrInvalidResponse, c.endpoint, "getBalance")
	}
	return result.Value, nil
}

// GetTokenAccountsByOwner возвращает токен-аккаунты владельца для минта в кодировке jsonParsed.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner, mint solana.PublicKey) (*rpc.GetTokenAccountsResult, error) {
	start := time.Now()
	result, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err = c.observe("getTokenAccountsByOwner", start, err); err != nil {
		c.logger.Error("GetTokenAccountsByOwner error",
			zap.String("owner", owner.String()),
			zap.String("mint", mint.String()),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetMinimumBalanceForRentExemption возвращает минимальный rent-exempt баланс для dataSize байт.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	start := time.Now()
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
	if err = c.observe("getMinimumBalanceForRentExemption", start, err); err != nil {
		c.logger.Debug("GetMinimumBalanceForRentExemption error", zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// GetAccountInfo получает информацию об аккаунте.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	start := time.Now()
	result, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if errors.Is(err, rpc.ErrNotFound) {
		c.metrics.RecordRPCCall("getAccountInfo", nil, time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
	}
	if err = c.observe("getAccountInfo", start, err); err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
