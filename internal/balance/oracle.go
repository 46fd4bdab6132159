// Package balance reads native SOL and SPL token balances for a wallet.
package balance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/itchyny/gojq"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/spltoken"
)

// uiAmountPath selects the human-readable amount of a jsonParsed token account.
const uiAmountPath = `.parsed.info.tokenAmount.uiAmount`

// Source is the part of the RPC adapter the oracle needs.
type Source interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner, mint solana.PublicKey) (*rpc.GetTokenAccountsResult, error)
}

// Oracle answers balance queries. Query failures are returned to the caller,
// which decides whether they are fatal.
type Oracle struct {
	source     Source
	commitment rpc.CommitmentType
	uiAmount   *gojq.Code
	logger     *zap.Logger
}

// NewOracle creates an Oracle reading at confirmed commitment.
func NewOracle(source Source, logger *zap.Logger) (*Oracle, error) {
	query, err := gojq.Parse(uiAmountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", uiAmountPath, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", uiAmountPath, err)
	}
	return &Oracle{
		source:     source,
		commitment: rpc.CommitmentConfirmed,
		uiAmount:   code,
		logger:     logger.Named("balance"),
	}, nil
}

// NativeBalance returns the SOL balance of addr.
func (o *Oracle) NativeBalance(ctx context.Context, addr solana.PublicKey) (float64, error) {
	lamports, err := o.source.GetBalance(ctx, addr, o.commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance of %s: %w", addr, err)
	}
	sol := spltoken.LamportsToSOL(lamports)
	o.logger.Debug("Native balance",
		zap.String("address", addr.String()),
		zap.Uint64("lamports", lamports),
		zap.Float64("sol", sol))
	return sol, nil
}

// TokenBalance sums uiAmount over all of owner's token accounts for mint.
// A null uiAmount counts as zero; no accounts means a zero balance.
func (o *Oracle) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (float64, error) {
	result, err := o.source.GetTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return 0, fmt.Errorf("get token accounts of %s for %s: %w", owner, mint, err)
	}
	if result == nil {
		return 0, nil
	}

	var total float64
	for _, acc := range result.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		amount, err := o.extractUIAmount(acc.Account.Data.GetRawJSON())
		if err != nil {
			return 0, fmt.Errorf("token account %s: %w", acc.Pubkey, err)
		}
		total += amount
	}

	o.logger.Debug("Token balance",
		zap.String("owner", owner.String()),
		zap.String("mint", mint.String()),
		zap.Int("accounts", len(result.Value)),
		zap.Float64("ui_amount", total))
	return total, nil
}

func (o *Oracle) extractUIAmount(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("decode parsed account data: %w", err)
	}

	iter := o.uiAmount.Run(data)
	v, ok := iter.Next()
	if !ok {
		return 0, nil
	}
	switch val := v.(type) {
	case error:
		return 0, fmt.Errorf("query %s: %w", uiAmountPath, val)
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected uiAmount type %T", v)
	}
}
