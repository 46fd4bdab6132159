package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

// BlockhashSource fetches the recent blockhash a transaction is pinned to.
type BlockhashSource interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}

// Assembler wraps instructions into a transaction shell with compute budget directives.
type Assembler struct {
	blockhash BlockhashSource
	budget    computebudget.Config
	logger    *zap.Logger
}

// NewAssembler creates an Assembler with a fixed compute unit price and limit.
func NewAssembler(source BlockhashSource, budget computebudget.Config, logger *zap.Logger) *Assembler {
	return &Assembler{
		blockhash: source,
		budget:    budget,
		logger:    logger.Named("assembler"),
	}
}

// Assemble fetches the latest blockhash and builds an unsigned transaction paid by
// feePayer. Compute budget instructions always come before the caller's instructions.
func (a *Assembler) Assemble(ctx context.Context, feePayer solana.PublicKey, instructions ...solana.Instruction) (*solana.Transaction, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}

	budgetIxs, err := computebudget.BuildComputeBudgetInstructions(a.budget)
	if err != nil {
		return nil, err
	}

	blockhash, err := a.blockhash.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get recent blockhash: %w", err)
	}

	all := make([]solana.Instruction, 0, len(budgetIxs)+len(instructions))
	all = append(all, budgetIxs...)
	all = append(all, instructions...)

	tx, err := solana.NewTransaction(all, blockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	a.logger.Debug("Transaction assembled",
		zap.String("fee_payer", feePayer.String()),
		zap.String("blockhash", blockhash.String()),
		zap.Int("instructions", len(all)))
	return tx, nil
}

// Sign signs tx with all supplied keys. Every signer the message requires must be present.
func (a *Assembler) Sign(tx *solana.Transaction, signers ...*wallet.Wallet) error {
	keys := make([]solana.PrivateKey, 0, len(signers))
	for _, s := range signers {
		keys = append(keys, s.PrivateKey)
	}
	return wallet.SignWith(tx, keys...)
}

// AssembleAndSign assembles and signs with every supplied keypair.
func (a *Assembler) AssembleAndSign(ctx context.Context, payer *wallet.Wallet, extraSigners []*wallet.Wallet, instructions ...solana.Instruction) (*solana.Transaction, error) {
	tx, err := a.Assemble(ctx, payer.PublicKey, instructions...)
	if err != nil {
		return nil, err
	}

	if err := a.Sign(tx, append([]*wallet.Wallet{payer}, extraSigners...)...); err != nil {
		return nil, err
	}
	return tx, nil
}
