// =============================
// File: internal/dex/letsbonk/letsbonk.go
// =============================
package letsbonk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/spltoken"
	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc"
	"github.com/rovshanmuradov/bonk-launcher/internal/transaction"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

var ErrBuyFailed = errors.New("initial buy failed")

// Client is the part of the RPC adapter the letsbonk flows need.
type Client interface {
	spltoken.RentSource
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Assembler builds and signs transactions with compute budget directives.
type Assembler interface {
	AssembleAndSign(ctx context.Context, payer *wallet.Wallet, extraSigners []*wallet.Wallet, instructions ...solana.Instruction) (*solana.Transaction, error)
}

// Sender submits signed transactions.
type Sender interface {
	Send(ctx context.Context, tx *solana.Transaction, opts transaction.SendOptions, signers ...solana.PrivateKey) (solana.Signature, error)
}

// DEX drives the letsbonk.fun LaunchLab pool: token creation and buys.
type DEX struct {
	client    Client
	assembler Assembler
	sender    Sender
	config    *Config
	logger    *zap.Logger
}

// LaunchResult describes a confirmed launch.
type LaunchResult struct {
	Signature solana.Signature
	Mint      solana.PublicKey
	Accounts  *PoolAccounts
	// BaseTokenAccount is the payer's ATA that receives the initial buy.
	BaseTokenAccount solana.PublicKey
}

// BuyTx is a signed buy transaction ready for submission.
type BuyTx struct {
	Tx              *solana.Transaction
	UserBaseAccount solana.PublicKey
	WSOLAccount     *spltoken.TemporaryAccount
	AmountIn        uint64
	MinAmountOut    uint64
}

// NewDEX creates a letsbonk client. A nil config uses GetDefaultConfig.
func NewDEX(client Client, assembler Assembler, sender Sender, config *Config, logger *zap.Logger) *DEX {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &DEX{
		client:    client,
		assembler: assembler,
		sender:    sender,
		config:    config,
		logger:    logger.Named("letsbonk"),
	}
}

// Launch creates the token mint, its metadata and the LaunchLab pool in one
// transaction signed by payer and mint, and waits for confirmation.
func (d *DEX) Launch(ctx context.Context, payer, mint *wallet.Wallet, params LaunchParams) (*LaunchResult, error) {
	accounts, err := DerivePoolAccounts(d.config, mint.PublicKey)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("Derived pool accounts", zap.Any("pdas", accounts.Map()))

	ix, err := BuildInitializeInstruction(accounts, payer.PublicKey, params)
	if err != nil {
		return nil, err
	}

	tx, err := d.assembler.AssembleAndSign(ctx, payer, []*wallet.Wallet{mint}, ix)
	if err != nil {
		return nil, fmt.Errorf("failed to build launch transaction: %w", err)
	}

	d.logger.Info("Sending launch transaction",
		zap.String("mint", mint.PublicKey.String()),
		zap.String("name", params.Name),
		zap.String("symbol", params.Symbol))

	sig, err := d.sender.Send(ctx, tx, transaction.SendOptions{
		SkipPreflight:       d.config.SkipPreflight,
		WaitForConfirmation: true,
	})
	if err != nil {
		return nil, fmt.Errorf("launch transaction: %w", err)
	}

	baseATA, err := spltoken.AssociatedAccount(payer.PublicKey, mint.PublicKey)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Token launched",
		zap.String("signature", sig.String()),
		zap.String("pool", accounts.PoolState.String()))

	return &LaunchResult{
		Signature:        sig,
		Mint:             mint.PublicKey,
		Accounts:         accounts,
		BaseTokenAccount: baseATA,
	}, nil
}

// CreateBuyTx builds a signed buy of amountSOL against the pool of mint: the payer's
// base ATA is created when missing, and the SOL is wrapped into a temporary WSOL
// account that is closed back to the payer in the same transaction.
func (d *DEX) CreateBuyTx(ctx context.Context, payer *wallet.Wallet, mint solana.PublicKey, amountSOL float64, minAmountOut uint64) (*BuyTx, error) {
	if amountSOL <= 0 {
		return nil, fmt.Errorf("buy amount must be positive, got %f", amountSOL)
	}

	accounts, err := DerivePoolAccounts(d.config, mint)
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction

	userBase, createIx, err := spltoken.NewCreateAssociatedAccountInstruction(payer.PublicKey, payer.PublicKey, mint)
	if err != nil {
		return nil, err
	}
	exists, err := d.accountExists(ctx, userBase)
	if err != nil {
		return nil, err
	}
	if !exists {
		instructions = append(instructions, createIx)
	}

	wsol, err := spltoken.NewTemporaryWrappedSOLAccount(ctx, d.client, payer.PublicKey, amountSOL, d.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare WSOL account: %w", err)
	}
	instructions = append(instructions, wsol.Instructions...)

	amountIn := spltoken.SOLToLamports(amountSOL)
	buyIx, err := BuildBuyExactInInstruction(accounts, payer.PublicKey, userBase, wsol.Address, amountIn, minAmountOut)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, buyIx, spltoken.NewCloseAccountInstruction(wsol.Address, payer.PublicKey))

	tx, err := d.assembler.AssembleAndSign(ctx, payer, []*wallet.Wallet{wsol.Keypair}, instructions...)
	if err != nil {
		return nil, fmt.Errorf("failed to build buy transaction: %w", err)
	}

	d.logger.Debug("Buy transaction prepared",
		zap.String("mint", mint.String()),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("min_amount_out", minAmountOut),
		zap.Bool("create_ata", !exists),
		zap.String("wsol_account", wsol.Address.String()))

	return &BuyTx{
		Tx:              tx,
		UserBaseAccount: userBase,
		WSOLAccount:     wsol,
		AmountIn:        amountIn,
		MinAmountOut:    minAmountOut,
	}, nil
}

// InitialBuy buys amountSOL of the freshly launched token. The same signed
// transaction is resubmitted up to BuyAttempts times, waiting (1+attempt) retry
// units between attempts; each submission has its own rate-limit backoff.
func (d *DEX) InitialBuy(ctx context.Context, payer *wallet.Wallet, mint solana.PublicKey, amountSOL float64) (solana.Signature, error) {
	minOut := MinAmountOut(amountSOL, d.config.PreviousSOL, DefaultDecimals, d.config.Slippage)
	if minOut == 0 {
		d.logger.Warn("Initial buy has no slippage protection (minimum amount out is 0)")
	}

	buy, err := d.CreateBuyTx(ctx, payer, mint, amountSOL, minOut)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrBuyFailed, err)
	}

	attempts := d.config.BuyAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		d.logger.Info("Sending buy transaction", zap.Int("attempt", attempt))

		sig, err := d.sender.Send(ctx, buy.Tx, transaction.SendOptions{
			SkipPreflight:       d.config.SkipPreflight,
			WaitForConfirmation: true,
		})
		if err == nil {
			d.logger.Info("Initial buy succeeded", zap.String("signature", sig.String()))
			return sig, nil
		}
		lastErr = err
		d.logger.Warn("Buy attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == attempts {
			break
		}
		wait := time.Duration(1+attempt) * d.config.BuyRetryUnit
		select {
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		case <-time.After(wait):
		}
	}

	return solana.Signature{}, fmt.Errorf("%w after %d attempts: %w", ErrBuyFailed, attempts, lastErr)
}

// accountExists reports whether address is initialised on chain.
func (d *DEX) accountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	info, err := d.client.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, solbc.ErrAccountNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account %s: %w", address, err)
	}
	return info != nil && info.Value != nil, nil
}
