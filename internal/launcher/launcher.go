// Package launcher drives one token launch run: balance gate, metadata upload,
// launch, initial buy and post-trade verification.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/dex/letsbonk"
	"github.com/rovshanmuradov/bonk-launcher/internal/metadata"
	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

// ManualPurchaseURL is where the operator can finish a failed initial buy.
const ManualPurchaseURL = "https://letsbonk.fun"

var (
	ErrInvalidOptions      = errors.New("invalid launch options")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceUnavailable  = errors.New("balance unavailable")
	ErrMetadataUpload      = errors.New("metadata upload failed")
	ErrLaunchFailed        = errors.New("launch failed")
	ErrInitialBuyFailed    = errors.New("initial buy failed")
)

// BalanceReader reads wallet balances.
type BalanceReader interface {
	NativeBalance(ctx context.Context, addr solana.PublicKey) (float64, error)
	TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (float64, error)
}

// MetadataUploader publishes token metadata and returns its URI.
type MetadataUploader interface {
	Upload(ctx context.Context, req metadata.Request) (string, error)
}

// TokenLauncher creates the token and its pool.
type TokenLauncher interface {
	Launch(ctx context.Context, payer, mint *wallet.Wallet, params letsbonk.LaunchParams) (*letsbonk.LaunchResult, error)
}

// InitialBuyer buys the freshly launched token.
type InitialBuyer interface {
	InitialBuy(ctx context.Context, payer *wallet.Wallet, mint solana.PublicKey, amountSOL float64) (solana.Signature, error)
}

// ConnectivityProber checks that an endpoint answers.
type ConnectivityProber interface {
	Probe(ctx context.Context, url string) (int, error)
}

// Dependencies groups the collaborators of a run.
type Dependencies struct {
	Balances BalanceReader
	Uploader MetadataUploader
	Launcher TokenLauncher
	Buyer    InitialBuyer
	Prober   ConnectivityProber

	// NewMint generates the mint keypair; wallet.NewRandom when nil.
	NewMint func() (*wallet.Wallet, error)
}

// Options describe what to launch.
type Options struct {
	Token  metadata.Request
	Launch letsbonk.LaunchParams

	InitialBuySOL float64
	BalanceBuffer float64

	ProbeURLs    []string
	ProbeTimeout time.Duration
}

// Validate checks the options before any network call.
func (o Options) Validate() error {
	switch {
	case o.Token.Name == "":
		return fmt.Errorf("%w: token name is required", ErrInvalidOptions)
	case o.Token.Symbol == "":
		return fmt.Errorf("%w: token symbol is required", ErrInvalidOptions)
	case o.InitialBuySOL <= 0:
		return fmt.Errorf("%w: initial buy must be positive, got %f", ErrInvalidOptions, o.InitialBuySOL)
	case o.BalanceBuffer < 0:
		return fmt.Errorf("%w: balance buffer must be non-negative, got %f", ErrInvalidOptions, o.BalanceBuffer)
	}
	return nil
}

// Launcher runs the launch state machine. Every failure is terminal and nothing
// already sent on chain is rolled back.
type Launcher struct {
	deps    Dependencies
	opts    Options
	payer   *wallet.Wallet
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a Launcher for payer.
func New(deps Dependencies, opts Options, payer *wallet.Wallet, m *metrics.Metrics, logger *zap.Logger) *Launcher {
	if deps.NewMint == nil {
		deps.NewMint = wallet.NewRandom
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	return &Launcher{
		deps:    deps,
		opts:    opts,
		payer:   payer,
		metrics: m,
		logger:  logger.Named("launcher"),
	}
}

// Run executes the run. The returned Summary is never nil and records how far
// the run got, even when an error is returned.
func (l *Launcher) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		PDAs:      map[string]string{},
	}
	log := l.logger.With(zap.String("run_id", summary.RunID))

	err := l.run(ctx, log, summary)
	summary.Duration = time.Since(summary.StartedAt)
	if err != nil {
		summary.Err = err
		log.Error("Run failed", zap.String("state", string(summary.State)), zap.Error(err))
		return summary, err
	}
	l.enter(log, summary, StateDone)
	return summary, nil
}

func (l *Launcher) run(ctx context.Context, log *zap.Logger, s *Summary) error {
	// Validate
	l.enter(log, s, StateValidate)
	if err := l.opts.Validate(); err != nil {
		return err
	}
	if l.payer == nil {
		return fmt.Errorf("%w: payer wallet is required", ErrInvalidOptions)
	}
	mint, err := l.deps.NewMint()
	if err != nil {
		return fmt.Errorf("generate mint keypair: %w", err)
	}
	s.Payer = l.payer.PublicKey
	s.Mint = mint.PublicKey
	log.Info("Launch prepared",
		zap.String("payer", s.Payer.String()),
		zap.String("mint", s.Mint.String()),
		zap.String("name", l.opts.Token.Name),
		zap.String("symbol", l.opts.Token.Symbol))

	// ConnectivityCheck
	l.enter(log, s, StateConnectivityCheck)
	s.Connectivity = l.checkConnectivity(ctx, log)
	if err := ctx.Err(); err != nil {
		return err
	}

	// BalanceGate
	l.enter(log, s, StateBalanceGate)
	balance, err := l.deps.Balances.NativeBalance(ctx, l.payer.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBalanceUnavailable, err)
	}
	s.SOLBalance = balance
	required := l.opts.InitialBuySOL + l.opts.BalanceBuffer
	log.Info("Wallet balance", zap.Float64("sol", balance), zap.Float64("required", required))
	if balance < required {
		return fmt.Errorf("%w: have %.4f SOL, need at least %.4f SOL for buy + buffer", ErrInsufficientBalance, balance, required)
	}

	// MetadataUpload
	l.enter(log, s, StateMetadataUpload)
	uri, err := l.deps.Uploader.Upload(ctx, l.opts.Token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataUpload, err)
	}
	if uri == "" {
		return fmt.Errorf("%w: %w", ErrMetadataUpload, metadata.ErrEmptyURI)
	}
	s.MetadataURI = uri

	// Launch
	l.enter(log, s, StateLaunch)
	params := l.opts.Launch
	params.Name, params.Symbol, params.URI = l.opts.Token.Name, l.opts.Token.Symbol, uri
	res, err := l.deps.Launcher.Launch(ctx, l.payer, mint, params)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}
	s.LaunchSignature = res.Signature
	s.BaseTokenAccount = res.BaseTokenAccount
	if res.Accounts != nil {
		s.PDAs = res.Accounts.Map()
	}

	// InitialBuy
	l.enter(log, s, StateInitialBuy)
	sig, err := l.deps.Buyer.InitialBuy(ctx, l.payer, mint.PublicKey, l.opts.InitialBuySOL)
	if err != nil {
		return fmt.Errorf("%w (you can manually purchase at %s): %w", ErrInitialBuyFailed, ManualPurchaseURL, err)
	}
	s.BuySignature = sig

	// VerifyBalance
	l.enter(log, s, StateVerifyBalance)
	tokens, err := l.deps.Balances.TokenBalance(ctx, l.payer.PublicKey, mint.PublicKey)
	if err != nil {
		log.Warn("Could not fetch token balance", zap.Error(err))
		return nil
	}
	s.TokenBalance = tokens
	s.TokenBalanceKnown = true
	log.Info("Token received", zap.Float64("balance", tokens))
	return nil
}

func (l *Launcher) enter(log *zap.Logger, s *Summary, state State) {
	s.State = state
	l.metrics.SetRunState(string(state))
	log.Debug("State reached", zap.String("state", string(state)))
}
