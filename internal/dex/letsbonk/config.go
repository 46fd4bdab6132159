// =============================
// File: internal/dex/letsbonk/config.go
// =============================
package letsbonk

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/spltoken"
	"github.com/rovshanmuradov/bonk-launcher/internal/types"
)

// Known LaunchLab addresses
var (
	// Program ID of the Raydium LaunchLab program
	LaunchLabProgramID = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")

	// Global config shared by every LaunchLab platform
	GlobalConfigID = solana.MustPublicKeyFromBase58("6s1xP3hpbAfFoNtUNF8mfHsjr2Bd97JxFJRWLbL6aHuX")

	// Platform config of letsbonk.fun
	PlatformConfigID = solana.MustPublicKeyFromBase58("FfYek5vEz23cMkWsdJwG2oa6EphsvXSHrGpdALN4g6W1")

	// Metaplex token metadata program
	MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Launch defaults used by letsbonk.fun
const (
	DefaultDecimals              uint8  = 6
	DefaultSupply                uint64 = 1_000_000_000_000_000
	DefaultTotalBaseSell         uint64 = 793_100_000_000_000
	DefaultTotalQuoteFundRaising uint64 = 85_000_000_000

	// Metaplex limits
	maxNameLength   = 32
	maxSymbolLength = 10
	maxURILength    = 200
)

var ErrInvalidLaunchParams = errors.New("invalid launch parameters")

// Config holds the configuration for the letsbonk client
type Config struct {
	// Protocol addresses
	ProgramID       solana.PublicKey
	GlobalConfig    solana.PublicKey
	PlatformConfig  solana.PublicKey
	MetadataProgram solana.PublicKey
	QuoteMint       solana.PublicKey

	SkipPreflight bool

	// Slippage applied to the initial buy. The default SlippageNone sends a zero
	// minimum amount out.
	Slippage types.SlippageConfig
	// PreviousSOL is the SOL already raised on the curve when estimating output.
	PreviousSOL float64

	// Outer retry of the initial buy
	BuyAttempts  int
	BuyRetryUnit time.Duration
}

// GetDefaultConfig creates a default configuration for letsbonk.fun
func GetDefaultConfig() *Config {
	return &Config{
		ProgramID:       LaunchLabProgramID,
		GlobalConfig:    GlobalConfigID,
		PlatformConfig:  PlatformConfigID,
		MetadataProgram: MetadataProgramID,
		QuoteMint:       spltoken.WrappedSOLMint,
		SkipPreflight:   true,
		Slippage:        types.SlippageConfig{Type: types.SlippageNone},
		PreviousSOL:     DefaultPreviousSOL,
		BuyAttempts:     3,
		BuyRetryUnit:    time.Second,
	}
}

// LaunchParams describes the token and its constant-product curve.
type LaunchParams struct {
	Name     string
	Symbol   string
	URI      string
	Decimals uint8

	Supply                uint64
	TotalBaseSell         uint64
	TotalQuoteFundRaising uint64
	MigrateType           uint8
}

// DefaultLaunchParams returns letsbonk defaults for the given metadata.
func DefaultLaunchParams(name, symbol, uri string) LaunchParams {
	return LaunchParams{
		Name:                  name,
		Symbol:                symbol,
		URI:                   uri,
		Decimals:              DefaultDecimals,
		Supply:                DefaultSupply,
		TotalBaseSell:         DefaultTotalBaseSell,
		TotalQuoteFundRaising: DefaultTotalQuoteFundRaising,
	}
}

// Validate checks the parameters against Metaplex and curve limits.
func (p LaunchParams) Validate() error {
	switch {
	case p.Name == "" || len(p.Name) > maxNameLength:
		return fmt.Errorf("%w: name must be 1-%d bytes", ErrInvalidLaunchParams, maxNameLength)
	case p.Symbol == "" || len(p.Symbol) > maxSymbolLength:
		return fmt.Errorf("%w: symbol must be 1-%d bytes", ErrInvalidLaunchParams, maxSymbolLength)
	case p.URI == "" || len(p.URI) > maxURILength:
		return fmt.Errorf("%w: uri must be 1-%d bytes", ErrInvalidLaunchParams, maxURILength)
	case p.Supply == 0:
		return fmt.Errorf("%w: supply must be positive", ErrInvalidLaunchParams)
	case p.TotalBaseSell == 0 || p.TotalBaseSell > p.Supply:
		return fmt.Errorf("%w: base sell %d must be in (0, supply]", ErrInvalidLaunchParams, p.TotalBaseSell)
	case p.TotalQuoteFundRaising == 0:
		return fmt.Errorf("%w: quote fund raising must be positive", ErrInvalidLaunchParams)
	}
	return nil
}
