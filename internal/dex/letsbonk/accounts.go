// =============================
// File: internal/dex/letsbonk/accounts.go
// =============================
package letsbonk

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PDA seeds of the LaunchLab program
var (
	authSeed           = []byte("vault_auth_seed")
	eventAuthoritySeed = []byte("__event_authority")
	poolSeed           = []byte("pool")
	poolVaultSeed      = []byte("pool_vault")
	metadataSeed       = []byte("metadata")
)

// PoolAccounts holds every address a LaunchLab instruction references for one pool.
type PoolAccounts struct {
	Program         solana.PublicKey
	GlobalConfig    solana.PublicKey
	PlatformConfig  solana.PublicKey
	MetadataProgram solana.PublicKey

	Authority      solana.PublicKey
	EventAuthority solana.PublicKey
	PoolState      solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	BaseVault      solana.PublicKey
	QuoteVault     solana.PublicKey
	Metadata       solana.PublicKey
}

// DerivePoolAccounts вычисляет PDA пула LaunchLab для нового base mint.
func DerivePoolAccounts(cfg *Config, baseMint solana.PublicKey) (*PoolAccounts, error) {
	acc := &PoolAccounts{
		Program:         cfg.ProgramID,
		GlobalConfig:    cfg.GlobalConfig,
		PlatformConfig:  cfg.PlatformConfig,
		MetadataProgram: cfg.MetadataProgram,
		BaseMint:        baseMint,
		QuoteMint:       cfg.QuoteMint,
	}

	var err error
	if acc.Authority, _, err = solana.FindProgramAddress([][]byte{authSeed}, cfg.ProgramID); err != nil {
		return nil, fmt.Errorf("failed to derive authority: %w", err)
	}
	if acc.EventAuthority, _, err = solana.FindProgramAddress([][]byte{eventAuthoritySeed}, cfg.ProgramID); err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}
	if acc.PoolState, _, err = solana.FindProgramAddress(
		[][]byte{poolSeed, baseMint.Bytes(), cfg.QuoteMint.Bytes()},
		cfg.ProgramID,
	); err != nil {
		return nil, fmt.Errorf("failed to derive pool state: %w", err)
	}
	if acc.BaseVault, _, err = solana.FindProgramAddress(
		[][]byte{poolVaultSeed, acc.PoolState.Bytes(), baseMint.Bytes()},
		cfg.ProgramID,
	); err != nil {
		return nil, fmt.Errorf("failed to derive base vault: %w", err)
	}
	if acc.QuoteVault, _, err = solana.FindProgramAddress(
		[][]byte{poolVaultSeed, acc.PoolState.Bytes(), cfg.QuoteMint.Bytes()},
		cfg.ProgramID,
	); err != nil {
		return nil, fmt.Errorf("failed to derive quote vault: %w", err)
	}
	if acc.Metadata, _, err = solana.FindProgramAddress(
		[][]byte{metadataSeed, cfg.MetadataProgram.Bytes(), baseMint.Bytes()},
		cfg.MetadataProgram,
	); err != nil {
		return nil, fmt.Errorf("failed to derive metadata account: %w", err)
	}

	return acc, nil
}

// Map returns the derived addresses keyed by role, for logs and the run summary.
func (a *PoolAccounts) Map() map[string]string {
	return map[string]string{
		"authority":       a.Authority.String(),
		"event_authority": a.EventAuthority.String(),
		"pool_state":      a.PoolState.String(),
		"base_vault":      a.BaseVault.String(),
		"quote_vault":     a.QuoteVault.String(),
		"metadata":        a.Metadata.String(),
	}
}
