package spltoken

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

const (
	// TokenAccountSize is the length of an SPL token account.
	TokenAccountSize uint64 = 165

	// FallbackRentExemptLamports is used when the RPC rent query fails.
	FallbackRentExemptLamports uint64 = 2_039_280

	SOLDecimals = 9
)

// SPL token instruction discriminators
const (
	InstructionInitializeAccount byte = 1
	InstructionCloseAccount      byte = 9
)

// RentSource answers getMinimumBalanceForRentExemption.
type RentSource interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
}

// TemporaryAccount is a single-use WSOL token account. Keypair must sign the
// transaction carrying Instructions.
type TemporaryAccount struct {
	Address      solana.PublicKey
	Keypair      *wallet.Wallet
	Instructions []solana.Instruction
	Lamports     uint64
}

// SOLToLamports converts a human SOL amount into lamports, truncating sub-lamport dust.
func SOLToLamports(amount float64) uint64 {
	return uint64(decimal.NewFromFloat(amount).Shift(SOLDecimals).Floor().IntPart())
}

// LamportsToSOL converts lamports into SOL.
func LamportsToSOL(lamports uint64) float64 {
	f, _ := decimal.NewFromInt(int64(lamports)).Shift(-SOLDecimals).Float64()
	return f
}

// NewTemporaryWrappedSOLAccount generates a fresh keypair and the two instructions that
// create it with owner = token program and initialize it for the WSOL mint, funded
// with the rent-exempt minimum plus amount SOL.
func NewTemporaryWrappedSOLAccount(ctx context.Context, rent RentSource, payer solana.PublicKey, amount float64, logger *zap.Logger) (*TemporaryAccount, error) {
	if amount < 0 {
		return nil, fmt.Errorf("negative WSOL amount %f", amount)
	}

	kp, err := wallet.NewRandom()
	if err != nil {
		return nil, err
	}

	minRent, err := rent.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize)
	if err != nil {
		logger.Warn("Rent exemption query failed, using fallback",
			zap.Uint64("fallback_lamports", FallbackRentExemptLamports),
			zap.Error(err))
		minRent = FallbackRentExemptLamports
	}

	lamports := minRent + SOLToLamports(amount)

	createIx := system.NewCreateAccountInstruction(
		lamports,
		TokenAccountSize,
		TokenProgramID,
		payer,
		kp.PublicKey,
	).Build()

	return &TemporaryAccount{
		Address:      kp.PublicKey,
		Keypair:      kp,
		Instructions: []solana.Instruction{createIx, NewInitializeAccountInstruction(kp.PublicKey, WrappedSOLMint, payer)},
		Lamports:     lamports,
	}, nil
}

// NewInitializeAccountInstruction builds token InitializeAccount (discriminator 1).
func NewInitializeAccountInstruction(account, mint, owner solana.PublicKey) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: SysvarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(TokenProgramID, metas, []byte{InstructionInitializeAccount})
}

// NewCloseAccountInstruction builds token CloseAccount (discriminator 9); the remaining
// lamports go back to owner, who must sign.
func NewCloseAccountInstruction(account, owner solana.PublicKey) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(TokenProgramID, metas, []byte{InstructionCloseAccount})
}
