// Package spltoken builds SPL token program and associated-token-account instructions by hand.
//
// Account order and discriminator bytes follow the on-chain programs' ABI exactly; a
// mismatch is only detected by the validator at submission time.
package spltoken

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	TokenProgramID           = solana.TokenProgramID
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
	SystemProgramID          = solana.SystemProgramID
	SysvarRentPubkey         = solana.SysVarRentPubkey

	// WrappedSOLMint is the native mint (WSOL).
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// DeriveAssociatedAccount returns the program-derived ATA address for owner and mint.
// Seeds are [owner, tokenProgram, mint] under assocProgram.
func DeriveAssociatedAccount(owner, mint, tokenProgram, assocProgram solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		assocProgram,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated account for %s/%s: %w", owner, mint, err)
	}
	return ata, nil
}

// AssociatedAccount derives the ATA with the standard token programs.
func AssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	return DeriveAssociatedAccount(owner, mint, TokenProgramID, AssociatedTokenProgramID)
}

// NewCreateAssociatedAccountInstruction builds the associated-token-account "Create"
// instruction (empty payload) for owner's ATA of mint, funded by payer.
func NewCreateAssociatedAccountInstruction(payer, owner, mint solana.PublicKey) (solana.PublicKey, solana.Instruction, error) {
	ata, err := AssociatedAccount(owner, mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	// Account list must be in the exact order expected by the program
	metas := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: SysvarRentPubkey, IsSigner: false, IsWritable: false},
	}

	return ata, solana.NewInstruction(AssociatedTokenProgramID, metas, []byte{}), nil
}
