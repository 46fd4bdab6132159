// ==============================================
// File: internal/dex/letsbonk/instructions.go
// ==============================================
package letsbonk

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/spltoken"
)

// Anchor discriminators: first 8 bytes of sha256("global:<name>")
var (
	InitializeDiscriminator = anchorDiscriminator("initialize")
	BuyExactInDiscriminator = anchorDiscriminator("buy_exact_in")
)

// curveTypeConstant is the CurveParams enum variant for a constant-product curve.
const curveTypeConstant uint8 = 0

func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

// encodeInitializeArgs serialises MintParams, CurveParams::Constant and a zero VestingParams.
func encodeInitializeArgs(p LaunchParams) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteBytes(InitializeDiscriminator, false); err != nil {
		return nil, err
	}

	// MintParams
	if err := enc.WriteUint8(p.Decimals); err != nil {
		return nil, err
	}
	for _, s := range []string{p.Name, p.Symbol, p.URI} {
		if err := writeBorshString(enc, s); err != nil {
			return nil, err
		}
	}

	// CurveParams::Constant
	if err := enc.WriteUint8(curveTypeConstant); err != nil {
		return nil, err
	}
	for _, v := range []uint64{p.Supply, p.TotalBaseSell, p.TotalQuoteFundRaising} {
		if err := enc.WriteUint64(v, bin.LE); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint8(p.MigrateType); err != nil {
		return nil, err
	}

	// VestingParams: total_locked_amount, cliff_period, unlock_period
	for i := 0; i < 3; i++ {
		if err := enc.WriteUint64(0, bin.LE); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeBorshString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

// BuildInitializeInstruction builds the LaunchLab initialize instruction that creates
// the mint, its metadata and the pool. payer doubles as creator.
func BuildInitializeInstruction(accounts *PoolAccounts, payer solana.PublicKey, params LaunchParams) (solana.Instruction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	data, err := encodeInitializeArgs(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initialize args: %w", err)
	}

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: payer, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.GlobalConfig, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PlatformConfig, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PoolState, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.BaseMint, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.QuoteMint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: spltoken.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.MetadataProgram, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.SysvarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, data), nil
}

// BuildBuyExactInInstruction builds buy_exact_in: spend amountIn lamports of the quote
// token for at least minAmountOut base units. share_fee_rate is always zero.
func BuildBuyExactInInstruction(
	accounts *PoolAccounts,
	payer, userBaseToken, userQuoteToken solana.PublicKey,
	amountIn, minAmountOut uint64,
) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(BuyExactInDiscriminator, false); err != nil {
		return nil, err
	}
	for _, v := range []uint64{amountIn, minAmountOut, 0} {
		if err := enc.WriteUint64(v, bin.LE); err != nil {
			return nil, fmt.Errorf("failed to encode buy args: %w", err)
		}
	}

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.GlobalConfig, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PlatformConfig, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.PoolState, IsSigner: false, IsWritable: true},
		{PublicKey: userBaseToken, IsSigner: false, IsWritable: true},
		{PublicKey: userQuoteToken, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.BaseMint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.QuoteMint, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Program, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.Program, insAccounts, buf.Bytes()), nil
}
