package letsbonk

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/spltoken"
	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc"
	"github.com/rovshanmuradov/bonk-launcher/internal/transaction"
	"github.com/rovshanmuradov/bonk-launcher/internal/types"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

// MockClient реализует Client и transaction.BlockhashSource
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	args := m.Called(ctx, dataSize)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return res, args.Error(1)
}

func (m *MockClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

// MockSender реализует Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, tx *solana.Transaction, opts transaction.SendOptions, signers ...solana.PrivateKey) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func newTestDEX(t *testing.T) (*DEX, *MockClient, *MockSender) {
	t.Helper()
	client := new(MockClient)
	client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{3}, nil).Maybe()
	client.On("GetMinimumBalanceForRentExemption", mock.Anything, spltoken.TokenAccountSize).Return(uint64(2_039_280), nil).Maybe()

	sender := new(MockSender)
	asm := transaction.NewAssembler(client, computebudget.NewDefaultConfig(), zap.NewNop())

	cfg := GetDefaultConfig()
	cfg.BuyRetryUnit = time.Millisecond
	return NewDEX(client, asm, sender, cfg, zap.NewNop()), client, sender
}

func mustWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewRandom()
	require.NoError(t, err)
	return w
}

func TestDiscriminators(t *testing.T) {
	for name, disc := range map[string][]byte{
		"initialize":   InitializeDiscriminator,
		"buy_exact_in": BuyExactInDiscriminator,
	} {
		sum := sha256.Sum256([]byte("global:" + name))
		assert.Equal(t, sum[:8], disc, name)
	}
	assert.NotEqual(t, InitializeDiscriminator, BuyExactInDiscriminator)
}

func TestDerivePoolAccounts(t *testing.T) {
	cfg := GetDefaultConfig()
	mint := solana.NewWallet().PublicKey()

	first, err := DerivePoolAccounts(cfg, mint)
	require.NoError(t, err)
	second, err := DerivePoolAccounts(cfg, mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := DerivePoolAccounts(cfg, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, first.PoolState, other.PoolState)
	assert.NotEqual(t, first.BaseVault, other.BaseVault)
	// authority and event authority do not depend on the mint
	assert.Equal(t, first.Authority, other.Authority)
	assert.Equal(t, first.EventAuthority, other.EventAuthority)

	metadata, _, err := solana.FindTokenMetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, metadata, first.Metadata)

	assert.NotEqual(t, first.BaseVault, first.QuoteVault)
	assert.Len(t, first.Map(), 6)
}

func TestBuildInitializeInstruction(t *testing.T) {
	cfg := GetDefaultConfig()
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	accounts, err := DerivePoolAccounts(cfg, mint)
	require.NoError(t, err)

	params := DefaultLaunchParams("Bonk Dog", "BDOG", "https://ipfs.example/meta")
	ix, err := BuildInitializeInstruction(accounts, payer, params)
	require.NoError(t, err)
	assert.Equal(t, LaunchLabProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)

	off := 0
	assert.Equal(t, InitializeDiscriminator, data[off:off+8])
	off += 8
	assert.Equal(t, DefaultDecimals, data[off])
	off++
	for _, want := range []string{params.Name, params.Symbol, params.URI} {
		n := int(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		assert.Equal(t, want, string(data[off:off+n]))
		off += n
	}
	assert.Equal(t, byte(0), data[off], "curve variant")
	off++
	for _, want := range []uint64{DefaultSupply, DefaultTotalBaseSell, DefaultTotalQuoteFundRaising} {
		assert.Equal(t, want, binary.LittleEndian.Uint64(data[off:off+8]))
		off += 8
	}
	assert.Equal(t, byte(0), data[off], "migrate type")
	off++
	assert.Equal(t, make([]byte, 24), data[off:off+24], "vesting")
	off += 24
	assert.Equal(t, len(data), off)

	metas := ix.Accounts()
	require.Len(t, metas, 18)
	assert.Equal(t, payer, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.True(t, metas[0].IsWritable)
	assert.Equal(t, payer, metas[1].PublicKey)
	assert.True(t, metas[1].IsSigner)
	assert.Equal(t, GlobalConfigID, metas[2].PublicKey)
	assert.Equal(t, PlatformConfigID, metas[3].PublicKey)
	assert.Equal(t, accounts.Authority, metas[4].PublicKey)
	assert.Equal(t, accounts.PoolState, metas[5].PublicKey)
	assert.True(t, metas[5].IsWritable)
	assert.Equal(t, mint, metas[6].PublicKey)
	assert.True(t, metas[6].IsSigner)
	assert.True(t, metas[6].IsWritable)
	assert.Equal(t, spltoken.WrappedSOLMint, metas[7].PublicKey)
	assert.Equal(t, accounts.Metadata, metas[10].PublicKey)
	assert.Equal(t, MetadataProgramID, metas[13].PublicKey)
	assert.Equal(t, accounts.EventAuthority, metas[16].PublicKey)
	assert.Equal(t, LaunchLabProgramID, metas[17].PublicKey)
}

func TestBuildInitializeInstruction_InvalidParams(t *testing.T) {
	accounts, err := DerivePoolAccounts(GetDefaultConfig(), solana.NewWallet().PublicKey())
	require.NoError(t, err)

	tests := map[string]LaunchParams{
		"empty name":      DefaultLaunchParams("", "S", "https://u"),
		"long symbol":     DefaultLaunchParams("N", "SYMBOLTOOLONG", "https://u"),
		"empty uri":       DefaultLaunchParams("N", "S", ""),
		"sell over total": func() LaunchParams { p := DefaultLaunchParams("N", "S", "https://u"); p.TotalBaseSell = p.Supply + 1; return p }(),
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := BuildInitializeInstruction(accounts, solana.NewWallet().PublicKey(), params)
			assert.ErrorIs(t, err, ErrInvalidLaunchParams)
		})
	}
}

func TestBuildBuyExactInInstruction(t *testing.T) {
	accounts, err := DerivePoolAccounts(GetDefaultConfig(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	payer := solana.NewWallet().PublicKey()
	base := solana.NewWallet().PublicKey()
	quote := solana.NewWallet().PublicKey()

	ix, err := BuildBuyExactInInstruction(accounts, payer, base, quote, 50_000_000, 1234)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+24)
	assert.Equal(t, BuyExactInDiscriminator, data[:8])
	assert.Equal(t, uint64(50_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[24:32]))

	metas := ix.Accounts()
	require.Len(t, metas, 15)
	assert.Equal(t, payer, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, accounts.PoolState, metas[4].PublicKey)
	assert.Equal(t, base, metas[5].PublicKey)
	assert.True(t, metas[5].IsWritable)
	assert.Equal(t, quote, metas[6].PublicKey)
	assert.True(t, metas[6].IsWritable)
	assert.Equal(t, accounts.BaseMint, metas[9].PublicKey)
	assert.Equal(t, accounts.QuoteMint, metas[10].PublicKey)
	assert.Equal(t, LaunchLabProgramID, metas[14].PublicKey)
	for i, m := range metas[1:] {
		assert.False(t, m.IsSigner, "account %d", i+1)
	}
}

func TestLaunch(t *testing.T) {
	dex, _, sender := newTestDEX(t)
	payer := mustWallet(t)
	mint := mustWallet(t)
	sig := solana.Signature{1, 2, 3}

	sender.On("Send", mock.Anything, mock.MatchedBy(func(tx *solana.Transaction) bool {
		return len(tx.Signatures) == 2 && tx.VerifySignatures() == nil
	}), transaction.SendOptions{SkipPreflight: true, WaitForConfirmation: true}).Return(sig, nil)

	res, err := dex.Launch(context.Background(), payer, mint, DefaultLaunchParams("Bonk Dog", "BDOG", "https://ipfs.example/m"))
	require.NoError(t, err)

	assert.Equal(t, sig, res.Signature)
	assert.Equal(t, mint.PublicKey, res.Mint)
	expectedATA, err := spltoken.AssociatedAccount(payer.PublicKey, mint.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, expectedATA, res.BaseTokenAccount)
	sender.AssertExpectations(t)
}

func TestLaunch_SendFailure(t *testing.T) {
	dex, _, sender := newTestDEX(t)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{}, transaction.ErrSubmissionFailed)

	_, err := dex.Launch(context.Background(), mustWallet(t), mustWallet(t), DefaultLaunchParams("N", "S", "https://u"))
	assert.ErrorIs(t, err, transaction.ErrSubmissionFailed)
}

func TestCreateBuyTx(t *testing.T) {
	tests := []struct {
		name          string
		accountInfo   *rpc.GetAccountInfoResult
		accountErr    error
		expectedIxs   int
		expectedError bool
	}{
		{
			name:        "ATA missing",
			accountErr:  fmt.Errorf("%w: x", solbc.ErrAccountNotFound),
			expectedIxs: 2 + 1 + 2 + 1 + 1,
		},
		{
			name:        "ATA exists",
			accountInfo: &rpc.GetAccountInfoResult{Value: &rpc.Account{}},
			expectedIxs: 2 + 2 + 1 + 1,
		},
		{
			name:          "RPC failure",
			accountErr:    errors.New("node down"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dex, client, _ := newTestDEX(t)
			payer := mustWallet(t)
			mint := solana.NewWallet().PublicKey()
			client.On("GetAccountInfo", mock.Anything, mock.Anything).Return(tt.accountInfo, tt.accountErr)

			buy, err := dex.CreateBuyTx(context.Background(), payer, mint, 0.05, 0)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Len(t, buy.Tx.Message.Instructions, tt.expectedIxs)
			assert.Equal(t, uint64(50_000_000), buy.AmountIn)
			assert.Equal(t, uint64(2_039_280+50_000_000), buy.WSOLAccount.Lamports)
			// payer and the temporary WSOL account sign
			assert.Len(t, buy.Tx.Signatures, 2)
			require.NoError(t, buy.Tx.VerifySignatures())

			last := buy.Tx.Message.Instructions[len(buy.Tx.Message.Instructions)-1]
			program, err := buy.Tx.ResolveProgramIDIndex(last.ProgramIDIndex)
			require.NoError(t, err)
			assert.Equal(t, spltoken.TokenProgramID, program, "WSOL account is closed last")
		})
	}
}

func TestInitialBuy_Retries(t *testing.T) {
	t.Run("fails after all attempts", func(t *testing.T) {
		dex, client, sender := newTestDEX(t)
		client.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
			Return(solana.Signature{}, transaction.ErrSubmissionFailed)

		_, err := dex.InitialBuy(context.Background(), mustWallet(t), solana.NewWallet().PublicKey(), 0.05)
		assert.ErrorIs(t, err, ErrBuyFailed)
		assert.ErrorIs(t, err, transaction.ErrSubmissionFailed)
		sender.AssertNumberOfCalls(t, "Send", 3)
	})

	t.Run("succeeds on second attempt", func(t *testing.T) {
		dex, client, sender := newTestDEX(t)
		want := solana.Signature{8}
		client.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
			Return(solana.Signature{}, errors.New("blockhash not found")).Once()
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(want, nil).Once()

		sig, err := dex.InitialBuy(context.Background(), mustWallet(t), solana.NewWallet().PublicKey(), 0.05)
		require.NoError(t, err)
		assert.Equal(t, want, sig)
		sender.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("context cancelled between attempts", func(t *testing.T) {
		dex, client, sender := newTestDEX(t)
		dex.config.BuyRetryUnit = time.Hour
		client.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)

		ctx, cancel := context.WithCancel(context.Background())
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(solana.Signature{}, transaction.ErrSubmissionFailed)

		_, err := dex.InitialBuy(ctx, mustWallet(t), solana.NewWallet().PublicKey(), 0.05)
		assert.ErrorIs(t, err, context.Canceled)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("linear wait between attempts only", func(t *testing.T) {
		const unit = 50 * time.Millisecond
		dex, client, sender := newTestDEX(t)
		dex.config.BuyRetryUnit = unit
		client.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)

		var calls []time.Time
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, time.Now()) }).
			Return(solana.Signature{}, transaction.ErrSubmissionFailed)

		_, err := dex.InitialBuy(context.Background(), mustWallet(t), solana.NewWallet().PublicKey(), 0.05)
		returned := time.Now()

		assert.ErrorIs(t, err, ErrBuyFailed)
		require.Len(t, calls, 3)
		// (1+attempt) units after attempts 1 and 2
		assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), 2*unit)
		assert.GreaterOrEqual(t, calls[2].Sub(calls[1]), 3*unit)
		// no wait after the last attempt
		assert.Less(t, returned.Sub(calls[2]), 2*unit)
	})
}

func TestEstimateTokensOut(t *testing.T) {
	assert.Zero(t, EstimateTokensOut(0, DefaultPreviousSOL))
	assert.Zero(t, EstimateTokensOut(1, 0))

	small := EstimateTokensOut(0.05, DefaultPreviousSOL)
	large := EstimateTokensOut(1, DefaultPreviousSOL)
	assert.Greater(t, small, 0.0)
	assert.Greater(t, large, small)

	// K/30 - K/31 in whole tokens
	assert.InDelta(t, 32_190_005_730.0/30-32_190_005_730.0/31, large, 1)

	// later buys on the same curve receive fewer tokens
	assert.Less(t, EstimateTokensOut(1, 60), large)

	assert.InDelta(t, 1.05, MaxSOLCost(1, 5), 1e-12)
}

func TestMinAmountOut(t *testing.T) {
	assert.Equal(t, uint64(0), MinAmountOut(0.05, DefaultPreviousSOL, DefaultDecimals, types.SlippageConfig{Type: types.SlippageNone}))
	assert.Equal(t, uint64(777), MinAmountOut(0.05, DefaultPreviousSOL, DefaultDecimals, types.SlippageConfig{Type: types.SlippageFixed, Value: 777}))

	expected := EstimateTokensOut(0.05, DefaultPreviousSOL) * 1e6
	got := MinAmountOut(0.05, DefaultPreviousSOL, DefaultDecimals, types.SlippageConfig{Type: types.SlippagePercent, Value: 10})
	assert.InDelta(t, expected*0.9, float64(got), 1)
}
