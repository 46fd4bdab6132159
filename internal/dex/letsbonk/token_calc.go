// =============================
// File: internal/dex/letsbonk/token_calc.go
// =============================
package letsbonk

import (
	"math"

	"github.com/rovshanmuradov/bonk-launcher/internal/types"
)

// Constant-product curve parameters of a fresh letsbonk pool, in base units (6 decimals).
const (
	curveInitialTokens = 1_073_000_191e6
	curveK             = 32_190_005_730e6
	tokenUnit          = 1e6

	// DefaultPreviousSOL is the SOL assumed already raised when estimating a buy.
	DefaultPreviousSOL = 30.0
)

// EstimateTokensOut estimates the whole tokens received for solAmount SOL when
// previousSOL has already been raised on the curve. Both amounts are in whole SOL.
//
// The curve is tokens(sol) = initial - K/sol. Lamport conversion is not needed
// because K is expressed per whole SOL.
func EstimateTokensOut(solAmount, previousSOL float64) float64 {
	if solAmount <= 0 || previousSOL <= 0 {
		return 0
	}
	current := curveInitialTokens - curveK/previousSOL
	next := curveInitialTokens - curveK/(previousSOL+solAmount)
	return (next - current) / tokenUnit
}

// MaxSOLCost returns the SOL ceiling for a buy with slippagePercent tolerance.
func MaxSOLCost(solAmount, slippagePercent float64) float64 {
	return solAmount * (1 + slippagePercent/100)
}

// MinAmountOut converts the slippage policy into the buy_exact_in minimum, in base units.
func MinAmountOut(solAmount, previousSOL float64, decimals uint8, slippage types.SlippageConfig) uint64 {
	expected := EstimateTokensOut(solAmount, previousSOL) * math.Pow10(int(decimals))
	return types.CalculateMinAmountOut(expected, slippage)
}
