package tip

import (
	"fmt"
	"math"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// ToLamports converts a SOL amount to lamports, rounding to the nearest
// lamport. Negative and non-finite inputs are rejected with ErrInvalidAmount.
func ToLamports(sol float64) (uint64, error) {
	if math.IsNaN(sol) || math.IsInf(sol, 0) {
		return 0, fmt.Errorf("%w: amount must be finite", ErrInvalidAmount)
	}
	if sol < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative, got %v", ErrInvalidAmount, sol)
	}
	return uint64(math.Round(sol * LamportsPerSOL)), nil
}

// ToSOL converts lamports to a SOL amount.
func ToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}
