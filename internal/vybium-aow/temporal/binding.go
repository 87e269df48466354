// Package temporal verifies temporal binding claims: that an output is
// reachable from an input after exactly n applications of the quadratic map.
package temporal

import (
	"math"
	"math/big"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
)

// Parameters bound temporal binding verification.
type Parameters struct {
	FieldSize     *big.Int
	Alpha         *big.Int
	MaxIterations *big.Int
	SecurityParam int
}

// NewParameters creates parameters with the default security level
func NewParameters(fieldSize, alpha, maxIterations *big.Int) Parameters {
	return Parameters{
		FieldSize:     new(big.Int).Set(fieldSize),
		Alpha:         new(big.Int).Set(alpha),
		MaxIterations: new(big.Int).Set(maxIterations),
		SecurityParam: iteration.DefaultSecurityParam,
	}
}

// exceeds reports whether n is beyond the configured bound
func (p Parameters) exceeds(n uint64) bool {
	if p.MaxIterations == nil {
		return true
	}
	return new(big.Int).SetUint64(n).Cmp(p.MaxIterations) > 0
}

// maxExactDiff bounds the step gap evaluated exactly. Beyond it the estimate
// is +Inf for any field with fewer than about 2^20 bits.
const maxExactDiff = 1 << 20

// Verify reports whether y == f^(n)(x). It fails closed: an n above
// MaxIterations is rejected without computing anything. Otherwise the map
// is recomputed in full, so cost grows linearly with n.
func Verify(x, y *core.FieldElement, n uint64, params Parameters, field *core.Field) bool {
	if params.exceeds(n) {
		return false
	}
	if x == nil || y == nil {
		return false
	}
	computed := iteration.Iterate(x, params.Alpha, n, field)
	return computed.Equal(y)
}

// DepthUniquenessProbability returns the upper-bound estimate
// |n-m| · 2^|n-m| / FieldSize for f^(n)(x) == f^(m)(x) at random x, and 1.0
// when n == m. The estimate is not clamped: it exceeds 1 once 2^|n-m|
// outgrows the field, and is +Inf when the numerator overflows float64.
// Use ClampProbability to read it as a probability.
func DepthUniquenessProbability(n, m uint64, params Parameters) float64 {
	if n == m {
		return 1.0
	}

	diff := n - m
	if m > n {
		diff = m - n
	}
	if params.FieldSize == nil || params.FieldSize.Sign() <= 0 {
		return math.Inf(1)
	}
	if diff > maxExactDiff {
		return math.Inf(1)
	}

	// diff · 2^diff, exact in big.Float for any diff that fits an exponent
	numerator := new(big.Float).SetMantExp(new(big.Float).SetUint64(diff), int(diff))
	denominator := new(big.Float).SetInt(params.FieldSize)
	ratio, _ := new(big.Float).Quo(numerator, denominator).Float64()
	return ratio
}

// ClampProbability limits an estimate to [0, 1]
func ClampProbability(p float64) float64 {
	if p > 1 || math.IsInf(p, 1) {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
