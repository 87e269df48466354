// Package iteration implements the iterated quadratic map f(x) = x² + α over
// a prime field. The map is the sequential step function underneath temporal
// binding and event chaining: it is cheap to apply once and has no shortcut
// for applying it n times.
package iteration

import (
	"context"
	"math/big"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
)

// DefaultSecurityParam is the security level, in bits, assumed when a
// parameter record does not name one.
const DefaultSecurityParam = 128

// CancelCheckInterval is how many steps IterateContext runs between checks
// of its context.
const CancelCheckInterval = 1 << 12

// AIIPParameters describes one run of the affine iterated inversion problem.
type AIIPParameters struct {
	FieldSize     *big.Int
	Alpha         *big.Int
	Iterations    uint64
	SecurityParam int
}

// NewAIIPParameters creates parameters with the default security level
func NewAIIPParameters(fieldSize, alpha *big.Int, iterations uint64) AIIPParameters {
	return AIIPParameters{
		FieldSize:     new(big.Int).Set(fieldSize),
		Alpha:         new(big.Int).Set(alpha),
		Iterations:    iterations,
		SecurityParam: DefaultSecurityParam,
	}
}

// QuadraticMap is the step function f(x) = x² + α (mod p).
type QuadraticMap struct {
	field   *core.Field
	alpha   *big.Int
	modulus *big.Int
}

// NewQuadraticMap binds α to a field. α is reduced modulo p.
func NewQuadraticMap(field *core.Field, alpha *big.Int) *QuadraticMap {
	modulus := field.Modulus()
	return &QuadraticMap{
		field:   field,
		alpha:   new(big.Int).Mod(alpha, modulus),
		modulus: modulus,
	}
}

// Field returns the field the map operates over
func (m *QuadraticMap) Field() *core.Field {
	return m.field
}

// Alpha returns the reduced additive constant
func (m *QuadraticMap) Alpha() *big.Int {
	return new(big.Int).Set(m.alpha)
}

// Evaluate applies the step function once
func (m *QuadraticMap) Evaluate(x *core.FieldElement) *core.FieldElement {
	v := x.Big()
	m.step(v)
	return m.field.NewElement(v)
}

// Iterate applies the step function n times. n = 0 returns seed unchanged.
func (m *QuadraticMap) Iterate(seed *core.FieldElement, n uint64) *core.FieldElement {
	v := m.field.NewElement(seed.Big()).Big()
	for i := uint64(0); i < n; i++ {
		m.step(v)
	}
	return m.field.NewElement(v)
}

// IterateContext is Iterate with a cooperative cancellation point every
// CancelCheckInterval steps. On cancellation it returns the context error
// and no partial result.
func (m *QuadraticMap) IterateContext(ctx context.Context, seed *core.FieldElement, n uint64) (*core.FieldElement, error) {
	v := m.field.NewElement(seed.Big()).Big()
	for i := uint64(0); i < n; i++ {
		if i%CancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		m.step(v)
	}
	return m.field.NewElement(v), nil
}

// Trace applies the step function n times and keeps every intermediate
// value, seed included.
func (m *QuadraticMap) Trace(seed *core.FieldElement, n uint64) IterationTrace {
	trace := make(IterationTrace, 0, n+1)
	current := m.field.NewElement(seed.Big())
	trace = append(trace, current)
	for i := uint64(0); i < n; i++ {
		current = m.Evaluate(current)
		trace = append(trace, current)
	}
	return trace
}

// step computes v <- v² + α mod p in place.
func (m *QuadraticMap) step(v *big.Int) {
	v.Mul(v, v)
	v.Add(v, m.alpha)
	v.Mod(v, m.modulus)
}

// Iterate computes f^(n)(seed) for f(x) = x² + α over field.
func Iterate(seed *core.FieldElement, alpha *big.Int, n uint64, field *core.Field) *core.FieldElement {
	return NewQuadraticMap(field, alpha).Iterate(seed, n)
}

// IterateContext is the cancellable form of Iterate.
func IterateContext(ctx context.Context, seed *core.FieldElement, alpha *big.Int, n uint64, field *core.Field) (*core.FieldElement, error) {
	return NewQuadraticMap(field, alpha).IterateContext(ctx, seed, n)
}

// Trace computes [seed, f(seed), ..., f^(n)(seed)].
func Trace(seed *core.FieldElement, alpha *big.Int, n uint64, field *core.Field) IterationTrace {
	return NewQuadraticMap(field, alpha).Trace(seed, n)
}
