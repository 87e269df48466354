package vybiumaow

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/vybium/vybium-aow/internal/vybium-aow/chain"
	"github.com/vybium/vybium-aow/internal/vybium-aow/config"
	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
	"github.com/vybium/vybium-aow/internal/vybium-aow/store"
	"github.com/vybium/vybium-aow/internal/vybium-aow/temporal"
)

// Engine bundles a field, the map constant and verification bounds
type Engine struct {
	field           *core.Field
	qm              *iteration.QuadraticMap
	params          temporal.Parameters
	chainIterations uint64
	prover          proofs.System
	proofParams     proofs.Parameters
}

// DefaultConfig returns the default configuration: 128-bit security,
// simulated proofs, 1000 iterations per chain event.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML file and AOW_ environment overrides
func LoadConfig(path string) (*Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "failed to load configuration", err)
	}
	return cfg, nil
}

// NewField creates a prime field from a decimal modulus
func NewField(modulus string) (*Field, error) {
	f, err := core.NewFieldFromString(modulus)
	if err != nil {
		return nil, newError(ErrFieldCreation, "failed to create field", err)
	}
	return f, nil
}

// NewEngine creates an engine from cfg
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, newError(ErrInvalidConfig, "configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid configuration", err)
	}

	sec, err := cfg.Security()
	if err != nil {
		return nil, newError(ErrInvalidConfig, "invalid security parameters", err)
	}
	field, err := core.NewField(sec.FieldSize)
	if err != nil {
		return nil, newError(ErrFieldCreation, "failed to create field", err)
	}
	prover, err := proofs.New(cfg.Proof.Backend)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "invalid proof backend", err)
	}

	params := temporal.NewParameters(sec.FieldSize, sec.Alpha, sec.MaxIterations)
	params.SecurityParam = sec.Level

	return &Engine{
		field:           field,
		qm:              iteration.NewQuadraticMap(field, sec.Alpha),
		params:          params,
		chainIterations: cfg.Chain.Iterations,
		prover:          prover,
		proofParams:     cfg.ProofParameters(),
	}, nil
}

// WithProofSystem replaces the proof backend. A nil sys is ignored.
func (e *Engine) WithProofSystem(sys ProofSystem) *Engine {
	if sys != nil {
		e.prover = sys
	}
	return e
}

// Field returns the engine's field
func (e *Engine) Field() *Field {
	return e.field
}

// Alpha returns the map constant
func (e *Engine) Alpha() *big.Int {
	return e.qm.Alpha()
}

// Parameters returns the temporal verification parameters
func (e *Engine) Parameters() TemporalParameters {
	return e.params
}

// ChainIterations returns the per-event work used by AddEvent callers
func (e *Engine) ChainIterations() uint64 {
	return e.chainIterations
}

// Element parses a decimal value into the field
func (e *Engine) Element(value string) (*FieldElement, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, newError(ErrInvalidInput, "invalid field element: "+value, nil)
	}
	return e.field.NewElement(v), nil
}

// Iterate computes f^(n)(x)
func (e *Engine) Iterate(x *FieldElement, n uint64) *FieldElement {
	return e.qm.Iterate(x, n)
}

// IterateContext computes f^(n)(x) unless ctx is cancelled first
func (e *Engine) IterateContext(ctx context.Context, x *FieldElement, n uint64) (*FieldElement, error) {
	y, err := e.qm.IterateContext(ctx, x, n)
	if err != nil {
		return nil, newError(ErrIteration, "iteration interrupted", err)
	}
	return y, nil
}

// Trace returns every intermediate value of f^(n)(x)
func (e *Engine) Trace(x *FieldElement, n uint64) IterationTrace {
	return e.qm.Trace(x, n)
}

// Verify reports whether y = f^(n)(x), rejecting n above the maximum
func (e *Engine) Verify(x, y *FieldElement, n uint64) bool {
	return temporal.Verify(x, y, n, e.params, e.field)
}

// DepthUniquenessProbability estimates the chance that depths n and m
// collide. The value is not clamped to 1.
func (e *Engine) DepthUniquenessProbability(n, m uint64) float64 {
	return temporal.DepthUniquenessProbability(n, m, e.params)
}

// NewChain creates an empty chain with genesis drawn from rng (crypto/rand
// when nil).
func (e *Engine) NewChain(rng io.Reader) (*EventChain, error) {
	c, err := chain.New(e.field, e.qm.Alpha(), rng)
	if err != nil {
		return nil, newError(ErrChain, "failed to create chain", err)
	}
	return c, nil
}

// CreateChain builds a chain from events using the configured iterations
func (e *Engine) CreateChain(ctx context.Context, events [][]byte, rng io.Reader) (*EventChain, error) {
	c, err := e.NewChain(rng)
	if err != nil {
		return nil, err
	}
	for i, data := range events {
		if _, err := c.AddEventContext(ctx, data, e.chainIterations); err != nil {
			return nil, newError(ErrChain, "failed to add event", fmt.Errorf("event %d: %w", i, err))
		}
	}
	return c, nil
}

// RestoreChain rebuilds a chain from stored events without verifying them
func (e *Engine) RestoreChain(genesis *FieldElement, events []Event) *EventChain {
	return chain.Restore(e.field, e.qm.Alpha(), genesis, events)
}

// Prove computes f^(n)(x) and attaches a proof from the configured backend
func (e *Engine) Prove(x *FieldElement, n uint64) (Claim, error) {
	claim, err := temporal.ProveClaim(x, n, e.params, e.field, e.prover, e.proofParams)
	if err != nil {
		return Claim{}, newError(ErrProofGeneration, "failed to prove claim", err)
	}
	return claim, nil
}

// CheckProof asks the proof backend whether the claim's proof holds
func (e *Engine) CheckProof(claim Claim) (bool, error) {
	ok, err := temporal.CheckClaimProof(claim, e.params, e.field, e.prover, e.proofParams)
	if err != nil {
		return false, newError(ErrProofVerification, "failed to check proof", err)
	}
	return ok, nil
}

// OpenStore opens the SQLite chain store at dsn
func OpenStore(dsn string) (*Store, error) {
	s, err := store.New(dsn)
	if err != nil {
		return nil, newError(ErrStorage, "failed to open store", err)
	}
	return s, nil
}
