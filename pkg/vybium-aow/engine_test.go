package vybiumaow

import (
	"context"
	"math"
	"math/big"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
)

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Field.Modulus = "1000003"
	cfg.Field.Alpha = "5"
	cfg.Temporal.MaxIterations = "100"
	cfg.Chain.Iterations = 20
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(smallConfig())
	require.NoError(t, err)
	return e
}

func TestNewEngineDefault(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 256, e.Field().Modulus().BitLen())
	assert.Equal(t, int64(5), e.Alpha().Int64())
	assert.Equal(t, 128, e.Parameters().SecurityParam)
	assert.Equal(t, uint64(1000), e.ChainIterations())
}

func TestNewEngineInvalid(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, &AOWError{Code: ErrInvalidConfig})

	cfg := DefaultConfig()
	cfg.Field.SecurityLevel = 64
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, &AOWError{Code: ErrInvalidConfig})

	cfg = DefaultConfig()
	cfg.Proof.Backend = proofs.BackendSTARK
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, proofs.ErrBackendUnavailable)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Field.SecurityLevel)
}

func TestNewField(t *testing.T) {
	f, err := NewField("1000003")
	require.NoError(t, err)
	assert.Equal(t, int64(1000003), f.Modulus().Int64())

	_, err = NewField("2")
	assert.ErrorIs(t, err, &AOWError{Code: ErrFieldCreation})

	_, err = NewField("not a number")
	assert.ErrorIs(t, err, &AOWError{Code: ErrFieldCreation})
}

func TestEngineIterateAndVerify(t *testing.T) {
	e := newTestEngine(t)

	x, err := e.Element("123")
	require.NoError(t, err)

	y := e.Iterate(x, 10)
	assert.Equal(t, int64(982599), y.Big().Int64())
	assert.True(t, e.Verify(x, y, 10))
	assert.False(t, e.Verify(x, y, 11))

	far := e.Iterate(x, 200)
	assert.False(t, e.Verify(x, far, 200), "above max iterations")

	trace := e.Trace(x, 10)
	assert.Equal(t, 11, trace.Len())
	assert.True(t, trace.Last().Equal(y))

	_, err = e.Element("12x")
	assert.ErrorIs(t, err, &AOWError{Code: ErrInvalidInput})
}

func TestEngineIterateContext(t *testing.T) {
	e := newTestEngine(t)
	x, err := e.Element("7")
	require.NoError(t, err)

	y, err := e.IterateContext(context.Background(), x, 30)
	require.NoError(t, err)
	assert.True(t, y.Equal(e.Iterate(x, 30)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.IterateContext(ctx, x, 1<<16)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, &AOWError{Code: ErrIteration})
}

func TestEngineProbability(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 1.0, e.DepthUniquenessProbability(3, 3))
	assert.InDelta(t, 8.0/1000003, e.DepthUniquenessProbability(12, 10), 1e-15)
	assert.Greater(t, e.DepthUniquenessProbability(0, 40), 1.0)
	assert.False(t, math.IsNaN(e.DepthUniquenessProbability(0, 40)))
}

func TestEngineChain(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.CreateChain(context.Background(), [][]byte{[]byte("a"), []byte("b"), []byte("c")}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.VerifyChain())
	assert.True(t, c.VerifyChainStrict())

	for _, ev := range c.Events() {
		assert.Equal(t, e.ChainIterations(), ev.Iterations)
	}

	ordering := c.Ordering()
	for _, claim := range ordering.TemporalProofs {
		assert.True(t, e.Verify(claim.Input, claim.Output, claim.Iterations))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.CreateChain(ctx, [][]byte{[]byte("a")}, nil)
	assert.ErrorIs(t, err, &AOWError{Code: ErrChain})
}

func TestEngineProve(t *testing.T) {
	e := newTestEngine(t)
	x, err := e.Element("123")
	require.NoError(t, err)

	claim, err := e.Prove(x, 10)
	require.NoError(t, err)
	require.NotNil(t, claim.Proof)
	assert.Equal(t, int64(982599), claim.Output.Big().Int64())

	ok, err := e.CheckProof(claim)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = e.Prove(x, 101)
	assert.ErrorIs(t, err, &AOWError{Code: ErrProofGeneration})
}

type rejectingSystem struct{}

func (rejectingSystem) Generate(x *core.FieldElement, alpha *big.Int, n uint64, f *core.Field, p proofs.Parameters) (*proofs.Proof, *proofs.PublicInputs, error) {
	return proofs.NewSimulated().Generate(x, alpha, n, f, p)
}

func (rejectingSystem) Check(*proofs.Proof, *proofs.PublicInputs, *core.Field, proofs.Parameters) (bool, error) {
	return false, nil
}

func TestEngineWithProofSystem(t *testing.T) {
	e := newTestEngine(t).WithProofSystem(rejectingSystem{})
	x, err := e.Element("5")
	require.NoError(t, err)

	claim, err := e.Prove(x, 4)
	require.NoError(t, err)

	ok, err := e.CheckProof(claim)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore("file:pkgdb1?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	e := newTestEngine(t)
	c, err := e.CreateChain(context.Background(), [][]byte{[]byte("a")}, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	ctx := context.Background()
	id, err := s.SaveChain(ctx, c)
	require.NoError(t, err)

	loaded, err := s.LoadChain(ctx, id, e.Field())
	require.NoError(t, err)
	assert.True(t, loaded.VerifyChainStrict())
}

func TestEngineRestoreChain(t *testing.T) {
	e := newTestEngine(t)
	c, err := e.CreateChain(context.Background(), [][]byte{[]byte("a"), []byte("b"), []byte("c")}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	restored := e.RestoreChain(c.Genesis(), c.Events())
	assert.True(t, restored.VerifyChainStrict())

	swapped := c.Events()
	swapped[1], swapped[2] = swapped[2], swapped[1]
	swapped[1].Timestamp, swapped[2].Timestamp = 1, 2
	assert.False(t, e.RestoreChain(c.Genesis(), swapped).VerifyChain())
}

func TestEngineProveTraceLimit(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	x, err := e.Element("1")
	require.NoError(t, err)

	_, err = e.Prove(x, 1<<40)
	assert.ErrorIs(t, err, &AOWError{Code: ErrProofGeneration})
	assert.ErrorIs(t, err, proofs.ErrTraceTooLong)
}

func TestEngineWithNilProofSystem(t *testing.T) {
	e := newTestEngine(t).WithProofSystem(nil)
	x, err := e.Element("5")
	require.NoError(t, err)

	claim, err := e.Prove(x, 4)
	require.NoError(t, err, "nil keeps the configured backend")

	ok, err := e.CheckProof(claim)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenStoreError(t *testing.T) {
	_, err := OpenStore(t.TempDir() + "/missing/chains.db")
	require.Error(t, err)
	assert.ErrorIs(t, err, &AOWError{Code: ErrStorage})
}
