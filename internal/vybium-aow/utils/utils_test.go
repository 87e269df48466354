package utils

import (
	"crypto/sha256"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
)

func TestRecommendedParameters(t *testing.T) {
	tests := []struct {
		level     int
		fieldBits int
		iterBits  uint
	}{
		{128, 256, 64},
		{192, 384, 96},
		{256, 512, 128},
	}

	for _, tt := range tests {
		params, err := RecommendedParameters(tt.level)
		require.NoError(t, err, "level %d", tt.level)

		assert.Equal(t, tt.level, params.Level)
		assert.Equal(t, tt.fieldBits, params.FieldSize.BitLen())
		assert.True(t, params.FieldSize.ProbablyPrime(20), "field size for %d must be prime", tt.level)
		assert.Equal(t, int64(3), new(big.Int).Mod(params.FieldSize, big.NewInt(4)).Int64())
		assert.Equal(t, 0, params.MaxIterations.Cmp(new(big.Int).Lsh(big.NewInt(1), tt.iterBits)))

		f, err := core.NewField(params.FieldSize)
		require.NoError(t, err)
		assert.False(t, f.NewElement(params.Alpha).IsQuadraticResidue(), "alpha must be a non-residue at level %d", tt.level)
	}
}

func TestRecommendedParametersUnsupported(t *testing.T) {
	for _, level := range []int{0, 64, 127, 512} {
		_, err := RecommendedParameters(level)
		assert.ErrorIs(t, err, ErrUnsupportedSecurityLevel)
	}
}

func TestHashToField(t *testing.T) {
	f, err := core.NewFieldFromUint64(1000003)
	require.NoError(t, err)

	data := []byte("event payload")
	e, err := HashToField(data, f, "")
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	want := new(big.Int).SetBytes(sum[:])
	want.Mod(want, big.NewInt(1000003))
	assert.Equal(t, 0, e.Big().Cmp(want))

	e2, err := HashToField(data, f, HashSHA256)
	require.NoError(t, err)
	assert.True(t, e.Equal(e2))

	e3, err := HashToField(data, f, HashSHA3)
	require.NoError(t, err)
	assert.True(t, e3.Big().Cmp(f.Modulus()) < 0)

	_, err = HashToField(data, f, "md5")
	assert.Error(t, err)
}

func TestGenerateQuadraticNonResidue(t *testing.T) {
	f, err := core.NewFieldFromUint64(1000003)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 20; i++ {
		e, err := GenerateQuadraticNonResidue(f, rng)
		require.NoError(t, err)
		assert.False(t, e.IsQuadraticResidue())
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerateQuadraticNonResidueBrokenSource(t *testing.T) {
	f, err := core.NewFieldFromUint64(1000003)
	require.NoError(t, err)

	_, err = GenerateQuadraticNonResidue(f, zeroReader{})
	assert.Error(t, err)
}
