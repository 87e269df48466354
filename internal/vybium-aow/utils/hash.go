package utils

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
)

// maxNonResidueAttempts bounds the random search in GenerateQuadraticNonResidue.
// Half of all non-zero elements are non-residues, so failing this many draws
// means the source of randomness is broken.
const maxNonResidueAttempts = 256

// HashToField hashes data and reduces the digest modulo the field size.
// hashFunc is HashSHA256 (the default when empty) or HashSHA3.
func HashToField(data []byte, f *core.Field, hashFunc string) (*core.FieldElement, error) {
	var sum []byte
	switch hashFunc {
	case "", HashSHA256:
		h := sha256.Sum256(data)
		sum = h[:]
	case HashSHA3:
		h := sha3.Sum256(data)
		sum = h[:]
	default:
		return nil, fmt.Errorf("unsupported hash function %q", hashFunc)
	}
	return f.ElementFromBytes(sum), nil
}

// GenerateQuadraticNonResidue draws random elements from rng until one fails
// Euler's criterion.
func GenerateQuadraticNonResidue(f *core.Field, rng io.Reader) (*core.FieldElement, error) {
	for i := 0; i < maxNonResidueAttempts; i++ {
		e, err := f.RandomElement(rng)
		if err != nil {
			return nil, err
		}
		if !e.IsQuadraticResidue() {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no quadratic non-residue found in %d attempts", maxNonResidueAttempts)
}
