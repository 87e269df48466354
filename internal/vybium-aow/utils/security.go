package utils

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrUnsupportedSecurityLevel is returned for levels other than 128, 192 and 256
var ErrUnsupportedSecurityLevel = errors.New("unsupported security level")

// SecurityParameters are the recommended settings for one security level
type SecurityParameters struct {
	// Level in bits
	Level int

	// FieldSize is the largest prime below 2^(2·Level); each is 3 mod 4
	FieldSize *big.Int

	// MaxIterations is 2^(Level/2)
	MaxIterations *big.Int

	// Alpha is the smallest quadratic non-residue >= 5 in the field
	Alpha *big.Int
}

// RecommendedParameters returns the parameter set for a security level.
// Unknown levels fail fast instead of degrading to a default.
func RecommendedParameters(level int) (*SecurityParameters, error) {
	var (
		fieldBits, fieldOffset int64
		alpha                  int64
	)

	switch level {
	case 128:
		fieldBits, fieldOffset, alpha = 256, 189, 5
	case 192:
		fieldBits, fieldOffset, alpha = 384, 317, 6
	case 256:
		fieldBits, fieldOffset, alpha = 512, 569, 5
	default:
		return nil, fmt.Errorf("%w: %d (want 128, 192 or 256)", ErrUnsupportedSecurityLevel, level)
	}

	fieldSize := new(big.Int).Lsh(bigOne, uint(fieldBits))
	fieldSize.Sub(fieldSize, big.NewInt(fieldOffset))

	return &SecurityParameters{
		Level:         level,
		FieldSize:     fieldSize,
		MaxIterations: new(big.Int).Lsh(bigOne, uint(level/2)),
		Alpha:         big.NewInt(alpha),
	}, nil
}
