package core

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

var (
	bigZero  = big.NewInt(0)
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)
	bigFour  = big.NewInt(4)
)

// Field represents a prime field F_p with modular arithmetic operations.
// A Field is immutable once created and safe for concurrent use.
type Field struct {
	modulus *big.Int
}

// FieldElement represents an element in the finite field.
// The value is always reduced into [0, modulus).
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField creates a new finite field with the given modulus.
// The modulus is assumed to be prime; no primality test is performed.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus == nil || modulus.Cmp(bigTwo) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// NewFieldFromUint64 creates a new finite field with the given modulus
func NewFieldFromUint64(modulus uint64) (*Field, error) {
	return NewField(new(big.Int).SetUint64(modulus))
}

// NewFieldFromString parses a base-10 modulus and creates the field
func NewFieldFromString(modulus string) (*Field, error) {
	m, ok := new(big.Int).SetString(modulus, 10)
	if !ok {
		return nil, fmt.Errorf("invalid field modulus %q", modulus)
	}
	return NewField(m)
}

// Modulus returns the field modulus
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Size returns the number of elements in the field, which equals the modulus
func (f *Field) Size() *big.Int {
	return f.Modulus()
}

// NewElement creates a new field element from a big.Int
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	return &FieldElement{
		field: f,
		value: normalized,
	}
}

// NewElementFromInt64 creates a new field element from an int64
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 creates a new field element from a uint64
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// ElementFromBytes interprets data as a big-endian integer and reduces it
// modulo the field size.
func (f *Field) ElementFromBytes(data []byte) *FieldElement {
	return f.NewElement(new(big.Int).SetBytes(data))
}

// RandomElement samples a uniformly random field element from rng.
// Passing nil uses crypto/rand.
func (f *Field) RandomElement(rng io.Reader) (*FieldElement, error) {
	if rng == nil {
		rng = rand.Reader
	}
	value, err := sampleBelow(rng, f.modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random element: %w", err)
	}
	return f.NewElement(value), nil
}

// sampleBelow draws a uniform integer in [0, max) from rng by rejection
// sampling over the bit length of max. The stream consumed depends only on
// rng, so seeded readers give reproducible elements.
func sampleBelow(rng io.Reader, max *big.Int) (*big.Int, error) {
	bitLen := max.BitLen()
	buf := make([]byte, (bitLen+7)/8)
	excess := uint(len(buf)*8 - bitLen)
	n := new(big.Int)
	for {
		if _, err := io.ReadFull(rng, buf); err != nil {
			return nil, err
		}
		buf[0] &= byte(0xff >> excess)
		n.SetBytes(buf)
		if n.Cmp(max) < 0 {
			return n, nil
		}
	}
}

// Zero returns the additive identity
func (f *Field) Zero() *FieldElement {
	return f.NewElement(bigZero)
}

// One returns the multiplicative identity
func (f *Field) One() *FieldElement {
	return f.NewElement(bigOne)
}

// Equals reports whether two fields share the same modulus
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// String returns the modulus in base 10
func (f *Field) String() string {
	return f.modulus.String()
}

// Big returns the value as a big.Int
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	fe.mustMatch(other, "add")
	result := new(big.Int).Add(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Sub performs field subtraction
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	fe.mustMatch(other, "subtract")
	result := new(big.Int).Sub(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Neg returns the additive inverse of the field element
func (fe *FieldElement) Neg() *FieldElement {
	result := new(big.Int).Neg(fe.value)
	return fe.field.NewElement(result)
}

// Mul performs field multiplication
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	fe.mustMatch(other, "multiply")
	result := new(big.Int).Mul(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Square computes the square of the field element
func (fe *FieldElement) Square() *FieldElement {
	result := new(big.Int).Mul(fe.value, fe.value)
	return fe.field.NewElement(result)
}

// Exp performs field exponentiation
func (fe *FieldElement) Exp(exponent *big.Int) *FieldElement {
	result := new(big.Int).Exp(fe.value, exponent, fe.field.modulus)
	return fe.field.NewElement(result)
}

// Inv computes the multiplicative inverse using Fermat's little theorem,
// a^(p-2) mod p. Inverting zero returns ErrDivisionByZero.
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.IsZero() {
		return nil, ErrDivisionByZero
	}
	exp := new(big.Int).Sub(fe.field.modulus, bigTwo)
	return fe.Exp(exp), nil
}

// Div performs field division (multiplication by inverse)
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	if !fe.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot divide elements from different fields")
	}
	inv, err := other.Inv()
	if err != nil {
		return nil, fmt.Errorf("division failed: %w", err)
	}
	return fe.Mul(inv), nil
}

// IsQuadraticResidue applies Euler's criterion: a^((p-1)/2) == 1.
// Zero is treated as a residue.
func (fe *FieldElement) IsQuadraticResidue() bool {
	if fe.IsZero() {
		return true
	}
	exp := new(big.Int).Sub(fe.field.modulus, bigOne)
	exp.Rsh(exp, 1)
	legendre := new(big.Int).Exp(fe.value, exp, fe.field.modulus)
	return legendre.Cmp(bigOne) == 0
}

// Sqrt returns a square root of the element. ok is false when the element
// is a non-residue. Only moduli p ≡ 3 (mod 4) are supported, where the root
// is a^((p+1)/4); any other modulus class returns ErrUnsupportedModulus.
func (fe *FieldElement) Sqrt() (root *FieldElement, ok bool, err error) {
	p := fe.field.modulus
	if new(big.Int).Mod(p, bigFour).Cmp(bigThree) != 0 {
		return nil, false, fmt.Errorf("%w: modulus %s is not 3 mod 4", ErrUnsupportedModulus, p)
	}

	if !fe.IsQuadraticResidue() {
		return nil, false, nil
	}

	exp := new(big.Int).Add(p, bigOne)
	exp.Rsh(exp, 2)
	return fe.Exp(exp), true, nil
}

// Equal checks if two field elements are equal
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if other == nil || !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero checks if the element is zero
func (fe *FieldElement) IsZero() bool {
	return fe.value.Sign() == 0
}

// IsOne checks if the element is one
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(bigOne) == 0
}

// String returns a string representation of the field element
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// Bytes returns the big-endian encoding sized to the value's bit length.
// Zero encodes as an empty slice.
func (fe *FieldElement) Bytes() []byte {
	return fe.value.Bytes()
}

func (fe *FieldElement) mustMatch(other *FieldElement, op string) {
	if !fe.field.Equals(other.field) {
		panic(fmt.Sprintf("cannot %s elements from different fields", op))
	}
}
