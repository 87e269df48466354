package core

import "errors"

var (
	// ErrDivisionByZero is returned when inverting the zero element
	ErrDivisionByZero = errors.New("cannot invert zero")

	// ErrUnsupportedModulus is returned by Sqrt for moduli not congruent to 3 mod 4
	ErrUnsupportedModulus = errors.New("square root not implemented for this modulus")
)
