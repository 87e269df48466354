package vybiumaow

import "fmt"

// ErrorCode represents a vybium-aow error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrFieldCreation represents a field creation error
	ErrFieldCreation

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput

	// ErrIteration represents an interrupted iteration
	ErrIteration

	// ErrChain represents an event chain error
	ErrChain

	// ErrProofGeneration represents a proof generation error
	ErrProofGeneration

	// ErrProofVerification represents a proof verification error
	ErrProofVerification

	// ErrStorage represents a persistence error
	ErrStorage
)

// AOWError represents a vybium-aow error
type AOWError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *AOWError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-aow error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-aow error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *AOWError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *AOWError) Is(target error) bool {
	t, ok := target.(*AOWError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code ErrorCode, message string, cause error) *AOWError {
	return &AOWError{Code: code, Message: message, Cause: cause}
}
