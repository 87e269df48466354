// Package proofs defines the succinct-proof capability consumed by temporal
// claims, and ships a simulated backend for tests and demos.
//
// The simulated backend is NOT a proof system. It commits to the iteration
// trace and fabricates a structurally complete proof record, and its Check
// accepts any well-formed record. A real STARK backend must implement System
// with the same contract.
package proofs

import (
	"errors"
	"fmt"
	"math/big"

	logging "github.com/ipfs/go-log/v2"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/utils"
)

var log = logging.Logger("proofs")

// Backend names accepted by New
const (
	BackendSimulated = "simulated"
	BackendSTARK     = "stark"
)

// ErrBackendUnavailable is returned by New for backends not built into this module
var ErrBackendUnavailable = errors.New("proof backend unavailable")

// ErrTraceTooLong is returned when a proof would need more than MaxTraceSteps
// iterations of trace
var ErrTraceTooLong = errors.New("trace too long to prove")

// MaxTraceSteps bounds the iterations a backend materializes as a trace
const MaxTraceSteps = 1 << 20

// System produces and checks proofs that f^(iterations)(x) was computed
// correctly. Check is authoritative: callers must not inspect proof internals.
type System interface {
	// Generate runs the iteration and proves it
	Generate(x *core.FieldElement, alpha *big.Int, iterations uint64, field *core.Field, params Parameters) (*Proof, *PublicInputs, error)

	// Check verifies a proof against its public inputs
	Check(proof *Proof, public *PublicInputs, field *core.Field, params Parameters) (bool, error)
}

// Parameters configure proof generation
type Parameters struct {
	// BlowupFactor is the low-degree extension factor (power of 2)
	BlowupFactor int

	// SecurityParam in bits
	SecurityParam int

	// FRIFoldingFactor is the FRI folding arity (power of 2)
	FRIFoldingFactor int

	// HashFunction drives the Fiat-Shamir transcript
	HashFunction string
}

// DefaultParameters returns the default proof parameters
func DefaultParameters() Parameters {
	return Parameters{
		BlowupFactor:     4,
		SecurityParam:    128,
		FRIFoldingFactor: 2,
		HashFunction:     utils.HashSHA3,
	}
}

// Validate checks if the parameters are valid
func (p Parameters) Validate() error {
	if p.BlowupFactor < 2 || !utils.IsPowerOfTwo(p.BlowupFactor) {
		return fmt.Errorf("blowup factor must be a power of 2 >= 2, got %d", p.BlowupFactor)
	}
	if p.SecurityParam < 2 {
		return fmt.Errorf("security parameter must be at least 2 bits, got %d", p.SecurityParam)
	}
	if p.FRIFoldingFactor < 2 || !utils.IsPowerOfTwo(p.FRIFoldingFactor) {
		return fmt.Errorf("FRI folding factor must be a power of 2 >= 2, got %d", p.FRIFoldingFactor)
	}
	if p.HashFunction != utils.HashSHA256 && p.HashFunction != utils.HashSHA3 {
		return fmt.Errorf("hash function must be %q or %q, got %q", utils.HashSHA256, utils.HashSHA3, p.HashFunction)
	}
	return nil
}

// Proof is an opaque proof record
type Proof struct {
	// TraceLength is the number of trace rows, iterations + 1
	TraceLength uint64

	// Log2PaddedHeight is log2 of the trace height padded to a power of 2
	Log2PaddedHeight int

	// TraceCommitment is the Merkle root over the trace rows
	TraceCommitment []byte

	// FRILayers is the number of folding layers
	FRILayers int

	// Queries is the number of query positions
	Queries int

	// QueryIndices are the trace rows selected by the transcript
	QueryIndices []uint64
}

// PublicInputs are the values a proof is bound to
type PublicInputs struct {
	Input      *core.FieldElement
	Output     *core.FieldElement
	Iterations uint64
}

// New returns the backend registered under name
func New(name string) (System, error) {
	switch name {
	case "", BackendSimulated:
		return NewSimulated(), nil
	case BackendSTARK:
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, name)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrBackendUnavailable, name)
	}
}
