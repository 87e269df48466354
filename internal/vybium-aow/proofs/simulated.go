package proofs

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/merkle"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
	"github.com/vybium/vybium-aow/internal/vybium-aow/utils"
)

// limbBytes is the width of a trace limb. 7 bytes stay below the Goldilocks
// prime, so every limb maps to a distinct hash field element.
const limbBytes = 7

const tip5Rate = 10

// Simulated is the non-cryptographic stand-in backend.
type Simulated struct{}

var _ System = (*Simulated)(nil)

// NewSimulated creates the simulated backend
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Generate computes the trace, commits to it and fabricates the remaining
// proof fields from a Fiat-Shamir transcript over the commitment.
func (s *Simulated) Generate(x *core.FieldElement, alpha *big.Int, iterations uint64, f *core.Field, params Parameters) (*Proof, *PublicInputs, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid proof parameters: %w", err)
	}
	if x == nil {
		return nil, nil, fmt.Errorf("input element is required")
	}
	if iterations > MaxTraceSteps {
		return nil, nil, fmt.Errorf("%w: %d iterations, limit %d", ErrTraceTooLong, iterations, MaxTraceSteps)
	}

	trace := iteration.Trace(x, alpha, iterations, f)

	commitment, log2Height, err := commitTrace(trace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit to trace: %w", err)
	}

	ch := utils.NewChannel(params.HashFunction)
	ch.Send(commitment)
	ch.SendElement(trace.Seed())
	ch.SendElement(trace.Last())
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], iterations)
	ch.Send(n[:])

	queries := params.SecurityParam / 2
	indices := make([]uint64, queries)
	for i := range indices {
		idx, err := ch.ReceiveIndex(uint64(trace.Len()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to sample query %d: %w", i, err)
		}
		indices[i] = idx
	}

	proof := &Proof{
		TraceLength:      uint64(trace.Len()),
		Log2PaddedHeight: log2Height,
		TraceCommitment:  commitment,
		FRILayers:        params.SecurityParam,
		Queries:          queries,
		QueryIndices:     indices,
	}
	public := &PublicInputs{
		Input:      trace.Seed(),
		Output:     trace.Last(),
		Iterations: iterations,
	}

	log.Debugf("generated simulated proof: trace_length=%d queries=%d", proof.TraceLength, proof.Queries)
	return proof, public, nil
}

// Check accepts any structurally well-formed proof. It does not verify the
// computation.
func (s *Simulated) Check(proof *Proof, public *PublicInputs, f *core.Field, params Parameters) (bool, error) {
	if err := params.Validate(); err != nil {
		return false, fmt.Errorf("invalid proof parameters: %w", err)
	}
	if proof == nil || public == nil {
		return false, nil
	}
	if public.Input == nil || public.Output == nil {
		return false, nil
	}
	if proof.TraceLength == 0 || len(proof.TraceCommitment) != hash.DigestLen*8 {
		return false, nil
	}
	if proof.FRILayers <= 0 || proof.Queries <= 0 || len(proof.QueryIndices) != proof.Queries {
		return false, nil
	}
	return true, nil
}

// commitTrace hashes every trace row with Tip5 and returns the Merkle root
// over the rows, padded to a power of two, plus log2 of the padded height.
func commitTrace(trace iteration.IterationTrace) ([]byte, int, error) {
	height := utils.NextPowerOfTwo(trace.Len())
	if height < 2 {
		height = 2
	}

	leaves := make([]hash.Digest, height)
	for i, e := range trace {
		leaves[i] = hash.HashVarlen(padToRate(elementLimbs(e)))
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return nil, 0, err
	}
	return digestBytes(tree.Root()), utils.Log2(height), nil
}

// elementLimbs splits a field element into hash-field limbs, prefixed by its
// byte length so distinct values never share a limb sequence.
func elementLimbs(e *core.FieldElement) []field.Element {
	b := e.Bytes()
	limbs := make([]field.Element, 0, 1+(len(b)+limbBytes-1)/limbBytes)
	limbs = append(limbs, field.New(uint64(len(b))))
	for start := 0; start < len(b); start += limbBytes {
		end := start + limbBytes
		if end > len(b) {
			end = len(b)
		}
		var v uint64
		for _, c := range b[start:end] {
			v = v<<8 | uint64(c)
		}
		limbs = append(limbs, field.New(v))
	}
	return limbs
}

// padToRate zero-pads limbs to a multiple of the Tip5 rate
func padToRate(limbs []field.Element) []field.Element {
	for len(limbs)%tip5Rate != 0 {
		limbs = append(limbs, field.Zero)
	}
	return limbs
}

// digestBytes serializes a digest, 8 little-endian bytes per element
func digestBytes(d hash.Digest) []byte {
	out := make([]byte, len(d)*8)
	for i, elem := range d {
		binary.LittleEndian.PutUint64(out[i*8:], elem.Value())
	}
	return out
}
