package temporal

import (
	"fmt"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
)

// Claim asserts that Output = f^(Iterations)(Input). Proof is optional.
type Claim struct {
	Input      *core.FieldElement
	Output     *core.FieldElement
	Iterations uint64
	Proof      *proofs.Proof
}

// NewClaim computes the output for x after n steps and returns the claim
func NewClaim(x *core.FieldElement, n uint64, params Parameters, field *core.Field) Claim {
	return Claim{
		Input:      x,
		Output:     iteration.Iterate(x, params.Alpha, n, field),
		Iterations: n,
	}
}

// ProveClaim builds a claim whose proof comes from sys
func ProveClaim(x *core.FieldElement, n uint64, params Parameters, field *core.Field, sys proofs.System, proofParams proofs.Parameters) (Claim, error) {
	if params.exceeds(n) {
		return Claim{}, fmt.Errorf("iterations %d exceed maximum %v", n, params.MaxIterations)
	}
	proof, public, err := sys.Generate(x, params.Alpha, n, field, proofParams)
	if err != nil {
		return Claim{}, fmt.Errorf("failed to generate proof: %w", err)
	}
	return Claim{
		Input:      public.Input,
		Output:     public.Output,
		Iterations: n,
		Proof:      proof,
	}, nil
}

// PublicInputs returns the values the claim's proof is bound to
func (c Claim) PublicInputs() *proofs.PublicInputs {
	return &proofs.PublicInputs{
		Input:      c.Input,
		Output:     c.Output,
		Iterations: c.Iterations,
	}
}

// VerifyClaim recomputes the claim. The attached proof is not consulted.
func VerifyClaim(c Claim, params Parameters, field *core.Field) bool {
	return Verify(c.Input, c.Output, c.Iterations, params, field)
}

// CheckClaimProof asks sys whether the claim's proof holds. A claim without a
// proof or above MaxIterations is rejected.
func CheckClaimProof(c Claim, params Parameters, field *core.Field, sys proofs.System, proofParams proofs.Parameters) (bool, error) {
	if c.Proof == nil || params.exceeds(c.Iterations) {
		return false, nil
	}
	return sys.Check(c.Proof, c.PublicInputs(), field, proofParams)
}
