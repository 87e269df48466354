package iteration

import "github.com/vybium/vybium-aow/internal/vybium-aow/core"

// IterationTrace is the full sequence of values visited by the step
// function. Element 0 is the seed; element i is f^(i)(seed).
type IterationTrace []*core.FieldElement

// Len returns the number of entries, which is iterations + 1
func (t IterationTrace) Len() int {
	return len(t)
}

// Steps returns how many applications of the step function the trace covers
func (t IterationTrace) Steps() uint64 {
	if len(t) == 0 {
		return 0
	}
	return uint64(len(t) - 1)
}

// At returns f^(i)(seed)
func (t IterationTrace) At(i int) *core.FieldElement {
	return t[i]
}

// Seed returns the first entry
func (t IterationTrace) Seed() *core.FieldElement {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Last returns the final entry, which equals Iterate over the same inputs
func (t IterationTrace) Last() *core.FieldElement {
	if len(t) == 0 {
		return nil
	}
	return t[len(t)-1]
}

// Consistent reports whether every entry is the step function applied to
// its predecessor under m.
func (t IterationTrace) Consistent(m *QuadraticMap) bool {
	for i := 1; i < len(t); i++ {
		if !m.Evaluate(t[i-1]).Equal(t[i]) {
			return false
		}
	}
	return true
}
