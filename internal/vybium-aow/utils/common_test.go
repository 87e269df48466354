package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerOfTwoHelpers(t *testing.T) {
	tests := []struct {
		n       int
		isPow   bool
		log2    int
		nextPow int
	}{
		{-3, false, -1, 1},
		{0, false, -1, 1},
		{1, true, 0, 1},
		{2, true, 1, 2},
		{3, false, -1, 4},
		{11, false, -1, 16},
		{16, true, 4, 16},
		{17, false, -1, 32},
		{1 << 20, true, 20, 1 << 20},
		{1<<20 + 1, false, -1, 1 << 21},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.isPow, IsPowerOfTwo(tt.n), "IsPowerOfTwo(%d)", tt.n)
		assert.Equal(t, tt.log2, Log2(tt.n), "Log2(%d)", tt.n)
		assert.Equal(t, tt.nextPow, NextPowerOfTwo(tt.n), "NextPowerOfTwo(%d)", tt.n)
	}
}
