package vybiumaow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAOWError(t *testing.T) {
	cause := errors.New("boom")

	t.Run("Message", func(t *testing.T) {
		err := &AOWError{Code: ErrInvalidInput, Message: "bad value"}
		assert.Equal(t, "vybium-aow error [3]: bad value", err.Error())

		err.Cause = cause
		assert.Contains(t, err.Error(), "caused by: boom")
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := newError(ErrStorage, "failed", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("IsMatchesCode", func(t *testing.T) {
		err := newError(ErrChain, "failed", cause)
		assert.ErrorIs(t, err, &AOWError{Code: ErrChain})
		assert.False(t, errors.Is(err, &AOWError{Code: ErrStorage}))

		var target *AOWError
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, ErrChain, target.Code)
	})
}
