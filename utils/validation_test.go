package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Query         string `json:"query" validate:"required"`
	MaxIterations int    `json:"maxIterations,omitempty" validate:"omitempty,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		err := ValidateStruct(&sampleRequest{Query: "what is Go?"})
		assert.NoError(t, err)
	})

	t.Run("missing required field uses json tag name", func(t *testing.T) {
		err := ValidateStruct(&sampleRequest{})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Missing required field: query", vErr.Error())
		assert.Equal(t, "Missing required field: query", vErr.Fields["query"])
	})

	t.Run("gt violation reports field and bound", func(t *testing.T) {
		err := ValidateStruct(&sampleRequest{Query: "x", MaxIterations: -1})
		require.Error(t, err)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields["maxIterations"], "greater than 0")
	})
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(assert.AnError))
	assert.False(t, IsValidationError(nil))
}
