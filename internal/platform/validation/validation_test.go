package validation

import (
	"testing"

	"pet-adoption/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `json:"name" validate:"required"`
	Gender string  `json:"gender" validate:"required,oneof=Male Female"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Flag   *bool   `json:"flag" validate:"required"`
	Nested details `json:"details"`
}

type details struct {
	Reason string `json:"reasonForAdopting" validate:"required,min=3"`
}

func TestStruct_AggregatesFieldMessages(t *testing.T) {
	err := Struct("invalid sample", sample{Gender: "Unknown", Email: "nope", Nested: details{Reason: "a"}})
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.ElementsMatch(t, []string{
		"name is required",
		"gender must be one of [Male Female]",
		"email must be a valid email",
		"flag is required",
		"details.reasonForAdopting must be at least 3 characters",
	}, e.Fields)
}

func TestStruct_Valid(t *testing.T) {
	yes := true
	err := Struct("invalid sample", sample{
		Name:   "Max",
		Gender: "Male",
		Flag:   &yes,
		Nested: details{Reason: "company"},
	})
	assert.NoError(t, err)
}
