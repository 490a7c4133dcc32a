package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/compliance/pkg/errors"
)

type sampleRequest struct {
	TenantID  string  `json:"tenant_id" validate:"required"`
	Threshold float64 `json:"threshold" validate:"percent"`
	Severity  string  `json:"severity" validate:"required,oneof=low medium high critical"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(&sampleRequest{TenantID: "t1", Threshold: 70, Severity: "high"}))

	err := ValidateStruct(&sampleRequest{Threshold: 120, Severity: "urgent"})
	if assert.NotNil(t, err) {
		assert.True(t, errors.IsInvalidRequest(err))
		assert.Equal(t, "is required", err.Metadata()["tenant_id"])
		assert.Equal(t, "must be between 0 and 100", err.Metadata()["threshold"])
		assert.Contains(t, err.Metadata()["severity"], "must be one of")
	}
}

func TestIsFinitePercent(t *testing.T) {
	assert.True(t, IsFinitePercent(0))
	assert.True(t, IsFinitePercent(100))
	assert.False(t, IsFinitePercent(-0.01))
	assert.False(t, IsFinitePercent(math.NaN()))
	assert.False(t, IsFinitePercent(math.Inf(1)))
}

func TestConverters(t *testing.T) {
	assert.Equal(t, 100.0, Clamp(130, 0, 100))
	assert.Equal(t, 78.25, Round2(78.2500001))
	assert.Equal(t, "x", DefaultString("", "x"))
	assert.Equal(t, "x", DefaultString("  ", "x"))
	assert.Equal(t, "officer", DefaultString("officer", "x"))
}
