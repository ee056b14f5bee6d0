package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"priorelicit/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestPipelineConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		code     string
	}{
		{InsufficientData("only %d usable entities", 1), core.ErrInsufficientData, CodeInsufficientData},
		{DegenerateSample("check %d has zero variance", 3), core.ErrDegenerateSample, CodeDegenerateSample},
		{NoValidFit("all %d families rejected", 9), core.ErrNoValidFit, CodeNoValidFit},
		{InvalidConfiguration(core.ErrMissingResponse), core.ErrInvalidConfiguration, CodeInvalidConfiguration},
		{NotFound("record"), core.ErrNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.True(t, IsAppError(tt.err))
		})
	}
}

func TestWrapKeepsCode(t *testing.T) {
	base := NoValidFit("nothing fitted")
	wrapped := Wrapf(base, "fitting parameter %s", "beta")

	assert.Equal(t, CodeNoValidFit, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, core.ErrNoValidFit)
	assert.Contains(t, wrapped.Error(), "fitting parameter beta")
}

func TestGetCodeFromBareSentinel(t *testing.T) {
	err := fmt.Errorf("resampling: %w", core.ErrInsufficientData)
	assert.Equal(t, CodeInsufficientData, GetCode(err))
	assert.Equal(t, CodeInsufficientData, GetCode(Wrap(err, "fit priors")))
	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("boom")))
	assert.Equal(t, "", GetCode(nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad json"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Nil(t, WithCode(CodeInvalidInput, nil))
	assert.Nil(t, Wrap(nil, "x"))
}
