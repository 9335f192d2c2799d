package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.CodeInternal, "unexpected failure"},
		{"unknown element", errors.ErrCodeUnknownElement, "element Xx not found"},
		{"invalid param", errors.CodeInvalidParam, "worker_count must be positive"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.ErrCodeMalformedSpecies, "bad label")
	assert.Equal(t, "[ELM_002] bad label", ae.Error())

	withDetail := ae.WithDetail("Fe2")
	assert.Equal(t, "[ELM_002] bad label: Fe2", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "noop"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodeUnknownElement, "element Xx not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "building site pools")

	assert.Equal(t, errors.ErrCodeUnknownElement, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.ErrCodeUnknownElement))
	assert.True(t, stderrors.Is(outer, inner))
}

func TestIsCode_ThroughFmtWrap(t *testing.T) {
	inner := errors.New(errors.ErrCodeInvalidBand, "low > high")
	wrapped := fmt.Errorf("config: %w", inner)
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeInvalidBand))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeInvalidFormula))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeInvalidConstraint, errors.GetCode(errors.New(errors.ErrCodeInvalidConstraint, "x")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeUnknownElement, "x")))
	assert.True(t, errors.IsNotFound(errors.NotFound("run")))
	assert.False(t, errors.IsNotFound(errors.InvalidParam("x")))
}

func TestCancelled_WrapsContextError(t *testing.T) {
	ae := errors.Cancelled(context.Canceled)
	assert.True(t, stderrors.Is(ae, context.Canceled))
	assert.Equal(t, errors.ErrCodeCancelled, ae.Code)
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatusForCode(errors.ErrCodeUnknownElement))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.ErrCodeInvalidBand))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode("NOPE_999"))
	assert.True(t, errors.IsClientError(errors.ErrCodeMalformedSpecies))
	assert.False(t, errors.IsClientError(errors.ErrCodeDatabaseError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "TOL", errors.ModuleForCode(errors.ErrCodeInvalidBand))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(""))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "unknown element", errors.DefaultMessageForCode(errors.ErrCodeUnknownElement))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode("NOPE_1"))
}
