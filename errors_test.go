package corio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPanicError_UnwrapsErrorValue(t *testing.T) {
	cause := errors.New("boom")
	pe := &PanicError{Value: cause}
	require.ErrorIs(t, pe, cause)
}

func TestPanicError_UnwrapNilForNonErrorValue(t *testing.T) {
	pe := &PanicError{Value: "not an error"}
	require.Nil(t, pe.Unwrap())
	require.Contains(t, pe.Error(), "not an error")
}

func TestCancellationError_MatchesContextCanceled(t *testing.T) {
	require.ErrorIs(t, ErrCancelled, context.Canceled)
	require.ErrorIs(t, ErrCancelled, ErrCancelled)

	other := &CancellationError{Reason: "timed out"}
	require.ErrorIs(t, other, ErrCancelled)
	require.ErrorIs(t, other, context.Canceled)
	require.Contains(t, other.Error(), "timed out")
}

func TestTimeoutError_UnwrapsCause(t *testing.T) {
	cause := errors.New("deadline")
	te := &TimeoutError{Cause: cause}
	require.ErrorIs(t, te, cause)
	require.Equal(t, "corio: operation timed out", te.Error())

	named := &TimeoutError{Message: "select timed out"}
	require.Equal(t, "select timed out", named.Error())
}

func TestAggregateError_UnwrapsAllChildren(t *testing.T) {
	e1 := errors.New("one")
	e2 := errors.New("two")
	agg := &AggregateError{Errors: []error{e1, e2}}

	require.ErrorIs(t, agg, e1)
	require.ErrorIs(t, agg, e2)
	require.Equal(t, e1, agg.AggregateErrorCause())
}

func TestAggregateError_IsMatchesAnyAggregateError(t *testing.T) {
	agg := &AggregateError{Errors: []error{errors.New("x")}}
	require.True(t, agg.Is(&AggregateError{}))
}

func TestWrapError_PreservesIs(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := WrapError("context", cause)
	require.ErrorIs(t, wrapped, cause)
	require.Contains(t, wrapped.Error(), "context")
}
