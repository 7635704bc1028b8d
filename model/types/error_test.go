package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NewPreconditionFailedError("sendToAnalysis", "attach evidence", "justify delay")
	wrapped := fmt.Errorf("engine: %w", err)

	assert.True(t, errors.Is(wrapped, ErrPreconditionFailed))
	assert.False(t, errors.Is(wrapped, ErrPermissionDenied))
	assert.Equal(t, KindPreconditionFailed, KindOf(wrapped))
	assert.Equal(t, "precondition failed (sendToAnalysis): attach evidence; justify delay", err.Error())
	assert.Equal(t, "attach evidence", err.(*Error).Reason())
}

func TestError_Cause(t *testing.T) {
	cause := errors.New("version mismatch")
	err := NewConcurrencyConflictError("advanceRouting", cause)
	assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, Kind(""), KindOf(cause))
}
