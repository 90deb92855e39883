package errs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("load: %w", NewConfig("fit.min_font_pt", "must not exceed fit.max_font_pt"))
	require.True(t, Is(err, CodeConfig))
	assert.False(t, Is(err, CodeTemplate))
	assert.Equal(t, 400, StatusOf(err))
}

func TestCanceledUnwrapsContextError(t *testing.T) {
	err := NewCanceled(context.Canceled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 499, StatusOf(err))
	assert.Contains(t, err.Error(), "CANCELED")
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, 500, StatusOf(fmt.Errorf("boom")))
}
