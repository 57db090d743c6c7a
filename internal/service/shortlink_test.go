package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/service"
)

func TestMemoryShortLinker(t *testing.T) {
	linker := service.NewMemoryShortLinker()
	ctx := context.Background()

	code, err := linker.Shorten(ctx, "https://example.com/recipes/abc")
	require.NoError(t, err)
	assert.Len(t, code, 8)

	// Shortening the same target is idempotent.
	again, err := linker.Shorten(ctx, "https://example.com/recipes/abc")
	require.NoError(t, err)
	assert.Equal(t, code, again)

	other, err := linker.Shorten(ctx, "https://example.com/recipes/def")
	require.NoError(t, err)
	assert.NotEqual(t, code, other)

	target, err := linker.Resolve(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/recipes/abc", target)

	_, err = linker.Resolve(ctx, "deadbeef")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
