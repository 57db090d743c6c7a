package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func TestCatalogTags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	dinner := testhelpers.CreateTag(t, db, "Dinner", "dinner")
	testhelpers.CreateTag(t, db, "Breakfast", "breakfast")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug, "ordered by slug")

	got, err := svc.GetTag(ctx, dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Name)

	_, err = svc.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogIngredientSearch(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Brown Sugar", "g")
	testhelpers.CreateIngredient(t, db, "sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Substring match, case-insensitive.
	matched, err := svc.ListIngredients(ctx, "SUG")
	require.NoError(t, err)
	require.Len(t, matched, 2)

	none, err := svc.ListIngredients(ctx, "pepper")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.GetIngredient(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
