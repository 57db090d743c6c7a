package service_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func setupRecipeService(t *testing.T) (*gorm.DB, *service.RecipeService) {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	profiles := service.NewProfileService(db)
	return db, service.NewRecipeService(db, service.NewMemoryImageStore(), profiles)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func ingredientsPtr(items ...service.IngredientAmount) *[]service.IngredientAmount {
	return &items
}

func tagsPtr(ids ...uuid.UUID) *[]uuid.UUID {
	return &ids
}

// recipeInput builds a payload that passes validation as-is.
func recipeInput(name string, tagIDs []uuid.UUID, items []service.IngredientAmount) service.RecipeInput {
	return service.RecipeInput{
		Name:        strPtr(name),
		Text:        strPtr("Mix everything and cook."),
		CookingTime: intPtr(30),
		Ingredients: &items,
		Tags:        &tagIDs,
		Image:       strPtr(testhelpers.TestImage),
	}
}
