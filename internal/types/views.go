package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the public read shape of a user. IsSubscribed is computed
// relative to the requesting identity and is always false for anonymous
// callers.
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       string    `json:"avatar"`
}

// TagView mirrors the catalog tag.
type TagView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// IngredientView is the catalog ingredient, optionally carrying the
// per-recipe amount when embedded in a recipe.
type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount,omitempty"`
}

// RecipeView is the full read shape returned by every recipe endpoint,
// including create and update responses.
type RecipeView struct {
	ID               uuid.UUID        `json:"id"`
	Tags             []TagView        `json:"tags"`
	Author           UserProfile      `json:"author"`
	Ingredients      []IngredientView `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
	CreatedAt        time.Time        `json:"created_at"`
}

// RecipeShort is the summary shape used by toggle responses and
// subscription profiles.
type RecipeShort struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionProfile extends the user profile with the target's recipes
// (capped by the recipes_limit query parameter) and their total count.
type SubscriptionProfile struct {
	UserProfile
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}
