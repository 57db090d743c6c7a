package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/testhelpers"
	"github.com/foodshare/backend/internal/types"
)

func recipeBody(t *testing.T, name string, tag *models.Tag, ingredient *models.Ingredient) string {
	t.Helper()
	return fmt.Sprintf(`{
		"name": %q,
		"text": "Mix and cook.",
		"cooking_time": 30,
		"tags": [%q],
		"ingredients": [{"id": %q, "amount": 200}],
		"image": %q
	}`, name, tag.ID, ingredient.ID, testhelpers.TestImage)
}

func TestRecipeLifecycleEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	tag := testhelpers.CreateTag(t, env.db, "Dinner", "dinner")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	body := recipeBody(t, "Bread", tag, flour)

	// Creation requires authentication.
	w := env.do(t, "POST", "/api/v1/recipes", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	aliceToken := env.tokenFor(t, alice)
	w = env.do(t, "POST", "/api/v1/recipes", aliceToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created types.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Bread", created.Name)
	assert.Equal(t, alice.ID, created.Author.ID)
	require.Len(t, created.Ingredients, 1)
	assert.Equal(t, 200, created.Ingredients[0].Amount)

	recipeURL := fmt.Sprintf("/api/v1/recipes/%s", created.ID)

	// Anonymous read works; derived fields stay false.
	w = env.do(t, "GET", recipeURL, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched types.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.False(t, fetched.IsFavorited)

	// Validation failures surface the offending field.
	w = env.do(t, "POST", "/api/v1/recipes", aliceToken, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "name", errResp["field"])

	// Only the author (or staff) may modify.
	bobToken := env.tokenFor(t, bob)
	w = env.do(t, "PATCH", recipeURL, bobToken, `{"name": "Stolen"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "PATCH", recipeURL, aliceToken, `{"name": "Sourdough"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Sourdough", fetched.Name)
	assert.Len(t, fetched.Ingredients, 1, "omitted fields unchanged")

	w = env.do(t, "DELETE", recipeURL, bobToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "DELETE", recipeURL, aliceToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "GET", recipeURL, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeListFiltersEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	breakfast := testhelpers.CreateTag(t, env.db, "Breakfast", "breakfast")
	dinner := testhelpers.CreateTag(t, env.db, "Dinner", "dinner")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	token := env.tokenFor(t, alice)
	w := env.do(t, "POST", "/api/v1/recipes", token, recipeBody(t, "Pancakes", breakfast, flour))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, "POST", "/api/v1/recipes", token, recipeBody(t, "Stew", dinner, flour))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var list []types.RecipeView

	w = env.do(t, "GET", "/api/v1/recipes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// Repeated tags parameters match any of the slugs.
	w = env.do(t, "GET", "/api/v1/recipes?tags=breakfast&tags=dinner", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = env.do(t, "GET", "/api/v1/recipes?tags=dinner", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Stew", list[0].Name)

	w = env.do(t, "GET", fmt.Sprintf("/api/v1/recipes?author=%s", alice.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = env.do(t, "GET", "/api/v1/recipes?author=not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	recipe := env.seedRecipe(t, bob, "Stew")
	token := env.tokenFor(t, alice)

	favoriteURL := fmt.Sprintf("/api/v1/recipes/%s/favorite", recipe.ID)

	w := env.do(t, "POST", favoriteURL, token, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var short types.RecipeShort
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &short))
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, "Stew", short.Name)

	// The derived flag flips for the authenticated viewer.
	w = env.do(t, "GET", fmt.Sprintf("/api/v1/recipes/%s", recipe.ID), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view types.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.IsFavorited)

	w = env.do(t, "POST", favoriteURL, token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "DELETE", favoriteURL, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "DELETE", favoriteURL, token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/v1/recipes/00000000-0000-0000-0000-000000000001/favorite", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "Dinner", "dinner")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	token := env.tokenFor(t, alice)

	w := env.do(t, "POST", "/api/v1/recipes", token, recipeBody(t, "Bread", tag, flour))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created types.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, "POST", fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", created.ID), token, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, "GET", "/api/v1/recipes/download_shopping_cart", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "flour,g,200")

	w = env.do(t, "GET", "/api/v1/recipes/download_shopping_cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortLinkEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	recipe := env.seedRecipe(t, alice, "Stew")

	w := env.do(t, "GET", fmt.Sprintf("/api/v1/recipes/%s/get-link", recipe.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	link := resp["short-link"]
	require.NotEmpty(t, link)

	code := link[len(link)-8:]
	w = env.do(t, "GET", "/s/"+code, "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), recipe.ID.String())

	w = env.do(t, "GET", "/s/deadbeef", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "GET", "/api/v1/recipes/00000000-0000-0000-0000-000000000001/get-link", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
