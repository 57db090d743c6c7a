package api

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
	"github.com/foodshare/backend/internal/types"
)

const testPublicHost = "http://localhost:8080"

type testEnv struct {
	db         *gorm.DB
	router     *gin.Engine
	auth       *service.AuthService
	images     *service.MemoryImageStore
	shortlinks *service.MemoryShortLinker
}

// setupTestEnv wires the full handler stack against an in-memory database,
// mirroring the production wiring minus Redis and S3.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	images := service.NewMemoryImageStore()
	shortlinks := service.NewMemoryShortLinker()

	auth := service.NewAuthService(db, images, "test-secret")
	profiles := service.NewProfileService(db)
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db, images, profiles)
	relations := service.NewRelationService(db, profiles)
	shopping := service.NewShoppingListService(db)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	NewCatalogHandler(catalog).RegisterRoutes(v1)
	NewUserHandler(auth, profiles, relations).RegisterRoutes(v1)

	recipeHandler := NewRecipeHandler(recipes, relations, shopping, shortlinks, auth, nil, testPublicHost)
	recipeHandler.RegisterRoutes(v1)
	router.GET("/s/:code", recipeHandler.Redirect)

	return &testEnv{
		db:         db,
		router:     router,
		auth:       auth,
		images:     images,
		shortlinks: shortlinks,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := e.auth.GenerateToken(&types.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// seedRecipe inserts a recipe row directly, for tests that only need the
// entity to exist.
func (e *testEnv) seedRecipe(t *testing.T, author *models.User, name string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		Text:        "text",
		CookingTime: 15,
		ImageURL:    "/media/seed.png",
		AuthorID:    author.ID,
	}
	if err := e.db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	return recipe
}
