package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/types"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping cart
// toggles, the shopping list export and short links.
type RecipeHandler struct {
	recipes    *service.RecipeService
	relations  *service.RelationService
	shopping   *service.ShoppingListService
	shortlinks service.ShortLinker
	auth       *service.AuthService
	limiter    *middleware.RateLimiter
	publicHost string
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingListService,
	shortlinks service.ShortLinker,
	auth *service.AuthService,
	limiter *middleware.RateLimiter,
	publicHost string,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:    recipes,
		relations:  relations,
		shopping:   shopping,
		shortlinks: shortlinks,
		auth:       auth,
		limiter:    limiter,
		publicHost: publicHost,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
	recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
	recipes.GET("/:id/get-link", h.GetLink)

	authed := recipes.Group("", middleware.AuthMiddleware(h.auth))

	create := []gin.HandlerFunc{}
	if h.limiter != nil {
		create = append(create, h.limiter.RateLimitMiddleware())
	}
	create = append(create, h.Create)
	authed.POST("", create...)

	authed.PATCH("/:id", h.Update)
	authed.DELETE("/:id", h.Delete)
	authed.POST("/:id/favorite", h.AddFavorite)
	authed.DELETE("/:id/favorite", h.RemoveFavorite)
	authed.POST("/:id/shopping_cart", h.AddCartItem)
	authed.DELETE("/:id/shopping_cart", h.RemoveCartItem)
	authed.GET("/download_shopping_cart", h.DownloadShoppingCart)
}

type recipeRequest struct {
	Name        *string                     `json:"name"`
	Text        *string                     `json:"text"`
	CookingTime *int                        `json:"cooking_time"`
	Ingredients *[]service.IngredientAmount `json:"ingredients"`
	Tags        *[]uuid.UUID                `json:"tags"`
	Image       *string                     `json:"image"`
}

func (r *recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
		Image:       r.Image,
	}
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, _ := currentUserID(c)
	view, err := h.recipes.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List applies the author, tags, is_favorited and is_in_shopping_cart
// filters. Multiple tags parameters widen the match.
func (h *RecipeHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filter := service.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: boolQuery(c, "is_favorited"),
		InCart:    boolQuery(c, "is_in_shopping_cart"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	views, err := h.recipes.List(c.Request.Context(), viewerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.Update(c.Request.Context(), id, actor, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addEdge(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeEdge(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddCartItem(c *gin.Context) {
	h.addEdge(c, h.relations.AddCartItem)
}

func (h *RecipeHandler) RemoveCartItem(c *gin.Context) {
	h.removeEdge(c, h.relations.RemoveCartItem)
}

// DownloadShoppingCart streams the aggregated shopping list as a CSV
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := currentUserID(c)
	rows, err := h.shopping.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, rows); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// GetLink returns a stable short link for the recipe.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if _, err := h.recipes.Exists(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	target := fmt.Sprintf("%s/recipes/%s", h.publicHost, id)
	code, err := h.shortlinks.Shorten(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": fmt.Sprintf("%s/s/%s", h.publicHost, code)})
}

// Redirect resolves a short code and redirects to the recipe page. It is
// registered at the engine root, outside the API prefix.
func (h *RecipeHandler) Redirect(c *gin.Context) {
	target, err := h.shortlinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *RecipeHandler) actor(c *gin.Context) (*models.User, error) {
	userID, _ := currentUserID(c)
	return h.auth.GetUser(c.Request.Context(), userID)
}

type edgeAdder func(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShort, error)

type edgeRemover func(ctx context.Context, userID, recipeID uuid.UUID) error

func (h *RecipeHandler) addEdge(c *gin.Context, add edgeAdder) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	userID, _ := currentUserID(c)
	short, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) removeEdge(c *gin.Context, remove edgeRemover) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	userID, _ := currentUserID(c)
	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
