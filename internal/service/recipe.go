package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/types"
)

const maxRecipeNameLength = 256

// IngredientAmount is one entry of a recipe payload's ingredient list.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeInput is the authoring payload. Nil fields are absent; create
// requires all of them, partial update replaces only what is present.
type RecipeInput struct {
	Name        *string
	Text        *string
	CookingTime *int
	Ingredients *[]IngredientAmount
	Tags        *[]uuid.UUID
	Image       *string
}

// RecipeFilter narrows the recipe listing. Favorited and InCart are
// ignored for anonymous viewers.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	Limit     int
	Offset    int
}

// RecipeService handles recipe authoring, reads and listing.
type RecipeService struct {
	db       *gorm.DB
	images   ImageStore
	profiles *ProfileService
}

func NewRecipeService(db *gorm.DB, images ImageStore, profiles *ProfileService) *RecipeService {
	return &RecipeService{
		db:       db,
		images:   images,
		profiles: profiles,
	}
}

// Create validates the payload, persists the recipe together with its tag
// and ingredient links in one transaction, and returns the full read shape.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*types.RecipeView, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, validationErr("name", "must not be empty")
	}
	if in.Text == nil || *in.Text == "" {
		return nil, validationErr("text", "must not be empty")
	}
	if in.CookingTime == nil {
		return nil, validationErr("cooking_time", "must not be empty")
	}
	if in.Ingredients == nil {
		return nil, validationErr("ingredients", "must not be empty")
	}
	if in.Tags == nil {
		return nil, validationErr("tags", "must not be empty")
	}
	if in.Image == nil || *in.Image == "" {
		return nil, validationErr("image", "must not be empty")
	}

	if err := s.validateName(ctx, authorID, *in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if *in.CookingTime < 1 {
		return nil, validationErr("cooking_time", "must be at least 1")
	}
	links, err := s.validateIngredients(ctx, *in.Ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.validateTags(ctx, *in.Tags)
	if err != nil {
		return nil, err
	}

	data, contentType, err := DecodeBase64Image(*in.Image)
	if err != nil {
		return nil, validationErr("image", err.Error())
	}
	imageURL, err := s.images.Store(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        *in.Name,
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
		ImageURL:    imageURL,
		AuthorID:    authorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validationErr("name", "you already have a recipe with this name")
			}
			return err
		}
		if err := s.replaceIngredients(tx, recipe.ID, links); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update applies a partial update. Ingredient and tag lists, when present,
// fully replace the stored link rows.
func (s *RecipeService) Update(ctx context.Context, recipeID uuid.UUID, actor *models.User, in RecipeInput) (*types.RecipeView, error) {
	recipe, err := s.load(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return nil, ErrPermissionDenied
	}

	updates := map[string]interface{}{}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, validationErr("name", "must not be empty")
		}
		if err := s.validateName(ctx, recipe.AuthorID, *in.Name, recipe.ID); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
	}
	if in.Text != nil {
		if *in.Text == "" {
			return nil, validationErr("text", "must not be empty")
		}
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		if *in.CookingTime < 1 {
			return nil, validationErr("cooking_time", "must be at least 1")
		}
		updates["cooking_time"] = *in.CookingTime
	}

	var links []models.RecipeIngredient
	if in.Ingredients != nil {
		links, err = s.validateIngredients(ctx, *in.Ingredients)
		if err != nil {
			return nil, err
		}
	}
	var tags []models.Tag
	if in.Tags != nil {
		tags, err = s.validateTags(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
	}

	if in.Image != nil && *in.Image != "" {
		data, contentType, err := DecodeBase64Image(*in.Image)
		if err != nil {
			return nil, validationErr("image", err.Error())
		}
		imageURL, err := s.images.Store(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := s.replaceIngredients(tx, recipe.ID, links); err != nil {
				return err
			}
		}
		if in.Tags != nil {
			return tx.Model(recipe).Association("Tags").Replace(tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	viewer := actor.ID
	return s.Get(ctx, recipe.ID, &viewer)
}

// Delete removes the recipe and all rows referencing it.
func (s *RecipeService) Delete(ctx context.Context, recipeID uuid.UUID, actor *models.User) error {
	recipe, err := s.load(ctx, recipeID)
	if err != nil {
		return err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// Get returns the full read shape of one recipe.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.view(ctx, &recipe, viewerID)
}

// List returns recipes matching the filter, newest first. Filter
// dimensions compose with AND; the tag dimension matches any of the
// supplied slugs.
func (s *RecipeService) List(ctx context.Context, viewerID *uuid.UUID, f RecipeFilter) ([]types.RecipeView, error) {
	query := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("created_at DESC")

	if f.AuthorID != nil {
		query = query.Where("author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.Where(
			"recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
			f.TagSlugs,
		)
	}
	// The favorited and cart filters are a silent no-op for anonymous
	// viewers.
	if f.Favorited && viewerID != nil {
		query = query.Where("recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)", *viewerID)
	}
	if f.InCart && viewerID != nil {
		query = query.Where("recipes.id IN (SELECT recipe_id FROM cart_items WHERE user_id = ?)", *viewerID)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := s.view(ctx, &recipes[i], viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Exists reports whether a recipe id resolves, without loading relations.
func (s *RecipeService) Exists(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.load(ctx, recipeID)
}

func (s *RecipeService) load(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) view(ctx context.Context, recipe *models.Recipe, viewerID *uuid.UUID) (*types.RecipeView, error) {
	author, err := s.profiles.Profile(ctx, &recipe.Author, viewerID)
	if err != nil {
		return nil, err
	}

	tags := make([]types.TagView, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, types.TagView{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	ingredients := make([]types.IngredientView, 0, len(recipe.Ingredients))
	for _, link := range recipe.Ingredients {
		ingredients = append(ingredients, types.IngredientView{
			ID:              link.Ingredient.ID,
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		})
	}

	favorited, err := s.hasEdge(ctx, &models.Favorite{}, viewerID, recipe.ID)
	if err != nil {
		return nil, err
	}
	inCart, err := s.hasEdge(ctx, &models.CartItem{}, viewerID, recipe.ID)
	if err != nil {
		return nil, err
	}

	return &types.RecipeView{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}

func (s *RecipeService) hasEdge(ctx context.Context, model interface{}, viewerID *uuid.UUID, recipeID uuid.UUID) (bool, error) {
	if viewerID == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id = ?", *viewerID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s *RecipeService) validateName(ctx context.Context, authorID uuid.UUID, name string, excludeID uuid.UUID) error {
	if len(name) > maxRecipeNameLength {
		return validationErr("name", fmt.Sprintf("must be at most %d characters", maxRecipeNameLength))
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ?", authorID, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationErr("name", "you already have a recipe with this name")
	}
	return nil
}

// validateIngredients checks the payload list and resolves it into link
// rows ready to insert.
func (s *RecipeService) validateIngredients(ctx context.Context, items []IngredientAmount) ([]models.RecipeIngredient, error) {
	if len(items) == 0 {
		return nil, validationErr("ingredients", "must not be empty")
	}

	seen := make(map[uuid.UUID]bool, len(items))
	links := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return nil, validationErr("ingredients", "ingredient amount must be at least 1")
		}
		if seen[item.ID] {
			return nil, validationErr("ingredients", fmt.Sprintf("duplicate ingredient %s", item.ID))
		}
		seen[item.ID] = true

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
			Where("id = ?", item.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, validationErr("ingredients", fmt.Sprintf("ingredient %s does not exist", item.ID))
		}

		links = append(links, models.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return links, nil
}

func (s *RecipeService) validateTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, validationErr("tags", "must not be empty")
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, validationErr("tags", fmt.Sprintf("duplicate tag %s", id))
		}
		seen[id] = true

		var tag models.Tag
		if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationErr("tags", fmt.Sprintf("tag %s does not exist", id))
			}
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *RecipeService) replaceIngredients(tx *gorm.DB, recipeID uuid.UUID, links []models.RecipeIngredient) error {
	for i := range links {
		links[i].ID = uuid.Nil
		links[i].RecipeID = recipeID
		if err := tx.Create(&links[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func recipeShort(r *models.Recipe) types.RecipeShort {
	return types.RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}
