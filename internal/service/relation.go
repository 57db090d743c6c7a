package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/types"
)

// RelationService manages the user-to-recipe edges (favorites, shopping
// cart) and user-to-user subscriptions. Adding an existing edge or
// removing a missing one is a conflict; a missing target is not found.
type RelationService struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewRelationService(db *gorm.DB, profiles *ProfileService) *RelationService {
	return &RelationService{db: db, profiles: profiles}
}

// AddFavorite marks a recipe as the user's favorite and returns its short
// shape.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShort, error) {
	recipe, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	edge := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.addEdge(ctx, &edge, "recipe is already in favorites"); err != nil {
		return nil, err
	}
	short := recipeShort(recipe)
	return &short, nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.removeEdge(ctx, &models.Favorite{},
		userID, recipeID, "recipe is not in favorites")
}

// AddCartItem puts a recipe into the user's shopping cart and returns its
// short shape.
func (s *RelationService) AddCartItem(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShort, error) {
	recipe, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	edge := models.CartItem{UserID: userID, RecipeID: recipeID}
	if err := s.addEdge(ctx, &edge, "recipe is already in the shopping cart"); err != nil {
		return nil, err
	}
	short := recipeShort(recipe)
	return &short, nil
}

func (s *RelationService) RemoveCartItem(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.removeEdge(ctx, &models.CartItem{},
		userID, recipeID, "recipe is not in the shopping cart")
}

// Subscribe follows another user and returns their extended profile. The
// self-subscription guard fires before the target lookup, so subscribing
// to oneself is always a conflict even with a bogus id.
func (s *RelationService) Subscribe(ctx context.Context, subscriberID, targetID uuid.UUID, recipesLimit int) (*types.SubscriptionProfile, error) {
	if subscriberID == targetID {
		return nil, ErrSelfSubscription
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	edge := models.Subscription{SubscriberID: subscriberID, TargetID: targetID}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict(ErrAlreadyExists, "already subscribed to this user")
	}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(ErrAlreadyExists, "already subscribed to this user")
		}
		return nil, err
	}

	return s.profiles.SubscriptionProfile(ctx, &target, &subscriberID, recipesLimit)
}

func (s *RelationService) Unsubscribe(ctx context.Context, subscriberID, targetID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", targetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	result := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict(ErrEdgeNotFound, "not subscribed to this user")
	}
	return nil
}

func (s *RelationService) loadRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) addEdge(ctx context.Context, edge interface{}, existsMsg string) error {
	if err := s.db.WithContext(ctx).Create(edge).Error; err != nil {
		// The composite unique index also catches concurrent duplicates.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict(ErrAlreadyExists, existsMsg)
		}
		return err
	}
	return nil
}

func (s *RelationService) removeEdge(ctx context.Context, model interface{}, userID, recipeID uuid.UUID, missingMsg string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflict(ErrEdgeNotFound, missingMsg)
	}
	return nil
}
