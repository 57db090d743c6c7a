package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/types"
)

// ProfileService builds the public read shapes of users. viewerID is nil
// for anonymous requests; derived fields are then always false.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Profile returns the read shape of a single user.
func (s *ProfileService) Profile(ctx context.Context, user *models.User, viewerID *uuid.UUID) (types.UserProfile, error) {
	subscribed, err := s.isSubscribed(ctx, viewerID, user.ID)
	if err != nil {
		return types.UserProfile{}, err
	}
	return types.UserProfile{
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		IsSubscribed: subscribed,
		Avatar:       user.AvatarURL,
	}, nil
}

// ListUsers returns user profiles ordered by username with limit/offset
// paging.
func (s *ProfileService) ListUsers(ctx context.Context, viewerID *uuid.UUID, limit, offset int) ([]types.UserProfile, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").
		Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, err
	}

	profiles := make([]types.UserProfile, 0, len(users))
	for i := range users {
		profile, err := s.Profile(ctx, &users[i], viewerID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// SubscriptionProfile returns the extended profile used by subscription
// responses: the target's recipes capped at recipesLimit (0 means no cap)
// and the uncapped recipe count.
func (s *ProfileService) SubscriptionProfile(ctx context.Context, target *models.User, viewerID *uuid.UUID, recipesLimit int) (*types.SubscriptionProfile, error) {
	profile, err := s.Profile(ctx, target, viewerID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", target.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", target.ID).Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	shorts := make([]types.RecipeShort, 0, len(recipes))
	for _, r := range recipes {
		shorts = append(shorts, types.RecipeShort{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}

	return &types.SubscriptionProfile{
		UserProfile:  profile,
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

// Subscriptions lists the extended profiles of everyone the subscriber
// follows, with limit/offset paging.
func (s *ProfileService) Subscriptions(ctx context.Context, subscriberID uuid.UUID, recipesLimit, limit, offset int) ([]types.SubscriptionProfile, error) {
	var subs []models.Subscription
	if err := s.db.WithContext(ctx).Preload("Target").
		Where("subscriber_id = ?", subscriberID).
		Order("created_at").Limit(limit).Offset(offset).
		Find(&subs).Error; err != nil {
		return nil, err
	}

	viewer := subscriberID
	profiles := make([]types.SubscriptionProfile, 0, len(subs))
	for i := range subs {
		profile, err := s.SubscriptionProfile(ctx, &subs[i].Target, &viewer, recipesLimit)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

func (s *ProfileService) isSubscribed(ctx context.Context, viewerID *uuid.UUID, targetID uuid.UUID) (bool, error) {
	if viewerID == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_id = ?", *viewerID, targetID).
		Count(&count).Error
	return count > 0, err
}
