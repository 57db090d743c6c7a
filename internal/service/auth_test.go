package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func newAuthService(t *testing.T) (*service.AuthService, *service.MemoryImageStore) {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	images := service.NewMemoryImageStore()
	return service.NewAuthService(db, images, "test-secret"), images
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{
		Email:     "Alice@Example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is stored lowercased")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = svc.Login(ctx, "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	valid := service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	}
	_, err := svc.Register(ctx, valid)
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    service.RegisterInput
		field string
	}{
		{"empty email", service.RegisterInput{Username: "x", Password: "password123"}, "email"},
		{"empty username", service.RegisterInput{Email: "x@example.com", Password: "password123"}, "username"},
		{"short password", service.RegisterInput{Email: "x@example.com", Username: "x", Password: "short"}, "password"},
		{"duplicate email", service.RegisterInput{Email: "alice@example.com", Username: "other", Password: "password123"}, "email"},
		{"duplicate username", service.RegisterInput{Email: "other@example.com", Username: "alice", Password: "password123"}, "username"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			var vErr *service.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestSetPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	err = svc.SetPassword(ctx, user.ID, "wrongpassword", "newpassword456")
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "current_password", vErr.Field)

	err = svc.SetPassword(ctx, user.ID, "password123", "short")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_password", vErr.Field)

	require.NoError(t, svc.SetPassword(ctx, user.ID, "password123", "newpassword456"))

	_, err = svc.Login(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "newpassword456")
	assert.NoError(t, err)
}

func TestAvatarLifecycle(t *testing.T) {
	svc, images := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	updated, err := svc.SetAvatar(ctx, user.ID, testhelpers.TestImage)
	require.NoError(t, err)
	require.NotEmpty(t, updated.AvatarURL)

	_, stored := images.Get(updated.AvatarURL)
	assert.True(t, stored, "avatar bytes reachable through the store")

	_, err = svc.SetAvatar(ctx, user.ID, "garbage!!")
	var vErr *service.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "avatar", vErr.Field)

	require.NoError(t, svc.ClearAvatar(ctx, user.ID))
	reloaded, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.AvatarURL)
}
