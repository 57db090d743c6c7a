package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/types"
)

// RegisterInput is the payload accepted by user registration.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// AuthService owns user accounts, credentials and tokens.
type AuthService struct {
	db        *gorm.DB
	images    ImageStore
	jwtSecret string
}

func NewAuthService(db *gorm.DB, images ImageStore, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		images:    images,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a hashed password. Email and username must
// be globally unique.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" {
		return nil, validationErr("email", "must not be empty")
	}
	if in.Username == "" {
		return nil, validationErr("username", "must not be empty")
	}
	if len(in.Password) < 8 {
		return nil, validationErr("password", "must be at least 8 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("email", "a user with this email already exists")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("username", "a user with this username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        strings.ToLower(in.Email),
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Two concurrent registrations can slip past the pre-checks; the
		// unique indexes are the final arbiter.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErr("email", "a user with this email or username already exists")
		}
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
}

// SetPassword changes a user's password after verifying the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return validationErr("current_password", "wrong password")
	}
	if len(next) < 8 {
		return validationErr("new_password", "must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(user).
		Update("password_hash", string(hashedPassword)).Error
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetAvatar decodes and stores an inline base64 avatar image.
func (s *AuthService) SetAvatar(ctx context.Context, userID uuid.UUID, payload string) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, contentType, err := DecodeBase64Image(payload)
	if err != nil {
		return nil, validationErr("avatar", err.Error())
	}

	url, err := s.images.Store(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar_url", url).Error; err != nil {
		return nil, err
	}
	user.AvatarURL = url
	return user, nil
}

// ClearAvatar removes the user's avatar reference.
func (s *AuthService) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("avatar_url", "").Error
}

// GenerateToken signs claims into an HS256 bearer token.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  claims.UserID.String(),
		"username": claims.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a bearer token.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)
	return &types.TokenClaims{UserID: userID, Username: username}, nil
}
