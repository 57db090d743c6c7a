package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

// UserHandler serves registration, profiles, avatars, passwords and
// subscriptions.
type UserHandler struct {
	auth      *service.AuthService
	profiles  *service.ProfileService
	relations *service.RelationService
}

func NewUserHandler(auth *service.AuthService, profiles *service.ProfileService, relations *service.RelationService) *UserHandler {
	return &UserHandler{
		auth:      auth,
		profiles:  profiles,
		relations: relations,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.POST("", h.Register)
	users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
	users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)

	authed := users.Group("", middleware.AuthMiddleware(h.auth))
	authed.GET("/me", h.Me)
	authed.POST("/set_password", h.SetPassword)
	authed.PUT("/me/avatar", h.SetAvatar)
	authed.DELETE("/me/avatar", h.ClearAvatar)
	authed.GET("/subscriptions", h.Subscriptions)
	authed.POST("/:id/subscribe", h.Subscribe)
	authed.DELETE("/:id/subscribe", h.Unsubscribe)

	router.POST("/auth/login", h.Login)
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.profiles.Profile(c.Request.Context(), user, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	profiles, err := h.profiles.ListUsers(c.Request.Context(), viewerID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.profiles.Profile(c.Request.Context(), user, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := currentUserID(c)
	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.profiles.Profile(c.Request.Context(), user, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, _ := currentUserID(c)
	if err := h.auth.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type avatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, _ := currentUserID(c)
	user, err := h.auth.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": user.AvatarURL})
}

func (h *UserHandler) ClearAvatar(c *gin.Context) {
	userID, _ := currentUserID(c)
	if err := h.auth.ClearAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists everyone the caller follows. recipes_limit caps the
// embedded recipe list per author; the count stays uncapped.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := currentUserID(c)
	limit, offset := pagination(c)
	recipesLimit := intQuery(c, "recipes_limit", 0)

	profiles, err := h.profiles.Subscriptions(c.Request.Context(), userID, recipesLimit, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	userID, _ := currentUserID(c)
	recipesLimit := intQuery(c, "recipes_limit", 0)

	profile, err := h.relations.Subscribe(c.Request.Context(), userID, targetID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	userID, _ := currentUserID(c)
	if err := h.relations.Unsubscribe(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
