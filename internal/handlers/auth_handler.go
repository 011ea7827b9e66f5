package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/internal/services"
)

type AuthHandler struct {
	users  services.UserService
	auth   services.AuthService
	resets services.PasswordResetService
}

func NewAuthHandler(users services.UserService, auth services.AuthService, resets services.PasswordResetService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, resets: resets}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Logger.Infof("[auth][register][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		config.Logger.Errorf("[auth][register][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	config.Logger.Infof("[auth][register][ok] id=%d username=%q", user.ID, user.Username)
	c.JSON(http.StatusCreated, user)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		config.Logger.Infof("[auth][login][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			config.Logger.Infof("[auth][login][401] email=%q", req.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		config.Logger.Errorf("[auth][login][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		config.Logger.Errorf("[auth][login][err] sign token for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	config.Logger.Infof("[auth][login][ok] userID=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// POST /api/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		config.Logger.Errorf("[auth][reset-request][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request password reset"})
		return
	}
	// same answer whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset email was sent"})
}

// POST /api/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		config.Logger.Errorf("[auth][reset-confirm][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
