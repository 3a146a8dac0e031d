package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/scg/portal/internal/application/identity"
	"github.com/scg/portal/internal/interfaces/http/middleware"
)

// AuthService authenticates users and manages their own profile
type AuthService interface {
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResponse, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, input identityapp.LogoutInput) error
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error)
}

// PasswordResetService issues and redeems password reset tokens
type PasswordResetService interface {
	RequestReset(ctx context.Context, req identityapp.PasswordResetRequest)
	Confirm(ctx context.Context, req identityapp.PasswordResetConfirmRequest) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService  AuthService
	resetService PasswordResetService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService, resetService PasswordResetService) *AuthHandler {
	return &AuthHandler{authService: authService, resetService: resetService}
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password. Returns a token pair and the default customer.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[identityapp.LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh the token pair
// @Description  The presented refresh token is revoked and a new pair issued
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[identityapp.TokenResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revokes the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.BadRequest(c, "Invalid request body")
			return
		}
	}

	err := h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:       userID,
		AccessJTI:    claims.ID,
		AccessTTL:    claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile godoc
// @ID           updateProfile
// @Summary      Update own profile
// @Description  Changes the name and, when both password fields are set, the password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// RequestPasswordReset godoc
// @ID           requestPasswordReset
// @Summary      Request a password reset link
// @Description  Answers 200 whether or not the email is registered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.PasswordResetRequest true "Email"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Router       /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req identityapp.PasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.resetService.RequestReset(c.Request.Context(), req)
	h.Success(c, MessageData{Message: passwordResetAccepted})
}

// ConfirmPasswordReset godoc
// @ID           confirmPasswordReset
// @Summary      Set a new password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.PasswordResetConfirmRequest true "Token and new password"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Router       /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req identityapp.PasswordResetConfirmRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.resetService.Confirm(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password has been reset"})
}
