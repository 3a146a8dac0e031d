package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles login, token refresh, logout and the caller's own profile
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	policy     *identity.PasswordPolicy
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	policy *identity.PasswordPolicy,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		policy:     policy,
		logger:     logger,
	}
}

// Login authenticates a user by e-mail and password.
// Unknown users, wrong passwords and inactive accounts share one error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown user", zap.String("email", req.Email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if err := user.CanLogin(); err != nil {
		s.logger.Warn("Login refused",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The login itself succeeded
		s.logger.Error("Failed to record last login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	resp := &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}
	if id := user.DefaultCustomerID(); id != uuid.Nil {
		resp.DefaultCustomerID = &id
	}
	return resp, nil
}

// Refresh exchanges a refresh token for a new pair.
// The used refresh token is revoked and the user's current memberships are reloaded.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if err := user.CanLogin(); err != nil {
		s.logger.Warn("Token refresh for user who can no longer log in", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			s.logger.Error("Failed to revoke access token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
			}
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// UpdateProfile changes the caller's name and, when both password fields are set, the password
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.UpdateProfile(user.Email, req.FirstName, req.LastName, user.Type, user.CustomerIDs); err != nil {
		return nil, err
	}

	changePassword := req.NewPassword1 != "" || req.NewPassword2 != ""
	if changePassword {
		if err := checkPasswordPair(req.NewPassword1, req.NewPassword2); err != nil {
			return nil, err
		}
		if err := user.SetPassword(req.NewPassword1, s.policy); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.Bool("password_changed", changePassword))
	return ToUserResponse(user), nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:      u.ID,
		Email:       u.Email,
		IsStaff:     u.IsStaff || u.IsSuperuser,
		CustomerIDs: u.CustomerIDs,
		Permissions: u.EffectivePermissions(),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
