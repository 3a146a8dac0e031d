package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/identity"
)

// LoginRequest contains the credentials for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse contains the token pair, the user and the customer the UI opens first
type LoginResponse struct {
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time     `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time     `json:"refresh_token_expires_at"`
	TokenType             string        `json:"token_type"`
	User                  *UserResponse `json:"user"`
	DefaultCustomerID     *uuid.UUID    `json:"default_customer_id,omitempty"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is a refreshed token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the tokens to revoke.
// RefreshToken is optional; when valid it is revoked as well.
type LogoutInput struct {
	UserID       uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string
}

// UpdateProfileRequest changes the caller's own name and, optionally, password
type UpdateProfileRequest struct {
	FirstName    string `json:"first_name" binding:"max=30"`
	LastName     string `json:"last_name" binding:"max=150"`
	NewPassword1 string `json:"new_password1" binding:"max=128"`
	NewPassword2 string `json:"new_password2" binding:"max=128"`
}

// PasswordResetRequest starts a password reset
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// PasswordResetConfirmRequest sets a new password with a reset token
type PasswordResetConfirmRequest struct {
	Token        string `json:"token" binding:"required"`
	NewPassword1 string `json:"new_password1" binding:"required,max=128"`
	NewPassword2 string `json:"new_password2" binding:"required,max=128"`
}

// CreateUserRequest adds a user to a customer
type CreateUserRequest struct {
	Email       string   `json:"email" binding:"required,email,max=254"`
	FirstName   string   `json:"first_name" binding:"max=30"`
	LastName    string   `json:"last_name" binding:"max=150"`
	Type        string   `json:"type" binding:"omitempty,oneof=normal multi_account staff"`
	Permissions []string `json:"permissions"`
}

// UpdateUserRequest changes a user of a customer.
// CustomerIDs replaces the memberships when set.
type UpdateUserRequest struct {
	Email       string      `json:"email" binding:"required,email,max=254"`
	FirstName   string      `json:"first_name" binding:"max=30"`
	LastName    string      `json:"last_name" binding:"max=150"`
	Type        string      `json:"type" binding:"required,oneof=normal multi_account staff"`
	CustomerIDs []uuid.UUID `json:"customer_ids"`
	Permissions *[]string   `json:"permissions"`
}

// UserListFilter filters the users of a customer
type UserListFilter struct {
	Search    string `form:"search"`
	IsActive  *bool  `form:"is_active"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=email first_name last_name created_at last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	FullName    string      `json:"full_name"`
	Type        string      `json:"type"`
	IsStaff     bool        `json:"is_staff"`
	IsSuperuser bool        `json:"is_superuser"`
	IsActive    bool        `json:"is_active"`
	CustomerIDs []uuid.UUID `json:"customer_ids"`
	Permissions []string    `json:"permissions"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToUserResponse converts a domain user to a response
func ToUserResponse(u *identity.User) *UserResponse {
	customerIDs := u.CustomerIDs
	if customerIDs == nil {
		customerIDs = []uuid.UUID{}
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Type:        string(u.Type),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CustomerIDs: customerIDs,
		Permissions: u.EffectivePermissions(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses converts a list of users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = *ToUserResponse(u)
	}
	return out
}
