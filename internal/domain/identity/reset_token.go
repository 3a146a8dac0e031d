package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
)

// ErrInvalidResetToken is returned for unknown, used or expired reset tokens
var ErrInvalidResetToken = shared.NewDomainError("INVALID_TOKEN", "The password reset link is invalid or has expired.")

// ResetTokenStore keeps single-use password reset tokens
type ResetTokenStore interface {
	// Issue creates a token for the user that expires after ttl
	Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)

	// Lookup returns the token's user without invalidating it
	Lookup(ctx context.Context, token string) (uuid.UUID, error)

	// Consume returns the token's user and invalidates every outstanding token of that user
	Consume(ctx context.Context, token string) (uuid.UUID, error)

	// RevokeUser invalidates every outstanding token of the user
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}
