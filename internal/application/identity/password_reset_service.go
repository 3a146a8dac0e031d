package identity

import (
	"context"
	"errors"
	"time"

	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultResetTokenTTL is used when no TTL is configured
const DefaultResetTokenTTL = time.Hour

// PasswordResetService issues reset links and sets passwords from them
type PasswordResetService struct {
	userRepo       identity.UserRepository
	tokens         identity.ResetTokenStore
	eventPublisher shared.EventPublisher
	policy         *identity.PasswordPolicy
	ttl            time.Duration
	logger         *zap.Logger
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	userRepo identity.UserRepository,
	tokens identity.ResetTokenStore,
	eventPublisher shared.EventPublisher,
	policy *identity.PasswordPolicy,
	ttl time.Duration,
	logger *zap.Logger,
) *PasswordResetService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &PasswordResetService{
		userRepo:       userRepo,
		tokens:         tokens,
		eventPublisher: eventPublisher,
		policy:         policy,
		ttl:            ttl,
		logger:         logger,
	}
}

// RequestReset mails a reset link when the e-mail belongs to a user.
// The outcome is never reported to the caller.
func (s *PasswordResetService) RequestReset(ctx context.Context, req PasswordResetRequest) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Password reset requested for unknown e-mail")
		} else {
			s.logger.Error("Failed to look up user for password reset", zap.Error(err))
		}
		return
	}
	if err := s.SendLink(ctx, user, false); err != nil {
		s.logger.Error("Failed to issue password reset link",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

// SendLink issues a token and raises the event that mails it.
// welcome selects the new-account mail.
func (s *PasswordResetService) SendLink(ctx context.Context, user *identity.User, welcome bool) error {
	token, err := s.tokens.Issue(ctx, user.ID, s.ttl)
	if err != nil {
		return err
	}
	user.RequestPasswordReset(token, welcome)
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, user)

	s.logger.Info("Password reset link issued",
		zap.String("user_id", user.ID.String()),
		zap.Bool("welcome", welcome))
	return nil
}

// Confirm sets a new password from a reset token and activates the account.
// The token stays valid until the new password passed the policy.
func (s *PasswordResetService) Confirm(ctx context.Context, req PasswordResetConfirmRequest) error {
	if err := checkPasswordPair(req.NewPassword1, req.NewPassword2); err != nil {
		return err
	}

	userID, err := s.tokens.Lookup(ctx, req.Token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.ErrInvalidResetToken
		}
		return err
	}

	if err := user.SetPassword(req.NewPassword1, s.policy); err != nil {
		return err
	}
	user.Activate()

	if _, err := s.tokens.Consume(ctx, req.Token); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}
