package notification

import (
	"context"
	"fmt"

	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// AccountMailHandler sends the welcome and password reset mails
type AccountMailHandler struct {
	mailer      Mailer
	frontendURL string
	logger      *zap.Logger
}

// NewAccountMailHandler creates the handler
func NewAccountMailHandler(mailer Mailer, frontendURL string, logger *zap.Logger) *AccountMailHandler {
	return &AccountMailHandler{mailer: mailer, frontendURL: frontendURL, logger: logger}
}

// EventTypes returns the event types this handler is interested in.
// New users get their welcome mail through a reset request flagged Welcome.
func (h *AccountMailHandler) EventTypes() []string {
	return []string{identity.EventTypePasswordResetRequested}
}

// Handle renders and sends the mail for a reset request
func (h *AccountMailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	req, ok := event.(*identity.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			identity.EventTypePasswordResetRequested, event.EventType())
	}

	data := LinkData{
		FirstName: req.FirstName,
		Email:     req.Email,
		Link:      ResetLink(h.frontendURL, req.Token),
	}
	var (
		msg Message
		err error
	)
	if req.Welcome {
		msg, err = WelcomeMessage(req.Email, data)
	} else {
		msg, err = PasswordResetMessage(req.Email, data)
	}
	if err != nil {
		return err
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("Failed to send account mail",
			zap.String("user_id", req.AggregateID().String()),
			zap.Bool("welcome", req.Welcome),
			zap.Error(err),
		)
		return err
	}
	h.logger.Info("Account mail sent",
		zap.String("user_id", req.AggregateID().String()),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var _ shared.EventHandler = (*AccountMailHandler)(nil)
