package identity

import (
	"github.com/scg/portal/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated            = "UserCreated"
	EventTypePasswordResetRequested = "PasswordResetRequested"
	EventTypeUserDeactivated        = "UserDeactivated"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.DefaultCustomerID()),
		Email:           u.Email,
		FirstName:       u.FirstName,
	}
}

// PasswordResetRequestedEvent carries a single-use reset token to the mailer.
// Welcome marks the first link sent to a newly created user.
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Token     string `json:"-"`
	Welcome   bool   `json:"welcome"`
}

// NewPasswordResetRequestedEvent creates a new PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(u *User, token string, welcome bool) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, u.ID, u.DefaultCustomerID()),
		Email:           u.Email,
		FirstName:       u.FirstName,
		Token:           token,
		Welcome:         welcome,
	}
}

// UserDeactivatedEvent is published when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, u.ID, u.DefaultCustomerID()),
		Email:           u.Email,
	}
}
