package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Errors returned by user management
var (
	ErrDuplicateEmail     = shared.NewDomainError("ALREADY_EXISTS", "A user with that email already exists.")
	ErrCannotDeactivateMe = shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account.")
	ErrCannotDeleteMe     = shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account.")
	ErrStaffOutsideMain   = shared.NewDomainError("INVALID_USER_TYPE", "Staff users can only be created in the main customer.")
)

// UserService manages the users of a customer
type UserService struct {
	userRepo       identity.UserRepository
	customerRepo   customer.CustomerRepository
	resets         *PasswordResetService
	blacklist      auth.TokenBlacklist
	tokenTTL       time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService.
// tokenTTL is the longest lifetime of an issued token, used when revoking all tokens of a user.
func NewUserService(
	userRepo identity.UserRepository,
	customerRepo customer.CustomerRepository,
	resets *PasswordResetService,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		customerRepo:   customerRepo,
		resets:         resets,
		blacklist:      blacklist,
		tokenTTL:       tokenTTL,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// List returns the users of a customer. Staff are listed only for the main customer.
func (s *UserService) List(ctx context.Context, customerID uuid.UUID, filter UserListFilter) ([]UserResponse, int64, error) {
	cust, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	f := identity.NewUserFilter()
	f.Keyword = filter.Search
	f.IsActive = filter.IsActive
	f.IncludeStaff = cust.IsMain()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.SortBy != "" {
		f.SortBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		f.SortOrder = filter.SortOrder
	}

	users, total, err := s.userRepo.FindByCustomer(ctx, customerID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// Get returns one user of the customer
func (s *UserService) Get(ctx context.Context, customerID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findInCustomer(ctx, customerID, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Create adds an inactive user to the customer and mails a welcome link
func (s *UserService) Create(ctx context.Context, customerID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	cust, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	userType := identity.UserType(req.Type)
	if userType == identity.UserTypeStaff && !cust.IsMain() {
		return nil, ErrStaffOutsideMain
	}

	email, err := identity.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, email, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	user, err := identity.NewUser(email, req.FirstName, req.LastName, userType, []uuid.UUID{customerID})
	if err != nil {
		return nil, err
	}
	perms := req.Permissions
	if perms == nil {
		perms = identity.DefaultCustomerPermissions
	}
	if err := user.GrantPermissions(perms); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, user)

	if err := s.resets.SendLink(ctx, user, true); err != nil {
		// The account exists; staff can resend the link
		s.logger.Error("Failed to send welcome link",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("customer_id", customerID.String()))
	return ToUserResponse(user), nil
}

// Update changes a user of the customer
func (s *UserService) Update(ctx context.Context, customerID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findInCustomer(ctx, customerID, userID)
	if err != nil {
		return nil, err
	}

	email, err := identity.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, email, &userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	customerIDs := req.CustomerIDs
	if customerIDs == nil {
		customerIDs = user.CustomerIDs
	}
	if err := user.UpdateProfile(email, req.FirstName, req.LastName, identity.UserType(req.Type), customerIDs); err != nil {
		return nil, err
	}
	if req.Permissions != nil {
		if err := user.GrantPermissions(*req.Permissions); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User updated", zap.String("user_id", userID.String()))
	return ToUserResponse(user), nil
}

// Delete removes a user of the customer and revokes its tokens
func (s *UserService) Delete(ctx context.Context, customerID, userID, actorID uuid.UUID) error {
	if userID == actorID {
		return ErrCannotDeleteMe
	}
	if _, err := s.findInCustomer(ctx, customerID, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.revokeSessions(ctx, userID)
	s.logger.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}

// Activate enables login for a user of the customer
func (s *UserService) Activate(ctx context.Context, customerID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findInCustomer(ctx, customerID, userID)
	if err != nil {
		return nil, err
	}
	user.Activate()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User activated", zap.String("user_id", userID.String()))
	return ToUserResponse(user), nil
}

// Deactivate disables login and revokes every outstanding token of the user
func (s *UserService) Deactivate(ctx context.Context, customerID, userID, actorID uuid.UUID) (*UserResponse, error) {
	if userID == actorID {
		return nil, ErrCannotDeactivateMe
	}
	user, err := s.findInCustomer(ctx, customerID, userID)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, user)
	s.revokeSessions(ctx, userID)

	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))
	return ToUserResponse(user), nil
}

// SendResetLink mails a password reset link to a user of the customer
func (s *UserService) SendResetLink(ctx context.Context, customerID, userID uuid.UUID) error {
	user, err := s.findInCustomer(ctx, customerID, userID)
	if err != nil {
		return err
	}
	return s.resets.SendLink(ctx, user, false)
}

// findInCustomer loads a user and hides users outside the customer.
// Staff are visible in the main customer.
func (s *UserService) findInCustomer(ctx context.Context, customerID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.BelongsTo(customerID) {
		return user, nil
	}
	if user.IsStaff {
		cust, err := s.customerRepo.FindByID(ctx, customerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if cust != nil && cust.IsMain() {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	if err := s.resets.tokens.RevokeUser(ctx, userID); err != nil {
		s.logger.Error("Failed to revoke reset tokens",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}
