package identity

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserType controls how many customers a user may belong to
type UserType string

const (
	UserTypeNormal       UserType = "normal"
	UserTypeMultiAccount UserType = "multi_account"
	UserTypeStaff        UserType = "staff"
)

// IsValid reports whether the type is known
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeNormal, UserTypeMultiAccount, UserTypeStaff:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

// User represents a portal account.
// Customer membership is stored in a join table and loaded by the repository.
type User struct {
	shared.BaseAggregateRoot
	Email           string   `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName       string   `gorm:"type:varchar(30)"`
	LastName        string   `gorm:"type:varchar(150)"`
	Type            UserType `gorm:"type:varchar(20);not null;default:'normal'"`
	IsStaff         bool     `gorm:"not null;default:false"`
	IsSuperuser     bool     `gorm:"not null;default:false"`
	IsActive        bool     `gorm:"not null;default:false"`
	PasswordHash    string   `gorm:"type:varchar(255)"`
	PasswordHistory []string `gorm:"-"`
	Permissions     []string `gorm:"-"`
	LastLoginAt     *time.Time
	CustomerIDs     []uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an inactive user without a usable password.
// The user activates the account through a password reset link.
func NewUser(email, firstName, lastName string, userType UserType, customerIDs []uuid.UUID) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateNames(firstName, lastName); err != nil {
		return nil, err
	}
	if userType == "" {
		userType = UserTypeNormal
	}
	if !userType.IsValid() {
		return nil, shared.NewDomainError("INVALID_USER_TYPE", "Invalid user type")
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Type:              userType,
		IsStaff:           userType == UserTypeStaff,
		PasswordHistory:   []string{},
		Permissions:       []string{},
	}
	if err := u.AssignCustomers(customerIDs); err != nil {
		return nil, err
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewSuperuser creates an active staff superuser with the given password
func NewSuperuser(email, password string, policy *PasswordPolicy) (*User, error) {
	u, err := NewUser(email, "", "", UserTypeStaff, nil)
	if err != nil {
		return nil, err
	}
	u.ClearDomainEvents()
	u.IsSuperuser = true
	if err := u.SetPassword(password, policy); err != nil {
		return nil, err
	}
	u.IsActive = true
	return u, nil
}

// UpdateProfile changes name, e-mail, type and membership
func (u *User) UpdateProfile(email, firstName, lastName string, userType UserType, customerIDs []uuid.UUID) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validateNames(firstName, lastName); err != nil {
		return err
	}
	if !userType.IsValid() {
		return shared.NewDomainError("INVALID_USER_TYPE", "Invalid user type")
	}
	old := u.Type
	u.Type = userType
	if err := u.AssignCustomers(customerIDs); err != nil {
		u.Type = old
		return err
	}
	u.Email = email
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.IsStaff = userType == UserTypeStaff || u.IsSuperuser
	u.touch()
	return nil
}

// AssignCustomers replaces the customers the user belongs to
func (u *User) AssignCustomers(customerIDs []uuid.UUID) error {
	ids := dedupe(customerIDs)
	if u.Type == UserTypeNormal && len(ids) > 1 {
		return shared.NewDomainError("TOO_MANY_CUSTOMERS", "Normal users can only be assigned to one customer.")
	}
	u.CustomerIDs = ids
	return nil
}

// DefaultCustomerID is the first customer of the user, or uuid.Nil
func (u *User) DefaultCustomerID() uuid.UUID {
	if len(u.CustomerIDs) == 0 {
		return uuid.Nil
	}
	return u.CustomerIDs[0]
}

// BelongsTo reports whether the user is a member of the customer
func (u *User) BelongsTo(customerID uuid.UUID) bool {
	for _, id := range u.CustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

// CanAccessCustomer reports whether the user may act within a customer
func (u *User) CanAccessCustomer(customerID uuid.UUID) bool {
	return u.IsStaff || u.IsSuperuser || u.BelongsTo(customerID)
}

// CanLogin checks login preconditions after the password matched
func (u *User) CanLogin() error {
	if !u.IsActive {
		return ErrInvalidCredentials
	}
	if u.Type == UserTypeNormal && len(u.CustomerIDs) > 1 {
		return shared.NewDomainError("TOO_MANY_CUSTOMERS", "Normal users can only be assigned to one customer. Please contact an administrator.")
	}
	return nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// SetPassword validates and stores a new password, keeping the previous hash in the history
func (u *User) SetPassword(password string, policy *PasswordPolicy) error {
	if policy != nil {
		if err := policy.Validate(password, u); err != nil {
			return err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	if u.PasswordHash != "" {
		u.PasswordHistory = append([]string{u.PasswordHash}, u.PasswordHistory...)
	}
	if policy != nil && policy.HistorySize > 0 && len(u.PasswordHistory) > policy.HistorySize {
		u.PasswordHistory = u.PasswordHistory[:policy.HistorySize]
	}
	u.PasswordHash = string(hash)
	u.touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UsedPassword reports whether password matches the current or a remembered hash
func (u *User) UsedPassword(password string, last int) bool {
	hashes := append([]string{u.PasswordHash}, u.PasswordHistory...)
	checked := 0
	for _, h := range hashes {
		if h == "" {
			continue
		}
		if checked >= last {
			break
		}
		checked++
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(password)) == nil {
			return true
		}
	}
	return false
}

// RequestPasswordReset records a reset request so the notifier can mail the link
func (u *User) RequestPasswordReset(token string, welcome bool) {
	u.AddDomainEvent(NewPasswordResetRequestedEvent(u, token, welcome))
}

// Activate enables login
func (u *User) Activate() {
	if u.IsActive {
		return
	}
	u.IsActive = true
	u.touch()
}

// Deactivate disables login
func (u *User) Deactivate() {
	if !u.IsActive {
		return
	}
	u.IsActive = false
	u.touch()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
}

// GrantPermissions replaces the explicit permission set
func (u *User) GrantPermissions(codes []string) error {
	perms := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		p, err := ParsePermission(code)
		if err != nil {
			return err
		}
		if !seen[p.Code] {
			seen[p.Code] = true
			perms = append(perms, p.Code)
		}
	}
	u.Permissions = perms
	u.touch()
	return nil
}

// HasPermission reports whether the user holds a permission. Staff hold all of them.
func (u *User) HasPermission(code string) bool {
	if u.IsStaff || u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// EffectivePermissions is the permission set carried in tokens
func (u *User) EffectivePermissions() []string {
	if u.IsStaff || u.IsSuperuser {
		return AllPermissionCodes()
	}
	return append([]string(nil), u.Permissions...)
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) touch() {
	u.Touch()
}

// NormalizeEmail validates an address and lower-cases it
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 254 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Enter a valid email address.")
	}
	return email, nil
}

func validateNames(first, last string) error {
	if utf8.RuneCountInString(strings.TrimSpace(first)) > 30 {
		return shared.NewDomainError("INVALID_FIRST_NAME", "First name cannot exceed 30 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(last)) > 150 {
		return shared.NewDomainError("INVALID_LAST_NAME", "Last name cannot exceed 150 characters")
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ErrInvalidCredentials is returned for unknown users, wrong passwords and inactive accounts
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials. Please try again.")
