package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scg/portal/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email           string            `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName       string            `gorm:"type:varchar(30)"`
	LastName        string            `gorm:"type:varchar(150)"`
	Type            identity.UserType `gorm:"type:varchar(20);not null;default:'normal'"`
	IsStaff         bool              `gorm:"not null;default:false"`
	IsSuperuser     bool              `gorm:"not null;default:false"`
	IsActive        bool              `gorm:"not null;default:false"`
	PasswordHash    string            `gorm:"type:varchar(255)"`
	PasswordHistory pq.StringArray    `gorm:"type:text[]"`
	Permissions     pq.StringArray    `gorm:"type:text[]"`
	LastLoginAt     *time.Time

	Memberships []UserCustomerModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Type:              m.Type,
		IsStaff:           m.IsStaff,
		IsSuperuser:       m.IsSuperuser,
		IsActive:          m.IsActive,
		PasswordHash:      m.PasswordHash,
		PasswordHistory:   []string(m.PasswordHistory),
		Permissions:       []string(m.Permissions),
		LastLoginAt:       m.LastLoginAt,
		CustomerIDs:       make([]uuid.UUID, 0, len(m.Memberships)),
	}
	for _, membership := range m.Memberships {
		u.CustomerIDs = append(u.CustomerIDs, membership.CustomerID)
	}
	return u
}

// FromDomain populates the persistence model from a domain User entity.
// Memberships are written separately by the repository.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Type = u.Type
	m.IsStaff = u.IsStaff
	m.IsSuperuser = u.IsSuperuser
	m.IsActive = u.IsActive
	m.PasswordHash = u.PasswordHash
	m.PasswordHistory = pq.StringArray(u.PasswordHistory)
	m.Permissions = pq.StringArray(u.Permissions)
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserCustomerModel links a user to a customer they may act for.
type UserCustomerModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserCustomerModel) TableName() string {
	return "user_customers"
}

// UserCustomerModels builds the membership rows of a user
func UserCustomerModels(u *identity.User) []UserCustomerModel {
	rows := make([]UserCustomerModel, 0, len(u.CustomerIDs))
	now := time.Now()
	for _, id := range u.CustomerIDs {
		rows = append(rows, UserCustomerModel{UserID: u.ID, CustomerID: id, CreatedAt: now})
	}
	return rows
}
