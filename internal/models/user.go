// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the access tier attached to a user account.
type Role string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "user"
	// RoleAdmin grants administrative privileges across the marketplace.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a marketplace account. Email is the login identifier.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      Role           `gorm:"not null;default:user" json:"role"`
	FirstName string         `gorm:"not null" json:"first_name"`
	LastName  string         `gorm:"not null" json:"last_name"`
	Phone     string         `gorm:"not null" json:"phone"`
	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	Image     string         `json:"image,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Ads       []Ad           `gorm:"foreignKey:AuthorID" json:"ads,omitempty"`
}

// IsAdmin reports whether the account holds administrative privileges.
// Derived from Role, never stored separately.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsUser reports whether the account is a regular user.
func (u *User) IsUser() bool {
	return u.Role == RoleUser
}
