// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the authorization role carried by a user account.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	// RoleGuest is never persisted; it marks an unauthenticated requester.
	RoleGuest Role = "guest"
)

// Valid reports whether r is a role a user account may hold.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User represents an account in the archive.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FullName      string    `gorm:"size:255;not null" json:"fullName"`
	ContactNumber string    `gorm:"size:32" json:"contactNumber"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	Role          Role      `gorm:"size:16;not null;default:student;index" json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
