package models

import (
	"time"
)

// Account status values. Deactivation is terminal: nothing moves a user
// back from INACTIVE to ACTIVE.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

type User struct {
	ID            uint    `gorm:"primarykey"`
	FullName      string  `gorm:"not null"`
	Username      string  `gorm:"uniqueIndex;not null"`
	Email         string  `gorm:"uniqueIndex;not null"`
	Password      string  `gorm:"not null"` // bcrypt hash
	Pin           *string // bcrypt hash; nil until the user sets one
	AccountStatus string  `gorm:"not null;default:'ACTIVE'"`
	PhoneNumber   string
	DateOfBirth   *time.Time
	Address       string
	NomineeName   string
	TokenVersion  int           `gorm:"default:1"`
	Accounts      []Account     `gorm:"foreignKey:UserID"`
	ActivityLogs  []ActivityLog `gorm:"foreignKey:UserID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateUserInput is the payload for registering a new user.
type CreateUserInput struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateInput carries the editable contact fields of a profile.
type ProfileUpdateInput struct {
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     string     `json:"address"`
	NomineeName string     `json:"nominee_name"`
}
