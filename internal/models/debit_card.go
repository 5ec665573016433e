package models

import "time"

// DebitCard is issued alongside an account. The three switches are toggled
// independently and every toggle lands in the activity log.
type DebitCard struct {
	ID                   uint   `gorm:"primarykey"`
	CardNumber           string `gorm:"uniqueIndex;not null"` // dddd-dddd-dddd-dddd
	CardHolderName       string `gorm:"not null"`
	ExpiryDate           time.Time
	CVV                  string `gorm:"not null"`
	Active               bool   `gorm:"default:true"`
	OnlineEnabled        bool   `gorm:"default:true"`
	InternationalEnabled bool   `gorm:"default:false"`
	AccountID            uint   `gorm:"uniqueIndex;not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
