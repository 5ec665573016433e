package models

import "time"

// Activity type tags.
const (
	ActivityProfileUpdate      = "PROFILE_UPDATE"
	ActivityPasswordChange     = "PASSWORD_CHANGE"
	ActivityPinChange          = "PIN_CHANGE"
	ActivitySelfTransfer       = "SELF_TRANSFER"
	ActivityCardSettingsUpdate = "CARD_SETTINGS_UPDATE"
	ActivityAccountDeactivated = "ACCOUNT_DEACTIVATED"
)

// ActivityLog is the secondary audit trail. AccountID is nil for
// user-level events (password change, deactivation). Append-only.
type ActivityLog struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null;index"`
	AccountID    *uint  `gorm:"index"`
	ActivityType string `gorm:"not null"`
	Description  string `gorm:"not null;size:255"`
	CreatedAt    time.Time
}
