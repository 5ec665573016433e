package models

// Bank is static reference data: accounts point at exactly one bank.
type Bank struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"uniqueIndex;not null"`
}
