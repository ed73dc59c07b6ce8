package model

import "time"

// Assignment links one operator to one trip for a unit of work. The pipeline
// treats assignments as read-only lookup keys.
type Assignment struct {
	ID         string    `gorm:"primaryKey;size:64"`
	TripID     string    `gorm:"size:64;index;not null"`
	OperatorID string    `gorm:"size:64;index;not null"`
	CreatedAt  time.Time `gorm:"not null"`

	// Associations
	Trip     Trip     `gorm:"constraint:OnDelete:CASCADE"`
	Operator Operator `gorm:"constraint:OnDelete:CASCADE"`
}
