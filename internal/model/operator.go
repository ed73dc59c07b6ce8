package model

import "time"

// Operator represents a driver operating trips for the fleet.
type Operator struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:256;not null"`
	Region    string    `gorm:"size:64;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Assignments []Assignment `gorm:"foreignKey:OperatorID"`
}
