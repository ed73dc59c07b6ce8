package model

import "time"

// PTARule configures the buffer (in hours) added to an arrival time when
// projecting availability, selectable by trip type and optionally region.
// Zero or one row is expected per lookup; absence triggers the built-in
// fallback, it is not an error.
type PTARule struct {
	ID        int64     `gorm:"autoIncrement;primaryKey"`
	TripType  string    `gorm:"size:32;index;not null"`
	Region    string    `gorm:"size:64;not null;default:''"`
	MinHours  *float64
	MaxHours  *float64
	CreatedAt time.Time `gorm:"not null"`
}
