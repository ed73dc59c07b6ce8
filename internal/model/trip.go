package model

import "time"

// Trip statuses used by the arrival pipeline. Other statuses exist in the
// planning screens but are opaque to this service.
const (
	TripStatusPlanned   = "PLANNED"
	TripStatusEnRoute   = "EN_ROUTE"
	TripStatusArrived   = "ARRIVED"
	TripStatusCancelled = "CANCELLED"
)

// Trip types recognized by the buffer-rule fallback.
const (
	TripTypeLong  = "long"
	TripTypeShort = "short"
)

// Trip represents one planned haul. ETA is set by planners when the trip is
// created; AAT stays nil until a driver reports arrival at destination.
type Trip struct {
	ID        string     `gorm:"primaryKey;size:64"`
	Type      string     `gorm:"size:32;not null"`
	Region    string     `gorm:"size:64;not null;default:''"`
	ETA       time.Time  `gorm:"column:eta"`
	AAT       *time.Time `gorm:"column:aat"`
	Status    string     `gorm:"size:32;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}
