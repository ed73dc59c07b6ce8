package model

import "time"

// Status kinds drivers can report. Only ArrivalDestination triggers the PTA
// recalculation branch; the rest are recorded as plain facts.
const (
	StatusArrivalDestination = "ARRIVAL_DESTINATION"
	StatusDepartureOrigin    = "DEPARTURE_ORIGIN"
	StatusLoading            = "LOADING"
	StatusUnloading          = "UNLOADING"
	StatusDelay              = "DELAY"
)

// StatusEvent is an immutable fact emitted by an operator. Rows are created
// exactly once per submission and never mutated or deleted.
type StatusEvent struct {
	ID               int64     `gorm:"autoIncrement;primaryKey"`
	AssignmentID     string    `gorm:"size:64;index;not null"`
	StatusType       string    `gorm:"size:64;not null"`
	OccurredAt       time.Time `gorm:"not null;index"`
	Lat              *float64
	Lon              *float64
	Comment          string `gorm:"size:1024"`
	EvidenceRequired bool   `gorm:"not null"`
	CreatedAt        time.Time

	// Associations
	Evidences []Evidence `gorm:"foreignKey:StatusEventID"`
}
