package model

import "time"

// Availability source tags. AAT means the PTA was derived from a reported
// actual arrival time.
const (
	AvailabilitySourceAAT = "AAT"
	AvailabilitySourceETA = "ETA"
)

// Availability is the single current-availability record for an operator
// (hot table, one row per operator). Each processed arrival event overwrites
// the row entirely; no history is kept here. ComputedFrom records the arrival
// timestamp the PTA was derived from and gates the upsert so a stale event
// cannot overwrite a newer one.
type Availability struct {
	OperatorID   string    `gorm:"primaryKey;size:64"`
	PTA          time.Time `gorm:"column:pta;not null"`
	Source       string    `gorm:"size:16;not null"`
	Reason       string    `gorm:"size:64;not null"`
	ComputedFrom time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
