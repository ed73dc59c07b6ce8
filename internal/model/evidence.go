package model

import "time"

// Evidence is an attachment linked to a status event. Only the storage
// locator is kept here; the file bytes live in the object store.
type Evidence struct {
	ID            int64     `gorm:"autoIncrement;primaryKey"`
	StatusEventID int64     `gorm:"index;not null"`
	Kind          string    `gorm:"size:64;not null"`
	URL           string    `gorm:"size:1024;not null"`
	Hash          string    `gorm:"size:128"`
	CreatedAt     time.Time `gorm:"not null"`
}
