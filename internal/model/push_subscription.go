package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Planners subscribe to operators to be notified when an availability
// projection changes.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Operators []*Operator `gorm:"many2many:subscription_operator_mapping;"`
}
