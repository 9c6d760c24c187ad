package models

import "time"

// Counter is a named running total maintained by the counts aggregator.
// Values are eventually-consistent folds over the record log; they tolerate
// replay and are not guaranteed non-negative under out-of-order replays.
type Counter struct {
	Name      string    `gorm:"primaryKey;type:varchar(191)" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
