package model

import "gorm.io/gorm"

// JobEvent is one observed status change for a job element, recorded
// by the refresh loop for the per-user history page.
type JobEvent struct {
	gorm.Model
	UserName   string `gorm:"index;not null"`
	JobID      int64  `gorm:"not null"`
	ArrayIndex int64  `gorm:"not null;default:0"`
	FromState  string `gorm:"not null"`
	ToState    string `gorm:"not null"`
}
