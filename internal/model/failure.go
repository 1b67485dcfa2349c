package model

import "gorm.io/gorm"

type FailureKind string

const (
	FailureNetwork  FailureKind = "network"
	FailureRejected FailureKind = "rejected"
)

// FetchFailure is one failed refresh cycle, kept so operators can tell
// flaky cluster interfaces from rejected requests.
type FetchFailure struct {
	gorm.Model
	UserName string      `gorm:"index;not null"`
	Kind     FailureKind `gorm:"not null"`
	Message  string      `gorm:"not null"`
}
