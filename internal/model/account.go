package model

import "gorm.io/gorm"

// Account is a console login. Accounts only gate actions (kill,
// requeue, queue and host control); viewing is open.
type Account struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Active       bool   `gorm:"not null;default:true"`
}
