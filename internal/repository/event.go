package repository

import (
	"time"

	"github.com/bopopescu/openlava-web/internal/db"
	"github.com/bopopescu/openlava-web/internal/model"
)

type EventRepository struct{}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Record(user string, jobID, arrayIndex int64, from, to string) error {
	event := model.JobEvent{
		UserName:   user,
		JobID:      jobID,
		ArrayIndex: arrayIndex,
		FromState:  from,
		ToState:    to,
	}

	return db.DB.Create(&event).Error
}

// RecentForUser returns the newest events for user, newest first.
func (r *EventRepository) RecentForUser(user string, limit int) ([]model.JobEvent, error) {
	var events []model.JobEvent
	return events, db.DB.Where("user_name = ?", user).
		Order("id desc").
		Limit(limit).
		Find(&events).Error
}

func (r *EventRepository) Prune(before time.Time) error {
	return db.DB.Unscoped().
		Where("created_at < ?", before).
		Delete(&model.JobEvent{}).Error
}
