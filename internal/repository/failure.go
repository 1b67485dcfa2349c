package repository

import (
	"time"

	"github.com/bopopescu/openlava-web/internal/db"
	"github.com/bopopescu/openlava-web/internal/model"
)

type FailureRepository struct{}

func NewFailureRepository() *FailureRepository {
	return &FailureRepository{}
}

func (r *FailureRepository) Record(user string, kind model.FailureKind, message string) error {
	failure := model.FetchFailure{
		UserName: user,
		Kind:     kind,
		Message:  message,
	}

	return db.DB.Create(&failure).Error
}

// Recent returns the newest failures across all users, newest first.
func (r *FailureRepository) Recent(limit int) ([]model.FetchFailure, error) {
	var failures []model.FetchFailure
	return failures, db.DB.Order("id desc").Limit(limit).Find(&failures).Error
}

func (r *FailureRepository) Prune(before time.Time) error {
	return db.DB.Unscoped().
		Where("created_at < ?", before).
		Delete(&model.FetchFailure{}).Error
}
