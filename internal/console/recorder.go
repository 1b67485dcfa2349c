package console

import (
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
	"github.com/bopopescu/openlava-web/internal/model"
	"github.com/bopopescu/openlava-web/internal/repository"
)

// dbRecorder persists what the refresh loops observe. Recording is
// best-effort; a full disk must not take the live views down.
type dbRecorder struct {
	events   *repository.EventRepository
	failures *repository.FailureRepository
}

func (r *dbRecorder) RecordTransition(user string, key cluster.JobKey, from, to cluster.JobStatus) {
	if err := r.events.Record(user, key.JobID, key.ArrayIndex, from.Friendly, to.Friendly); err != nil {
		logger.Log.Warn("failed to record job event",
			zap.String("user", user),
			zap.String("job", key.String()),
			zap.Error(err))
	}
}

func (r *dbRecorder) RecordFailure(user, kind, message string) {
	if err := r.failures.Record(user, model.FailureKind(kind), message); err != nil {
		logger.Log.Warn("failed to record fetch failure",
			zap.String("user", user),
			zap.Error(err))
	}
}
