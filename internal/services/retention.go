package services

import (
	"context"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// RetentionService clears aged sample and history data on demand
type RetentionService struct {
	store  store.Store
	logger *logging.Logger
}

// NewRetentionService creates a RetentionService
func NewRetentionService(st store.Store, logger *logging.Logger) *RetentionService {
	return &RetentionService{
		store:  st,
		logger: logger.With("component", "retention"),
	}
}

// ClearSamples removes samples older than the given number of days.
// Zero or negative days removes everything.
func (r *RetentionService) ClearSamples(ctx context.Context, days int) (int64, error) {
	deleted, err := r.store.DeleteSamplesBefore(ctx, cutoff(days))
	if err != nil {
		return 0, storeFailed(err)
	}
	r.logger.Info("Cleared sensor samples", "days", days, "deleted", deleted)
	return deleted, nil
}

// ClearHistory removes history records older than the given number of days.
// Zero or negative days removes everything.
func (r *RetentionService) ClearHistory(ctx context.Context, days int) (int64, error) {
	deleted, err := r.store.DeleteHistoryBefore(ctx, cutoff(days))
	if err != nil {
		return 0, storeFailed(err)
	}
	r.logger.Info("Cleared control history", "days", days, "deleted", deleted)
	return deleted, nil
}

func cutoff(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().AddDate(0, 0, -days)
}
