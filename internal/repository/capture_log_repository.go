package repository

import (
	"context"

	"gorm.io/gorm"

	"mealtap/internal/model"
)

// CaptureLogRepository defines capture log persistence operations.
type CaptureLogRepository interface {
	Create(ctx context.Context, log *model.CaptureLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.CaptureLog, error)
}

type captureLogRepository struct {
	db *gorm.DB
}

// NewCaptureLogRepository creates a new capture log repository.
func NewCaptureLogRepository(db *gorm.DB) CaptureLogRepository {
	return &captureLogRepository{db: db}
}

// Create creates a new capture log entry.
func (r *captureLogRepository) Create(ctx context.Context, log *model.CaptureLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByUser returns the user's newest capture attempts.
func (r *captureLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.CaptureLog, error) {
	var logs []model.CaptureLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

type nopCaptureLogRepository struct{}

// NewNopCaptureLogRepository returns a repository that discards entries. Used
// when no MySQL DSN is configured.
func NewNopCaptureLogRepository() CaptureLogRepository {
	return nopCaptureLogRepository{}
}

func (nopCaptureLogRepository) Create(context.Context, *model.CaptureLog) error { return nil }

func (nopCaptureLogRepository) ListByUser(context.Context, string, int) ([]model.CaptureLog, error) {
	return nil, nil
}
