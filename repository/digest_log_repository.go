package repository

import (
	"context"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DigestLogRepository struct {
	db *gorm.DB
}

func NewDigestLogRepository(db *gorm.DB) *DigestLogRepository {
	return &DigestLogRepository{db: db}
}

func (r *DigestLogRepository) Create(ctx context.Context, l *models.DigestLog) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return errors.Wrap(err, "failed to log digest")
	}
	return nil
}

// ListRecent returns the latest send attempts, newest first.
func (r *DigestLogRepository) ListRecent(ctx context.Context, limit int) ([]models.DigestLog, error) {
	var logs []models.DigestLog
	err := r.db.WithContext(ctx).Order("sent_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list digest logs")
	}
	return logs, nil
}
