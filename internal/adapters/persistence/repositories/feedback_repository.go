package repositories

import (
	"context"

	"medtrack-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *feedbackRepository) List(ctx context.Context) ([]*models.Feedback, error) {
	var items []*models.Feedback
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	return items, err
}
