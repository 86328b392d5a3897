package services

import (
	"context"
	"strings"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
)

// FeedbackService stores user feedback
type FeedbackService struct {
	repo repositories.FeedbackRepository
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(repo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// Submit records feedback from userID
func (s *FeedbackService) Submit(ctx context.Context, userID uint, input *CreateFeedbackInput) (*models.Feedback, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		UserID:  userID,
		Rating:  input.Rating,
		Message: input.Message,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, storeError(err, "feedback.create", map[string]interface{}{"user_id": userID})
	}
	return fb, nil
}

// List returns all feedback, newest first
func (s *FeedbackService) List(ctx context.Context) ([]*models.Feedback, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "feedback.list", nil)
	}
	if items == nil {
		items = []*models.Feedback{}
	}
	return items, nil
}
