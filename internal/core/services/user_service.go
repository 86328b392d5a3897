package services

import (
	"context"
	"errors"
	"strings"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrEmailAlreadyExists is returned when a profile update collides with another account
var ErrEmailAlreadyExists = errors.New("email already exists")

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Email               *string `json:"email"`
	MedicationReminders *bool   `json:"medication_reminders"`
}

// ListUsers lists users page by page
func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, storeError(err, "user.list", map[string]interface{}{"page": params.Page})
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	return pagination.NewResponse(userResponses, params, total), nil
}

// GetUser gets a user by an unparsed ID
func (s *UserService) GetUser(ctx context.Context, rawID string) (*models.UserResponse, error) {
	id, err := domain.ParseID("user id", rawID)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user.get", map[string]interface{}{"user_id": userID})
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates own email and reminder preference
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user.update_profile", map[string]interface{}{"user_id": userID})
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validate.Var(email, "required,email,max=100"); err != nil {
			return nil, invalid("email must be a valid email")
		}
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, storeError(err, "user.update_profile", map[string]interface{}{"user_id": userID})
			}
			if exists {
				return nil, ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}

	if input.MedicationReminders != nil {
		user.MedicationReminders = *input.MedicationReminders
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, storeError(err, "user.update_profile", map[string]interface{}{"user_id": userID})
	}

	log.Info().Uint("user_id", userID).Bool("medication_reminders", user.MedicationReminders).Msg("✅ Profile updated")
	return user.ToResponse(), nil
}
