package repositories

import (
	"context"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// MedicationMutator changes a locked medication row in place.
type MedicationMutator func(med *models.Medication) error

// MedicationRepository is the persistence collaborator of the medication domain.
//
// UpdateLocked must read the row, run the mutator and write every mutable
// column atomically with respect to other writers of the same row. A mutator
// error aborts the write.
type MedicationRepository interface {
	Create(ctx context.Context, med *models.Medication) error
	FindByID(ctx context.Context, userID, id uint) (*models.Medication, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Medication, error)
	ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]*models.Medication, error)
	SearchByName(ctx context.Context, userID uint, fragment string) ([]*models.Medication, error)
	ListExpired(ctx context.Context, userID uint, asOf time.Time) ([]*models.Medication, error)
	ListUpcomingReminders(ctx context.Context, userID uint, from, to time.Time) ([]*models.Medication, error)
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Medication, error)
	UpdateLocked(ctx context.Context, id, userID uint, mutate MedicationMutator) (*models.Medication, error)
	Delete(ctx context.Context, id, userID uint) (bool, error)
}

// AppointmentRepository defines appointment repository interface
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id uint) (*models.Appointment, error)
	FindByDate(ctx context.Context, date time.Time) (*models.Appointment, error)
	List(ctx context.Context) ([]*models.Appointment, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) (bool, error)
}

// FeedbackRepository defines feedback repository interface
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context) ([]*models.Feedback, error)
}
