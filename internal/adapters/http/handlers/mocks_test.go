package handlers

import (
	"context"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

var _ repositories.MedicationRepository = (*mockMedicationRepository)(nil)

// mockMedicationRepository answers with the configured funcs and "not found" otherwise
type mockMedicationRepository struct {
	CreateFunc       func(ctx context.Context, med *models.Medication) error
	FindByIDFunc     func(ctx context.Context, userID, id uint) (*models.Medication, error)
	ListByUserFunc   func(ctx context.Context, userID uint) ([]*models.Medication, error)
	SearchByNameFunc func(ctx context.Context, userID uint, fragment string) ([]*models.Medication, error)
	UpdateLockedFunc func(ctx context.Context, id, userID uint, mutate repositories.MedicationMutator) (*models.Medication, error)
	DeleteFunc       func(ctx context.Context, id, userID uint) (bool, error)

	calls int
}

func (m *mockMedicationRepository) Create(ctx context.Context, med *models.Medication) error {
	m.calls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, med)
	}
	med.ID = 1
	return nil
}

func (m *mockMedicationRepository) FindByID(ctx context.Context, userID, id uint) (*models.Medication, error) {
	m.calls++
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMedicationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Medication, error) {
	m.calls++
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockMedicationRepository) ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]*models.Medication, error) {
	m.calls++
	return nil, nil
}

func (m *mockMedicationRepository) SearchByName(ctx context.Context, userID uint, fragment string) ([]*models.Medication, error) {
	m.calls++
	if m.SearchByNameFunc != nil {
		return m.SearchByNameFunc(ctx, userID, fragment)
	}
	return nil, nil
}

func (m *mockMedicationRepository) ListExpired(ctx context.Context, userID uint, asOf time.Time) ([]*models.Medication, error) {
	m.calls++
	return nil, nil
}

func (m *mockMedicationRepository) ListUpcomingReminders(ctx context.Context, userID uint, from, to time.Time) ([]*models.Medication, error) {
	m.calls++
	return nil, nil
}

func (m *mockMedicationRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Medication, error) {
	m.calls++
	return nil, nil
}

func (m *mockMedicationRepository) UpdateLocked(ctx context.Context, id, userID uint, mutate repositories.MedicationMutator) (*models.Medication, error) {
	m.calls++
	if m.UpdateLockedFunc != nil {
		return m.UpdateLockedFunc(ctx, id, userID, mutate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMedicationRepository) Delete(ctx context.Context, id, userID uint) (bool, error) {
	m.calls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return false, nil
}

var _ repositories.AppointmentRepository = (*mockAppointmentRepository)(nil)

type mockAppointmentRepository struct {
	CreateFunc     func(ctx context.Context, appt *models.Appointment) error
	FindByDateFunc func(ctx context.Context, date time.Time) (*models.Appointment, error)
	ListFunc       func(ctx context.Context) ([]*models.Appointment, error)
	DeleteFunc     func(ctx context.Context, id uint) (bool, error)
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, appt)
	}
	appt.ID = 1
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepository) FindByDate(ctx context.Context, date time.Time) (*models.Appointment, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepository) List(ctx context.Context) ([]*models.Appointment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return nil
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}
