package services

import (
	"context"
	"strings"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// AppointmentService handles appointment CRUD; the date is the lookup key
type AppointmentService struct {
	repo repositories.AppointmentRepository
	loc  *time.Location
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(repo repositories.AppointmentRepository, loc *time.Location) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{repo: repo, loc: loc}
}

// GetAll lists appointments ordered by date
func (s *AppointmentService) GetAll(ctx context.Context) ([]*models.Appointment, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "appointment.list", nil)
	}
	if appts == nil {
		appts = []*models.Appointment{}
	}
	return appts, nil
}

// GetByDate returns the appointment on rawDate
func (s *AppointmentService) GetByDate(ctx context.Context, rawDate string) (*models.Appointment, error) {
	date, err := domain.ParseDate(rawDate, s.loc)
	if err != nil {
		return nil, err
	}

	appt, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, storeError(err, "appointment.get_by_date", map[string]interface{}{"date": rawDate})
	}
	return appt, nil
}

// Create books an appointment; one appointment per date
func (s *AppointmentService) Create(ctx context.Context, input *CreateAppointmentInput) (*models.Appointment, error) {
	input.PatientReference = strings.TrimSpace(input.PatientReference)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(input.Date, s.loc)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		Date:             date,
		PatientReference: input.PatientReference,
		Details:          input.Details,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, storeError(err, "appointment.create", map[string]interface{}{"date": input.Date})
	}

	log.Info().Uint("appointment_id", appt.ID).Str("date", input.Date).Msg("📅 Appointment created")
	return appt, nil
}

// Update applies a partial patch to the appointment rawID
func (s *AppointmentService) Update(ctx context.Context, rawID string, patch *UpdateAppointmentInput) (*models.Appointment, error) {
	id, err := domain.ParseID("appointment id", rawID)
	if err != nil {
		return nil, err
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "appointment.update", map[string]interface{}{"appointment_id": id})
	}

	fields := map[string]interface{}{}
	if patch.Date != nil {
		date, err := domain.ParseDate(*patch.Date, s.loc)
		if err != nil {
			return nil, err
		}
		appt.Date, fields["date"] = date, date
	}
	if patch.PatientReference != nil {
		ref := strings.TrimSpace(*patch.PatientReference)
		if ref == "" {
			return nil, invalid("patient_reference is required")
		}
		appt.PatientReference, fields["patient_reference"] = ref, ref
	}
	if patch.Details != nil {
		appt.Details, fields["details"] = *patch.Details, *patch.Details
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, storeError(err, "appointment.update", map[string]interface{}{"appointment_id": id})
		}
	}
	return appt, nil
}

// Delete removes the appointment rawID
func (s *AppointmentService) Delete(ctx context.Context, rawID string) error {
	id, err := domain.ParseID("appointment id", rawID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "appointment.delete", map[string]interface{}{"appointment_id": id})
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
