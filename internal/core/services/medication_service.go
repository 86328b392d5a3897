package services

import (
	"context"
	"math"
	"strings"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const refillMessage = "Medication refilled successfully"

// MedicationService applies the business rules of the medication domain.
// Identifiers arrive unparsed; malformed ones fail before the store is touched.
//
// Quantity changes go through MedicationRepository.UpdateLocked, which must
// serialize concurrent writers of the same row.
type MedicationService struct {
	store *MedicationStore
	repo  repositories.MedicationRepository
	loc   *time.Location
	now   func() time.Time
}

// NewMedicationService creates a new medication service
func NewMedicationService(store *MedicationStore, repo repositories.MedicationRepository) *MedicationService {
	return &MedicationService{
		store: store,
		repo:  repo,
		loc:   store.loc,
		now:   store.now,
	}
}

// Create stores a new untaken medication for the user
func (s *MedicationService) Create(ctx context.Context, rawUserID string, input *CreateMedicationInput) (*models.Medication, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Dosage = strings.TrimSpace(input.Dosage)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	scheduledDate, err := domain.ParseDate(input.ScheduledDate, s.loc)
	if err != nil {
		return nil, invalid("scheduled_date must be YYYY-MM-DD")
	}
	scheduledTime, err := domain.ParseClock(input.ScheduledTime)
	if err != nil {
		return nil, invalid("scheduled_time must be HH:MM")
	}
	start, err := s.optionalDate("prescription_start_date", input.PrescriptionStartDate)
	if err != nil {
		return nil, err
	}
	end, err := s.optionalDate("prescription_end_date", input.PrescriptionEndDate)
	if err != nil {
		return nil, err
	}
	if err := checkPrescriptionRange(start, end); err != nil {
		return nil, err
	}

	now := s.now()
	med := &models.Medication{
		UserID:                userID,
		Name:                  input.Name,
		Dosage:                input.Dosage,
		Quantity:              input.Quantity,
		ScheduledDate:         scheduledDate,
		ScheduledTime:         scheduledTime,
		IsTaken:               false,
		PrescriptionStartDate: start,
		PrescriptionEndDate:   end,
		Notes:                 input.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Create(ctx, med); err != nil {
		return nil, storeError(err, "medication.create", map[string]interface{}{"user_id": userID})
	}

	log.Info().Uint("user_id", userID).Uint("medication_id", med.ID).Msg("✅ Medication created")
	return med, nil
}

// GetByID returns one medication of the user
func (s *MedicationService) GetByID(ctx context.Context, rawID, rawUserID string) (*models.Medication, error) {
	id, userID, err := parseIDs(rawID, rawUserID)
	if err != nil {
		return nil, err
	}

	med, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "medication.get", idFields(id, userID))
	}
	return med, nil
}

// Update applies a partial patch and re-stamps updated_at.
// The patch is checked against the row as locked, not an earlier read.
func (s *MedicationService) Update(ctx context.Context, rawID, rawUserID string, patch *UpdateMedicationInput) (*models.Medication, error) {
	id, userID, err := parseIDs(rawID, rawUserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	med, err := s.repo.UpdateLocked(ctx, id, userID, func(m *models.Medication) error {
		if err := s.applyPatch(m, patch); err != nil {
			return err
		}
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError(err, "medication.update", idFields(id, userID))
	}
	return med, nil
}

// Delete removes a medication of the user
func (s *MedicationService) Delete(ctx context.Context, rawID, rawUserID string) error {
	id, userID, err := parseIDs(rawID, rawUserID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return storeError(err, "medication.delete", idFields(id, userID))
	}
	if !deleted {
		return domain.ErrNotFound
	}

	log.Info().Uint("user_id", userID).Uint("medication_id", id).Msg("🗑️ Medication deleted")
	return nil
}

// TickOff marks a dose taken and takes one unit from stock.
// Stock never goes below zero; an empty stock is still marked taken.
func (s *MedicationService) TickOff(ctx context.Context, rawID, rawUserID string) (*models.TickOffResult, error) {
	id, userID, err := parseIDs(rawID, rawUserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	med, err := s.repo.UpdateLocked(ctx, id, userID, func(m *models.Medication) error {
		if m.Quantity > 0 {
			m.Quantity--
		}
		m.IsTaken = true
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError(err, "medication.tick_off", idFields(id, userID))
	}

	return &models.TickOffResult{
		MedicationID: med.ID,
		UserID:       med.UserID,
		IsTaken:      med.IsTaken,
		NewQuantity:  med.Quantity,
	}, nil
}

// Refill adds stock. updated_at is the time of the call; the refill date is
// echoed back as given and defaults to today.
func (s *MedicationService) Refill(ctx context.Context, rawID, rawUserID string, input *RefillInput) (*models.RefillResult, error) {
	id, userID, err := parseIDs(rawID, rawUserID)
	if err != nil {
		return nil, err
	}
	if input.RefillQuantity <= 0 {
		return nil, invalid("refillQuantity must be greater than 0")
	}

	refillDate := strings.TrimSpace(input.RefillDate)
	if refillDate == "" {
		refillDate = s.store.Today().Format(domain.DateLayout)
	} else if _, err := domain.ParseDate(refillDate, s.loc); err != nil {
		return nil, invalid("refillDate must be YYYY-MM-DD")
	}

	now := s.now()
	var previous int
	med, err := s.repo.UpdateLocked(ctx, id, userID, func(m *models.Medication) error {
		if input.RefillQuantity > math.MaxInt-m.Quantity {
			return invalid("refillQuantity exceeds the maximum stock")
		}
		previous = m.Quantity
		m.Quantity = previous + input.RefillQuantity
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError(err, "medication.refill", idFields(id, userID))
	}

	log.Info().
		Uint("user_id", userID).
		Uint("medication_id", id).
		Int("previous_quantity", previous).
		Int("new_quantity", med.Quantity).
		Msg("💊 Medication refilled")

	return &models.RefillResult{
		Message:          refillMessage,
		MedicationID:     med.ID,
		MedicationName:   med.Name,
		PreviousQuantity: previous,
		RefillQuantity:   input.RefillQuantity,
		NewQuantity:      med.Quantity,
		RefillDate:       refillDate,
		UpdatedAt:        med.UpdatedAt,
	}, nil
}

// GetAllForUser lists every medication of the user
func (s *MedicationService) GetAllForUser(ctx context.Context, rawUserID string) ([]*models.Medication, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.GetAllForUser(ctx, userID)
	return s.list(meds, err, "medication.list", userID)
}

// GetDaily lists doses on rawDate, or today when it is empty
func (s *MedicationService) GetDaily(ctx context.Context, rawUserID, rawDate string) ([]*models.Medication, error) {
	userID, ref, err := s.parseScope(rawUserID, rawDate)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.GetDaily(ctx, userID, ref)
	return s.list(meds, err, "medication.daily", userID)
}

// GetWeekly lists doses of the seven days starting at rawDate, or today when it is empty
func (s *MedicationService) GetWeekly(ctx context.Context, rawUserID, rawDate string) ([]*models.Medication, error) {
	userID, ref, err := s.parseScope(rawUserID, rawDate)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.GetWeekly(ctx, userID, ref)
	return s.list(meds, err, "medication.weekly", userID)
}

// Search lists medications whose name contains fragment
func (s *MedicationService) Search(ctx context.Context, rawUserID, fragment string) ([]*models.Medication, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.Search(ctx, userID, fragment)
	return s.list(meds, err, "medication.search", userID)
}

// GetExpired lists medications whose prescription ended before rawDate, or today when it is empty
func (s *MedicationService) GetExpired(ctx context.Context, rawUserID, rawDate string) ([]*models.Medication, error) {
	userID, ref, err := s.parseScope(rawUserID, rawDate)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.GetExpired(ctx, userID, ref)
	return s.list(meds, err, "medication.expired", userID)
}

// GetUpcomingReminders lists doses due within horizon from now
func (s *MedicationService) GetUpcomingReminders(ctx context.Context, rawUserID string, horizon time.Duration) ([]*models.Medication, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return nil, err
	}
	meds, err := s.store.GetUpcomingReminders(ctx, userID, horizon)
	return s.list(meds, err, "medication.reminders", userID)
}

func (s *MedicationService) list(meds []*models.Medication, err error, op string, userID uint) ([]*models.Medication, error) {
	if err != nil {
		return nil, storeError(err, op, map[string]interface{}{"user_id": userID})
	}
	return orEmpty(meds), nil
}

func (s *MedicationService) parseScope(rawUserID, rawDate string) (uint, time.Time, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if strings.TrimSpace(rawDate) == "" {
		return userID, time.Time{}, nil
	}
	ref, err := domain.ParseDate(rawDate, s.loc)
	if err != nil {
		return 0, time.Time{}, err
	}
	return userID, ref, nil
}

func (s *MedicationService) optionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(raw, s.loc)
	if err != nil {
		return nil, invalid(field + " must be YYYY-MM-DD")
	}
	return &t, nil
}

// applyPatch validates patch and applies it to med
func (s *MedicationService) applyPatch(med *models.Medication, patch *UpdateMedicationInput) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return invalid("name is required")
		}
		med.Name = name
	}
	if patch.Dosage != nil {
		dosage := strings.TrimSpace(*patch.Dosage)
		if dosage == "" {
			return invalid("dosage is required")
		}
		med.Dosage = dosage
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return invalid("quantity must be greater than or equal to 0")
		}
		med.Quantity = *patch.Quantity
	}
	if patch.ScheduledDate != nil {
		d, err := domain.ParseDate(*patch.ScheduledDate, s.loc)
		if err != nil {
			return invalid("scheduled_date must be YYYY-MM-DD")
		}
		med.ScheduledDate = d
	}
	if patch.ScheduledTime != nil {
		clock, err := domain.ParseClock(*patch.ScheduledTime)
		if err != nil {
			return invalid("scheduled_time must be HH:MM")
		}
		med.ScheduledTime = clock
	}
	if patch.IsTaken != nil {
		med.IsTaken = *patch.IsTaken
	}
	if patch.PrescriptionStartDate != nil {
		d, err := s.optionalDate("prescription_start_date", *patch.PrescriptionStartDate)
		if err != nil {
			return err
		}
		med.PrescriptionStartDate = d
	}
	if patch.PrescriptionEndDate != nil {
		d, err := s.optionalDate("prescription_end_date", *patch.PrescriptionEndDate)
		if err != nil {
			return err
		}
		med.PrescriptionEndDate = d
	}
	if patch.Notes != nil {
		med.Notes = *patch.Notes
	}

	return checkPrescriptionRange(med.PrescriptionStartDate, med.PrescriptionEndDate)
}

func checkPrescriptionRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return invalid("prescription_end_date must not be before prescription_start_date")
	}
	return nil
}

func parseIDs(rawID, rawUserID string) (uint, uint, error) {
	userID, err := domain.ParseID("user id", rawUserID)
	if err != nil {
		return 0, 0, err
	}
	id, err := domain.ParseID("medication id", rawID)
	if err != nil {
		return 0, 0, err
	}
	return id, userID, nil
}

func idFields(id, userID uint) map[string]interface{} {
	return map[string]interface{}{"medication_id": id, "user_id": userID}
}
