package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/core/domain"
)

// weekDays is the length of the weekly window, reference day included
const weekDays = 7

// MedicationStore answers read and time-window queries over medications.
// Callers scope every query to the requesting user; the store does not re-check ownership.
// Reads never return nil slices.
type MedicationStore struct {
	repo repositories.MedicationRepository
	loc  *time.Location
	now  func() time.Time
}

// NewMedicationStore creates a store evaluating dates in loc
func NewMedicationStore(repo repositories.MedicationRepository, loc *time.Location) *MedicationStore {
	if loc == nil {
		loc = time.Local
	}
	return &MedicationStore{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// Today returns midnight of the current day in the store's location
func (s *MedicationStore) Today() time.Time {
	return domain.StartOfDay(s.now().In(s.loc))
}

// GetByID returns one medication of userID
func (s *MedicationStore) GetByID(ctx context.Context, userID, id uint) (*models.Medication, error) {
	return s.repo.FindByID(ctx, userID, id)
}

// GetAllForUser returns every medication of userID
func (s *MedicationStore) GetAllForUser(ctx context.Context, userID uint) ([]*models.Medication, error) {
	meds, err := s.repo.ListByUser(ctx, userID)
	return orEmpty(meds), err
}

// GetDaily returns doses scheduled on ref, earliest time first. A zero ref means today.
func (s *MedicationStore) GetDaily(ctx context.Context, userID uint, ref time.Time) ([]*models.Medication, error) {
	day := s.reference(ref)
	meds, err := s.repo.ListByDateRange(ctx, userID, day, day)
	if err != nil {
		return orEmpty(nil), err
	}
	sortBySchedule(meds)
	return orEmpty(meds), nil
}

// GetWeekly returns doses scheduled from ref through the sixth day after it. A zero ref means today.
func (s *MedicationStore) GetWeekly(ctx context.Context, userID uint, ref time.Time) ([]*models.Medication, error) {
	start := s.reference(ref)
	end := start.AddDate(0, 0, weekDays-1)
	meds, err := s.repo.ListByDateRange(ctx, userID, start, end)
	if err != nil {
		return orEmpty(nil), err
	}
	sortBySchedule(meds)
	return orEmpty(meds), nil
}

// Search matches fragment case-insensitively anywhere in the name
func (s *MedicationStore) Search(ctx context.Context, userID uint, fragment string) ([]*models.Medication, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return orEmpty(nil), invalid("name is required")
	}
	meds, err := s.repo.SearchByName(ctx, userID, fragment)
	return orEmpty(meds), err
}

// GetExpired returns medications whose prescription ended before ref. A zero ref means today.
func (s *MedicationStore) GetExpired(ctx context.Context, userID uint, ref time.Time) ([]*models.Medication, error) {
	meds, err := s.repo.ListExpired(ctx, userID, s.reference(ref))
	return orEmpty(meds), err
}

// GetUpcomingReminders returns doses of userID due within horizon from now.
// The repository only yields rows when the user has reminders enabled.
func (s *MedicationStore) GetUpcomingReminders(ctx context.Context, userID uint, horizon time.Duration) ([]*models.Medication, error) {
	if horizon <= 0 {
		return orEmpty(nil), invalid("horizon must be positive")
	}
	from, to := s.window(horizon)
	meds, err := s.repo.ListUpcomingReminders(ctx, userID, domain.StartOfDay(from), to)
	if err != nil {
		return orEmpty(nil), err
	}
	return s.within(meds, from, to), nil
}

// DueReminders returns untaken doses of every reminder-enabled user due within horizon from now
func (s *MedicationStore) DueReminders(ctx context.Context, horizon time.Duration) ([]*models.Medication, error) {
	from, to := s.window(horizon)
	meds, err := s.repo.ListDueReminders(ctx, domain.StartOfDay(from), to)
	if err != nil {
		return orEmpty(nil), err
	}
	return s.within(meds, from, to), nil
}

// ScheduledAt is the instant a dose is due in the store's location
func (s *MedicationStore) ScheduledAt(med *models.Medication) time.Time {
	return domain.At(med.ScheduledDate, med.ScheduledTime, s.loc)
}

func (s *MedicationStore) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return s.Today()
	}
	return domain.StartOfDay(ref.In(s.loc))
}

func (s *MedicationStore) window(horizon time.Duration) (time.Time, time.Time) {
	from := s.now().In(s.loc)
	return from, from.Add(horizon)
}

// within keeps doses whose scheduled instant lies in [from, to]
func (s *MedicationStore) within(meds []*models.Medication, from, to time.Time) []*models.Medication {
	due := make([]*models.Medication, 0, len(meds))
	for _, med := range meds {
		at := s.ScheduledAt(med)
		if at.Before(from) || at.After(to) {
			continue
		}
		due = append(due, med)
	}
	sortBySchedule(due)
	return due
}

func sortBySchedule(meds []*models.Medication) {
	sort.SliceStable(meds, func(i, j int) bool {
		di, dj := meds[i].ScheduledDate, meds[j].ScheduledDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return meds[i].ScheduledTime < meds[j].ScheduledTime
	})
}

func orEmpty(meds []*models.Medication) []*models.Medication {
	if meds == nil {
		return []*models.Medication{}
	}
	return meds
}
