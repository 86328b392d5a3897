package repositories

import (
	"context"
	"strings"
	"time"

	"medtrack-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sqlDate = "2006-01-02"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// medicationRepository implements MedicationRepository on GORM
type medicationRepository struct {
	db *gorm.DB
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *gorm.DB) MedicationRepository {
	return &medicationRepository{db: db}
}

// Create inserts a medication
func (r *medicationRepository) Create(ctx context.Context, med *models.Medication) error {
	return r.db.WithContext(ctx).Create(med).Error
}

// FindByID gets a medication owned by userID
func (r *medicationRepository) FindByID(ctx context.Context, userID, id uint) (*models.Medication, error) {
	var med models.Medication
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&med).Error
	if err != nil {
		return nil, err
	}
	return &med, nil
}

// ListByUser lists every medication of a user
func (r *medicationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Medication, error) {
	var meds []*models.Medication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&meds).Error
	return meds, err
}

// ListByDateRange lists medications scheduled between start and end, both inclusive
func (r *medicationRepository) ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]*models.Medication, error) {
	var meds []*models.Medication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_date BETWEEN ? AND ?", userID, start.Format(sqlDate), end.Format(sqlDate)).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&meds).Error
	return meds, err
}

// SearchByName matches a case-insensitive substring of the name
func (r *medicationRepository) SearchByName(ctx context.Context, userID uint, fragment string) ([]*models.Medication, error) {
	var meds []*models.Medication
	pattern := "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) LIKE ?", userID, pattern).
		Order("name ASC").
		Find(&meds).Error
	return meds, err
}

// ListExpired lists medications whose prescription ended before asOf
func (r *medicationRepository) ListExpired(ctx context.Context, userID uint, asOf time.Time) ([]*models.Medication, error) {
	var meds []*models.Medication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND prescription_end_date IS NOT NULL AND prescription_end_date < ?", userID, asOf.Format(sqlDate)).
		Order("prescription_end_date ASC").
		Find(&meds).Error
	return meds, err
}

// ListUpcomingReminders lists candidates scheduled on the calendar days spanned by
// [from, to] for a user with reminders enabled. Callers filter on the exact time.
func (r *medicationRepository) ListUpcomingReminders(ctx context.Context, userID uint, from, to time.Time) ([]*models.Medication, error) {
	var meds []*models.Medication
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = medications.user_id AND users.deleted_at IS NULL").
		Where("medications.user_id = ? AND users.medication_reminders = ?", userID, true).
		Where("medications.scheduled_date BETWEEN ? AND ?", from.Format(sqlDate), to.Format(sqlDate)).
		Order("medications.scheduled_date ASC, medications.scheduled_time ASC").
		Find(&meds).Error
	return meds, err
}

// ListDueReminders lists untaken doses of every user with reminders enabled on the
// calendar days spanned by [from, to]
func (r *medicationRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Medication, error) {
	var meds []*models.Medication
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = medications.user_id AND users.deleted_at IS NULL").
		Where("users.medication_reminders = ? AND users.is_active = ?", true, true).
		Where("medications.is_taken = ?", false).
		Where("medications.scheduled_date BETWEEN ? AND ?", from.Format(sqlDate), to.Format(sqlDate)).
		Order("medications.scheduled_date ASC, medications.scheduled_time ASC").
		Find(&meds).Error
	return meds, err
}

// UpdateLocked runs mutate on the row under SELECT ... FOR UPDATE and persists
// every mutable column before the lock is released
func (r *medicationRepository) UpdateLocked(ctx context.Context, id, userID uint, mutate MedicationMutator) (*models.Medication, error) {
	var med models.Medication
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&med).Error; err != nil {
			return err
		}

		if err := mutate(&med); err != nil {
			return err
		}

		return tx.Model(&models.Medication{}).
			Where("id = ?", med.ID).
			Updates(map[string]interface{}{
				"name":                    med.Name,
				"dosage":                  med.Dosage,
				"quantity":                med.Quantity,
				"scheduled_date":          med.ScheduledDate,
				"scheduled_time":          med.ScheduledTime,
				"is_taken":                med.IsTaken,
				"prescription_start_date": med.PrescriptionStartDate,
				"prescription_end_date":   med.PrescriptionEndDate,
				"notes":                   med.Notes,
				"updated_at":              med.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &med, nil
}

// Delete removes a medication owned by userID, reporting whether a row was deleted
func (r *medicationRepository) Delete(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Medication{})
	return result.RowsAffected > 0, result.Error
}
