package services

import (
	"context"
	"time"
)

// Note: MedicationStore is in medication_store.go
// Note: ReminderService drives Notifier from a cron schedule

// Notifier delivers medication reminders to an outside channel
type Notifier interface {
	IsEnabled() bool
	SendReminder(ctx context.Context, reminder *Reminder) error
}

// Reminder is one due dose
type Reminder struct {
	MedicationID   uint      `json:"medication_id"`
	UserID         uint      `json:"user_id"`
	Username       string    `json:"username,omitempty"`
	Email          string    `json:"email,omitempty"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Quantity       int       `json:"quantity"`
}

// Input DTOs

// CreateMedicationInput for creating a medication
type CreateMedicationInput struct {
	Name                  string `json:"name" validate:"required,max=100"`
	Dosage                string `json:"dosage" validate:"required,max=100"`
	Quantity              int    `json:"quantity" validate:"gte=0"`
	ScheduledDate         string `json:"scheduled_date" validate:"required"`
	ScheduledTime         string `json:"scheduled_time" validate:"required"`
	PrescriptionStartDate string `json:"prescription_start_date"`
	PrescriptionEndDate   string `json:"prescription_end_date"`
	Notes                 string `json:"notes"`
}

// UpdateMedicationInput is a partial update; nil fields are left alone.
// An empty prescription date clears it.
type UpdateMedicationInput struct {
	Name                  *string `json:"name"`
	Dosage                *string `json:"dosage"`
	Quantity              *int    `json:"quantity"`
	ScheduledDate         *string `json:"scheduled_date"`
	ScheduledTime         *string `json:"scheduled_time"`
	IsTaken               *bool   `json:"is_taken"`
	PrescriptionStartDate *string `json:"prescription_start_date"`
	PrescriptionEndDate   *string `json:"prescription_end_date"`
	Notes                 *string `json:"notes"`
}

// RefillInput for replenishing stock
type RefillInput struct {
	RefillQuantity int    `json:"refillQuantity"`
	RefillDate     string `json:"refillDate"`
}

// CreateAppointmentInput for creating an appointment
type CreateAppointmentInput struct {
	Date             string `json:"date" validate:"required"`
	PatientReference string `json:"patient_reference" validate:"required,max=100"`
	Details          string `json:"details"`
}

// UpdateAppointmentInput for updating an appointment
type UpdateAppointmentInput struct {
	Date             *string `json:"date"`
	PatientReference *string `json:"patient_reference"`
	Details          *string `json:"details"`
}

// CreateFeedbackInput for submitting feedback
type CreateFeedbackInput struct {
	Rating  int    `json:"rating" validate:"gte=1,max=5"`
	Message string `json:"message" validate:"required,max=2000"`
}
