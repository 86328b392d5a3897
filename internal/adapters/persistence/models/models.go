package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Username            string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email               string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string         `gorm:"size:255;not null" json:"-"`
	Role                string         `gorm:"size:20;default:'USER'" json:"role"`
	MedicationReminders bool           `gorm:"default:true" json:"medication_reminders"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID                  uint      `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Role                string    `json:"role"`
	MedicationReminders bool      `json:"medication_reminders"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		Role:                u.Role,
		MedicationReminders: u.MedicationReminders,
		IsActive:            u.IsActive,
		CreatedAt:           u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Medication Tracking
// ============================================================

// Medication represents medications table.
// Quantity is never negative; tick-off floors it at zero.
type Medication struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index:idx_medications_user_date,priority:1" json:"user_id"`
	Name                  string     `gorm:"size:100;not null;index" json:"name"`
	Dosage                string     `gorm:"size:100;not null" json:"dosage"`
	Quantity              int        `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	ScheduledDate         time.Time  `gorm:"type:date;not null;index:idx_medications_user_date,priority:2" json:"scheduled_date"`
	ScheduledTime         string     `gorm:"size:5;not null" json:"scheduled_time"`
	IsTaken               bool       `gorm:"not null;default:false" json:"is_taken"`
	PrescriptionStartDate *time.Time `gorm:"type:date" json:"prescription_start_date"`
	PrescriptionEndDate   *time.Time `gorm:"type:date;index" json:"prescription_end_date"`
	Notes                 string     `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Medication) TableName() string {
	return "medications"
}

// TickOffResult is returned after a dose is marked as taken
type TickOffResult struct {
	MedicationID uint `json:"medication_id"`
	UserID       uint `json:"user_id"`
	IsTaken      bool `json:"is_taken"`
	NewQuantity  int  `json:"new_quantity"`
}

// RefillResult is returned after stock is replenished
type RefillResult struct {
	Message          string    `json:"message"`
	MedicationID     uint      `json:"medication_id"`
	MedicationName   string    `json:"medication_name"`
	PreviousQuantity int       `json:"previous_quantity"`
	RefillQuantity   int       `json:"refill_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	RefillDate       string    `json:"refill_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ============================================================
// Scheduling & Feedback
// ============================================================

// Appointment represents appointments table; date is the lookup key
type Appointment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Date             time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	PatientReference string    `gorm:"size:100;not null" json:"patient_reference"`
	Details          string    `gorm:"type:text" json:"details"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Feedback represents feedback table
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Medication{},
		&Appointment{},
		&Feedback{},
	)
}
