package config

import (
	"context"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const adminRole = "ADMIN"

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	admin AdminConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminConfig) *Seeder {
	return &Seeder{db: db, admin: admin}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Info().Msg("🌱 Running database seeders...")

	if err := s.seedAdminUser(ctx); err != nil {
		return err
	}

	log.Info().Msg("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin from ADMIN_* when no admin exists yet
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.admin.Username == "" || s.admin.Email == "" || s.admin.Password == "" {
		log.Warn().Msg("⚠️ Admin seed skipped: ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD must all be set")
		return nil
	}
	if !password.ValidatePassword(s.admin.Password) {
		log.Warn().Msg("⚠️ Admin seed skipped: ADMIN_PASSWORD is too short")
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", adminRole).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:            s.admin.Username,
		Email:               s.admin.Email,
		Password:            hashedPassword,
		Role:                adminRole,
		MedicationReminders: false,
		IsActive:            true,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Msg("✅ Admin user created")
	return nil
}
