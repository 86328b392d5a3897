package services

import (
	"errors"
	"fmt"

	"medtrack-api/internal/core/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// storeError maps a persistence error onto the domain taxonomy.
// Anything unexpected is logged with op and fields and surfaces as ErrStoreFailure.
func storeError(err error, op string, fields map[string]interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateEntry
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: referenced record does not exist", domain.ErrNotFound)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return err
	}

	log.Error().Err(err).Str("op", op).Fields(fields).Msg("❌ Store operation failed")
	return domain.ErrStoreFailure
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, reason)
}
