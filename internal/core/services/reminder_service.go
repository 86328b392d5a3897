package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const reminderRunTimeout = time.Minute

// ReminderService periodically sends reminders for doses coming due.
// Each (medication, scheduled slot) is sent at most once per process.
type ReminderService struct {
	store    *MedicationStore
	notifier Notifier
	auth     *AuthService
	horizon  time.Duration

	cron *cron.Cron

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewReminderService creates a reminder service; auth may be nil to skip token cleanup
func NewReminderService(store *MedicationStore, notifier Notifier, auth *AuthService, horizon time.Duration) *ReminderService {
	return &ReminderService{
		store:    store,
		notifier: notifier,
		auth:     auth,
		horizon:  horizon,
		cron:     cron.New(cron.WithLocation(store.loc)),
		sent:     make(map[string]time.Time),
	}
}

// Start registers the jobs on schedule and starts the scheduler
func (s *ReminderService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	if s.auth != nil {
		if _, err := s.cron.AddFunc("@daily", s.cleanupTokens); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Info().
		Str("schedule", schedule).
		Dur("horizon", s.horizon).
		Bool("webhook", s.notifier.IsEnabled()).
		Msg("🚀 ReminderService started")
	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *ReminderService) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("🛑 ReminderService stopped")
}

func (s *ReminderService) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Reminder run failed")
	}
}

// RunOnce sends the reminders currently due and returns how many were delivered
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	if !s.notifier.IsEnabled() {
		return 0, nil
	}

	meds, err := s.store.DueReminders(ctx, s.horizon)
	if err != nil {
		return 0, storeError(err, "reminder.due", nil)
	}

	now := s.store.now()
	s.forgetBefore(now.Add(-24 * time.Hour))

	sent := 0
	for _, med := range meds {
		at := s.store.ScheduledAt(med)
		key := fmt.Sprintf("%d@%s", med.ID, at.Format(time.RFC3339))
		if !s.claim(key, at) {
			continue
		}

		reminder := &Reminder{
			MedicationID:   med.ID,
			UserID:         med.UserID,
			MedicationName: med.Name,
			Dosage:         med.Dosage,
			ScheduledAt:    at,
			Quantity:       med.Quantity,
		}
		if med.User != nil {
			reminder.Username = med.User.Username
			reminder.Email = med.User.Email
		}

		if err := s.notifier.SendReminder(ctx, reminder); err != nil {
			s.release(key)
			log.Warn().Err(err).Uint("medication_id", med.ID).Uint("user_id", med.UserID).Msg("⚠️ Reminder not delivered")
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Info().Int("count", sent).Msg("⏰ Reminders sent")
	}
	return sent, nil
}

func (s *ReminderService) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
	defer cancel()

	n, err := s.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Refresh token cleanup failed")
		return
	}
	log.Info().Int64("deleted", n).Msg("🧹 Expired refresh tokens deleted")
}

func (s *ReminderService) claim(key string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sent[key]; ok {
		return false
	}
	s.sent[key] = at
	return true
}

func (s *ReminderService) release(key string) {
	s.mu.Lock()
	delete(s.sent, key)
	s.mu.Unlock()
}

func (s *ReminderService) forgetBefore(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, at := range s.sent {
		if at.Before(cutoff) {
			delete(s.sent, key)
		}
	}
}
