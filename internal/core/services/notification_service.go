package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const webhookTimeout = 10 * time.Second

// NotificationService posts reminders as JSON to a webhook
type NotificationService struct {
	webhookURL string
	enabled    bool
	timeout    time.Duration
}

// NewNotificationService creates a new notification service; an empty URL disables it
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		enabled:    webhookURL != "",
		timeout:    webhookTimeout,
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// SendReminder delivers one reminder
func (s *NotificationService) SendReminder(ctx context.Context, reminder *Reminder) error {
	if !s.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := fiber.Map{
		"type":     "medication_reminder",
		"message":  reminderText(reminder),
		"reminder": reminder,
	}

	agent := fiber.Post(s.webhookURL).JSON(payload).Timeout(s.timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("webhook responded %d: %s", code, truncate(string(body), 200))
	}
	return nil
}

func reminderText(r *Reminder) string {
	return fmt.Sprintf("⏰ Time to take %s (%s) at %s. %d left.",
		r.MedicationName,
		r.Dosage,
		r.ScheduledAt.Format("2006-01-02 15:04"),
		r.Quantity,
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
