package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/types/achievement"
	"jobHuntAPI/internal/types/notification"
)

// PushProvider abstracts the push transport so FCM can be swapped or
// mocked in tests.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// EmailProvider is the external transactional email collaborator. The
// real transport lives outside this repo; production wiring injects it
// in main.go.
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type NotificationService struct {
	db            *pgxpool.Pool
	pushProvider  PushProvider
	emailProvider EmailProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) SetEmailProvider(provider EmailProvider) {
	s.emailProvider = provider
}

func (s *NotificationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: user is not registered", ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return userID, nil
}

func (s *NotificationService) GetSettings(ctx context.Context, clerkID string) (*notification.Settings, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.getSettingsByUserID(ctx, userID)
}

func (s *NotificationService) getSettingsByUserID(ctx context.Context, userID uuid.UUID) (*notification.Settings, error) {
	// Default row on first read: one evening reminder, everything on.
	_, err := s.db.Exec(ctx, `
		INSERT INTO notification_settings (user_id, reminders_enabled, celebration_enabled, email_enabled, push_enabled, reminder_times, timezone, updated_at)
		VALUES ($1, true, true, true, true, ARRAY['19:00'], 'UTC', NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification settings: %w", err)
	}

	settings := &notification.Settings{}
	err = s.db.QueryRow(ctx, `
		SELECT user_id, reminders_enabled, celebration_enabled, email_enabled, push_enabled, reminder_times, timezone, updated_at
		FROM notification_settings
		WHERE user_id = $1
	`, userID).Scan(
		&settings.UserID, &settings.RemindersEnabled, &settings.CelebrationEnabled,
		&settings.EmailEnabled, &settings.PushEnabled, &settings.ReminderTimes,
		&settings.Timezone, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.DeviceTokens = tokens

	return settings, nil
}

func (s *NotificationService) UpdateSettings(ctx context.Context, clerkID string, req *notification.UpdateSettingsRequest) (*notification.Settings, error) {
	if req.ReminderTimes != nil {
		for _, t := range *req.ReminderTimes {
			if !validClockTime(t) {
				return nil, fmt.Errorf("%w: reminder time %q must be HH:MM", ErrValidation, t)
			}
		}
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Make sure the row exists before the partial update.
	if _, err := s.getSettingsByUserID(ctx, userID); err != nil {
		return nil, err
	}

	query := `
	UPDATE notification_settings
	SET
		reminders_enabled = COALESCE($2, reminders_enabled),
		celebration_enabled = COALESCE($3, celebration_enabled),
		email_enabled = COALESCE($4, email_enabled),
		push_enabled = COALESCE($5, push_enabled),
		reminder_times = COALESCE($6, reminder_times),
		timezone = COALESCE($7, timezone),
		updated_at = NOW()
	WHERE user_id = $1
	`

	_, err = s.db.Exec(ctx, query, userID,
		req.RemindersEnabled, req.CelebrationEnabled, req.EmailEnabled,
		req.PushEnabled, req.ReminderTimes, req.Timezone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification settings: %w", err)
	}

	return s.getSettingsByUserID(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token) DO UPDATE SET platform = $3
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// Deliver fans one message out to whatever channels the user has
// enabled. Transport failures are logged, never propagated: a dead
// email provider must not fail the caller.
func (s *NotificationService) Deliver(ctx context.Context, userID uuid.UUID, subject, body string, data map[string]any) {
	settings, err := s.getSettingsByUserID(ctx, userID)
	if err != nil {
		log.Printf("Deliver: failed to load settings for user %s: %v", userID, err)
		return
	}

	if settings.EmailEnabled && s.emailProvider != nil {
		var email string
		if err := s.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
			log.Printf("Deliver: failed to look up email for user %s: %v", userID, err)
		} else if err := s.emailProvider.SendEmail(ctx, email, subject, body); err != nil {
			log.Printf("Deliver: email to user %s failed: %v", userID, err)
		}
	}

	if settings.PushEnabled && len(settings.DeviceTokens) > 0 && s.pushProvider != nil {
		if err := s.pushProvider.SendPush(ctx, settings.DeviceTokens, subject, body, data); err != nil {
			log.Printf("Deliver: push to user %s failed: %v", userID, err)
		}
	}
}

// NotifyAchievementUnlocked implements AchievementNotifier.
func (s *NotificationService) NotifyAchievementUnlocked(ctx context.Context, userID uuid.UUID, unlocked *achievement.Achievement) {
	subject := "Achievement unlocked: " + unlocked.Title
	body := fmt.Sprintf("%s: %s (+%d points)", unlocked.Title, unlocked.Description, unlocked.PointsAwarded)
	s.Deliver(ctx, userID, subject, body, map[string]any{
		"type":             "achievement_unlocked",
		"achievement_type": string(unlocked.AchievementType),
	})
}

func (s *NotificationService) SendTest(ctx context.Context, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}
	s.Deliver(ctx, userID, "Test notification", "Notifications are working.", map[string]any{"type": "test"})
	return nil
}

func validClockTime(t string) bool {
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	var h, m int
	if _, err := fmt.Sscanf(t, "%02d:%02d", &h, &m); err != nil {
		return false
	}
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// Mock implementations for local runs and tests.

type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}

type MockEmailProvider struct{}

func (m *MockEmailProvider) SendEmail(ctx context.Context, to, subject, body string) error {
	log.Printf("MOCK EMAIL: To %s, Subject: %s", to, subject)
	return nil
}
