package notification

import (
	"time"

	"github.com/google/uuid"
)

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

// Settings drives the reminder scheduler. ReminderTimes are "HH:MM"
// strings interpreted in the user's Timezone.
type Settings struct {
	UserID             uuid.UUID     `json:"user_id" db:"user_id"`
	RemindersEnabled   bool          `json:"reminders_enabled" db:"reminders_enabled"`
	CelebrationEnabled bool          `json:"celebration_enabled" db:"celebration_enabled"`
	EmailEnabled       bool          `json:"email_enabled" db:"email_enabled"`
	PushEnabled        bool          `json:"push_enabled" db:"push_enabled"`
	ReminderTimes      []string      `json:"reminder_times" db:"reminder_times"`
	Timezone           string        `json:"timezone" db:"timezone"`
	DeviceTokens       []DeviceToken `json:"device_tokens,omitempty"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

type UpdateSettingsRequest struct {
	RemindersEnabled   *bool     `json:"reminders_enabled"`
	CelebrationEnabled *bool     `json:"celebration_enabled"`
	EmailEnabled       *bool     `json:"email_enabled"`
	PushEnabled        *bool     `json:"push_enabled"`
	ReminderTimes      *[]string `json:"reminder_times"`
	Timezone           *string   `json:"timezone"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
