package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchesReminderTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 30, 0, time.UTC)

	assert.True(t, MatchesReminderTime(now, []string{"19:00"}, "UTC"))
	assert.True(t, MatchesReminderTime(now, []string{"08:00", "19:00"}, "UTC"))
	assert.False(t, MatchesReminderTime(now, []string{"19:01"}, "UTC"))
	assert.False(t, MatchesReminderTime(now, nil, "UTC"))
}

func TestMatchesReminderTimeHonorsTimezone(t *testing.T) {
	// 19:00 UTC is 14:00 in New York (EST, March 10 is DST so 15:00).
	now := time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC)

	assert.True(t, MatchesReminderTime(now, []string{"14:00"}, "America/New_York"))
	assert.False(t, MatchesReminderTime(now, []string{"19:00"}, "America/New_York"))
}

func TestMatchesReminderTimeUnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)

	assert.True(t, MatchesReminderTime(now, []string{"19:00"}, "Not/AZone"))
}
