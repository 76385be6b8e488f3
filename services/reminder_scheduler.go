package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/types/goal"
)

// ReminderScheduler polls once a minute and matches each user's
// configured reminder times against the wall clock in their timezone.
// On a hit it sends either a reminder listing the goals still missing
// today, or a celebration when everything is already done.
//
// The loop only reads persistent state on each tick; it shares nothing
// mutable with request handlers.
type ReminderScheduler struct {
	db       *pgxpool.Pool
	notifier *NotificationService
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewReminderScheduler(db *pgxpool.Pool, notifier *NotificationService) *ReminderScheduler {
	return &ReminderScheduler{
		db:       db,
		notifier: notifier,
		interval: time.Minute,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (rs *ReminderScheduler) Start() {
	go rs.run()
	log.Println("Reminder scheduler started")
}

func (rs *ReminderScheduler) run() {
	defer close(rs.doneChan)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rs.tick(now)
		case <-rs.stopChan:
			return
		}
	}
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (rs *ReminderScheduler) Stop() {
	log.Println("Stopping reminder scheduler...")
	close(rs.stopChan)
	<-rs.doneChan
	log.Println("Reminder scheduler stopped")
}

type reminderTarget struct {
	userID        uuid.UUID
	reminderTimes []string
	timezone      string
	celebration   bool
}

func (rs *ReminderScheduler) tick(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := rs.db.Query(ctx, `
		SELECT user_id, reminder_times, timezone, celebration_enabled
		FROM notification_settings
		WHERE reminders_enabled = true
	`)
	if err != nil {
		log.Printf("Reminder tick: failed to fetch settings: %v", err)
		return
	}

	var targets []reminderTarget
	for rows.Next() {
		var t reminderTarget
		if err := rows.Scan(&t.userID, &t.reminderTimes, &t.timezone, &t.celebration); err != nil {
			log.Printf("Reminder tick: failed to scan settings row: %v", err)
			continue
		}
		targets = append(targets, t)
	}
	rows.Close()

	for _, t := range targets {
		rs.processUser(now, t)
	}
}

// processUser never lets one user's failure leak into the next. Each
// user gets its own deadline so a slow one cannot eat the budget of
// everyone behind it in the tick.
func (rs *ReminderScheduler) processUser(now time.Time, target reminderTarget) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Reminder tick: panic for user %s: %v", target.userID, r)
		}
	}()

	if !MatchesReminderTime(now, target.reminderTimes, target.timezone) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	missing, completed, err := rs.todayByCompletion(ctx, target.userID)
	if err != nil {
		log.Printf("Reminder tick: failed to load today's goals for user %s: %v", target.userID, err)
		return
	}
	if len(missing) == 0 && len(completed) == 0 {
		return // no active goals, nothing to say
	}

	if len(missing) > 0 {
		subject := "Keep your streak alive"
		body := fmt.Sprintf("Still open today: %s. Log some progress before midnight!", strings.Join(missing, ", "))
		rs.notifier.Deliver(ctx, target.userID, subject, body, map[string]any{"type": "daily_reminder"})
		return
	}

	if target.celebration {
		subject := "All goals completed today 🎉"
		body := fmt.Sprintf("You finished all of today's goals: %s. See you tomorrow!", strings.Join(completed, ", "))
		rs.notifier.Deliver(ctx, target.userID, subject, body, map[string]any{"type": "daily_celebration"})
	}
}

func (rs *ReminderScheduler) todayByCompletion(ctx context.Context, userID uuid.UUID) (missing, completed []string, err error) {
	query := `
	SELECT g.goal_type, COALESCE(da.is_completed, false)
	FROM goals g
	LEFT JOIN daily_activities da
	       ON da.user_id = g.user_id AND da.goal_type = g.goal_type AND da.activity_date = CURRENT_DATE
	WHERE g.user_id = $1 AND g.is_active = true
	`

	rows, err := rs.db.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch today's completion: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gt goal.GoalType
		var done bool
		if err := rows.Scan(&gt, &done); err != nil {
			return nil, nil, fmt.Errorf("failed to scan completion row: %w", err)
		}
		if done {
			completed = append(completed, string(gt))
		} else {
			missing = append(missing, string(gt))
		}
	}

	return missing, completed, nil
}

// MatchesReminderTime reports whether now, rendered as HH:MM in tz,
// equals any of the configured times. An unknown timezone falls back
// to UTC rather than silencing the user's reminders.
func MatchesReminderTime(now time.Time, times []string, tz string) bool {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	current := now.In(loc).Format("15:04")
	for _, t := range times {
		if t == current {
			return true
		}
	}
	return false
}
