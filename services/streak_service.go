package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/types/streak"
)

// StreakService derives per-user streak state from the activity ledger
// and owns the lifetime point/level totals.
type StreakService struct {
	db *pgxpool.Pool
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	return &StreakService{db: db}
}

func (s *StreakService) GetStreak(ctx context.Context, clerkID string) (*streak.Streak, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user is not registered", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return s.getOrCreateStreak(ctx, userID)
}

// getOrCreateStreak returns the user's streak row, creating a zeroed
// one on first touch.
func (s *StreakService) getOrCreateStreak(ctx context.Context, userID uuid.UUID) (*streak.Streak, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO streaks (id, user_id, current_streak, longest_streak, total_points, level, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, 1, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize streak: %w", err)
	}

	st := &streak.Streak{}
	err = s.db.QueryRow(ctx, `
		SELECT id, user_id, current_streak, longest_streak, last_activity_date,
		       total_points, level, created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID).Scan(
		&st.ID, &st.UserID, &st.CurrentStreak, &st.LongestStreak, &st.LastActivityDate,
		&st.TotalPoints, &st.Level, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return st, nil
}

// UpdateStreakForDay re-evaluates the streak after a ledger write for
// date, crediting pointsDelta from that write. Writes for a date
// strictly before the last counted day trigger a full recompute from
// the ledger instead of the incremental branches, so backfills cannot
// corrupt the counters. A write on the last counted day itself goes
// through the incremental path, which treats it as a same-day
// re-evaluation.
func (s *StreakService) UpdateStreakForDay(ctx context.Context, userID uuid.UUID, date time.Time, pointsDelta int) (*streak.Streak, error) {
	st, err := s.getOrCreateStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	backfill := st.LastActivityDate != nil && date.Before(*st.LastActivityDate)
	if backfill {
		dates, err := s.completedDates(ctx, userID)
		if err != nil {
			return nil, err
		}
		current, longest, last := streak.ComputeChain(dates, Today())
		st.CurrentStreak = current
		if longest > st.LongestStreak {
			st.LongestStreak = longest
		}
		if last != nil {
			st.LastActivityDate = last
		}
	} else {
		allCompleted, err := s.allGoalsCompletedOn(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		st.Apply(date, allCompleted)
	}

	st.TotalPoints += pointsDelta
	st.Level = streak.LevelForPoints(st.TotalPoints)

	err = s.db.QueryRow(ctx, `
		UPDATE streaks
		SET current_streak = $2, longest_streak = $3, last_activity_date = $4,
		    total_points = $5, level = $6, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`, userID, st.CurrentStreak, st.LongestStreak, st.LastActivityDate, st.TotalPoints, st.Level).Scan(&st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist streak: %w", err)
	}

	if backfill {
		log.Printf("Streak recomputed from ledger for user %s after backfill on %s", userID, date.Format("2006-01-02"))
	}

	return st, nil
}

// AddPoints credits points earned outside the ledger (achievement
// rewards) and recomputes the level.
func (s *StreakService) AddPoints(ctx context.Context, userID uuid.UUID, points int) error {
	if points <= 0 {
		return nil
	}

	var total int
	err := s.db.QueryRow(ctx, `
		UPDATE streaks
		SET total_points = total_points + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING total_points
	`, userID, points).Scan(&total)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	_, err = s.db.Exec(ctx, `UPDATE streaks SET level = $2 WHERE user_id = $1`, userID, streak.LevelForPoints(total))
	if err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}

	return nil
}

// allGoalsCompletedOn reports whether every active goal has a completed
// ledger row on date. A goal with no row counts as not completed.
func (s *StreakService) allGoalsCompletedOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	query := `
	SELECT COUNT(*) > 0
	   AND COUNT(*) = COUNT(*) FILTER (WHERE COALESCE(da.is_completed, false))
	FROM goals g
	LEFT JOIN daily_activities da
	       ON da.user_id = g.user_id AND da.goal_type = g.goal_type AND da.activity_date = $2
	WHERE g.user_id = $1 AND g.is_active = true
	`

	var all bool
	if err := s.db.QueryRow(ctx, query, userID, date).Scan(&all); err != nil {
		return false, fmt.Errorf("failed to check day completion: %w", err)
	}
	return all, nil
}

// completedDates returns every date on which all currently active goals
// were fully completed.
func (s *StreakService) completedDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	query := `
	SELECT da.activity_date
	FROM daily_activities da
	JOIN goals g ON g.user_id = da.user_id AND g.goal_type = da.goal_type AND g.is_active = true
	WHERE da.user_id = $1
	GROUP BY da.activity_date
	HAVING COUNT(*) FILTER (WHERE da.is_completed) =
	       (SELECT COUNT(*) FROM goals WHERE user_id = $1 AND is_active = true)
	ORDER BY da.activity_date ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completed date: %w", err)
		}
		dates = append(dates, d)
	}

	return dates, nil
}
