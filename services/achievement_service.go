package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/types/achievement"
)

// AchievementNotifier lets the evaluator announce unlocks without
// depending on the whole notification service.
type AchievementNotifier interface {
	NotifyAchievementUnlocked(ctx context.Context, userID uuid.UUID, unlocked *achievement.Achievement)
}

// AchievementService evaluates the fixed catalog against a user's
// progress and records unlocks. Idempotency is enforced by the unique
// (user_id, achievement_type) constraint, not by application checks.
type AchievementService struct {
	db            *pgxpool.Pool
	streakService *StreakService
	notifier      AchievementNotifier
}

func NewAchievementService(db *pgxpool.Pool, streakService *StreakService) *AchievementService {
	return &AchievementService{db: db, streakService: streakService}
}

func (s *AchievementService) SetNotifier(notifier AchievementNotifier) {
	s.notifier = notifier
}

func (s *AchievementService) GetAchievements(ctx context.Context, clerkID string) ([]*achievement.Achievement, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user is not registered", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	query := `
	SELECT id, user_id, achievement_type, title, description, points_awarded,
	       rarity, category, unlocked_at
	FROM achievements
	WHERE user_id = $1
	ORDER BY unlocked_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*achievement.Achievement
	for rows.Next() {
		a := &achievement.Achievement{}
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description,
			&a.PointsAwarded, &a.Rarity, &a.Category, &a.UnlockedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}

	return achievements, nil
}

func (s *AchievementService) CheckAndUnlockForClerkID(ctx context.Context, clerkID string) ([]*achievement.Achievement, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user is not registered", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return s.CheckAndUnlock(ctx, userID)
}

// CheckAndUnlock evaluates every catalog entry and inserts the ones
// whose condition is newly satisfied, returning only those. Safe to
// call repeatedly and concurrently for the same user.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID uuid.UUID) ([]*achievement.Achievement, error) {
	progress, err := s.progressSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []*achievement.Achievement
	for _, def := range achievement.Catalog {
		if !def.Unlocked(progress) {
			continue
		}

		a, err := s.insertUnlock(ctx, userID, def)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue // already unlocked earlier
		}

		if err := s.streakService.AddPoints(ctx, userID, def.Points); err != nil {
			return nil, err
		}

		if s.notifier != nil {
			s.notifier.NotifyAchievementUnlocked(ctx, userID, a)
		}

		log.Printf("Achievement unlocked: user=%s type=%s", userID, def.Type)
		unlocked = append(unlocked, a)
	}

	return unlocked, nil
}

// insertUnlock returns nil (no error) when the row already existed.
func (s *AchievementService) insertUnlock(ctx context.Context, userID uuid.UUID, def achievement.Definition) (*achievement.Achievement, error) {
	query := `
	INSERT INTO achievements (
		id, user_id, achievement_type, title, description, points_awarded,
		rarity, category, unlocked_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	ON CONFLICT (user_id, achievement_type) DO NOTHING
	RETURNING id, user_id, achievement_type, title, description, points_awarded,
	          rarity, category, unlocked_at
	`

	a := &achievement.Achievement{}
	err := s.db.QueryRow(ctx, query,
		uuid.New(), userID, def.Type, def.Title, def.Description, def.Points, def.Rarity, def.Category,
	).Scan(
		&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description,
		&a.PointsAwarded, &a.Rarity, &a.Category, &a.UnlockedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to unlock achievement %s: %w", def.Type, err)
	}

	return a, nil
}

func (s *AchievementService) progressSnapshot(ctx context.Context, userID uuid.UUID) (achievement.Progress, error) {
	st, err := s.streakService.getOrCreateStreak(ctx, userID)
	if err != nil {
		return achievement.Progress{}, err
	}

	progress := achievement.Progress{
		CurrentStreak: st.CurrentStreak,
		LongestStreak: st.LongestStreak,
		TotalPoints:   st.TotalPoints,
		Level:         st.Level,
	}

	query := `
	SELECT
		(SELECT COUNT(*) FROM job_applications WHERE user_id = $1),
		(SELECT COUNT(*) FROM job_applications WHERE user_id = $1 AND status = 'offer'),
		(SELECT COUNT(*) FROM interviews WHERE user_id = $1),
		(SELECT COUNT(*) FROM prep_sessions WHERE user_id = $1),
		(SELECT COUNT(*) FROM daily_activities
		  WHERE user_id = $1 AND EXTRACT(HOUR FROM logged_at) < 8),
		(SELECT COUNT(*) FROM daily_activities
		  WHERE user_id = $1 AND EXTRACT(HOUR FROM logged_at) >= 22)
	`

	err = s.db.QueryRow(ctx, query, userID).Scan(
		&progress.TotalApplications,
		&progress.TotalOffers,
		&progress.TotalInterviews,
		&progress.TotalPrepSessions,
		&progress.EarlyBirdLogs,
		&progress.NightOwlLogs,
	)
	if err != nil {
		return achievement.Progress{}, fmt.Errorf("failed to build progress snapshot: %w", err)
	}

	perfect, err := s.perfectWeek(ctx, userID)
	if err != nil {
		return achievement.Progress{}, err
	}
	progress.PerfectWeek = perfect

	return progress, nil
}

// perfectWeek is true when every active goal was completed on each of
// the last 7 calendar days.
func (s *AchievementService) perfectWeek(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
	SELECT COUNT(*) = 7
	FROM (
		SELECT da.activity_date
		FROM daily_activities da
		JOIN goals g ON g.user_id = da.user_id AND g.goal_type = da.goal_type AND g.is_active = true
		WHERE da.user_id = $1
		  AND da.activity_date > CURRENT_DATE - INTERVAL '7 days'
		GROUP BY da.activity_date
		HAVING COUNT(*) FILTER (WHERE da.is_completed) =
		       (SELECT COUNT(*) FROM goals WHERE user_id = $1 AND is_active = true)
		   AND (SELECT COUNT(*) FROM goals WHERE user_id = $1 AND is_active = true) > 0
	) complete_days
	`

	var perfect bool
	if err := s.db.QueryRow(ctx, query, userID).Scan(&perfect); err != nil {
		return false, fmt.Errorf("failed to check perfect week: %w", err)
	}
	return perfect, nil
}
