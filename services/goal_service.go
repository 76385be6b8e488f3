package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/cache"
	"jobHuntAPI/internal/types/calendar"
	"jobHuntAPI/internal/types/goal"
)

// GoalService owns daily goals and the activity ledger. Every write to
// the ledger goes through a single upsert statement so concurrent logs
// for the same (user, date, goal) cannot lose updates.
type GoalService struct {
	db                 *pgxpool.Pool
	cache              *cache.Cache
	streakService      *StreakService
	achievementService *AchievementService
}

func NewGoalService(db *pgxpool.Pool, c *cache.Cache, streakService *StreakService, achievementService *AchievementService) *GoalService {
	return &GoalService{
		db:                 db,
		cache:              c,
		streakService:      streakService,
		achievementService: achievementService,
	}
}

func (s *GoalService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Authenticated but not yet synced by the user webhook.
		return uuid.Nil, fmt.Errorf("%w: user is not registered", ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return userID, nil
}

func (s *GoalService) CreateGoal(ctx context.Context, clerkID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	if !req.GoalType.Valid() {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrValidation, req.GoalType)
	}
	if req.TargetCount < 1 {
		return nil, fmt.Errorf("%w: target_count must be a positive integer", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// One active goal per (user, goal type): re-creating reactivates
	// and retargets the existing row instead of stacking duplicates.
	query := `
	INSERT INTO goals (id, user_id, goal_type, target_count, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, true, NOW(), NOW())
	ON CONFLICT (user_id, goal_type)
	DO UPDATE SET target_count = $4, is_active = true, updated_at = NOW()
	RETURNING id, user_id, goal_type, target_count, is_active, created_at, updated_at
	`

	g := &goal.Goal{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.GoalType, req.TargetCount).Scan(
		&g.ID, &g.UserID, &g.GoalType, &g.TargetCount, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.cache.Delete("active_goals:" + userID.String())

	return g, nil
}

func (s *GoalService) GetActiveGoals(ctx context.Context, clerkID string) ([]*goal.Goal, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.getActiveGoalsByUserID(ctx, userID)
}

func (s *GoalService) getActiveGoalsByUserID(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	cacheKey := "active_goals:" + userID.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		if goals, ok := cached.([]*goal.Goal); ok {
			return goals, nil
		}
	}

	query := `
	SELECT id, user_id, goal_type, target_count, is_active, created_at, updated_at
	FROM goals
	WHERE user_id = $1 AND is_active = true
	ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal
	for rows.Next() {
		g := &goal.Goal{}
		if err := rows.Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetCount, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	s.cache.Set(cacheKey, goals, 30*time.Second)

	return goals, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, clerkID string, goalID uuid.UUID, req *goal.UpdateGoalRequest) (*goal.Goal, error) {
	if req.TargetCount != nil && *req.TargetCount < 1 {
		return nil, fmt.Errorf("%w: target_count must be a positive integer", ErrValidation)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Target changes apply to future days only; past ledger rows keep
	// the snapshot they were written with.
	query := `
	UPDATE goals
	SET
		target_count = COALESCE($3, target_count),
		is_active = COALESCE($4, is_active),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, goal_type, target_count, is_active, created_at, updated_at
	`

	g := &goal.Goal{}
	err = s.db.QueryRow(ctx, query, goalID, userID, req.TargetCount, req.IsActive).Scan(
		&g.ID, &g.UserID, &g.GoalType, &g.TargetCount, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	s.cache.Delete("active_goals:" + userID.String())

	return g, nil
}

// RecordActivity applies one log ("I did N units of X today") to the
// ledger and runs the streak and achievement bookkeeping when the write
// crosses the day's completion target.
func (s *GoalService) RecordActivity(ctx context.Context, clerkID string, req *goal.RecordActivityRequest) (*goal.RecordActivityResponse, error) {
	if !req.GoalType.Valid() {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrValidation, req.GoalType)
	}
	if req.CompletedCount < 1 {
		return nil, fmt.Errorf("%w: completed_count must be a positive integer", ErrValidation)
	}

	activityDate := Today()
	if req.ActivityDate != "" {
		var err error
		activityDate, err = ParseActivityDate(req.ActivityDate)
		if err != nil {
			return nil, err
		}
	}
	if activityDate.After(Today()) {
		return nil, fmt.Errorf("%w: activity_date %s is in the future", ErrValidation, req.ActivityDate)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var target int
	err = s.db.QueryRow(ctx,
		`SELECT target_count FROM goals WHERE user_id = $1 AND goal_type = $2 AND is_active = true`,
		userID, req.GoalType,
	).Scan(&target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, req.GoalType)
		}
		return nil, fmt.Errorf("failed to look up goal: %w", err)
	}

	// Atomic conditional increment. The crossing-edge CASE runs inside
	// the statement, so two concurrent logs can never both award the
	// completion points or drop each other's units.
	query := `
	INSERT INTO daily_activities (
		id, user_id, activity_date, goal_type, completed_count, target_count,
		is_completed, points_earned, logged_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $5 >= $6, CASE WHEN $5 >= $6 THEN $7 ELSE 0 END, NOW())
	ON CONFLICT (user_id, activity_date, goal_type)
	DO UPDATE SET
		completed_count = daily_activities.completed_count + EXCLUDED.completed_count,
		is_completed = daily_activities.completed_count + EXCLUDED.completed_count >= daily_activities.target_count,
		points_earned = daily_activities.points_earned + CASE
			WHEN NOT daily_activities.is_completed
			 AND daily_activities.completed_count + EXCLUDED.completed_count >= daily_activities.target_count
			THEN $7 ELSE 0 END,
		logged_at = NOW()
	RETURNING id, user_id, activity_date, goal_type, completed_count, target_count,
	          is_completed, points_earned, logged_at
	`

	act := &goal.DailyActivity{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, activityDate, req.GoalType, req.CompletedCount, target, req.GoalType.PointValue(),
	).Scan(
		&act.ID, &act.UserID, &act.ActivityDate, &act.GoalType, &act.CompletedCount,
		&act.TargetCount, &act.IsCompleted, &act.PointsEarned, &act.LoggedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	resp := &goal.RecordActivityResponse{Activity: act}

	if !goal.CrossedCompletion(act.CompletedCount, req.CompletedCount, act.TargetCount) {
		return resp, nil
	}
	resp.PointsAwarded = act.GoalType.PointValue()

	if _, err := s.streakService.UpdateStreakForDay(ctx, userID, activityDate, resp.PointsAwarded); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}
	resp.StreakUpdated = true

	unlocked, err := s.achievementService.CheckAndUnlock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}
	for _, a := range unlocked {
		resp.UnlockedAchievements = append(resp.UnlockedAchievements, string(a.AchievementType))
	}

	return resp, nil
}

func (s *GoalService) GetActivitiesForDate(ctx context.Context, clerkID string, date time.Time) ([]*goal.DailyActivity, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, activity_date, goal_type, completed_count, target_count,
	       is_completed, points_earned, logged_at
	FROM daily_activities
	WHERE user_id = $1 AND activity_date = $2
	ORDER BY goal_type ASC
	`

	rows, err := s.db.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer rows.Close()

	var activities []*goal.DailyActivity
	for rows.Next() {
		act := &goal.DailyActivity{}
		if err := rows.Scan(
			&act.ID, &act.UserID, &act.ActivityDate, &act.GoalType, &act.CompletedCount,
			&act.TargetCount, &act.IsCompleted, &act.PointsEarned, &act.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, act)
	}

	return activities, nil
}

func (s *GoalService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT da.activity_date,
	       COUNT(*) FILTER (WHERE da.is_completed) AS goals_completed
	FROM daily_activities da
	WHERE da.user_id = $1
	  AND EXTRACT(YEAR FROM da.activity_date) = $2
	  AND EXTRACT(MONTH FROM da.activity_date) = $3
	GROUP BY da.activity_date
	`

	rows, err := s.db.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	completedByDay := make(map[int]int)
	for rows.Next() {
		var date time.Time
		var completed int
		if err := rows.Scan(&date, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		completedByDay[date.Day()] = completed
	}

	goals, err := s.getActiveGoalsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	goalsTotal := len(goals)

	today := Today()
	firstOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()

	response := &calendar.CalendarResponse{Year: year, Month: month}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		completed := completedByDay[day]
		response.Days = append(response.Days, &calendar.CalendarDay{
			Date:           date,
			GoalsCompleted: completed,
			GoalsTotal:     goalsTotal,
			AllCompleted:   goalsTotal > 0 && completed >= goalsTotal,
			IsToday:        date.Equal(today),
		})
	}

	return response, nil
}

// ParseActivityDate parses a YYYY-MM-DD date into midnight UTC.
func ParseActivityDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: activity_date must be YYYY-MM-DD", ErrValidation)
	}
	return date, nil
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
