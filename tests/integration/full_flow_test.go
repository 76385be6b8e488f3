package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobHuntAPI/handlers"
	"jobHuntAPI/internal/cache"
	"jobHuntAPI/internal/types/goal"
	"jobHuntAPI/middleware"
	"jobHuntAPI/services"
	"jobHuntAPI/tests/helpers"
)

// TestFullDailyGoalFlow simulates a user's first day: sign up, set
// goals, log progress until the targets are reached, and watch the
// streak and achievements move.
func TestFullDailyGoalFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	appCache := cache.New()
	defer appCache.Close()

	userService := services.NewUserService(pool)
	streakService := services.NewStreakService(pool)
	achievementService := services.NewAchievementService(pool, streakService)
	goalService := services.NewGoalService(pool, appCache, streakService, achievementService)

	goalHandler := handlers.NewGoalHandler(goalService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Step 1: User signs up via Clerk webhook
	t.Log("Step 1: User signs up")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req1 := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr1 := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr1, req1)
	require.Equal(t, http.StatusOK, rr1.Code, "Webhook should succeed")

	ctx := context.Background()
	_, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)

	// Step 2: User sets up daily goals
	t.Log("Step 2: User creates daily goals")

	_, err = goalService.CreateGoal(ctx, clerkID, &goal.CreateGoalRequest{
		GoalType:    goal.TypeApplications,
		TargetCount: 2,
	})
	require.NoError(t, err)

	_, err = goalService.CreateGoal(ctx, clerkID, &goal.CreateGoalRequest{
		GoalType:    goal.TypeCodingPractice,
		TargetCount: 1,
	})
	require.NoError(t, err)

	goals, err := goalService.GetActiveGoals(ctx, clerkID)
	require.NoError(t, err)
	assert.Len(t, goals, 2)

	// Step 3: First application logged, target not yet reached
	t.Log("Step 3: Partial progress awards no points")

	resp, err := goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		GoalType:       goal.TypeApplications,
		CompletedCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Activity.CompletedCount)
	assert.False(t, resp.Activity.IsCompleted)
	assert.Equal(t, 0, resp.PointsAwarded)

	// Step 4: Second application crosses the target
	t.Log("Step 4: Crossing the target awards points once")

	resp, err = goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		GoalType:       goal.TypeApplications,
		CompletedCount: 1,
	})
	require.NoError(t, err)
	assert.True(t, resp.Activity.IsCompleted)
	assert.Equal(t, goal.TypeApplications.PointValue(), resp.PointsAwarded)

	// Logging past the target must not award again
	resp, err = goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		GoalType:       goal.TypeApplications,
		CompletedCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.PointsAwarded)

	// Step 5: Completing the remaining goal starts the streak
	t.Log("Step 5: Completing every goal starts the streak")

	resp, err = goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		GoalType:       goal.TypeCodingPractice,
		CompletedCount: 1,
	})
	require.NoError(t, err)
	assert.True(t, resp.Activity.IsCompleted)

	st, err := streakService.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 1, st.LongestStreak)
	expectedPoints := goal.TypeApplications.PointValue() + goal.TypeCodingPractice.PointValue()
	assert.GreaterOrEqual(t, st.TotalPoints, expectedPoints)

	// Re-running the evaluator with nothing new must unlock nothing.
	u, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	userID, err := uuid.Parse(u.ID)
	require.NoError(t, err)

	again, err := achievementService.CheckAndUnlock(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, again, "a second evaluation with no state change unlocks nothing")

	// Step 6: The activity endpoint reflects today's ledger
	t.Log("Step 6: Reading back today's activities")

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil)
	reqCtx := context.WithValue(req2.Context(), middleware.ClerkIDKey, clerkID)
	req2 = req2.WithContext(reqCtx)
	rr2 := httptest.NewRecorder()

	goalHandler.GetDailyActivities(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)

	var activities []goal.DailyActivity
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &activities))
	assert.Len(t, activities, 2)

	// Step 7: Future dates are rejected
	t.Log("Step 7: Future dates are rejected")

	tomorrow := services.Today().AddDate(0, 0, 1).Format("2006-01-02")
	body := strings.NewReader(`{"activity_date": "` + tomorrow + `", "goal_type": "applications", "completed_count": 1}`)
	req3 := httptest.NewRequest(http.MethodPost, "/api/v1/activities", body)
	req3.Header.Set("Content-Type", "application/json")
	reqCtx = context.WithValue(req3.Context(), middleware.ClerkIDKey, clerkID)
	req3 = req3.WithContext(reqCtx)
	rr3 := httptest.NewRecorder()

	goalHandler.RecordDailyActivity(rr3, req3)
	assert.Equal(t, http.StatusBadRequest, rr3.Code)

	// Step 8: Account deletion cascades
	t.Log("Step 8: Account deletion removes everything")

	require.NoError(t, userService.DeleteUserByClerkID(ctx, clerkID))
	_, err = userService.GetUserByClerkID(ctx, clerkID)
	assert.Error(t, err)
}

// TestBackfillRecomputesStreak writes activity out of order and expects
// the full-ledger recompute to repair the chain.
func TestBackfillRecomputesStreak(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	appCache := cache.New()
	defer appCache.Close()

	userService := services.NewUserService(pool)
	streakService := services.NewStreakService(pool)
	achievementService := services.NewAchievementService(pool, streakService)
	goalService := services.NewGoalService(pool, appCache, streakService, achievementService)

	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_bf_" + time.Now().Format("20060102150405")
	payload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rr.Code)

	ctx := context.Background()
	_, err := goalService.CreateGoal(ctx, clerkID, &goal.CreateGoalRequest{
		GoalType:    goal.TypeApplications,
		TargetCount: 1,
	})
	require.NoError(t, err)

	today := services.Today()
	yesterday := today.AddDate(0, 0, -1)

	// Complete today first, then backfill yesterday.
	_, err = goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		ActivityDate:   today.Format("2006-01-02"),
		GoalType:       goal.TypeApplications,
		CompletedCount: 1,
	})
	require.NoError(t, err)

	_, err = goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
		ActivityDate:   yesterday.Format("2006-01-02"),
		GoalType:       goal.TypeApplications,
		CompletedCount: 1,
	})
	require.NoError(t, err)

	st, err := streakService.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CurrentStreak, "backfill should join the two days into one run")
	assert.Equal(t, 2, st.LongestStreak)
}

// TestMultiGoalConsecutiveDays walks a two-goal user through two full
// days in order. Each day's first crossing evaluates while the day is
// still incomplete, so the streak must survive that intermediate state
// and end at 2.
func TestMultiGoalConsecutiveDays(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	appCache := cache.New()
	defer appCache.Close()

	userService := services.NewUserService(pool)
	streakService := services.NewStreakService(pool)
	achievementService := services.NewAchievementService(pool, streakService)
	goalService := services.NewGoalService(pool, appCache, streakService, achievementService)

	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_mg_" + time.Now().Format("20060102150405")
	payload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rr.Code)

	ctx := context.Background()
	for _, gt := range []goal.GoalType{goal.TypeApplications, goal.TypeCodingPractice} {
		_, err := goalService.CreateGoal(ctx, clerkID, &goal.CreateGoalRequest{
			GoalType:    gt,
			TargetCount: 1,
		})
		require.NoError(t, err)
	}

	yesterday := services.Today().AddDate(0, 0, -1).Format("2006-01-02")
	today := services.Today().Format("2006-01-02")

	for _, date := range []string{yesterday, today} {
		for _, gt := range []goal.GoalType{goal.TypeApplications, goal.TypeCodingPractice} {
			_, err := goalService.RecordActivity(ctx, clerkID, &goal.RecordActivityRequest{
				ActivityDate:   date,
				GoalType:       gt,
				CompletedCount: 1,
			})
			require.NoError(t, err)
		}
	}

	st, err := streakService.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CurrentStreak, "two consecutive fully-completed days")
	assert.Equal(t, 2, st.LongestStreak)
}
