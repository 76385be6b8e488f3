package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobHuntAPI/handlers"
	"jobHuntAPI/internal/types/application"
	"jobHuntAPI/services"
	"jobHuntAPI/tests/helpers"
)

func setupApplicationTest(t *testing.T) (context.Context, *services.ApplicationService, string) {
	t.Helper()

	pool := helpers.SetupTestDB(t)
	t.Cleanup(func() { helpers.CleanupTestDB(t, pool) })

	userService := services.NewUserService(pool)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	t.Cleanup(func() { os.Unsetenv("CLERK_WEBHOOK_SECRET") })

	clerkID := "user_test_app_" + time.Now().Format("20060102150405.000")
	payload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rr.Code)

	return context.Background(), services.NewApplicationService(pool), clerkID
}

// TestCreateApplicationMinimalBody leaves every optional field unset;
// the create must still succeed and round-trip the nils.
func TestCreateApplicationMinimalBody(t *testing.T) {
	ctx, appService, clerkID := setupApplicationTest(t)

	app, err := appService.CreateApplication(ctx, clerkID, &application.CreateApplicationRequest{
		CompanyName: "Initech",
		Position:    "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Equal(t, application.StatusApplied, app.Status)
	assert.Nil(t, app.JobURL)
	assert.Nil(t, app.Location)
	assert.Nil(t, app.SalaryRange)
	assert.Nil(t, app.Notes)

	got, err := appService.GetApplication(ctx, clerkID, app.ID)
	require.NoError(t, err)
	assert.Nil(t, got.JobURL)
	assert.Nil(t, got.Notes)
}

func TestCreateInterviewMinimalBody(t *testing.T) {
	ctx, appService, clerkID := setupApplicationTest(t)

	app, err := appService.CreateApplication(ctx, clerkID, &application.CreateApplicationRequest{
		CompanyName: "Initech",
		Position:    "Backend Engineer",
	})
	require.NoError(t, err)

	iv, err := appService.CreateInterview(ctx, clerkID, app.ID, &application.CreateInterviewRequest{
		Round:       application.RoundPhoneScreen,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, application.OutcomePending, iv.Outcome)
	assert.Nil(t, iv.Notes)
}

func TestCreatePrepSessionMinimalBody(t *testing.T) {
	ctx, appService, clerkID := setupApplicationTest(t)

	ps, err := appService.CreatePrepSession(ctx, clerkID, &application.CreatePrepSessionRequest{
		Category:        "coding_practice",
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	assert.Nil(t, ps.Topic)
	assert.Equal(t, 45, ps.DurationMinutes)
}

func TestCreatePrepSessionRejectsUnknownCategory(t *testing.T) {
	ctx, appService, clerkID := setupApplicationTest(t)

	for _, category := range []string{"", "gaming", "applications"} {
		_, err := appService.CreatePrepSession(ctx, clerkID, &application.CreatePrepSessionRequest{
			Category:        category,
			DurationMinutes: 30,
		})
		assert.ErrorIs(t, err, services.ErrValidation, "category %q", category)
	}
}

// TestUnregisteredUserIsNotFound covers the window between a Clerk
// session existing and the user.created webhook landing.
func TestUnregisteredUserIsNotFound(t *testing.T) {
	ctx, appService, _ := setupApplicationTest(t)

	_, err := appService.ListApplications(ctx, "user_never_synced", application.ListFilter{})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
