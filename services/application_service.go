package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobHuntAPI/internal/types/application"
	"jobHuntAPI/internal/types/goal"
)

// ApplicationService owns job applications, their interviews, and prep
// sessions. Its aggregate counts feed the achievement evaluator.
type ApplicationService struct {
	db *pgxpool.Pool
}

func NewApplicationService(db *pgxpool.Pool) *ApplicationService {
	return &ApplicationService{db: db}
}

func (s *ApplicationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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

func (s *ApplicationService) CreateApplication(ctx context.Context, clerkID string, req *application.CreateApplicationRequest) (*application.JobApplication, error) {
	if req.CompanyName == "" || req.Position == "" {
		return nil, fmt.Errorf("%w: company_name and position are required", ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = application.StatusApplied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	appliedDate := Today()
	if req.AppliedDate != "" {
		var err error
		appliedDate, err = ParseActivityDate(req.AppliedDate)
		if err != nil {
			return nil, fmt.Errorf("%w: applied_date must be YYYY-MM-DD", ErrValidation)
		}
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO job_applications (
		id, user_id, company_name, position, status, job_url, location,
		salary_range, notes, applied_date, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	RETURNING id, user_id, company_name, position, status, job_url, location,
	          salary_range, notes, applied_date, created_at, updated_at
	`

	app := &application.JobApplication{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.CompanyName, req.Position, status,
		req.JobURL, req.Location, req.SalaryRange, req.Notes, appliedDate,
	).Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.Position, &app.Status,
		&app.JobURL, &app.Location, &app.SalaryRange, &app.Notes,
		&app.AppliedDate, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return app, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, clerkID string, id uuid.UUID) (*application.JobApplication, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, company_name, position, status, job_url, location,
	       salary_range, notes, applied_date, created_at, updated_at
	FROM job_applications
	WHERE id = $1 AND user_id = $2
	`

	app := &application.JobApplication{}
	err = s.db.QueryRow(ctx, query, id, userID).Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.Position, &app.Status,
		&app.JobURL, &app.Location, &app.SalaryRange, &app.Notes,
		&app.AppliedDate, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, clerkID string, filter application.ListFilter) (*application.ListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Empty filter values are passed as NULL and short-circuited in SQL
	// so one query covers every filter combination.
	var status, company *string
	if filter.Status != "" {
		v := string(filter.Status)
		status = &v
	}
	if filter.Company != "" {
		v := "%" + filter.Company + "%"
		company = &v
	}

	var total int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM job_applications
		WHERE user_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR company_name ILIKE $3)
	`, userID, status, company).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `
	SELECT id, user_id, company_name, position, status, job_url, location,
	       salary_range, notes, applied_date, created_at, updated_at
	FROM job_applications
	WHERE user_id = $1
	  AND ($2::text IS NULL OR status = $2)
	  AND ($3::text IS NULL OR company_name ILIKE $3)
	ORDER BY applied_date DESC, created_at DESC
	LIMIT $4 OFFSET $5
	`

	rows, err := s.db.Query(ctx, query, userID, status, company, filter.PageSize, (filter.Page-1)*filter.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	resp := &application.ListResponse{TotalCount: total, Page: filter.Page, PageSize: filter.PageSize}
	for rows.Next() {
		app := &application.JobApplication{}
		if err := rows.Scan(
			&app.ID, &app.UserID, &app.CompanyName, &app.Position, &app.Status,
			&app.JobURL, &app.Location, &app.SalaryRange, &app.Notes,
			&app.AppliedDate, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		resp.Applications = append(resp.Applications, app)
	}

	return resp, nil
}

func (s *ApplicationService) UpdateApplication(ctx context.Context, clerkID string, id uuid.UUID, req *application.UpdateApplicationRequest) (*application.JobApplication, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE job_applications
	SET
		company_name = COALESCE($3, company_name),
		position = COALESCE($4, position),
		status = COALESCE($5, status),
		job_url = COALESCE($6, job_url),
		location = COALESCE($7, location),
		salary_range = COALESCE($8, salary_range),
		notes = COALESCE($9, notes),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, company_name, position, status, job_url, location,
	          salary_range, notes, applied_date, created_at, updated_at
	`

	app := &application.JobApplication{}
	err = s.db.QueryRow(ctx, query,
		id, userID, req.CompanyName, req.Position, req.Status,
		req.JobURL, req.Location, req.SalaryRange, req.Notes,
	).Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.Position, &app.Status,
		&app.JobURL, &app.Location, &app.SalaryRange, &app.Notes,
		&app.AppliedDate, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	return app, nil
}

func (s *ApplicationService) DeleteApplication(ctx context.Context, clerkID string, id uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %s", ErrNotFound, id)
	}

	return nil
}

func (s *ApplicationService) CreateInterview(ctx context.Context, clerkID string, applicationID uuid.UUID, req *application.CreateInterviewRequest) (*application.Interview, error) {
	if !req.Round.Valid() {
		return nil, fmt.Errorf("%w: unknown interview round %q", ErrValidation, req.Round)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	// Ownership check before inserting against the foreign key.
	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE id = $1 AND user_id = $2)`,
		applicationID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
	}

	query := `
	INSERT INTO interviews (id, user_id, application_id, round, scheduled_at, outcome, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, 'pending', $6, NOW())
	RETURNING id, user_id, application_id, round, scheduled_at, outcome, notes, created_at
	`

	iv := &application.Interview{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, applicationID, req.Round, req.ScheduledAt, req.Notes,
	).Scan(
		&iv.ID, &iv.UserID, &iv.ApplicationID, &iv.Round, &iv.ScheduledAt,
		&iv.Outcome, &iv.Notes, &iv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	return iv, nil
}

func (s *ApplicationService) UpdateInterview(ctx context.Context, clerkID string, id uuid.UUID, req *application.UpdateInterviewRequest) (*application.Interview, error) {
	if req.Round != nil && !req.Round.Valid() {
		return nil, fmt.Errorf("%w: unknown interview round %q", ErrValidation, *req.Round)
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE interviews
	SET
		round = COALESCE($3, round),
		scheduled_at = COALESCE($4, scheduled_at),
		outcome = COALESCE($5, outcome),
		notes = COALESCE($6, notes)
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, application_id, round, scheduled_at, outcome, notes, created_at
	`

	iv := &application.Interview{}
	err = s.db.QueryRow(ctx, query, id, userID, req.Round, req.ScheduledAt, req.Outcome, req.Notes).Scan(
		&iv.ID, &iv.UserID, &iv.ApplicationID, &iv.Round, &iv.ScheduledAt,
		&iv.Outcome, &iv.Notes, &iv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: interview %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}

	return iv, nil
}

func (s *ApplicationService) ListInterviews(ctx context.Context, clerkID string) ([]*application.Interview, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, application_id, round, scheduled_at, outcome, notes, created_at
	FROM interviews
	WHERE user_id = $1
	ORDER BY scheduled_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*application.Interview
	for rows.Next() {
		iv := &application.Interview{}
		if err := rows.Scan(
			&iv.ID, &iv.UserID, &iv.ApplicationID, &iv.Round, &iv.ScheduledAt,
			&iv.Outcome, &iv.Notes, &iv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, iv)
	}

	return interviews, nil
}

func (s *ApplicationService) CreatePrepSession(ctx context.Context, clerkID string, req *application.CreatePrepSessionRequest) (*application.PrepSession, error) {
	if !goal.GoalType(req.Category).IsPrep() {
		return nil, fmt.Errorf("%w: category must be a prep goal type, got %q", ErrValidation, req.Category)
	}
	if req.DurationMinutes < 1 {
		return nil, fmt.Errorf("%w: duration_minutes must be a positive integer", ErrValidation)
	}

	sessionDate := Today()
	if req.SessionDate != "" {
		var err error
		sessionDate, err = ParseActivityDate(req.SessionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: session_date must be YYYY-MM-DD", ErrValidation)
		}
	}

	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO prep_sessions (id, user_id, category, topic, duration_minutes, session_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, user_id, category, topic, duration_minutes, session_date, created_at
	`

	ps := &application.PrepSession{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.Category, req.Topic, req.DurationMinutes, sessionDate,
	).Scan(
		&ps.ID, &ps.UserID, &ps.Category, &ps.Topic, &ps.DurationMinutes,
		&ps.SessionDate, &ps.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prep session: %w", err)
	}

	return ps, nil
}

func (s *ApplicationService) ListPrepSessions(ctx context.Context, clerkID string) ([]*application.PrepSession, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, category, topic, duration_minutes, session_date, created_at
	FROM prep_sessions
	WHERE user_id = $1
	ORDER BY session_date DESC, created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prep sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*application.PrepSession
	for rows.Next() {
		ps := &application.PrepSession{}
		if err := rows.Scan(
			&ps.ID, &ps.UserID, &ps.Category, &ps.Topic, &ps.DurationMinutes,
			&ps.SessionDate, &ps.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prep session: %w", err)
		}
		sessions = append(sessions, ps)
	}

	return sessions, nil
}
