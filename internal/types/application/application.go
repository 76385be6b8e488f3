package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied      Status = "applied"
	StatusScreening    Status = "screening"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterviewing, StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

type JobApplication struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	Position    string    `json:"position" db:"position"`
	Status      Status    `json:"status" db:"status"`
	JobURL      *string   `json:"job_url,omitempty" db:"job_url"`
	Location    *string   `json:"location,omitempty" db:"location"`
	SalaryRange *string   `json:"salary_range,omitempty" db:"salary_range"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	AppliedDate time.Time `json:"applied_date" db:"applied_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type InterviewRound string

const (
	RoundPhoneScreen  InterviewRound = "phone_screen"
	RoundBehavioral   InterviewRound = "behavioral"
	RoundTechnical    InterviewRound = "technical"
	RoundSystemDesign InterviewRound = "system_design"
	RoundOnsite       InterviewRound = "onsite"
	RoundFinal        InterviewRound = "final"
)

func (r InterviewRound) Valid() bool {
	switch r {
	case RoundPhoneScreen, RoundBehavioral, RoundTechnical, RoundSystemDesign, RoundOnsite, RoundFinal:
		return true
	}
	return false
}

type InterviewOutcome string

const (
	OutcomePending InterviewOutcome = "pending"
	OutcomePassed  InterviewOutcome = "passed"
	OutcomeFailed  InterviewOutcome = "failed"
)

type Interview struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	ApplicationID uuid.UUID        `json:"application_id" db:"application_id"`
	Round         InterviewRound   `json:"round" db:"round"`
	ScheduledAt   time.Time        `json:"scheduled_at" db:"scheduled_at"`
	Outcome       InterviewOutcome `json:"outcome" db:"outcome"`
	Notes         *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

type PrepSession struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Category        string    `json:"category" db:"category"`
	Topic           *string   `json:"topic,omitempty" db:"topic"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	SessionDate     time.Time `json:"session_date" db:"session_date"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type CreateApplicationRequest struct {
	CompanyName string  `json:"company_name"`
	Position    string  `json:"position"`
	Status      Status  `json:"status"`
	JobURL      *string `json:"job_url"`
	Location    *string `json:"location"`
	SalaryRange *string `json:"salary_range"`
	Notes       *string `json:"notes"`
	AppliedDate string  `json:"applied_date"`
}

type UpdateApplicationRequest struct {
	CompanyName *string `json:"company_name"`
	Position    *string `json:"position"`
	Status      *Status `json:"status"`
	JobURL      *string `json:"job_url"`
	Location    *string `json:"location"`
	SalaryRange *string `json:"salary_range"`
	Notes       *string `json:"notes"`
}

type ListFilter struct {
	Status   Status
	Company  string
	Page     int
	PageSize int
}

type ListResponse struct {
	Applications []*JobApplication `json:"applications"`
	TotalCount   int               `json:"total_count"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
}

type CreateInterviewRequest struct {
	Round       InterviewRound `json:"round"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Notes       *string        `json:"notes"`
}

type UpdateInterviewRequest struct {
	Round       *InterviewRound   `json:"round"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
	Outcome     *InterviewOutcome `json:"outcome"`
	Notes       *string           `json:"notes"`
}

type CreatePrepSessionRequest struct {
	Category        string  `json:"category"`
	Topic           *string `json:"topic"`
	DurationMinutes int     `json:"duration_minutes"`
	SessionDate     string  `json:"session_date"`
}
