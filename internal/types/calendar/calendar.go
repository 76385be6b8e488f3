package calendar

import "time"

type CalendarDay struct {
	Date           time.Time `json:"date" db:"date"`
	GoalsCompleted int       `json:"goals_completed" db:"goals_completed"`
	GoalsTotal     int       `json:"goals_total"`
	AllCompleted   bool      `json:"all_completed"`
	IsToday        bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
