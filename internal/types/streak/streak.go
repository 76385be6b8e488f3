package streak

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Streak struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	TotalPoints      int        `json:"total_points" db:"total_points"`
	Level            int        `json:"level" db:"level"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// LevelForPoints implements the level curve: floor(sqrt(points/50)) + 1.
func LevelForPoints(totalPoints int) int {
	if totalPoints < 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(totalPoints)/50.0))) + 1
}

// PointsForNextLevel returns the total points needed to move past the
// given level.
func PointsForNextLevel(level int) int {
	return level * level * 50
}

// Apply advances the streak counters for one evaluated day.
//
// allCompleted is whether every active goal was fully completed on date.
// The returned bool reports whether the counters changed. Dates are
// compared at day granularity; callers pass dates already truncated to
// midnight UTC.
func (s *Streak) Apply(date time.Time, allCompleted bool) bool {
	if allCompleted {
		switch {
		case s.LastActivityDate != nil && sameDay(*s.LastActivityDate, date):
			// Re-evaluation of an already-counted day.
			return false
		case s.LastActivityDate != nil && sameDay(s.LastActivityDate.AddDate(0, 0, 1), date):
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		d := date
		s.LastActivityDate = &d
		return true
	}

	// A partial write only breaks the streak once the evaluated date
	// has moved past the day after the last counted one. The day
	// immediately following the last counted day stays open: logging
	// one of several goals must not zero the run, or the write that
	// completes the day would restart at 1 instead of extending.
	// lastActivityDate stays put throughout so a later completion of
	// an open date lands in the branches above.
	if s.LastActivityDate == nil || date.After(s.LastActivityDate.AddDate(0, 0, 1)) {
		if s.CurrentStreak != 0 {
			s.CurrentStreak = 0
			return true
		}
	}
	return false
}

// ComputeChain rebuilds both counters from the full set of fully
// completed dates. Used when a backfilled write lands on a date at or
// before lastActivityDate, where the incremental branches above cannot
// be trusted. dates need not be sorted or deduplicated.
func ComputeChain(dates []time.Time, today time.Time) (current, longest int, last *time.Time) {
	if len(dates) == 0 {
		return 0, 0, nil
	}

	days := make(map[time.Time]bool, len(dates))
	var latest time.Time
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		days[day] = true
		if day.After(latest) {
			latest = day
		}
	}

	for day := range days {
		if days[day.AddDate(0, 0, -1)] {
			continue // not the start of a run
		}
		run := 1
		for days[day.AddDate(0, 0, run)] {
			run++
		}
		if run > longest {
			longest = run
		}
	}

	// The current streak is the run ending at the latest completed day,
	// and only counts while that day is today or yesterday.
	if !latest.Before(today.AddDate(0, 0, -1)) {
		run := 1
		for days[latest.AddDate(0, 0, -run)] {
			run++
		}
		current = run
	}

	return current, longest, &latest
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
