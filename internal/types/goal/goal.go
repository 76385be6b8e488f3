package goal

import (
	"time"

	"github.com/google/uuid"
)

type GoalType string

const (
	TypeApplications   GoalType = "applications"
	TypeBehavioralPrep GoalType = "behavioral_prep"
	TypeTechnicalPrep  GoalType = "technical_prep"
	TypeSystemDesign   GoalType = "system_design"
	TypeCodingPractice GoalType = "coding_practice"
)

// PointValues maps each goal type to the points awarded the first time
// its daily target is reached.
var PointValues = map[GoalType]int{
	TypeApplications:   10,
	TypeBehavioralPrep: 15,
	TypeTechnicalPrep:  20,
	TypeSystemDesign:   25,
	TypeCodingPractice: 20,
}

func (gt GoalType) Valid() bool {
	_, ok := PointValues[gt]
	return ok
}

func (gt GoalType) PointValue() int {
	return PointValues[gt]
}

// IsPrep reports whether the goal type is a preparation category, the
// only set prep sessions may be logged under.
func (gt GoalType) IsPrep() bool {
	return gt.Valid() && gt != TypeApplications
}

type Goal struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	GoalType    GoalType  `json:"goal_type" db:"goal_type"`
	TargetCount int       `json:"target_count" db:"target_count"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type DailyActivity struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	ActivityDate   time.Time `json:"activity_date" db:"activity_date"`
	GoalType       GoalType  `json:"goal_type" db:"goal_type"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	TargetCount    int       `json:"target_count" db:"target_count"`
	IsCompleted    bool      `json:"is_completed" db:"is_completed"`
	PointsEarned   int       `json:"points_earned" db:"points_earned"`
	LoggedAt       time.Time `json:"logged_at" db:"logged_at"`
}

// CrossedCompletion reports whether the increment that produced newCount
// was the one that first reached the target. The ledger upsert adds
// exactly units, so the pre-increment count is newCount-units and the
// check is safe even when concurrent writes raced on the same row.
func CrossedCompletion(newCount, units, target int) bool {
	return newCount >= target && newCount-units < target
}

type CreateGoalRequest struct {
	GoalType    GoalType `json:"goal_type"`
	TargetCount int      `json:"target_count"`
}

type UpdateGoalRequest struct {
	TargetCount *int  `json:"target_count,omitempty"`
	IsActive    *bool `json:"is_active,omitempty"`
}

type RecordActivityRequest struct {
	ActivityDate   string   `json:"activity_date"`
	GoalType       GoalType `json:"goal_type"`
	CompletedCount int      `json:"completed_count"`
}

// RecordActivityResponse carries the updated ledger row plus whatever
// the write unlocked downstream.
type RecordActivityResponse struct {
	Activity             *DailyActivity `json:"activity"`
	PointsAwarded        int            `json:"points_awarded"`
	StreakUpdated        bool           `json:"streak_updated"`
	UnlockedAchievements []string       `json:"unlocked_achievements,omitempty"`
}
