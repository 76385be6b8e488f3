package achievement

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFirstStreak        Type = "first_streak"
	TypeWeekWarrior        Type = "week_warrior"
	TypeMonthMaster        Type = "month_master"
	TypeStreakLegend       Type = "streak_legend"
	TypeFirstApplication   Type = "first_application"
	TypeApplicationMachine Type = "application_machine"
	TypeApplicationExpert  Type = "application_expert"
	TypeFirstInterview     Type = "first_interview"
	TypeInterviewPro       Type = "interview_pro"
	TypeOfferMaster        Type = "offer_master"
	TypeStudyBuddy         Type = "study_buddy"
	TypePrepMaster         Type = "prep_master"
	TypeLevel10            Type = "level_10"
	TypeLevel25            Type = "level_25"
	TypeLevel50            Type = "level_50"
	TypePerfectWeek        Type = "perfect_week"
	TypeEarlyBird          Type = "early_bird"
	TypeNightOwl           Type = "night_owl"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Category string

const (
	CategoryStreak      Category = "streak"
	CategoryApplication Category = "application"
	CategoryInterview   Category = "interview"
	CategoryPreparation Category = "preparation"
	CategoryMilestone   Category = "milestone"
)

// Progress is the snapshot an unlock predicate is evaluated against.
type Progress struct {
	CurrentStreak     int
	LongestStreak     int
	TotalPoints       int
	Level             int
	TotalApplications int
	TotalInterviews   int
	TotalOffers       int
	TotalPrepSessions int
	PerfectWeek       bool
	EarlyBirdLogs     int
	NightOwlLogs      int
}

// Definition is one catalog entry. The predicate travels with the
// definition so the evaluator can range over the catalog without
// special-casing any type.
type Definition struct {
	Type        Type
	Title       string
	Description string
	Points      int
	Rarity      Rarity
	Category    Category
	Unlocked    func(p Progress) bool
}

// Catalog is the closed set of unlockable achievements. Longest streak
// drives the streak tiers so a broken streak cannot re-lock progress
// already earned.
var Catalog = []Definition{
	{TypeFirstStreak, "Getting Warm", "Keep a 3 day streak going", 25, RarityCommon, CategoryStreak,
		func(p Progress) bool { return p.LongestStreak >= 3 }},
	{TypeWeekWarrior, "Week Warrior", "Complete all your goals 7 days in a row", 50, RarityRare, CategoryStreak,
		func(p Progress) bool { return p.LongestStreak >= 7 }},
	{TypeMonthMaster, "Month Master", "Keep a 30 day streak alive", 200, RarityEpic, CategoryStreak,
		func(p Progress) bool { return p.LongestStreak >= 30 }},
	{TypeStreakLegend, "Streak Legend", "100 consecutive days of completed goals", 1000, RarityLegendary, CategoryStreak,
		func(p Progress) bool { return p.LongestStreak >= 100 }},
	{TypeFirstApplication, "First Step", "Submit your first job application", 10, RarityCommon, CategoryApplication,
		func(p Progress) bool { return p.TotalApplications >= 1 }},
	{TypeApplicationMachine, "Application Machine", "Submit 50 job applications", 100, RarityRare, CategoryApplication,
		func(p Progress) bool { return p.TotalApplications >= 50 }},
	{TypeApplicationExpert, "Application Expert", "Submit 100 job applications", 250, RarityEpic, CategoryApplication,
		func(p Progress) bool { return p.TotalApplications >= 100 }},
	{TypeFirstInterview, "In The Room", "Land your first interview", 25, RarityCommon, CategoryInterview,
		func(p Progress) bool { return p.TotalInterviews >= 1 }},
	{TypeInterviewPro, "Interview Pro", "Complete 10 interviews", 150, RarityRare, CategoryInterview,
		func(p Progress) bool { return p.TotalInterviews >= 10 }},
	{TypeOfferMaster, "Offer Master", "Receive a job offer", 500, RarityLegendary, CategoryInterview,
		func(p Progress) bool { return p.TotalOffers >= 1 }},
	{TypeStudyBuddy, "Study Buddy", "Log 10 preparation sessions", 50, RarityCommon, CategoryPreparation,
		func(p Progress) bool { return p.TotalPrepSessions >= 10 }},
	{TypePrepMaster, "Prep Master", "Log 50 preparation sessions", 200, RarityEpic, CategoryPreparation,
		func(p Progress) bool { return p.TotalPrepSessions >= 50 }},
	{TypeLevel10, "Rising Star", "Reach level 10", 100, RarityRare, CategoryMilestone,
		func(p Progress) bool { return p.Level >= 10 }},
	{TypeLevel25, "Seasoned Hunter", "Reach level 25", 300, RarityEpic, CategoryMilestone,
		func(p Progress) bool { return p.Level >= 25 }},
	{TypeLevel50, "Job Hunt Royalty", "Reach level 50", 1000, RarityLegendary, CategoryMilestone,
		func(p Progress) bool { return p.Level >= 50 }},
	{TypePerfectWeek, "Perfect Week", "Complete every goal, every day, for a full week", 150, RarityRare, CategoryMilestone,
		func(p Progress) bool { return p.PerfectWeek }},
	{TypeEarlyBird, "Early Bird", "Log progress before 8 AM", 25, RarityCommon, CategoryMilestone,
		func(p Progress) bool { return p.EarlyBirdLogs >= 1 }},
	{TypeNightOwl, "Night Owl", "Log progress after 10 PM", 25, RarityCommon, CategoryMilestone,
		func(p Progress) bool { return p.NightOwlLogs >= 1 }},
}

// Lookup returns the catalog definition for a type.
func Lookup(t Type) (Definition, bool) {
	for _, def := range Catalog {
		if def.Type == t {
			return def, true
		}
	}
	return Definition{}, false
}

// Achievement is one unlocked row. Rows are insert-only; a unique
// constraint on (user_id, achievement_type) keeps unlocks idempotent.
type Achievement struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	AchievementType Type      `json:"achievement_type" db:"achievement_type"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	PointsAwarded   int       `json:"points_awarded" db:"points_awarded"`
	Rarity          Rarity    `json:"rarity" db:"rarity"`
	Category        Category  `json:"category" db:"category"`
	UnlockedAt      time.Time `json:"unlocked_at" db:"unlocked_at"`
}
