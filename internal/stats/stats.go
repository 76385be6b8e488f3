package stats

type UserStats struct {
	TodayCompleted    bool `json:"today_completed"`
	DaysThisWeek      int  `json:"days_this_week"`
	DaysThisMonth     int  `json:"days_this_month"`
	DaysThisYear      int  `json:"days_this_year"`
	TotalActiveDays   int  `json:"total_active_days"`
	CurrentStreak     int  `json:"current_streak"`
	LongestStreak     int  `json:"longest_streak"`
	TotalPoints       int  `json:"total_points"`
	Level             int  `json:"level"`
	PointsToNextLevel int  `json:"points_to_next_level"`
	AchievementsCount int  `json:"achievements_count"`
	TotalApplications int  `json:"total_applications"`
	TotalInterviews   int  `json:"total_interviews"`
}
