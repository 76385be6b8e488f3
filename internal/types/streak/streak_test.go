package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int
		level  int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{199, 2},
		{200, 3},
		{449, 3},
		{450, 4},
		{-10, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForPoints(tt.points), "points=%d", tt.points)
	}
}

func TestPointsForNextLevel(t *testing.T) {
	assert.Equal(t, 50, PointsForNextLevel(1))
	assert.Equal(t, 200, PointsForNextLevel(2))
	assert.Equal(t, 450, PointsForNextLevel(3))
}

func TestApplyFirstCompletedDay(t *testing.T) {
	s := &Streak{}

	changed := s.Apply(day(2026, 3, 10), true)

	assert.True(t, changed)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	require.NotNil(t, s.LastActivityDate)
	assert.Equal(t, day(2026, 3, 10), *s.LastActivityDate)
}

func TestApplyConsecutiveDayExtends(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)

	changed := s.Apply(day(2026, 3, 11), true)

	assert.True(t, changed)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
}

func TestApplySameDayIsNoOp(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)

	changed := s.Apply(day(2026, 3, 10), true)

	assert.False(t, changed)
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestApplyGapResetsToOne(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)
	s.Apply(day(2026, 3, 11), true)

	changed := s.Apply(day(2026, 3, 14), true)

	assert.True(t, changed)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak, "longest streak survives the reset")
}

func TestApplyIncompleteAfterGapBreaksStreak(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)
	s.Apply(day(2026, 3, 11), true)

	changed := s.Apply(day(2026, 3, 13), false)

	assert.True(t, changed)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
	require.NotNil(t, s.LastActivityDate)
	assert.Equal(t, day(2026, 3, 11), *s.LastActivityDate, "last counted day stays put")
}

func TestApplyIncompleteNextDayKeepsStreakOpen(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)
	s.Apply(day(2026, 3, 11), true)

	// The day after the last counted one is still in progress; a
	// partial write must not zero the run.
	changed := s.Apply(day(2026, 3, 12), false)

	assert.False(t, changed)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestApplyPartialThenCompleteNextDayExtends(t *testing.T) {
	// A user with two goals produces exactly this sequence each day:
	// the first crossing evaluates with the day still incomplete, the
	// second with the day fully complete.
	s := &Streak{}
	s.Apply(day(2026, 3, 10), false)
	s.Apply(day(2026, 3, 10), true)
	s.Apply(day(2026, 3, 11), false)
	changed := s.Apply(day(2026, 3, 11), true)

	assert.True(t, changed)
	assert.Equal(t, 2, s.CurrentStreak, "two consecutive fully-completed days must yield a streak of 2")
	assert.Equal(t, 2, s.LongestStreak)
	require.NotNil(t, s.LastActivityDate)
	assert.Equal(t, day(2026, 3, 11), *s.LastActivityDate)
}

func TestApplyIncompleteSameDayDoesNotBreak(t *testing.T) {
	s := &Streak{}
	s.Apply(day(2026, 3, 10), true)

	// A partial write on the already-counted day must not zero the
	// counter; a later write can still finish the remaining goals.
	changed := s.Apply(day(2026, 3, 10), false)

	assert.False(t, changed)
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestApplyIncompleteWithNoStreak(t *testing.T) {
	s := &Streak{}

	changed := s.Apply(day(2026, 3, 10), false)

	assert.False(t, changed)
	assert.Equal(t, 0, s.CurrentStreak)
}

func TestComputeChainEmpty(t *testing.T) {
	current, longest, last := ComputeChain(nil, day(2026, 3, 10))

	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
	assert.Nil(t, last)
}

func TestComputeChainCurrentRunEndsToday(t *testing.T) {
	dates := []time.Time{
		day(2026, 3, 8),
		day(2026, 3, 9),
		day(2026, 3, 10),
	}

	current, longest, last := ComputeChain(dates, day(2026, 3, 10))

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
	require.NotNil(t, last)
	assert.Equal(t, day(2026, 3, 10), *last)
}

func TestComputeChainCurrentRunEndsYesterday(t *testing.T) {
	dates := []time.Time{
		day(2026, 3, 8),
		day(2026, 3, 9),
	}

	current, _, _ := ComputeChain(dates, day(2026, 3, 10))

	assert.Equal(t, 2, current, "a run ending yesterday still counts")
}

func TestComputeChainStaleRunDoesNotCount(t *testing.T) {
	dates := []time.Time{
		day(2026, 3, 1),
		day(2026, 3, 2),
		day(2026, 3, 3),
	}

	current, longest, _ := ComputeChain(dates, day(2026, 3, 10))

	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestComputeChainLongestIsNotLatest(t *testing.T) {
	dates := []time.Time{
		day(2026, 2, 1),
		day(2026, 2, 2),
		day(2026, 2, 3),
		day(2026, 2, 4),
		day(2026, 3, 9),
		day(2026, 3, 10),
	}

	current, longest, last := ComputeChain(dates, day(2026, 3, 10))

	assert.Equal(t, 2, current)
	assert.Equal(t, 4, longest)
	require.NotNil(t, last)
	assert.Equal(t, day(2026, 3, 10), *last)
}

func TestComputeChainUnsortedAndDuplicated(t *testing.T) {
	dates := []time.Time{
		day(2026, 3, 10),
		day(2026, 3, 8),
		day(2026, 3, 9),
		day(2026, 3, 9),
	}

	current, longest, _ := ComputeChain(dates, day(2026, 3, 10))

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}
