package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoalTypeValid(t *testing.T) {
	assert.True(t, TypeApplications.Valid())
	assert.True(t, TypeBehavioralPrep.Valid())
	assert.True(t, TypeTechnicalPrep.Valid())
	assert.True(t, TypeSystemDesign.Valid())
	assert.True(t, TypeCodingPractice.Valid())

	assert.False(t, GoalType("").Valid())
	assert.False(t, GoalType("gaming").Valid())
}

func TestGoalTypeIsPrep(t *testing.T) {
	assert.True(t, TypeBehavioralPrep.IsPrep())
	assert.True(t, TypeTechnicalPrep.IsPrep())
	assert.True(t, TypeSystemDesign.IsPrep())
	assert.True(t, TypeCodingPractice.IsPrep())

	assert.False(t, TypeApplications.IsPrep(), "application logging is not a prep category")
	assert.False(t, GoalType("").IsPrep())
	assert.False(t, GoalType("gaming").IsPrep())
}

func TestPointValues(t *testing.T) {
	assert.Equal(t, 10, TypeApplications.PointValue())
	assert.Equal(t, 15, TypeBehavioralPrep.PointValue())
	assert.Equal(t, 20, TypeTechnicalPrep.PointValue())
	assert.Equal(t, 25, TypeSystemDesign.PointValue())
	assert.Equal(t, 20, TypeCodingPractice.PointValue())
}

func TestCrossedCompletion(t *testing.T) {
	tests := []struct {
		name     string
		newCount int
		units    int
		target   int
		crossed  bool
	}{
		{"exactly reaches target", 5, 1, 5, true},
		{"jumps past target", 7, 4, 5, true},
		{"below target", 4, 1, 5, false},
		{"already past target", 6, 1, 5, false},
		{"single unit hits target of one", 1, 1, 1, true},
		{"large batch from zero", 10, 10, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.crossed, CrossedCompletion(tt.newCount, tt.units, tt.target))
		})
	}
}
