package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogTypesAreUnique(t *testing.T) {
	seen := make(map[Type]bool)
	for _, def := range Catalog {
		assert.False(t, seen[def.Type], "duplicate catalog type %s", def.Type)
		seen[def.Type] = true
	}
}

func TestCatalogEntriesAreComplete(t *testing.T) {
	for _, def := range Catalog {
		assert.NotEmpty(t, def.Title, "%s has no title", def.Type)
		assert.NotEmpty(t, def.Description, "%s has no description", def.Type)
		assert.Greater(t, def.Points, 0, "%s awards no points", def.Type)
		assert.NotEmpty(t, string(def.Rarity), "%s has no rarity", def.Type)
		assert.NotEmpty(t, string(def.Category), "%s has no category", def.Type)
		assert.NotNil(t, def.Unlocked, "%s has no predicate", def.Type)
	}
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(TypeWeekWarrior)
	require.True(t, ok)
	assert.Equal(t, "Week Warrior", def.Title)

	_, ok = Lookup(Type("does_not_exist"))
	assert.False(t, ok)
}

func TestStreakTiersUseLongestStreak(t *testing.T) {
	// A broken streak must not re-lock already earned tiers.
	p := Progress{CurrentStreak: 0, LongestStreak: 30}

	first, _ := Lookup(TypeFirstStreak)
	week, _ := Lookup(TypeWeekWarrior)
	month, _ := Lookup(TypeMonthMaster)
	legend, _ := Lookup(TypeStreakLegend)

	assert.True(t, first.Unlocked(p))
	assert.True(t, week.Unlocked(p))
	assert.True(t, month.Unlocked(p))
	assert.False(t, legend.Unlocked(p))
}

func TestApplicationTiers(t *testing.T) {
	first, _ := Lookup(TypeFirstApplication)
	machine, _ := Lookup(TypeApplicationMachine)
	expert, _ := Lookup(TypeApplicationExpert)

	assert.False(t, first.Unlocked(Progress{}))
	assert.True(t, first.Unlocked(Progress{TotalApplications: 1}))
	assert.False(t, machine.Unlocked(Progress{TotalApplications: 49}))
	assert.True(t, machine.Unlocked(Progress{TotalApplications: 50}))
	assert.True(t, expert.Unlocked(Progress{TotalApplications: 100}))
}

func TestOfferMasterNeedsAnOffer(t *testing.T) {
	offer, _ := Lookup(TypeOfferMaster)

	assert.False(t, offer.Unlocked(Progress{TotalInterviews: 20}))
	assert.True(t, offer.Unlocked(Progress{TotalOffers: 1}))
}

func TestMilestonePredicates(t *testing.T) {
	level10, _ := Lookup(TypeLevel10)
	perfect, _ := Lookup(TypePerfectWeek)
	earlyBird, _ := Lookup(TypeEarlyBird)
	nightOwl, _ := Lookup(TypeNightOwl)

	assert.False(t, level10.Unlocked(Progress{Level: 9}))
	assert.True(t, level10.Unlocked(Progress{Level: 10}))
	assert.True(t, perfect.Unlocked(Progress{PerfectWeek: true}))
	assert.True(t, earlyBird.Unlocked(Progress{EarlyBirdLogs: 2}))
	assert.False(t, nightOwl.Unlocked(Progress{EarlyBirdLogs: 2}))
}
