package tournament

import (
	"testing"
	"time"

	"pokerclub/internal/db/models"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatusTimeDrift(t *testing.T) {
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	lateEnd := start.Add(90 * time.Minute)
	tourn := &models.Tournament{
		Status:         models.StatusRegistration,
		StartTime:      start,
		LateRegEndTime: lateEnd,
	}

	assert.Equal(t, models.StatusRegistration, EffectiveStatus(tourn, start.Add(-time.Hour)))
	assert.Equal(t, models.StatusLateRegistration, EffectiveStatus(tourn, start))
	assert.Equal(t, models.StatusLateRegistration, EffectiveStatus(tourn, start.Add(time.Hour)))
	assert.Equal(t, models.StatusActive, EffectiveStatus(tourn, lateEnd))
	assert.Equal(t, models.StatusActive, EffectiveStatus(tourn, lateEnd.Add(24*time.Hour)))
}

func TestEffectiveStatusMonotonic(t *testing.T) {
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	tourn := &models.Tournament{
		Status:         models.StatusRegistration,
		StartTime:      start,
		LateRegEndTime: start.Add(time.Hour),
	}

	rank := map[string]int{
		models.StatusRegistration:     0,
		models.StatusLateRegistration: 1,
		models.StatusActive:           2,
	}
	prev := -1
	for now := start.Add(-2 * time.Hour); now.Before(start.Add(3 * time.Hour)); now = now.Add(5 * time.Minute) {
		current := rank[EffectiveStatus(tourn, now)]
		assert.GreaterOrEqual(t, current, prev, "status must never move backwards in time")
		prev = current
	}
}

func TestEffectiveStatusPinnedByDirector(t *testing.T) {
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	lateEnd := start.Add(time.Hour)

	completed := &models.Tournament{Status: models.StatusCompleted, StartTime: start, LateRegEndTime: lateEnd}
	assert.Equal(t, models.StatusCompleted, EffectiveStatus(completed, start.Add(-time.Hour)))
	assert.Equal(t, models.StatusCompleted, EffectiveStatus(completed, lateEnd.Add(time.Hour)))

	noLate := &models.Tournament{Status: models.StatusActiveNoLate, StartTime: start, LateRegEndTime: lateEnd}
	assert.Equal(t, models.StatusActiveNoLate, EffectiveStatus(noLate, start.Add(-time.Hour)),
		"director-closed late registration ignores the clock")

	active := &models.Tournament{Status: models.StatusActive, StartTime: start, LateRegEndTime: lateEnd}
	assert.Equal(t, models.StatusLateRegistration, EffectiveStatus(active, start.Add(30*time.Minute)))
	assert.Equal(t, models.StatusActive, EffectiveStatus(active, lateEnd.Add(time.Minute)))
}
