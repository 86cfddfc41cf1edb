package tournament

import (
	"time"

	"pokerclub/internal/db/models"
)

// EffectiveStatus derives the display status from the persisted status and
// the clock. The persisted value is never mutated here: a tournament left in
// "registration" drifts through late_registration into active purely by time,
// while the director-set statuses pin the result.
func EffectiveStatus(t *models.Tournament, now time.Time) string {
	switch t.Status {
	case models.StatusCompleted:
		return models.StatusCompleted
	case models.StatusActiveNoLate:
		return models.StatusActiveNoLate
	case models.StatusActive:
		if now.Before(t.LateRegEndTime) {
			return models.StatusLateRegistration
		}
		return models.StatusActive
	}
	if now.Before(t.StartTime) {
		return models.StatusRegistration
	}
	if now.Before(t.LateRegEndTime) {
		return models.StatusLateRegistration
	}
	return models.StatusActive
}
