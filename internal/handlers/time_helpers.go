package handlers

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// --------------------------------------------------
// Timezone centralizado por filial
// --------------------------------------------------

func locationFromBranch(branch *models.Branch) *time.Location {
	if branch != nil {
		return timezone.Location(branch.Timezone)
	}
	return timezone.Location("")
}

func parseDateInBranch(branch *models.Branch, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromBranch(branch),
	)
}

func parseMonthInBranch(branch *models.Branch, monthStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01",
		monthStr,
		locationFromBranch(branch),
	)
}
