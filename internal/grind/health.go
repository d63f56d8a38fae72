package grind

import (
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

// Health is the derived staleness tier of a grind. It is recomputed
// from stored fields on every read and never persisted, so it cannot
// drift from the streak state.
type Health string

const (
	Healthy  Health = "healthy"
	Wilting  Health = "wilting"
	Sick     Health = "sick"
	Withered Health = "withered"
)

const witheredThreshold = 7

// MissedEligibleDays counts the eligible days since the grind's last
// completion (or its creation, if never completed) that went by without
// one: every eligible day strictly after last completion through
// yesterday, plus today if today is eligible and not yet completed.
// Today's opportunity is still open, but health is judged before it
// closes.
func MissedEligibleDays(g model.Grind, now time.Time) int {
	now = now.In(time.Local)
	today := model.DateOf(now)

	if g.LastCompletedDate != nil && *g.LastCompletedDate == today {
		return 0
	}

	start := g.CreatedAt.In(time.Local)
	if g.LastCompletedDate != nil {
		if d, ok := model.ParseDate(*g.LastCompletedDate); ok {
			start = d
		}
	}

	missed := 0
	for d := start.AddDate(0, 0, 1); model.DateOf(d) < today; d = d.AddDate(0, 0, 1) {
		if !g.DisabledOn(d.Weekday()) {
			missed++
		}
	}

	if !g.DisabledOn(now.Weekday()) {
		missed++
	}

	return missed
}

// HealthOf maps missed eligible days to a health tier.
func HealthOf(g model.Grind, now time.Time) Health {
	switch missed := MissedEligibleDays(g, now); {
	case missed <= 0:
		return Healthy
	case missed == 1:
		return Wilting
	case missed < witheredThreshold:
		return Sick
	default:
		return Withered
	}
}
