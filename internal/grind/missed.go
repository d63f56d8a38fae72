package grind

import (
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

// ScanResult is one load's missed-day detection: the queued prompts in
// scan order, and the watermark patches that must be persisted for
// every scanned grind whether or not it missed anything.
type ScanResult struct {
	Missed     []model.MissedDay
	Watermarks map[model.GrindID]Patch
}

// ScanMissedDays walks, for each non-retired grind, every calendar day
// from the day after its last-checked watermark (defaulting to its
// creation date) through yesterday. Eligible days that don't match the
// grind's last completion are queued as missed. Retired grinds are
// skipped entirely.
//
// The returned watermarks move last_checked_date to today for every
// scanned grind, which is what prevents the same range being re-scanned
// on the next load.
func ScanMissedDays(grinds []model.Grind, now time.Time) ScanResult {
	now = now.In(time.Local)
	today := model.DateOf(now)

	res := ScanResult{Watermarks: map[model.GrindID]Patch{}}

	for _, g := range grinds {
		if g.Retired {
			continue
		}

		start := g.CreatedAt.In(time.Local)
		if g.LastCheckedDate != nil {
			if d, ok := model.ParseDate(*g.LastCheckedDate); ok {
				start = d
			}
		}

		lastCompleted := ""
		if g.LastCompletedDate != nil {
			lastCompleted = *g.LastCompletedDate
		}

		for d := start.AddDate(0, 0, 1); model.DateOf(d) < today; d = d.AddDate(0, 0, 1) {
			dateStr := model.DateOf(d)
			if g.DisabledOn(d.Weekday()) || dateStr == lastCompleted {
				continue
			}
			res.Missed = append(res.Missed, model.MissedDay{
				GrindID:    g.ID,
				GrindTitle: g.Title,
				Date:       dateStr,
			})
		}

		watermark := today
		res.Watermarks[g.ID] = Patch{LastCheckedDate: &watermark}
	}

	return res
}
