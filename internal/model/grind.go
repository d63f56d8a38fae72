package model

import (
	"time"
)

type GrindID string

// Grind is a daily recurring habit tracked with streaks.
//
// CurrentStreak only moves forward on completion and only drops to zero
// through an explicit reconciliation reset; staleness is a derived view
// (grind.Health), never persisted.
type Grind struct {
	ID          GrindID `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`

	// DisabledDays are weekdays (0=Sunday..6=Saturday) on which the
	// habit does not apply.
	DisabledDays []int `json:"disabledDays"`

	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`

	// Local calendar dates "YYYY-MM-DD".
	LastCompletedDate *string `json:"lastCompletedDate,omitempty"`

	// LastCheckedDate is the watermark for missed-day scanning: days up
	// to and including it have already been scanned.
	LastCheckedDate *string `json:"lastCheckedDate,omitempty"`

	Retired      bool `json:"retired"`
	ColorVariant int  `json:"colorVariant"` // cosmetic, 0-4

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisabledOn reports whether the grind is switched off for the given
// weekday. Out-of-range entries in DisabledDays are ignored.
func (g Grind) DisabledOn(weekday time.Weekday) bool {
	for _, d := range g.DisabledDays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// EnabledOn reports whether the grind applies on the given day.
func (g Grind) EnabledOn(day time.Time) bool {
	return !g.Retired && !g.DisabledOn(day.Weekday())
}

// MissedDay is one eligible day a grind was not completed, queued for
// the reconciliation flow. It is ephemeral and never persisted; the
// watermark advance on the grind is what records scan progress.
type MissedDay struct {
	GrindID    GrindID `json:"grindId"`
	GrindTitle string  `json:"grindTitle"`
	Date       string  `json:"date"`
}
