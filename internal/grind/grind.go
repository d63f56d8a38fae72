package grind

import (
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

// New builds an unsaved grind. The repo assigns id and timestamps; the
// caller sets the watermark so the first missed-day scan starts today.
func New(title, description string, disabledDays []int, colorVariant int) model.Grind {
	return model.Grind{
		Title:        title,
		Description:  description,
		DisabledDays: disabledDays,
		ColorVariant: colorVariant,
	}
}

// CompletionResult reports what a completion event did.
type CompletionResult struct {
	Counted   bool
	NewStreak int
	NewBest   bool
	NewStage  int
	StageUp   bool
}

// BuildCompletionUpdate computes the patch for completing a grind on
// the local day of now. It is idempotent per day: a second completion
// the same day counts nothing and returns an empty patch, so duplicate
// requests cannot double-increment the streak.
func BuildCompletionUpdate(g model.Grind, now time.Time) (Patch, CompletionResult) {
	today := model.DateOf(now.In(time.Local))

	if g.LastCompletedDate != nil && *g.LastCompletedDate == today {
		return Patch{}, CompletionResult{
			NewStreak: g.CurrentStreak,
			NewStage:  Stage(g.CurrentStreak),
		}
	}

	nextStreak := g.CurrentStreak + 1
	nextBest := g.BestStreak
	if nextStreak > nextBest {
		nextBest = nextStreak
	}

	patch := Patch{
		CurrentStreak:     &nextStreak,
		BestStreak:        &nextBest,
		LastCompletedDate: &today,
	}
	return patch, CompletionResult{
		Counted:   true,
		NewStreak: nextStreak,
		NewBest:   nextBest > g.BestStreak,
		NewStage:  Stage(nextStreak),
		StageUp:   Stage(nextStreak) > Stage(g.CurrentStreak),
	}
}

// BuildUncompleteUpdate reverses today's completion: streak back down,
// completion date cleared. ok is false unless the grind was completed
// today; past days cannot be undone.
func BuildUncompleteUpdate(g model.Grind, now time.Time) (Patch, bool) {
	today := model.DateOf(now.In(time.Local))
	if g.LastCompletedDate == nil || *g.LastCompletedDate != today {
		return Patch{}, false
	}

	prevStreak := g.CurrentStreak - 1
	if prevStreak < 0 {
		prevStreak = 0
	}
	clear := ""
	return Patch{
		CurrentStreak:     &prevStreak,
		LastCompletedDate: &clear,
	}, true
}

// BuildStreakReset zeroes the current streak. BestStreak is never
// decreased.
func BuildStreakReset() Patch {
	zero := 0
	return Patch{CurrentStreak: &zero}
}

// CompletedOn reports whether the grind was completed on the given
// local calendar day.
func CompletedOn(g model.Grind, day time.Time) bool {
	return g.LastCompletedDate != nil && *g.LastCompletedDate == model.DateOf(day)
}

// EnabledCount counts the non-retired grinds applicable on the given
// day; these occupy focus slots alongside batched tasks.
func EnabledCount(grinds []model.Grind, day time.Time) int {
	n := 0
	for _, g := range grinds {
		if g.EnabledOn(day) {
			n++
		}
	}
	return n
}
