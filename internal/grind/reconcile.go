package grind

import (
	"sync"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

// Flow is the sequential reconciliation prompt over queued missed days.
// It always presents the head of the queue, in detection order.
//
// Answering yes clears only that one prompt; the historical completion
// is NOT retroactively applied to the streak. That asymmetry is the
// shipped product behavior (it avoids retroactive streak gaming) and is
// kept deliberately. Confirm with product before changing it.
//
// Answering no discards every remaining prompt for that grind and asks
// the caller to reset its streak.
type Flow struct {
	mu    sync.Mutex
	queue []model.MissedDay
}

func NewFlow(missed []model.MissedDay) *Flow {
	return &Flow{queue: missed}
}

// Active reports whether prompts remain. The flow dismisses itself when
// the queue drains; there is no explicit close.
func (f *Flow) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) > 0
}

// Current returns the prompt being presented.
func (f *Flow) Current() (model.MissedDay, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return model.MissedDay{}, false
	}
	return f.queue[0], true
}

// Remaining returns how many prompts are queued.
func (f *Flow) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Answer resolves the current prompt. resetGrind is non-nil when the
// answer was no: the caller must reset that grind's streak. ok is false
// when there was no prompt to answer.
func (f *Flow) Answer(didComplete bool) (resetGrind *model.GrindID, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return nil, false
	}
	cur := f.queue[0]

	if didComplete {
		f.queue = f.queue[1:]
		return nil, true
	}

	rest := f.queue[:0]
	for _, m := range f.queue {
		if m.GrindID != cur.GrindID {
			rest = append(rest, m)
		}
	}
	f.queue = rest

	id := cur.GrindID
	return &id, true
}
