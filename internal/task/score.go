package task

import (
	"sort"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

const (
	scoreNoDueDate  = 100
	overduePerDay   = 15
	dueSoonPerDay   = 5
	dueThisWeek     = 30
	dueLater        = 60
	agePenaltyFloor = 7
	agePenaltyCap   = 15
)

// Score computes the urgency of a task relative to the calendar day of
// now. Lower = more pressing. Pure; a malformed due date degrades to
// "no date" rather than failing.
//
// Three additive components, weighted roughly 60/30/10 by construction:
// the due-date term dominates, priority shifts within a day-bucket, and
// an age bonus keeps old captures from being neglected forever.
func Score(t model.Task, now time.Time) int {
	score := 0

	due, hasDue := time.Time{}, false
	if t.DueDate != nil {
		due, hasDue = model.ParseDate(*t.DueDate)
	}

	if hasDue {
		daysUntil := model.DaysBetween(now, due)
		switch {
		case daysUntil < 0:
			score += daysUntil * overduePerDay // strongly negative, unbounded
		case daysUntil == 0:
			// due today
		case daysUntil <= 3:
			score += daysUntil * dueSoonPerDay
		case daysUntil <= 7:
			score += dueThisWeek
		default:
			score += dueLater
		}
	} else {
		score += scoreNoDueDate
	}

	switch t.Priority {
	case model.PriorityUrgent:
		// +0
	case model.PriorityLow:
		score += 40
	default:
		score += 20
	}

	ageDays := model.DaysBetween(t.CreatedAt, now)
	if ageDays > agePenaltyFloor {
		bonus := ageDays - agePenaltyFloor
		if bonus > agePenaltyCap {
			bonus = agePenaltyCap
		}
		score -= bonus
	}

	return score
}

// Rank orders the open, non-waiting tasks for batch selection: starred
// tasks first in starred-at order (earliest star wins), then everything
// else by ascending score. Both sorts are stable so score ties keep
// their incoming relative order.
func Rank(tasks []model.Task, now time.Time) []model.Task {
	starred := make([]model.Task, 0, len(tasks))
	rest := make([]model.Task, 0, len(tasks))

	for _, t := range tasks {
		if !t.Open() {
			continue
		}
		if t.Starred {
			starred = append(starred, t)
		} else {
			rest = append(rest, t)
		}
	}

	sort.SliceStable(starred, func(i, j int) bool {
		ti, tj := starred[i].StarredAt, starred[j].StarredAt
		switch {
		case ti == nil:
			return tj != nil
		case tj == nil:
			return false
		default:
			return ti.Before(*tj)
		}
	})

	scores := make(map[model.TaskID]int, len(rest))
	for _, t := range rest {
		scores[t.ID] = Score(t, now)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return scores[rest[i].ID] < scores[rest[j].ID]
	})

	return append(starred, rest...)
}
