package task

import (
	"testing"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

func dateStr(t time.Time) string {
	return t.Format("2006-01-02")
}

func TestScore_NoDueDateNormalPriority(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	tk := model.Task{
		Priority:  model.PriorityNormal,
		CreatedAt: now,
	}
	if got := Score(tk, now); got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}
}

func TestScore_OverdueUrgentGoesNegative(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	due := dateStr(now.AddDate(0, 0, -1))
	tk := model.Task{
		DueDate:   &due,
		Priority:  model.PriorityUrgent,
		CreatedAt: now,
	}
	if got := Score(tk, now); got != -15 {
		t.Fatalf("expected -15, got %d", got)
	}
}

func TestScore_DueDateBuckets(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)

	cases := []struct {
		name       string
		daysAhead  int
		wantDueAdd int
	}{
		{"due today", 0, 0},
		{"due tomorrow", 1, 5},
		{"due in three days", 3, 15},
		{"due this week", 5, 30},
		{"due far out", 14, 60},
	}
	for _, tc := range cases {
		due := dateStr(now.AddDate(0, 0, tc.daysAhead))
		tk := model.Task{
			DueDate:   &due,
			Priority:  model.PriorityUrgent,
			CreatedAt: now,
		}
		if got := Score(tk, now); got != tc.wantDueAdd {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.wantDueAdd, got)
		}
	}
}

func TestScore_OverdueScalesPerDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	for _, days := range []int{1, 3, 10} {
		due := dateStr(now.AddDate(0, 0, -days))
		tk := model.Task{
			DueDate:   &due,
			Priority:  model.PriorityUrgent,
			CreatedAt: now,
		}
		if got := Score(tk, now); got != -15*days {
			t.Fatalf("overdue %d days: expected %d, got %d", days, -15*days, got)
		}
	}
}

func TestScore_PriorityShiftsWithinBucket(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	due := dateStr(now)

	mk := func(p int) model.Task {
		return model.Task{DueDate: &due, Priority: p, CreatedAt: now}
	}

	urgent := Score(mk(model.PriorityUrgent), now)
	normal := Score(mk(model.PriorityNormal), now)
	low := Score(mk(model.PriorityLow), now)

	if urgent != 0 || normal != 20 || low != 40 {
		t.Fatalf("expected 0/20/40, got %d/%d/%d", urgent, normal, low)
	}
}

func TestScore_AgeBonusKicksInAfterAWeekAndCaps(t *testing.T) {
	now := time.Date(2026, 3, 30, 10, 0, 0, 0, time.Local)

	mk := func(ageDays int) model.Task {
		return model.Task{
			Priority:  model.PriorityNormal,
			CreatedAt: now.AddDate(0, 0, -ageDays),
		}
	}

	if fresh, week := Score(mk(0), now), Score(mk(7), now); fresh != week {
		t.Fatalf("expected no age bonus through day 7: %d vs %d", fresh, week)
	}
	if got := Score(mk(8), now); got != 119 {
		t.Fatalf("expected one point of age bonus at day 8, got %d", got)
	}
	if d22, d40 := Score(mk(22), now), Score(mk(40), now); d22 != 105 || d40 != 105 {
		t.Fatalf("expected age bonus capped at 15: %d / %d", d22, d40)
	}
}

func TestScore_MalformedDueDateDegradesToNoDate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	bad := "not-a-date"
	tk := model.Task{
		DueDate:   &bad,
		Priority:  model.PriorityNormal,
		CreatedAt: now,
	}
	if got := Score(tk, now); got != 120 {
		t.Fatalf("expected malformed date to score like no date, got %d", got)
	}
}

func TestRank_DueYesterdayBeatsNoDueDate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	yesterday := dateStr(now.AddDate(0, 0, -1))

	a := model.Task{ID: "a", Priority: model.PriorityNormal, CreatedAt: now}
	b := model.Task{ID: "b", DueDate: &yesterday, Priority: model.PriorityNormal, CreatedAt: now}

	if sa, sb := Score(a, now), Score(b, now); sb >= sa {
		t.Fatalf("expected overdue task to score lower: %d vs %d", sb, sa)
	}

	ranked := Rank([]model.Task{a, b}, now)
	if ranked[0].ID != "b" {
		t.Fatalf("expected overdue task first, got %s", ranked[0].ID)
	}
}

func TestRank_LowerScoreFirst(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	overdue := dateStr(now.AddDate(0, 0, -2))
	later := dateStr(now.AddDate(0, 0, 10))

	tasks := []model.Task{
		{ID: "far", DueDate: &later, Priority: model.PriorityNormal, CreatedAt: now},
		{ID: "none", Priority: model.PriorityNormal, CreatedAt: now},
		{ID: "late", DueDate: &overdue, Priority: model.PriorityUrgent, CreatedAt: now},
	}

	ranked := Rank(tasks, now)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked tasks, got %d", len(ranked))
	}
	if ranked[0].ID != "late" || ranked[1].ID != "far" || ranked[2].ID != "none" {
		t.Fatalf("unexpected order: %s %s %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestRank_StarredJumpTheQueueInStarOrder(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	overdue := dateStr(now.AddDate(0, 0, -5))

	early := now.Add(-2 * time.Hour)
	late := now.Add(-1 * time.Hour)

	tasks := []model.Task{
		{ID: "urgent", DueDate: &overdue, Priority: model.PriorityUrgent, CreatedAt: now},
		{ID: "star-late", Starred: true, StarredAt: &late, Priority: model.PriorityNormal, CreatedAt: now},
		{ID: "star-early", Starred: true, StarredAt: &early, Priority: model.PriorityNormal, CreatedAt: now},
	}

	ranked := Rank(tasks, now)
	if ranked[0].ID != "star-early" || ranked[1].ID != "star-late" {
		t.Fatalf("expected starred tasks first in star order, got %s then %s", ranked[0].ID, ranked[1].ID)
	}
	if ranked[2].ID != "urgent" {
		t.Fatalf("expected unstarred task last even when overdue, got %s", ranked[2].ID)
	}
}

func TestRank_ExcludesCompletedAndWaiting(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)

	tasks := []model.Task{
		{ID: "open", Priority: model.PriorityNormal, CreatedAt: now},
		{ID: "done", Completed: true, Priority: model.PriorityNormal, CreatedAt: now},
		{ID: "blocked", Waiting: true, Priority: model.PriorityNormal, CreatedAt: now},
	}

	ranked := Rank(tasks, now)
	if len(ranked) != 1 || ranked[0].ID != "open" {
		t.Fatalf("expected only the open task, got %d entries", len(ranked))
	}
}
