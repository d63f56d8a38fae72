package batch

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/grind"
	"github.com/DominicTanzillo/blessedmind/internal/model"
	"github.com/DominicTanzillo/blessedmind/internal/task"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

// DefaultBatchSize is how many focus slots the dashboard shows. Grinds
// enabled today occupy slots first; tasks fill the rest.
const DefaultBatchSize = 3

// Manager maintains the at-most-one-alive active batch.
type Manager struct {
	repo      Repo
	tasks     task.Repo
	grinds    grind.Repo
	size      int
	logger    *log.Logger
	telemetry telemetry.Repository

	regenerating atomic.Bool
}

func NewManager(repo Repo, tasks task.Repo, grinds grind.Repo, size int, logger *log.Logger) *Manager {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		repo:   repo,
		tasks:  tasks,
		grinds: grinds,
		size:   size,
		logger: logger,
	}
}

func (m *Manager) SetTelemetry(rec telemetry.Repository) {
	m.telemetry = rec
}

// EffectiveSize is the task slot count for the given day: the batch
// size minus the grinds enabled that day, clamped at zero.
func (m *Manager) EffectiveSize(now time.Time) int {
	grinds, err := m.grinds.List()
	if err != nil {
		m.logger.Printf("batch effective size: %v", err)
		grinds = nil
	}
	n := m.size - grind.EnabledCount(grinds, now)
	if n < 0 {
		n = 0
	}
	return n
}

// Regenerate re-ranks all tasks and replaces the active batch with the
// top effective-size ids. An empty result deletes any existing batch
// and leaves the slot empty. Concurrent calls collapse to one run: the
// loser returns immediately without touching the store.
func (m *Manager) Regenerate(now time.Time) error {
	if !m.regenerating.CompareAndSwap(false, true) {
		return nil
	}
	defer m.regenerating.Store(false)

	tasks, err := m.tasks.List(task.ListFilter{})
	if err != nil {
		return err
	}
	ranked := task.Rank(tasks, now)

	size := m.EffectiveSize(now)
	ids := make([]string, 0, size)
	for _, t := range ranked {
		if len(ids) >= size {
			break
		}
		ids = append(ids, string(t.ID))
	}

	cur, hasCur, err := m.repo.Latest()
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		if hasCur {
			if err := m.repo.Delete(cur.ID); err != nil {
				return err
			}
		}
		return nil
	}

	var old model.BatchID
	if hasCur {
		old = cur.ID
	}
	next := model.ActiveBatch{TaskIDs: ids, CompletedTaskIDs: []string{}}
	if _, err := m.repo.Replace(old, next); err != nil {
		return err
	}

	if m.telemetry != nil {
		_ = m.telemetry.RecordEvent(telemetry.EventBatchRegenerated, telemetry.EventMetadata{
			"task_count": len(ids),
		})
	}
	return nil
}

// Ensure regenerates when no batch exists but eligible tasks do: the
// auto-initialize pass after load, and the repair path after a replace
// that failed half way.
func (m *Manager) Ensure(now time.Time) error {
	_, hasCur, err := m.repo.Latest()
	if err != nil {
		return err
	}
	if hasCur {
		return nil
	}

	tasks, err := m.tasks.List(task.ListFilter{Status: "pending"})
	if err != nil {
		return err
	}
	eligible := false
	for _, t := range tasks {
		if t.Open() {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil
	}
	return m.Regenerate(now)
}

// View materializes a batch against the current task set. Tasks that
// turned waiting after being batched are excluded from display without
// a batch rewrite; ids pointing at deleted tasks drop out the same way.
type View struct {
	HasBatch         bool         `json:"hasBatch"`
	BatchID          string       `json:"batchId,omitempty"`
	Tasks            []model.Task `json:"tasks"`
	CompletedInBatch int          `json:"completedInBatch"`
	AllCompleted     bool         `json:"allCompleted"`
	EffectiveSize    int          `json:"effectiveSize"`
}

func (m *Manager) View() (View, error) {
	cur, hasCur, err := m.repo.Latest()
	if err != nil {
		return View{}, err
	}
	if !hasCur {
		return View{Tasks: []model.Task{}}, nil
	}

	tasks, err := m.tasks.List(task.ListFilter{})
	if err != nil {
		return View{}, err
	}
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[string(t.ID)] = t
	}

	v := View{HasBatch: true, BatchID: string(cur.ID), Tasks: []model.Task{}}
	for _, id := range cur.TaskIDs {
		t, ok := byID[id]
		if !ok || t.Waiting {
			continue
		}
		v.Tasks = append(v.Tasks, t)
		if t.Completed {
			v.CompletedInBatch++
		}
	}
	v.AllCompleted = len(v.Tasks) > 0 && v.CompletedInBatch == len(v.Tasks)
	return v, nil
}
