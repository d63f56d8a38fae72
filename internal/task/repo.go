package task

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/model"
)

var ErrNotFound = errors.New("task not found")

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for DueDate/Category => clear / reset to default
type Patch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty"`
	Priority    *int          `json:"priority,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
	Starred     *bool         `json:"starred,omitempty"`
	Waiting     *bool         `json:"waiting,omitempty"`
	Steps       *[]model.Step `json:"steps,omitempty"`
}

type ListFilter struct {
	// Status:
	//   "" | "all" | "pending" | "done"
	Status string

	// Search matches against title and description, case-insensitive.
	Search string

	// Category: "" | "any" | "<exact category>"
	Category string

	// Priority: nil = don't care.
	Priority *int
}

type Repo interface {
	Create(t model.Task) (model.Task, error)
	Get(id model.TaskID) (model.Task, error)
	Update(id model.TaskID, patch Patch) (model.Task, error)
	Delete(id model.TaskID) error
	List(filter ListFilter) ([]model.Task, error)
}

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]model.Task
	bus   *events.Bus
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[model.TaskID]model.Task{}}
}

// SetBus attaches a change-notification bus; every successful write is
// published on it.
func (r *MemoryRepo) SetBus(bus *events.Bus) {
	r.bus = bus
}

func newID() model.TaskID {
	return model.TaskID(uuid.NewString())
}

func normalizeTask(t *model.Task) {
	if t.Priority < model.PriorityUrgent || t.Priority > model.PriorityLow {
		t.Priority = model.PriorityNormal
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = "general"
	}
}

// applyPatch mutates t in place. Completion and starring manage their
// companion timestamps here so callers cannot desync flag and instant.
func applyPatch(t *model.Task, p Patch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}

	if p.DueDate != nil {
		if strings.TrimSpace(*p.DueDate) == "" {
			t.DueDate = nil
		} else {
			t.DueDate = p.DueDate
		}
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}

	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}

	if p.Starred != nil && *p.Starred != t.Starred {
		t.Starred = *p.Starred
		if t.Starred {
			at := now
			t.StarredAt = &at
		} else {
			t.StarredAt = nil
		}
	}

	if p.Waiting != nil {
		t.Waiting = *p.Waiting
	}

	if p.Steps != nil {
		if *p.Steps == nil {
			t.Steps = nil
		} else {
			t.Steps = *p.Steps
		}
	}

	normalizeTask(t)
}

func (r *MemoryRepo) publish(typ events.Type, t model.Task) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionTasks, typ, string(t.ID), t))
}

func (r *MemoryRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.tasks[t.ID] = t
	r.mu.Unlock()

	r.publish(events.Inserted, t)
	return t, nil
}

func (r *MemoryRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()

	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return model.Task{}, ErrNotFound
	}

	now := time.Now()
	applyPatch(&t, p, now)
	t.UpdatedAt = now

	r.tasks[id] = t
	r.mu.Unlock()

	r.publish(events.Updated, t)
	return t, nil
}

func (r *MemoryRepo) Delete(id model.TaskID) error {
	r.mu.Lock()

	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.tasks, id)
	r.mu.Unlock()

	r.publish(events.Deleted, t)
	return nil
}

func matchesFilter(t model.Task, filter ListFilter) bool {
	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case "", "all":
		// no-op
	case "pending":
		if t.Completed {
			return false
		}
	case "done":
		if !t.Completed {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		title := strings.ToLower(t.Title)
		desc := strings.ToLower(t.Description)
		if !strings.Contains(title, q) && !strings.Contains(desc, q) {
			return false
		}
	}

	switch c := strings.TrimSpace(filter.Category); c {
	case "", "any":
		// no-op
	default:
		if t.Category != c {
			return false
		}
	}

	if filter.Priority != nil && t.Priority != *filter.Priority {
		return false
	}

	return true
}

// filterAndSort applies the filter and orders by creation time, oldest
// first, id as tiebreaker so the order is stable across calls.
func filterAndSort(tasks []model.Task, filter ListFilter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.mu.RUnlock()

	return filterAndSort(tasks, filter), nil
}
