package grind

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

var ErrNotFound = errors.New("grind not found")

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for the date fields => clear (set to nil)
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`

	DisabledDays *[]int `json:"disabledDays,omitempty"`

	CurrentStreak *int `json:"currentStreak,omitempty"`
	BestStreak    *int `json:"bestStreak,omitempty"`

	LastCompletedDate *string `json:"lastCompletedDate,omitempty"`
	LastCheckedDate   *string `json:"lastCheckedDate,omitempty"`

	Retired      *bool `json:"retired,omitempty"`
	ColorVariant *int  `json:"colorVariant,omitempty"`
}

type Repo interface {
	Create(g model.Grind) (model.Grind, error)
	Get(id model.GrindID) (model.Grind, error)
	Update(id model.GrindID, patch Patch) (model.Grind, error)
	Delete(id model.GrindID) error
	List() ([]model.Grind, error)
}

type MemoryRepo struct {
	mu     sync.RWMutex
	grinds map[model.GrindID]model.Grind
	bus    *events.Bus
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{grinds: map[model.GrindID]model.Grind{}}
}

func (r *MemoryRepo) SetBus(bus *events.Bus) {
	r.bus = bus
}

func newID() model.GrindID {
	return model.GrindID(uuid.NewString())
}

func normalizeGrind(g *model.Grind) {
	if g.DisabledDays == nil {
		g.DisabledDays = []int{}
	}
	days := g.DisabledDays[:0]
	for _, d := range g.DisabledDays {
		if d >= 0 && d <= 6 {
			days = append(days, d)
		}
	}
	g.DisabledDays = days

	if g.ColorVariant < 0 || g.ColorVariant > 4 {
		g.ColorVariant = 0
	}
	if g.CurrentStreak < 0 {
		g.CurrentStreak = 0
	}
	if g.BestStreak < g.CurrentStreak {
		g.BestStreak = g.CurrentStreak
	}
}

func applyPatch(g *model.Grind, p Patch) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.DisabledDays != nil {
		if *p.DisabledDays == nil {
			g.DisabledDays = []int{}
		} else {
			g.DisabledDays = *p.DisabledDays
		}
	}
	if p.CurrentStreak != nil {
		g.CurrentStreak = *p.CurrentStreak
	}
	if p.BestStreak != nil {
		g.BestStreak = *p.BestStreak
	}
	if p.LastCompletedDate != nil {
		if strings.TrimSpace(*p.LastCompletedDate) == "" {
			g.LastCompletedDate = nil
		} else {
			g.LastCompletedDate = p.LastCompletedDate
		}
	}
	if p.LastCheckedDate != nil {
		if strings.TrimSpace(*p.LastCheckedDate) == "" {
			g.LastCheckedDate = nil
		} else {
			g.LastCheckedDate = p.LastCheckedDate
		}
	}
	if p.Retired != nil {
		g.Retired = *p.Retired
	}
	if p.ColorVariant != nil {
		g.ColorVariant = *p.ColorVariant
	}

	normalizeGrind(g)
}

func (r *MemoryRepo) publish(typ events.Type, g model.Grind) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionGrinds, typ, string(g.ID), g))
}

func (r *MemoryRepo) Create(g model.Grind) (model.Grind, error) {
	r.mu.Lock()

	now := time.Now()
	g.ID = newID()
	g.CreatedAt = now
	g.UpdatedAt = now
	normalizeGrind(&g)

	r.grinds[g.ID] = g
	r.mu.Unlock()

	r.publish(events.Inserted, g)
	return g, nil
}

func (r *MemoryRepo) Get(id model.GrindID) (model.Grind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grinds[id]
	if !ok {
		return model.Grind{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepo) Update(id model.GrindID, p Patch) (model.Grind, error) {
	r.mu.Lock()

	g, ok := r.grinds[id]
	if !ok {
		r.mu.Unlock()
		return model.Grind{}, ErrNotFound
	}

	applyPatch(&g, p)
	g.UpdatedAt = time.Now()

	r.grinds[id] = g
	r.mu.Unlock()

	r.publish(events.Updated, g)
	return g, nil
}

func (r *MemoryRepo) Delete(id model.GrindID) error {
	r.mu.Lock()

	g, ok := r.grinds[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.grinds, id)
	r.mu.Unlock()

	r.publish(events.Deleted, g)
	return nil
}

func sortByCreation(grinds []model.Grind) {
	sort.Slice(grinds, func(i, j int) bool {
		if !grinds[i].CreatedAt.Equal(grinds[j].CreatedAt) {
			return grinds[i].CreatedAt.Before(grinds[j].CreatedAt)
		}
		return grinds[i].ID < grinds[j].ID
	})
}

func (r *MemoryRepo) List() ([]model.Grind, error) {
	r.mu.RLock()
	out := make([]model.Grind, 0, len(r.grinds))
	for _, g := range r.grinds {
		out = append(out, g)
	}
	r.mu.RUnlock()

	sortByCreation(out)
	return out, nil
}
