package grind

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/model"
)

type fileState struct {
	Grinds map[model.GrindID]model.Grind `json:"grinds"`
}

// FileRepo is a persistent grind repository backed by a single JSON
// file. A write is acknowledged only after it reaches disk.
type FileRepo struct {
	mu   sync.RWMutex
	path string
	s    fileState
	bus  *events.Bus
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "grinds.json"),
		s:    fileState{Grinds: map[model.GrindID]model.Grind{}},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) SetBus(bus *events.Bus) {
	r.bus = bus
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Grinds == nil {
		loaded.Grinds = map[model.GrindID]model.Grind{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *FileRepo) publish(typ events.Type, g model.Grind) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionGrinds, typ, string(g.ID), g))
}

func (r *FileRepo) Create(g model.Grind) (model.Grind, error) {
	r.mu.Lock()

	now := time.Now()
	g.ID = newID()
	g.CreatedAt = now
	g.UpdatedAt = now
	normalizeGrind(&g)

	r.s.Grinds[g.ID] = g
	if err := r.saveLocked(); err != nil {
		delete(r.s.Grinds, g.ID)
		r.mu.Unlock()
		return model.Grind{}, err
	}
	r.mu.Unlock()

	r.publish(events.Inserted, g)
	return g, nil
}

func (r *FileRepo) Get(id model.GrindID) (model.Grind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.s.Grinds[id]
	if !ok {
		return model.Grind{}, ErrNotFound
	}
	return g, nil
}

func (r *FileRepo) Update(id model.GrindID, p Patch) (model.Grind, error) {
	r.mu.Lock()

	prev, ok := r.s.Grinds[id]
	if !ok {
		r.mu.Unlock()
		return model.Grind{}, ErrNotFound
	}

	g := prev
	applyPatch(&g, p)
	g.UpdatedAt = time.Now()

	r.s.Grinds[id] = g
	if err := r.saveLocked(); err != nil {
		r.s.Grinds[id] = prev
		r.mu.Unlock()
		return model.Grind{}, err
	}
	r.mu.Unlock()

	r.publish(events.Updated, g)
	return g, nil
}

func (r *FileRepo) Delete(id model.GrindID) error {
	r.mu.Lock()

	prev, ok := r.s.Grinds[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.s.Grinds, id)
	if err := r.saveLocked(); err != nil {
		r.s.Grinds[id] = prev
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.publish(events.Deleted, prev)
	return nil
}

func (r *FileRepo) List() ([]model.Grind, error) {
	r.mu.RLock()
	out := make([]model.Grind, 0, len(r.s.Grinds))
	for _, g := range r.s.Grinds {
		out = append(out, g)
	}
	r.mu.RUnlock()

	sortByCreation(out)
	return out, nil
}
