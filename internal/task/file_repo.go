package task

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
	Tasks map[model.TaskID]model.Task `json:"tasks"`
}

// FileRepo is a persistent task repository backed by a single JSON
// file. Writes hit disk before they are acknowledged, so a failed save
// never leaves acknowledged state only in memory.
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
		path: filepath.Join(dataDir, "tasks.json"),
		s:    fileState{Tasks: map[model.TaskID]model.Task{}},
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
	if loaded.Tasks == nil {
		loaded.Tasks = map[model.TaskID]model.Task{}
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

func (r *FileRepo) publish(typ events.Type, t model.Task) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionTasks, typ, string(t.ID), t))
}

func (r *FileRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.s.Tasks[t.ID] = t
	if err := r.saveLocked(); err != nil {
		delete(r.s.Tasks, t.ID)
		r.mu.Unlock()
		return model.Task{}, err
	}
	r.mu.Unlock()

	r.publish(events.Inserted, t)
	return t, nil
}

func (r *FileRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()

	prev, ok := r.s.Tasks[id]
	if !ok {
		r.mu.Unlock()
		return model.Task{}, ErrNotFound
	}

	t := prev
	now := time.Now()
	applyPatch(&t, p, now)
	t.UpdatedAt = now

	r.s.Tasks[id] = t
	if err := r.saveLocked(); err != nil {
		r.s.Tasks[id] = prev
		r.mu.Unlock()
		return model.Task{}, err
	}
	r.mu.Unlock()

	r.publish(events.Updated, t)
	return t, nil
}

func (r *FileRepo) Delete(id model.TaskID) error {
	r.mu.Lock()

	prev, ok := r.s.Tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.s.Tasks, id)
	if err := r.saveLocked(); err != nil {
		r.s.Tasks[id] = prev
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.publish(events.Deleted, prev)
	return nil
}

func (r *FileRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	tasks := make([]model.Task, 0, len(r.s.Tasks))
	for _, t := range r.s.Tasks {
		tasks = append(tasks, t)
	}
	r.mu.RUnlock()

	return filterAndSort(tasks, filter), nil
}
