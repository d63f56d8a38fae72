package batch

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
	Batches map[model.BatchID]model.ActiveBatch `json:"batches"`
}

// FileRepo persists the active-batch singleton as JSON. Replace writes
// delete and insert in one save, so the on-disk state never holds the
// half-replaced gap; a crash before the save simply keeps the old
// batch, after it the new one.
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
		path: filepath.Join(dataDir, "active_batch.json"),
		s:    fileState{Batches: map[model.BatchID]model.ActiveBatch{}},
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
	if loaded.Batches == nil {
		loaded.Batches = map[model.BatchID]model.ActiveBatch{}
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

func (r *FileRepo) publish(typ events.Type, b model.ActiveBatch) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionActiveBatch, typ, string(b.ID), b))
}

func (r *FileRepo) Latest() (model.ActiveBatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := latestOf(r.s.Batches)
	if ok {
		normalizeBatch(&b)
	}
	return b, ok, nil
}

func (r *FileRepo) Replace(old model.BatchID, next model.ActiveBatch) (model.ActiveBatch, error) {
	r.mu.Lock()

	var removed *model.ActiveBatch
	if prev, ok := r.s.Batches[old]; ok {
		delete(r.s.Batches, old)
		removed = &prev
	}

	next.ID = newID()
	next.CreatedAt = time.Now()
	normalizeBatch(&next)
	r.s.Batches[next.ID] = next

	if err := r.saveLocked(); err != nil {
		delete(r.s.Batches, next.ID)
		if removed != nil {
			r.s.Batches[removed.ID] = *removed
		}
		r.mu.Unlock()
		return model.ActiveBatch{}, err
	}
	r.mu.Unlock()

	if removed != nil {
		r.publish(events.Deleted, *removed)
	}
	r.publish(events.Inserted, next)
	return next, nil
}

func (r *FileRepo) Delete(id model.BatchID) error {
	r.mu.Lock()

	prev, ok := r.s.Batches[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.s.Batches, id)
	if err := r.saveLocked(); err != nil {
		r.s.Batches[id] = prev
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.publish(events.Deleted, prev)
	return nil
}
