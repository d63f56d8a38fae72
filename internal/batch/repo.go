package batch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/model"
)

var ErrNotFound = errors.New("batch not found")

// Repo stores the active-batch singleton. The store keeps a
// latest-row-wins contract: Latest returns the most recently created
// batch, and Replace retires the old row and inserts the new one as a
// single call so in-process readers never see the gap between the two
// steps.
type Repo interface {
	Latest() (model.ActiveBatch, bool, error)
	Replace(old model.BatchID, next model.ActiveBatch) (model.ActiveBatch, error)
	Delete(id model.BatchID) error
}

type MemoryRepo struct {
	mu      sync.RWMutex
	batches map[model.BatchID]model.ActiveBatch
	bus     *events.Bus
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{batches: map[model.BatchID]model.ActiveBatch{}}
}

func (r *MemoryRepo) SetBus(bus *events.Bus) {
	r.bus = bus
}

func newID() model.BatchID {
	return model.BatchID(uuid.NewString())
}

func normalizeBatch(b *model.ActiveBatch) {
	if b.TaskIDs == nil {
		b.TaskIDs = []string{}
	}
	if b.CompletedTaskIDs == nil {
		b.CompletedTaskIDs = []string{}
	}
}

func latestOf(batches map[model.BatchID]model.ActiveBatch) (model.ActiveBatch, bool) {
	var latest model.ActiveBatch
	found := false
	for _, b := range batches {
		if !found || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
			found = true
		}
	}
	return latest, found
}

func (r *MemoryRepo) publish(typ events.Type, b model.ActiveBatch) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.New(events.CollectionActiveBatch, typ, string(b.ID), b))
}

func (r *MemoryRepo) Latest() (model.ActiveBatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := latestOf(r.batches)
	if ok {
		normalizeBatch(&b)
	}
	return b, ok, nil
}

func (r *MemoryRepo) Replace(old model.BatchID, next model.ActiveBatch) (model.ActiveBatch, error) {
	r.mu.Lock()

	var removed *model.ActiveBatch
	if prev, ok := r.batches[old]; ok {
		delete(r.batches, old)
		removed = &prev
	}

	next.ID = newID()
	next.CreatedAt = time.Now()
	normalizeBatch(&next)
	r.batches[next.ID] = next
	r.mu.Unlock()

	if removed != nil {
		r.publish(events.Deleted, *removed)
	}
	r.publish(events.Inserted, next)
	return next, nil
}

func (r *MemoryRepo) Delete(id model.BatchID) error {
	r.mu.Lock()

	b, ok := r.batches[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.batches, id)
	r.mu.Unlock()

	r.publish(events.Deleted, b)
	return nil
}
