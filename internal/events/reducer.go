package events

import (
	"encoding/json"
	"sync"
)

// Snapshot is a local mirror of the store built by folding the event
// stream: rows keyed by id per collection, newest write wins, events
// applied strictly in arrival order.
type Snapshot struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

func NewSnapshot() *Snapshot {
	return &Snapshot{data: map[string]map[string]json.RawMessage{}}
}

// Apply folds one event into the snapshot.
func (s *Snapshot) Apply(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.data[e.Collection]
	if !ok {
		rows = map[string]json.RawMessage{}
		s.data[e.Collection] = rows
	}

	switch e.Type {
	case Inserted, Updated:
		if e.Row != nil {
			rows[e.ID] = e.Row
		}
	case Deleted:
		delete(rows, e.ID)
	}
}

// Get returns the current row payload for collection/id.
func (s *Snapshot) Get(collection, id string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.data[collection][id]
	return row, ok
}

// Len returns the number of live rows in a collection.
func (s *Snapshot) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[collection])
}

// Dump returns every live row grouped by collection. Row payloads are
// shared with the snapshot; callers must not mutate them.
func (s *Snapshot) Dump() map[string][]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]json.RawMessage, len(s.data))
	for collection, rows := range s.data {
		list := make([]json.RawMessage, 0, len(rows))
		for _, row := range rows {
			list = append(list, row)
		}
		out[collection] = list
	}
	return out
}

// Follow applies every event from ch until it closes. Run it in its
// own goroutine.
func (s *Snapshot) Follow(ch <-chan Event) {
	for e := range ch {
		s.Apply(e)
	}
}
