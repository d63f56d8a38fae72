package events

import (
	"encoding/json"
	"time"
)

type Type string

const (
	Inserted Type = "inserted"
	Updated  Type = "updated"
	Deleted  Type = "deleted"
)

const (
	CollectionTasks       = "tasks"
	CollectionGrinds      = "grinds"
	CollectionActiveBatch = "active_batch"
)

// Event is one change notification from the store: a tagged
// insert/update/delete for a single row, applied last-write-wins.
type Event struct {
	Collection string          `json:"collection"`
	Type       Type            `json:"type"`
	ID         string          `json:"id"`
	Row        json.RawMessage `json:"row,omitempty"`
	At         time.Time       `json:"at"`
}

// New builds an event, marshalling the row. Rows that fail to marshal
// are published without a payload rather than dropped; the id still
// lets reducers evict stale state.
func New(collection string, typ Type, id string, row any) Event {
	e := Event{
		Collection: collection,
		Type:       typ,
		ID:         id,
		At:         time.Now(),
	}
	if row != nil {
		if b, err := json.Marshal(row); err == nil {
			e.Row = b
		}
	}
	return e
}
