package model

import (
	"time"
)

type BatchID string

// ActiveBatch is the singleton focus selection: the ordered task ids
// currently shown as today's focus items. At most one batch is alive at
// a time; regeneration replaces the whole record rather than editing
// its membership in place.
type ActiveBatch struct {
	ID               BatchID  `json:"id"`
	TaskIDs          []string `json:"taskIds"`
	CompletedTaskIDs []string `json:"completedTaskIds"`

	CreatedAt time.Time `json:"createdAt"`
}
