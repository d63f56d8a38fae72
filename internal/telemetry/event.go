package telemetry

import "time"

type EventType string

const (
	EventTaskCreated      EventType = "task_created"
	EventTaskCompleted    EventType = "task_completed"
	EventGrindCreated     EventType = "grind_created"
	EventGrindCompleted   EventType = "grind_completed"
	EventStreakReset      EventType = "streak_reset"
	EventBatchRegenerated EventType = "batch_regenerated"
	EventMissedDayQueued  EventType = "missed_day_queued"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
