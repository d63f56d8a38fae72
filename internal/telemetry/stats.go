package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	TaskCompletions  int               `json:"task_completions"`
	GrindCompletions int               `json:"grind_completions"`
	StreakResets     int               `json:"streak_resets"`
	BatchRefreshes   int               `json:"batch_refreshes"`
	MissedDaysQueued int               `json:"missed_days_queued"`
	BestStreakSeen   int               `json:"best_streak_seen"`
}

// CalculateStats summarizes usage from recorded events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskCompleted:
			stats.TaskCompletions++
		case EventGrindCompleted:
			stats.GrindCompletions++
			if streak, ok := metadata["streak"].(float64); ok && int(streak) > stats.BestStreakSeen {
				stats.BestStreakSeen = int(streak)
			}
		case EventStreakReset:
			stats.StreakResets++
		case EventBatchRegenerated:
			stats.BatchRefreshes++
		case EventMissedDayQueued:
			if n, ok := metadata["count"].(float64); ok {
				stats.MissedDaysQueued += int(n)
			}
		}
	}

	return stats, nil
}
