package model

import (
	"time"
)

type TaskID string

// Step is one item of a task's ordered checklist. Steps are advisory
// progress markers; the task's completed flag is authoritative.
type Step struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          TaskID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// DueDate is a local calendar date "YYYY-MM-DD", not an instant.
	DueDate  *string `json:"dueDate,omitempty"`
	Priority int     `json:"priority"` // 1=urgent 2=normal 3=low
	Category string  `json:"category"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Starred   bool       `json:"starred"`
	StarredAt *time.Time `json:"starredAt,omitempty"`

	// Waiting marks a task deferred/blocked; waiting tasks are excluded
	// from ranking and from batch display until resumed.
	Waiting bool `json:"waiting"`

	Steps []Step `json:"steps,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	PriorityUrgent = 1
	PriorityNormal = 2
	PriorityLow    = 3
)

// StepsComplete reports whether the task has steps and every one is done.
func (t Task) StepsComplete() bool {
	if len(t.Steps) == 0 {
		return false
	}
	for _, s := range t.Steps {
		if !s.Completed {
			return false
		}
	}
	return true
}

// Open reports whether the task competes for a focus slot.
func (t Task) Open() bool {
	return !t.Completed && !t.Waiting
}
