package task

import (
	"github.com/google/uuid"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

// New builds an unsaved task with capture defaults. The repo assigns
// id and timestamps on Create.
func New(title, description string) model.Task {
	return model.Task{
		Title:       title,
		Description: description,
		Priority:    model.PriorityNormal,
		Category:    "general",
	}
}

// NewStep builds one checklist step.
func NewStep(title string) model.Step {
	return model.Step{
		ID:    uuid.NewString(),
		Title: title,
	}
}

// BuildStepAdvance completes the first open step of a multi-step task.
// When that was the last open step the whole task completes with it.
// ok is false when the task has no steps or none remain open.
func BuildStepAdvance(t model.Task) (Patch, bool) {
	idx := -1
	for i, s := range t.Steps {
		if !s.Completed {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Patch{}, false
	}

	steps := make([]model.Step, len(t.Steps))
	copy(steps, t.Steps)
	steps[idx].Completed = true

	allDone := true
	for _, s := range steps {
		if !s.Completed {
			allDone = false
			break
		}
	}

	p := Patch{Steps: &steps}
	if allDone {
		done := true
		p.Completed = &done
	}
	return p, true
}

// BuildUncomplete reopens a completed task. For stepped tasks the most
// recently completed step is reopened too, so repeated uncomplete walks
// the checklist backwards.
func BuildUncomplete(t model.Task) Patch {
	open := false
	p := Patch{Completed: &open}

	last := -1
	for i, s := range t.Steps {
		if s.Completed {
			last = i
		}
	}
	if last >= 0 {
		steps := make([]model.Step, len(t.Steps))
		copy(steps, t.Steps)
		steps[last].Completed = false
		p.Steps = &steps
	}

	return p
}
