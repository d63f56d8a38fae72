package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/batch"
	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/grind"
	"github.com/DominicTanzillo/blessedmind/internal/task"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

// App holds the wired services for the server.
// This makes it obvious what the handlers depend on.
type App struct {
	TaskRepo     task.Repo
	GrindService *grind.Service
	BatchManager *batch.Manager
	Bus          *events.Bus
	Snapshot     *events.Snapshot
	Telemetry    telemetry.Repository

	BootNow time.Time
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	taskHandler := task.NewHandler(app.TaskRepo)
	taskHandler.SetTelemetry(app.Telemetry)

	grindHandler := grind.NewHandler(app.GrindService)
	batchHandler := batch.NewHandler(app.BatchManager)

	// Tasks
	Handle(mux, rr, "GET /api/tasks", "List tasks (status, q, category, priority filters)", "", taskHandler.List)
	Handle(mux, rr, "POST /api/tasks", "Capture a task", `{"title":"Call the bank","priority":2}`, taskHandler.Create)
	Handle(mux, rr, "GET /api/tasks/{id}", "Fetch one task", "", taskHandler.Get)
	Handle(mux, rr, "PATCH /api/tasks/{id}", "Partially update a task", `{"dueDate":"2026-09-01"}`, taskHandler.Update)
	Handle(mux, rr, "DELETE /api/tasks/{id}", "Delete a task", "", taskHandler.Delete)
	Handle(mux, rr, "POST /api/tasks/{id}/complete", "Complete a task", "", taskHandler.Complete)
	Handle(mux, rr, "POST /api/tasks/{id}/uncomplete", "Reopen a task (steps reopen in reverse)", "", taskHandler.Uncomplete)
	Handle(mux, rr, "POST /api/tasks/{id}/steps/advance", "Complete the current step", "", taskHandler.AdvanceStep)
	Handle(mux, rr, "POST /api/tasks/{id}/star", "Pin a task to the front of the ranking", "", taskHandler.Star)
	Handle(mux, rr, "POST /api/tasks/{id}/unstar", "Unpin a task", "", taskHandler.Unstar)
	Handle(mux, rr, "POST /api/tasks/{id}/wait", "Defer a task (excluded from ranking)", "", taskHandler.Wait)
	Handle(mux, rr, "POST /api/tasks/{id}/resume", "Reactivate a deferred task", "", taskHandler.Resume)
	Handle(mux, rr, "GET /api/tasks/{id}/calendar.ics", "Export a due task as an iCalendar event", "", taskHandler.CalendarICS)

	// Grinds
	Handle(mux, rr, "GET /api/grinds", "List grinds with derived stage/health; triggers the daily missed-day scan", "", grindHandler.List)
	Handle(mux, rr, "POST /api/grinds", "Create a grind", `{"title":"Morning run","disabledDays":[0,6]}`, grindHandler.Create)
	Handle(mux, rr, "PATCH /api/grinds/{id}", "Edit grind title/days/color", `{"disabledDays":[0]}`, grindHandler.Update)
	Handle(mux, rr, "DELETE /api/grinds/{id}", "Delete a grind permanently", "", grindHandler.Delete)
	Handle(mux, rr, "POST /api/grinds/{id}/complete", "Complete today's grind (idempotent per day)", "", grindHandler.Complete)
	Handle(mux, rr, "POST /api/grinds/{id}/uncomplete", "Undo today's completion", "", grindHandler.Uncomplete)
	Handle(mux, rr, "POST /api/grinds/{id}/retire", "Retire a grind (soft delete)", "", grindHandler.Retire)
	Handle(mux, rr, "POST /api/grinds/{id}/reactivate", "Bring a retired grind back", "", grindHandler.Reactivate)

	// Missed-day reconciliation
	Handle(mux, rr, "GET /api/reconcile", "Current missed-day prompt", "", grindHandler.ReconcileState)
	Handle(mux, rr, "POST /api/reconcile", "Answer the current prompt", `{"didComplete":false}`, grindHandler.ReconcileAnswer)

	// Focus batch
	Handle(mux, rr, "GET /api/batch", "Current focus batch (auto-initializes when absent)", "", batchHandler.Get)
	Handle(mux, rr, "POST /api/batch/regenerate", "Re-rank tasks and replace the batch", "", batchHandler.Regenerate)

	// Change feed
	if app.Bus != nil {
		Handle(mux, rr, "GET /api/events", "Server-sent change notifications", "", events.StreamHandler(app.Bus))
	}
	if app.Snapshot != nil {
		Handle(mux, rr, "GET /api/snapshot", "In-memory mirror folded from the change feed", "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, app.Snapshot.Dump())
		})
	}

	// Telemetry
	if app.Telemetry != nil {
		Handle(mux, rr, "GET /api/stats", "Usage stats since boot", "", func(w http.ResponseWriter, r *http.Request) {
			evts, err := app.Telemetry.GetEvents(app.BootNow, nil)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				writeJSON(w, map[string]any{"error": err.Error()})
				return
			}
			stats, err := telemetry.CalculateStats(evts, app.BootNow)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				writeJSON(w, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, stats)
		})
	}

	// Route docs
	Handle(mux, rr, "GET /api/routes", "List registered API routes", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rr.List())
	})
}
