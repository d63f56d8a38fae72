package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DominicTanzillo/blessedmind/internal/model"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

type Handler struct {
	repo      Repo
	telemetry telemetry.Repository
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetTelemetry(rec telemetry.Repository) {
	h.telemetry = rec
}

func (h *Handler) record(typ telemetry.EventType, meta telemetry.EventMetadata) {
	if h.telemetry == nil {
		return
	}
	_ = h.telemetry.RecordEvent(typ, meta)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func parseIntPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == "any" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// GET /api/tasks?status=&q=&category=&priority=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:   q.Get("status"),
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Priority: parseIntPtr(q.Get("priority")),
	}

	tasks, err := h.repo.List(filter)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"dueDate"`
	Priority    *int     `json:"priority"`
	Category    *string  `json:"category"`
	Steps       []string `json:"steps"`
}

// POST /api/tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}

	t := New(strings.TrimSpace(req.Title), req.Description)
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		if _, ok := model.ParseDate(*req.DueDate); !ok {
			writeErr(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
			return
		}
		t.DueDate = req.DueDate
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	for _, title := range req.Steps {
		if strings.TrimSpace(title) == "" {
			continue
		}
		t.Steps = append(t.Steps, NewStep(strings.TrimSpace(title)))
	}

	created, err := h.repo.Create(t)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.record(telemetry.EventTaskCreated, telemetry.EventMetadata{"task_id": string(created.ID)})
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) taskID(r *http.Request) model.TaskID {
	return model.TaskID(r.PathValue("id"))
}

// GET /api/tasks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Get(h.taskID(r))
	if err != nil {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PATCH /api/tasks/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.DueDate != nil && strings.TrimSpace(*p.DueDate) != "" {
		if _, ok := model.ParseDate(*p.DueDate); !ok {
			writeErr(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
			return
		}
	}

	t, err := h.repo.Update(h.taskID(r), p)
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /api/tasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(h.taskID(r)); err != nil {
		h.writeRepoErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// POST /api/tasks/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	done := true
	t, err := h.repo.Update(h.taskID(r), Patch{Completed: &done})
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}

	h.record(telemetry.EventTaskCompleted, telemetry.EventMetadata{"task_id": string(t.ID)})
	writeJSON(w, http.StatusOK, t)
}

// POST /api/tasks/{id}/uncomplete
func (h *Handler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	id := h.taskID(r)
	cur, err := h.repo.Get(id)
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}

	t, err := h.repo.Update(id, BuildUncomplete(cur))
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /api/tasks/{id}/steps/advance
func (h *Handler) AdvanceStep(w http.ResponseWriter, r *http.Request) {
	id := h.taskID(r)
	cur, err := h.repo.Get(id)
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}

	p, ok := BuildStepAdvance(cur)
	if !ok {
		writeErr(w, http.StatusConflict, "no open step to advance")
		return
	}

	t, err := h.repo.Update(id, p)
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}
	if t.Completed {
		h.record(telemetry.EventTaskCompleted, telemetry.EventMetadata{"task_id": string(t.ID), "via": "step"})
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, p Patch) {
	t, err := h.repo.Update(h.taskID(r), p)
	if err != nil {
		h.writeRepoErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /api/tasks/{id}/star
func (h *Handler) Star(w http.ResponseWriter, r *http.Request) {
	v := true
	h.setFlag(w, r, Patch{Starred: &v})
}

// POST /api/tasks/{id}/unstar
func (h *Handler) Unstar(w http.ResponseWriter, r *http.Request) {
	v := false
	h.setFlag(w, r, Patch{Starred: &v})
}

// POST /api/tasks/{id}/wait
func (h *Handler) Wait(w http.ResponseWriter, r *http.Request) {
	v := true
	h.setFlag(w, r, Patch{Waiting: &v})
}

// POST /api/tasks/{id}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	v := false
	h.setFlag(w, r, Patch{Waiting: &v})
}

func (h *Handler) writeRepoErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
