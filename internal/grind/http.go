package grind

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// View is a grind plus its derived presentation state. Stage and
// health are computed per response, never stored.
type View struct {
	model.Grind
	Stage          int    `json:"stage"`
	StageName      string `json:"stageName"`
	Health         Health `json:"health"`
	CompletedToday bool   `json:"completedToday"`
	EnabledToday   bool   `json:"enabledToday"`
}

func viewOf(g model.Grind, now time.Time) View {
	stage := Stage(g.CurrentStreak)
	v := View{
		Grind:          g,
		Stage:          stage,
		StageName:      StageNames[stage],
		CompletedToday: CompletedOn(g, now),
		EnabledToday:   g.EnabledOn(now),
	}
	if g.Retired {
		v.Health = Healthy // retired grinds don't decay
	} else {
		v.Health = HealthOf(g, now)
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (h *Handler) grindID(r *http.Request) model.GrindID {
	return model.GrindID(r.PathValue("id"))
}

type listResponse struct {
	Grinds         []View `json:"grinds"`
	EnabledToday   int    `json:"enabledToday"`
	CompletedToday int    `json:"completedToday"`
	PendingMissed  int    `json:"pendingMissed"`
}

// GET /api/grinds
//
// Listing is also the load trigger: the once-per-day missed-day scan
// runs here.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	grinds := h.svc.Load(now)

	resp := listResponse{
		Grinds:        make([]View, 0, len(grinds)),
		PendingMissed: h.svc.Flow().Remaining(),
	}
	for _, g := range grinds {
		v := viewOf(g, now)
		resp.Grinds = append(resp.Grinds, v)
		if v.EnabledToday {
			resp.EnabledToday++
			if v.CompletedToday {
				resp.CompletedToday++
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type createGrindRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DisabledDays []int  `json:"disabledDays"`
	ColorVariant int    `json:"colorVariant"`
}

// POST /api/grinds
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGrindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}

	g := New(strings.TrimSpace(req.Title), req.Description, req.DisabledDays, req.ColorVariant)
	created, err := h.svc.Create(g, time.Now())
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(created, time.Now()))
}

// PATCH /api/grinds/{id} edits title, description, disabled days, color.
// Streak fields are not editable over the API; they move only through
// complete/uncomplete/reconcile.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		DisabledDays *[]int  `json:"disabledDays"`
		ColorVariant *int    `json:"colorVariant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	g, err := h.svc.repo.Update(h.grindID(r), Patch{
		Title:        req.Title,
		Description:  req.Description,
		DisabledDays: req.DisabledDays,
		ColorVariant: req.ColorVariant,
	})
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g, time.Now()))
}

// DELETE /api/grinds/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.repo.Delete(h.grindID(r)); err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// POST /api/grinds/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	g, res, err := h.svc.Complete(h.grindID(r), now)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"grind":   viewOf(g, now),
		"counted": res.Counted,
		"stageUp": res.StageUp,
		"newBest": res.NewBest,
	})
}

// POST /api/grinds/{id}/uncomplete
func (h *Handler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	g, err := h.svc.Uncomplete(h.grindID(r), now)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g, now))
}

// POST /api/grinds/{id}/retire
func (h *Handler) Retire(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Retire(h.grindID(r))
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g, time.Now()))
}

// POST /api/grinds/{id}/reactivate
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Reactivate(h.grindID(r))
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g, time.Now()))
}

type reconcileState struct {
	Active    bool             `json:"active"`
	Current   *model.MissedDay `json:"current,omitempty"`
	Remaining int              `json:"remaining"`
}

func (h *Handler) reconcileStateNow() reconcileState {
	flow := h.svc.Flow()
	st := reconcileState{
		Active:    flow.Active(),
		Remaining: flow.Remaining(),
	}
	if cur, ok := flow.Current(); ok {
		st.Current = &cur
	}
	return st
}

// GET /api/reconcile
func (h *Handler) ReconcileState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reconcileStateNow())
}

// POST /api/reconcile {"didComplete": bool}
func (h *Handler) ReconcileAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DidComplete *bool `json:"didComplete"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DidComplete == nil {
		writeErr(w, http.StatusBadRequest, "didComplete is required")
		return
	}

	if _, ok := h.svc.Reconcile(*req.DidComplete); !ok {
		writeErr(w, http.StatusConflict, "no missed day to reconcile")
		return
	}
	writeJSON(w, http.StatusOK, h.reconcileStateNow())
}

func (h *Handler) writeSvcErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeErr(w, http.StatusNotFound, "grind not found")
	case errors.Is(err, ErrTooManyGrinds),
		errors.Is(err, ErrTooManyActive),
		errors.Is(err, ErrNotToday):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
