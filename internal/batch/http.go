package batch

import (
	"encoding/json"
	"net/http"
	"time"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// GET /api/batch
//
// Fetch doubles as the auto-initialize trigger: if no batch exists and
// eligible tasks do, one is generated before answering.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if err := h.mgr.Ensure(now); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	v, err := h.mgr.View()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	v.EffectiveSize = h.mgr.EffectiveSize(now)
	writeJSON(w, http.StatusOK, v)
}

// POST /api/batch/regenerate
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if err := h.mgr.Regenerate(now); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	v, err := h.mgr.View()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	v.EffectiveSize = h.mgr.EffectiveSize(now)
	writeJSON(w, http.StatusOK, v)
}
