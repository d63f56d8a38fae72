package grind

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestHandler(limits Limits) (*Handler, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewHandler(NewService(repo, limits, nil)), repo
}

func TestHandler_CreateAndComplete(t *testing.T) {
	h, _ := newTestHandler(Limits{})

	req := httptest.NewRequest(http.MethodPost, "/api/grinds", strings.NewReader(`{"title":"Morning run","disabledDays":[0,6]}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created View
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Stage != 0 || created.StageName != "Seed" {
		t.Fatalf("new grind should be a seed, got %+v", created)
	}

	// Streak mechanics don't depend on today being an enabled day.
	req = httptest.NewRequest(http.MethodPost, "/api/grinds/"+string(created.ID)+"/complete", nil)
	req.SetPathValue("id", string(created.ID))
	rec = httptest.NewRecorder()
	h.Complete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Grind   View `json:"grind"`
		Counted bool `json:"counted"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Counted || out.Grind.CurrentStreak != 1 || !out.Grind.CompletedToday {
		t.Fatalf("unexpected completion result: %+v", out)
	}
}

func TestHandler_CreateRejectsBlankTitle(t *testing.T) {
	h, _ := newTestHandler(Limits{})

	req := httptest.NewRequest(http.MethodPost, "/api/grinds", strings.NewReader(`{"title":""}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_LimitsReportConflict(t *testing.T) {
	h, _ := newTestHandler(Limits{MaxTotal: 1, MaxActive: 1})

	mk := func(title string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/grinds", strings.NewReader(`{"title":"`+title+`"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		return rec
	}

	if rec := mk("first"); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := mk("second"); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 at the limit, got %d", rec.Code)
	}
}

func TestHandler_UncompleteWithoutTodayConflicts(t *testing.T) {
	h, repo := newTestHandler(Limits{})

	created, err := repo.Create(New("read", "", nil, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/grinds/"+string(created.ID)+"/uncomplete", nil)
	req.SetPathValue("id", string(created.ID))
	rec := httptest.NewRecorder()
	h.Uncomplete(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandler_ReconcileEndpoints(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, Limits{}, nil)
	h := NewHandler(svc)

	if _, err := repo.Create(New("journal", "", nil, 0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	svc.Load(time.Now().AddDate(0, 0, 3))

	req := httptest.NewRequest(http.MethodGet, "/api/reconcile", nil)
	rec := httptest.NewRecorder()
	h.ReconcileState(rec, req)
	var st reconcileState
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Active || st.Remaining != 2 || st.Current == nil {
		t.Fatalf("unexpected state: %+v", st)
	}

	answer := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ReconcileAnswer(rec, req)
		return rec
	}

	if rec := answer(`{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without an answer, got %d", rec.Code)
	}
	if rec := answer(`{"didComplete":true}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := answer(`{"didComplete":false}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := answer(`{"didComplete":true}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on a drained flow, got %d", rec.Code)
	}
}
