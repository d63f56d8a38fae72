package grind

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/model"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

var (
	ErrTooManyGrinds = errors.New("grind limit reached")
	ErrTooManyActive = errors.New("active grind limit reached")
	ErrNotToday      = errors.New("grind was not completed today")
)

// Limits bound how many grinds may exist. Enforced on create and
// reactivate, not inside the streak machine.
type Limits struct {
	MaxTotal  int
	MaxActive int
}

// Service owns the load-time missed-day scan and the reconciliation
// flow. The scan runs at most once per local day no matter how many
// loads trigger it, so a double-fired load cannot queue duplicate
// prompts.
type Service struct {
	repo      Repo
	limits    Limits
	logger    *log.Logger
	telemetry telemetry.Repository

	mu         sync.Mutex
	scannedFor string // local date the last scan ran for
	flow       *Flow
}

func NewService(repo Repo, limits Limits, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if limits.MaxTotal <= 0 {
		limits.MaxTotal = 10
	}
	if limits.MaxActive <= 0 {
		limits.MaxActive = 2
	}
	return &Service{
		repo:   repo,
		limits: limits,
		logger: logger,
		flow:   NewFlow(nil),
	}
}

func (s *Service) SetTelemetry(rec telemetry.Repository) {
	s.telemetry = rec
}

func (s *Service) record(typ telemetry.EventType, meta telemetry.EventMetadata) {
	if s.telemetry == nil {
		return
	}
	_ = s.telemetry.RecordEvent(typ, meta)
}

// Load lists all grinds and, once per local day, runs missed-day
// detection and advances every scanned grind's watermark. A repo read
// failure leaves previous state untouched and is not fatal: the caller
// still gets a (possibly empty) list so nothing upstream blocks on it.
func (s *Service) Load(now time.Time) []model.Grind {
	grinds, err := s.repo.List()
	if err != nil {
		s.logger.Printf("grind load: %v", err)
		return nil
	}

	today := model.DateOf(now.In(time.Local))

	s.mu.Lock()
	alreadyScanned := s.scannedFor == today
	if !alreadyScanned {
		s.scannedFor = today
	}
	s.mu.Unlock()

	if alreadyScanned {
		return grinds
	}

	res := ScanMissedDays(grinds, now)

	for id, patch := range res.Watermarks {
		if _, err := s.repo.Update(id, patch); err != nil {
			s.logger.Printf("grind watermark %s: %v", id, err)
		}
	}

	if len(res.Missed) > 0 {
		s.mu.Lock()
		s.flow = NewFlow(res.Missed)
		s.mu.Unlock()
		s.record(telemetry.EventMissedDayQueued, telemetry.EventMetadata{"count": len(res.Missed)})
	}

	return grinds
}

// Flow returns the current reconciliation flow.
func (s *Service) Flow() *Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// Reconcile answers the current prompt and applies its consequence: a
// "no" resets the grind's streak.
func (s *Service) Reconcile(didComplete bool) (model.MissedDay, bool) {
	s.mu.Lock()
	flow := s.flow
	s.mu.Unlock()

	cur, ok := flow.Current()
	if !ok {
		return model.MissedDay{}, false
	}

	resetID, _ := flow.Answer(didComplete)
	if resetID != nil {
		if _, err := s.repo.Update(*resetID, BuildStreakReset()); err != nil {
			s.logger.Printf("streak reset %s: %v", *resetID, err)
		} else {
			s.record(telemetry.EventStreakReset, telemetry.EventMetadata{"grind_id": string(*resetID)})
		}
	}
	return cur, true
}

// Create enforces the grind limits before inserting.
func (s *Service) Create(g model.Grind, now time.Time) (model.Grind, error) {
	existing, err := s.repo.List()
	if err != nil {
		return model.Grind{}, err
	}
	if len(existing) >= s.limits.MaxTotal {
		return model.Grind{}, ErrTooManyGrinds
	}
	active := 0
	for _, e := range existing {
		if !e.Retired {
			active++
		}
	}
	if active >= s.limits.MaxActive {
		return model.Grind{}, ErrTooManyActive
	}

	// Watermark starts today so the scan never walks days before the
	// grind existed.
	today := model.DateOf(now.In(time.Local))
	g.LastCheckedDate = &today

	created, err := s.repo.Create(g)
	if err != nil {
		return model.Grind{}, err
	}
	s.record(telemetry.EventGrindCreated, telemetry.EventMetadata{"grind_id": string(created.ID)})
	return created, nil
}

// Complete marks today done. Completing twice the same day is a no-op
// returning the unchanged grind.
func (s *Service) Complete(id model.GrindID, now time.Time) (model.Grind, CompletionResult, error) {
	g, err := s.repo.Get(id)
	if err != nil {
		return model.Grind{}, CompletionResult{}, err
	}

	patch, res := BuildCompletionUpdate(g, now)
	if !res.Counted {
		return g, res, nil
	}

	updated, err := s.repo.Update(id, patch)
	if err != nil {
		return model.Grind{}, CompletionResult{}, err
	}
	s.record(telemetry.EventGrindCompleted, telemetry.EventMetadata{
		"grind_id": string(id),
		"streak":   res.NewStreak,
	})
	return updated, res, nil
}

// Uncomplete undoes today's completion.
func (s *Service) Uncomplete(id model.GrindID, now time.Time) (model.Grind, error) {
	g, err := s.repo.Get(id)
	if err != nil {
		return model.Grind{}, err
	}

	patch, ok := BuildUncompleteUpdate(g, now)
	if !ok {
		return model.Grind{}, ErrNotToday
	}
	return s.repo.Update(id, patch)
}

// Retire soft-deletes: the grind keeps its history but leaves the
// enabled counts, scans, and health reads.
func (s *Service) Retire(id model.GrindID) (model.Grind, error) {
	retired := true
	return s.repo.Update(id, Patch{Retired: &retired})
}

// Reactivate brings a retired grind back, subject to the active limit.
func (s *Service) Reactivate(id model.GrindID) (model.Grind, error) {
	existing, err := s.repo.List()
	if err != nil {
		return model.Grind{}, err
	}
	active := 0
	for _, e := range existing {
		if !e.Retired {
			active++
		}
	}
	if active >= s.limits.MaxActive {
		return model.Grind{}, ErrTooManyActive
	}

	retired := false
	return s.repo.Update(id, Patch{Retired: &retired})
}
