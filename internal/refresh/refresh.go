// Package refresh runs the background refresh tick: the day-rollover
// pass that re-runs missed-day scanning and batch auto-initialization
// without waiting for a user-triggered load.
package refresh

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

type Service struct {
	schedule string
	logger   *log.Logger
	onTick   func()

	mu sync.Mutex
	c  *cron.Cron
}

func NewService(schedule string, onTick func(), logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		schedule: schedule,
		logger:   logger,
		onTick:   onTick,
	}
}

func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		s.logger.Printf("refresh tick (%s)", s.schedule)
		s.onTick()
	}); err != nil {
		return err
	}

	c.Start()
	s.c = c
	s.logger.Printf("refresh scheduled: %s", s.schedule)
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		return
	}
	ctx := s.c.Stop()
	<-ctx.Done()
	s.c = nil
}
