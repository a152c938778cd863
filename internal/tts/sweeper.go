package tts

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper runs a cleanup function on a five-field cron schedule and skips a
// tick while the previous run is still going.
type Sweeper struct {
	cron    *cron.Cron
	running sync.Mutex
}

// StartSweeper schedules fn. An empty schedule returns a nil Sweeper.
func StartSweeper(schedule string, fn func()) (*Sweeper, error) {
	if schedule == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s := &Sweeper{cron: cron.New(cron.WithParser(parser))}
	if _, err := s.cron.AddFunc(schedule, func() {
		if !s.running.TryLock() {
			slog.Warn("audio sweep still running, skipping tick")
			return
		}
		defer s.running.Unlock()
		fn()
	}); err != nil {
		return nil, fmt.Errorf("invalid audio sweep schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	slog.Info("audio sweep scheduled", "schedule", schedule)
	return s, nil
}

// Stop waits for an in-flight sweep. It is safe on a nil Sweeper.
func (s *Sweeper) Stop() {
	if s == nil {
		return
	}
	<-s.cron.Stop().Done()
}
