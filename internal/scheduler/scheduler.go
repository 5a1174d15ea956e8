// Package scheduler runs feed ingest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cybershield/intel/internal/logger"
)

// Ingester pulls every active feed and returns how many threats were added.
type Ingester interface {
	IngestActive(ctx context.Context) int
}

type Scheduler struct {
	cron     *cron.Cron
	ingester Ingester
	spec     string
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	runs    int
}

// New validates spec (standard five-field cron or a descriptor such as
// "@every 6h") and returns a stopped scheduler. Each run is bounded by
// timeout when it is positive.
func New(spec string, ingester Ingester, timeout time.Duration) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid ingest schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		ingester: ingester,
		spec:     spec,
		timeout:  timeout,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing on the schedule. It does not run immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	logger.Log().WithField("schedule", s.spec).Info("Ingest scheduler started")
}

// Stop halts the schedule and waits for a run in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logger.Log().Info("Ingest scheduler stopped")
}

// Next reports the next scheduled run, zero when stopped.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Runs counts completed ingest runs.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// RunOnce performs a single ingest pass.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	added := s.ingester.IngestActive(ctx)

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"added":    added,
		"duration": time.Since(start).String(),
	}).Info("Scheduled ingest finished")
}
