package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled reconcile run
type Job func(ctx context.Context) error

// Scheduler runs the reconcile job on a cron schedule. A run that is still
// in progress when the next one is due causes that next run to be skipped.
type Scheduler struct {
	spec string
	job  Job
	cron *cron.Cron

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(spec string, job Job) *Scheduler {
	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(),
	}
}

// Start registers the job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reconcile: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Reconcile scheduled")

	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("Previous reconcile still running, skipping")
		return
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.wg.Done()
	}()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	log.Info().Msg("Running scheduled reconcile...")
	if err := s.job(ctx); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled reconcile failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Scheduled reconcile complete")
}
