// Package scheduler triggers ingestion runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"newsradar/logging"
	"newsradar/state"
	"newsradar/types"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner starts ingestion runs and reports whether one is in progress
type Runner interface {
	Process(ctx context.Context) (*types.RunResult, error)
	Tracker() *state.Tracker
}

// Scheduler runs ingestion on a standard five-field cron expression
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	schedule string
	logger   *zap.Logger
}

// New validates the schedule and registers the ingestion job
func New(schedule string, runner Runner, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		schedule: schedule,
		logger:   logging.OrNop(logger).Named("scheduler"),
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.tick(context.Background()) }); err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	return s, nil
}

// Start begins firing the job in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron job started", zap.String("schedule", s.schedule))
}

// Stop halts the schedule and waits for a running job to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.runner.Tracker().Busy() {
		s.logger.Info("cron skipped: ingestion already running",
			zap.String("state", string(s.runner.Tracker().GetState())))
		return
	}

	s.logger.Info("cron triggered: starting ingestion")
	result, err := s.runner.Process(ctx)
	if err != nil {
		s.logger.Error("scheduled ingestion failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled ingestion complete",
		zap.String("run_id", result.RunID),
		zap.Int("indexed", result.IndexedCount))
}
