// Package scheduler runs the periodic compliance sweeps.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/pkg/logger"
)

// Sweeper is the work the scheduler triggers.
type Sweeper interface {
	ScoreAll(ctx context.Context) (*dto.SweepReport, error)
	EvaluateAll(ctx context.Context) (*dto.SweepReport, error)
}

// Scheduler manages the cron jobs. A sweep still running when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	cfg     config.SchedulerConfig
	ctx     context.Context
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewScheduler creates a new Scheduler. Jobs run with a context derived from ctx.
func NewScheduler(ctx context.Context, cfg config.SchedulerConfig, sweeper Sweeper, log logger.Logger) *Scheduler {
	l := log.WithComponent("scheduler")
	cl := cronLogger{l}
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper: sweeper,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		logger:  l,
	}
}

// RegisterAll registers the scoring and evaluation sweeps.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.cron.AddFunc(s.cfg.ScoreCron, s.scoreSweep); err != nil {
		return fmt.Errorf("register score sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.EvaluateCron, s.evaluationSweep); err != nil {
		return fmt.Errorf("register evaluation sweep: %w", err)
	}
	return nil
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info(s.ctx, "Scheduler started",
		logger.String("score_cron", s.cfg.ScoreCron),
		logger.String("evaluate_cron", s.cfg.EvaluateCron),
	)
}

// Stop cancels running sweeps and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info(context.Background(), "Scheduler stopped")
}

func (s *Scheduler) scoreSweep() {
	if _, err := s.sweeper.ScoreAll(s.ctx); err != nil {
		s.logger.Error(s.ctx, "Score sweep failed", err)
	}
}

func (s *Scheduler) evaluationSweep() {
	if _, err := s.sweeper.EvaluateAll(s.ctx); err != nil {
		s.logger.Error(s.ctx, "Evaluation sweep failed", err)
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), msg, err, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
