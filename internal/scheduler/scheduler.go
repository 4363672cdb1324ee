// Package scheduler triggers the draw batch on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

const defaultBatchTimeout = 30 * time.Minute

// Runner is the draw batch the scheduler drives
type Runner interface {
	EvaluateDue(ctx context.Context) (*models.DrawReport, error)
}

// DrawScheduler runs Runner.EvaluateDue on a cron schedule. A tick is skipped
// while the previous batch is still running.
type DrawScheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	schedule cron.Schedule
	location *time.Location
	runner   Runner
	timeout  time.Duration
	running  bool
}

// New parses spec (standard five-field cron) in loc and registers the batch job
func New(runner Runner, spec string, loc *time.Location) (*DrawScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid draw schedule %q: %w", spec, err)
	}

	logger := cronLogger{}
	s := &DrawScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		schedule: schedule,
		location: loc,
		runner:   runner,
		timeout:  defaultBatchTimeout,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.tick))
	return s, nil
}

// Start begins firing on schedule
func (s *DrawScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	slog.Info("Draw scheduler started", "next", s.NextRun(time.Now()), "timezone", s.location.String())
}

// Stop halts the schedule and returns a context that is done once a running batch finishes
func (s *DrawScheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return s.cron.Stop()
}

// NextRun returns the first scheduled run strictly after t
func (s *DrawScheduler) NextRun(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.location))
}

func (s *DrawScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.runner.EvaluateDue(ctx)
	if err != nil {
		slog.Error("Scheduled draw batch failed", "error", err)
		return
	}
	for _, f := range report.Errors {
		slog.Warn("Raffle not drawn", "raffleId", f.RaffleID, "title", f.Title, "code", f.Code, "error", f.Error)
	}
}

// cronLogger routes cron's internal logging to slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
