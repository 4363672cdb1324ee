package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) EvaluateDue(ctx context.Context) (*models.DrawReport, error) {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("batch context has no deadline")
	}
	if r.err != nil {
		return nil, r.err
	}
	report := models.NewDrawReport(time.Now())
	report.Add(models.DrawOutcome{RaffleID: "r1", Kind: models.OutcomeError, Code: models.FailureNoEntries})
	return report, nil
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New(&countingRunner{}, "every noon", time.UTC)
	assert.Error(t, err)
}

func TestNextRunUsesScheduleTimezone(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	s, err := New(&countingRunner{}, "0 12 * * *", bangkok)
	require.NoError(t, err)

	// 13:00 in Bangkok, so today's noon has passed
	after := time.Date(2026, 5, 10, 6, 0, 0, 0, time.UTC)
	next := s.NextRun(after)
	assert.True(t, next.Equal(time.Date(2026, 5, 11, 5, 0, 0, 0, time.UTC)), next.String())

	// 10:00 in Bangkok
	after = time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC)
	next = s.NextRun(after)
	assert.True(t, next.Equal(time.Date(2026, 5, 10, 5, 0, 0, 0, time.UTC)), next.String())
}

func TestTickRunsBatch(t *testing.T) {
	runner := &countingRunner{}
	s, err := New(runner, "0 12 * * *", time.UTC)
	require.NoError(t, err)

	s.tick()
	runner.err = errors.New("mongo unavailable")
	s.tick()
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestStartStop(t *testing.T) {
	s, err := New(&countingRunner{}, "0 12 * * *", time.UTC)
	require.NoError(t, err)

	s.Start()
	s.Start()
	ctx := s.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
