package jobs

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/joblock"
	"sweatsyncAPI/internal/logger"
)

type fakeRotator struct {
	calls int
	err   error
}

func (f *fakeRotator) RotateDue(ctx context.Context, now time.Time) (*BatchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b := NewBatch(JobRotateCreator)
	b.Total = 2
	b.Add(ItemResult{ID: "c1", Outcome: OutcomeProcessed})
	b.Add(ItemResult{ID: "c2", Outcome: OutcomeSkipped, Reason: "no active participants"})
	return b, nil
}

type fakeCleaner struct{}

func (fakeCleaner) Run(ctx context.Context, now time.Time) (*BatchResult, error) {
	return NewBatch(JobChallengeCleanup), nil
}

type fakeReminders struct {
	window Window
}

func (f *fakeReminders) ProcessReminders(ctx context.Context, window Window) (*BatchResult, error) {
	f.window = window
	return NewBatch(JobProcessReminders), nil
}

type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	return nil, joblock.ErrLocked
}

func TestRunner_RotateCreators(t *testing.T) {
	rotator := &fakeRotator{}
	r := NewRunner(rotator, fakeCleaner{}, &fakeReminders{}, nil, logger.Discard())

	resp := r.RotateCreators(context.Background(), time.Now())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary, ok := resp.Body.(Summary)
	require.True(t, ok)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total)
}

func TestRunner_ErrorBecomes500(t *testing.T) {
	rotator := &fakeRotator{err: errors.New("store unavailable")}
	r := NewRunner(rotator, fakeCleaner{}, &fakeReminders{}, nil, logger.Discard())

	resp := r.RotateCreators(context.Background(), time.Now())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRunner_SkipsWhenLocked(t *testing.T) {
	rotator := &fakeRotator{}
	r := NewRunner(rotator, fakeCleaner{}, &fakeReminders{}, busyLocker{}, logger.Discard())

	resp := r.RotateCreators(context.Background(), time.Now())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, rotator.calls)
}

func TestRunner_PassesWindowThrough(t *testing.T) {
	reminders := &fakeReminders{}
	r := NewRunner(&fakeRotator{}, fakeCleaner{}, reminders, nil, logger.Discard())
	now := time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC)

	resp := r.ProcessReminders(context.Background(), LastHour(now))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, now.Add(-time.Hour), reminders.window.StartTime)
	assert.Equal(t, now, reminders.window.EndTime)
}

func TestBatchResult_Summary(t *testing.T) {
	b := NewBatch("x")
	b.Total = 4
	b.Add(ItemResult{ID: "1", Outcome: OutcomeProcessed})
	b.Add(ItemResult{ID: "2", Outcome: OutcomeCancelled})
	b.Add(ItemResult{ID: "3", Outcome: OutcomeFailed})
	b.Add(ItemResult{ID: "4", Outcome: OutcomeSkipped})

	s := b.Summary()
	assert.Equal(t, 1, s.Processed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4, s.Total)
}
