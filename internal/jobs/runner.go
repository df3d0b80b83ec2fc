// Package jobs runs the scheduled challenge jobs. Each run is a function
// of the current time and store state only, so missed or repeated
// invocations are harmless.
package jobs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sweatsyncAPI/internal/joblock"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/metrics"
)

const (
	JobRotateCreator    = "rotate-creator"
	JobChallengeCleanup = "challenge-cleanup"
	JobProcessReminders = "process-reminders"
)

const lockTTL = 10 * time.Minute

type Rotator interface {
	RotateDue(ctx context.Context, now time.Time) (*BatchResult, error)
}

type Cleaner interface {
	Run(ctx context.Context, now time.Time) (*BatchResult, error)
}

type ReminderProcessor interface {
	ProcessReminders(ctx context.Context, window Window) (*BatchResult, error)
}

// Response mirrors the HTTP-style result a scheduler trigger expects.
type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

type errorBody struct {
	Job   string `json:"job"`
	Error string `json:"error"`
}

type Runner struct {
	rotator   Rotator
	cleaner   Cleaner
	reminders ReminderProcessor
	locker    joblock.Locker
	log       logger.Logger
}

func NewRunner(rotator Rotator, cleaner Cleaner, reminders ReminderProcessor, locker joblock.Locker, log logger.Logger) *Runner {
	if locker == nil {
		locker = joblock.NewLocalLocker()
	}
	return &Runner{
		rotator:   rotator,
		cleaner:   cleaner,
		reminders: reminders,
		locker:    locker,
		log:       log,
	}
}

func (r *Runner) RotateCreators(ctx context.Context, now time.Time) Response {
	return r.run(ctx, JobRotateCreator, func(ctx context.Context) (*BatchResult, error) {
		return r.rotator.RotateDue(ctx, now)
	})
}

func (r *Runner) ChallengeCleanup(ctx context.Context, now time.Time) Response {
	return r.run(ctx, JobChallengeCleanup, func(ctx context.Context) (*BatchResult, error) {
		return r.cleaner.Run(ctx, now)
	})
}

func (r *Runner) ProcessReminders(ctx context.Context, window Window) Response {
	return r.run(ctx, JobProcessReminders, func(ctx context.Context) (*BatchResult, error) {
		return r.reminders.ProcessReminders(ctx, window)
	})
}

func (r *Runner) run(ctx context.Context, job string, fn func(context.Context) (*BatchResult, error)) Response {
	release, err := r.locker.Acquire(ctx, job, lockTTL)
	if errors.Is(err, joblock.ErrLocked) {
		r.log.Warnf("%s: previous run still in progress, skipping", job)
		return Response{StatusCode: http.StatusConflict, Body: errorBody{Job: job, Error: err.Error()}}
	}
	if err != nil {
		r.log.Errorf("%s: failed to acquire lock: %v", job, err)
		return Response{StatusCode: http.StatusServiceUnavailable, Body: errorBody{Job: job, Error: "lock unavailable"}}
	}
	defer release()

	start := time.Now()
	result, err := fn(ctx)
	metrics.ObserveJob(job, start, err)
	if err != nil {
		r.log.Errorf("%s failed: %v", job, err)
		return Response{StatusCode: http.StatusInternalServerError, Body: errorBody{Job: job, Error: err.Error()}}
	}

	summary := result.Summary()
	for _, item := range result.Items {
		metrics.JobItem(job, string(item.Outcome))
	}
	r.log.Infof("%s: processed %d of %d (skipped %d, cancelled %d, failed %d)",
		job, summary.Processed, summary.Total, summary.Skipped, summary.Cancelled, summary.Failed)

	return Response{StatusCode: http.StatusOK, Body: summary}
}
