package workers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sweatsyncAPI/internal/jobs"
)

// JobRunner is the part of jobs.Runner the cron jobs drive.
type JobRunner interface {
	RotateCreators(ctx context.Context, now time.Time) jobs.Response
	ChallengeCleanup(ctx context.Context, now time.Time) jobs.Response
	ProcessReminders(ctx context.Context, window jobs.Window) jobs.Response
}

const cleanupHour = 6

// RotationCronJob rotates daily-challenge creators once a day at midnight
// UTC. It also runs at startup to catch up on rotations missed while the
// service was down.
type RotationCronJob struct {
	runner JobRunner
	now    func() time.Time
}

func NewRotationCronJob(runner JobRunner) *RotationCronJob {
	return &RotationCronJob{runner: runner, now: time.Now}
}

func (job *RotationCronJob) Do(ctx context.Context) {
	job.runner.RotateCreators(ctx, job.now())
}

func (job *RotationCronJob) RunNow() bool {
	return true
}

func (job *RotationCronJob) Next(now time.Time) time.Time {
	return nextDailyAt(now, 0)
}

// CleanupCronJob expires and archives ended challenges at 06:00 UTC.
type CleanupCronJob struct {
	runner JobRunner
	now    func() time.Time
}

func NewCleanupCronJob(runner JobRunner) *CleanupCronJob {
	return &CleanupCronJob{runner: runner, now: time.Now}
}

func (job *CleanupCronJob) Do(ctx context.Context) {
	job.runner.ChallengeCleanup(ctx, job.now())
}

func (job *CleanupCronJob) RunNow() bool {
	return false
}

func (job *CleanupCronJob) Next(now time.Time) time.Time {
	return nextDailyAt(now, cleanupHour)
}

// ReminderCronJob sends the reminders that fell due since its last
// successful run. The first run starts catchUp before the current time so
// slots missed while the service was down are still picked up. A failed run
// keeps its start so the next window covers it again.
type ReminderCronJob struct {
	runner  JobRunner
	catchUp time.Duration
	now     func() time.Time

	mu    sync.Mutex
	since time.Time
}

func NewReminderCronJob(runner JobRunner, catchUp time.Duration) *ReminderCronJob {
	if catchUp < time.Hour {
		catchUp = time.Hour
	}
	return &ReminderCronJob{runner: runner, catchUp: catchUp, now: time.Now}
}

func (job *ReminderCronJob) Do(ctx context.Context) {
	job.mu.Lock()
	defer job.mu.Unlock()

	now := job.now()
	window := jobs.Window{StartTime: job.since, EndTime: now}
	if window.StartTime.IsZero() {
		window.StartTime = now.Add(-job.catchUp)
	}

	resp := job.runner.ProcessReminders(ctx, window)
	if resp.StatusCode < http.StatusBadRequest {
		job.since = window.EndTime
	}
}

func (job *ReminderCronJob) RunNow() bool {
	return true
}

func (job *ReminderCronJob) Next(now time.Time) time.Time {
	return now.UTC().Truncate(time.Hour).Add(time.Hour)
}

// nextDailyAt returns the next instant strictly after now at hour:00 UTC.
func nextDailyAt(now time.Time, hour int) time.Time {
	u := now.UTC()
	at := time.Date(u.Year(), u.Month(), u.Day(), hour, 0, 0, 0, time.UTC)
	if !at.After(u) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
