package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
	"sweatsyncAPI/internal/store"
)

// ReminderDispatcher sends due reminders. Reminders in one run are
// independent, so they are spread over a small worker pool and one
// failure never stops the rest.
type ReminderDispatcher struct {
	store    store.Store
	notifier Notifier
	loc      *time.Location
	workers  int
	now      func() time.Time
	log      logger.Logger
}

func NewReminderDispatcher(st store.Store, notifier Notifier, loc *time.Location, workers int, log logger.Logger) *ReminderDispatcher {
	if loc == nil {
		loc = time.UTC
	}
	if workers < 1 {
		workers = 1
	}
	return &ReminderDispatcher{
		store:    st,
		notifier: notifier,
		loc:      loc,
		workers:  workers,
		now:      time.Now,
		log:      log,
	}
}

type reminderJob struct {
	index    int
	reminder *reminder.Schedule
}

// ProcessReminders handles every PENDING reminder scheduled inside the
// window. Reminders that were sent or cancelled are never picked up
// again.
func (d *ReminderDispatcher) ProcessReminders(ctx context.Context, window jobs.Window) (*jobs.BatchResult, error) {
	if window.EndTime.Before(window.StartTime) {
		return nil, fmt.Errorf("%w: window ends before it starts", ErrInvalidInput)
	}

	due, err := d.store.ListReminders(ctx, query.And(
		query.Eq("status", reminder.StatusPending),
		query.Between("next_scheduled", window.StartTime, window.EndTime),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	result := jobs.NewBatch(jobs.JobProcessReminders)
	result.Total = len(due)
	if len(due) == 0 {
		return result, nil
	}

	items := make([]jobs.ItemResult, len(due))
	jobQueue := make(chan reminderJob)

	var wg sync.WaitGroup
	workers := min(d.workers, len(due))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobQueue {
				items[job.index] = d.processOne(ctx, job.reminder)
			}
		}()
	}

	for i, r := range due {
		jobQueue <- reminderJob{index: i, reminder: r}
	}
	close(jobQueue)
	wg.Wait()

	for _, item := range items {
		result.Add(item)
	}
	return result, nil
}

func (d *ReminderDispatcher) processOne(ctx context.Context, r *reminder.Schedule) jobs.ItemResult {
	if missing := r.MissingFields(); len(missing) > 0 {
		reason := "missing " + strings.Join(missing, ", ")
		d.log.Warnf("reminder %q skipped: %s", r.ID, reason)
		return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeSkipped, Reason: reason}
	}

	now := d.now()

	ok, reason, err := d.validateReminder(ctx, r, now)
	if err != nil {
		d.log.Errorf("reminder %s: validation failed: %v", r.ID, err)
		return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}
	if !ok {
		r.Status = reminder.StatusCancelled
		r.UpdatedAt = now
		if err := d.store.UpdateReminder(ctx, r); err != nil {
			d.log.Errorf("reminder %s: failed to cancel: %v", r.ID, err)
			return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
		}
		d.log.Infof("reminder %s cancelled: %s", r.ID, reason)
		return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeCancelled, Reason: reason}
	}

	d.send(ctx, r)

	r.LastSent = &now
	r.UpdatedAt = now
	if r.RepeatDaily {
		r.Status = reminder.StatusPending
		r.NextScheduled = reminder.NextAfterSend(r, now)
	} else {
		r.Status = reminder.StatusSent
	}
	if err := d.store.UpdateReminder(ctx, r); err != nil {
		d.log.Errorf("reminder %s: failed to reschedule: %v", r.ID, err)
		return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}
	return jobs.ItemResult{ID: r.ID, Outcome: jobs.OutcomeProcessed}
}

// validateReminder reports whether a reminder is still worth sending. A
// false result with a reason cancels the reminder.
func (d *ReminderDispatcher) validateReminder(ctx context.Context, r *reminder.Schedule, now time.Time) (bool, string, error) {
	c, err := d.store.GetChallenge(ctx, r.ChallengeID)
	if errors.Is(err, store.ErrNotFound) {
		return false, "challenge not found", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to load challenge: %w", err)
	}
	if c.Status != challenge.StatusActive {
		return false, "challenge is not active", nil
	}

	switch r.Type {
	case reminder.TypeGroupPost:
		today, err := d.postsToday(ctx, r, now)
		if err != nil {
			return false, "", err
		}
		if today >= c.PostsPerDayLimit() {
			return false, "daily post limit already reached", nil
		}
	case reminder.TypeDailyPost:
		today, err := d.postsToday(ctx, r, now)
		if err != nil {
			return false, "", err
		}
		if today > 0 {
			return false, "already posted today", nil
		}
	}
	return true, "", nil
}

func (d *ReminderDispatcher) postsToday(ctx context.Context, r *reminder.Schedule, now time.Time) (int, error) {
	n, err := d.store.CountPostChallenges(ctx, validatedPosts(r.ChallengeID, r.UserID,
		challenge.StartOfDay(now, d.loc), challenge.EndOfDay(now, d.loc)))
	if err != nil {
		return 0, fmt.Errorf("failed to count today's posts: %w", err)
	}
	return n, nil
}

// send is fire-and-forget: a failed push is recorded on the notification
// and the reminder still moves on.
func (d *ReminderDispatcher) send(ctx context.Context, r *reminder.Schedule) {
	if d.notifier == nil {
		return
	}
	tpl := reminder.TemplateFor(r.Type)
	data, _ := json.Marshal(map[string]string{
		"challengeId": r.ChallengeID,
		"type":        string(r.Type),
	})
	_, err := d.notifier.SendPushNotification(ctx, notification.PushRequest{
		Type:   notification.NotificationType(r.Type),
		UserID: r.UserID,
		Title:  tpl.Title,
		Body:   tpl.Body,
		Data:   string(data),
	})
	if err != nil {
		d.log.Warnf("reminder %s: push to %s failed: %v", r.ID, r.UserID, err)
	}
}
