package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
	"sweatsyncAPI/internal/store"
)

type ReminderService struct {
	store store.Store
	now   func() time.Time
	log   logger.Logger
}

func NewReminderService(st store.Store, log logger.Logger) *ReminderService {
	return &ReminderService{store: st, now: time.Now, log: log}
}

func (s *ReminderService) CreateReminder(ctx context.Context, userID string, req reminder.CreateReminderRequest) (*reminder.Schedule, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown reminder type %q", ErrInvalidInput, req.Type)
	}
	first, firstMin, err := reminder.ParseClock(req.TimePreference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.SecondPreference != "" {
		second, secondMin, err := reminder.ParseClock(req.SecondPreference)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if second*60+secondMin <= first*60+firstMin {
			return nil, fmt.Errorf("%w: second preference must be later in the day than the first", ErrInvalidInput)
		}
	}
	if req.Timezone == "" {
		req.Timezone = reminder.DefaultTimezone
	}
	if _, err := reminder.LoadTimezone(req.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, req.Timezone)
	}

	if _, err := s.store.GetChallenge(ctx, req.ChallengeID); err != nil {
		return nil, err
	}

	now := s.now()
	r := &reminder.Schedule{
		ID:               uuid.NewString(),
		UserID:           userID,
		ChallengeID:      req.ChallengeID,
		Type:             req.Type,
		Status:           reminder.StatusPending,
		TimePreference:   req.TimePreference,
		SecondPreference: req.SecondPreference,
		Timezone:         req.Timezone,
		RepeatDaily:      req.RepeatDaily,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.NextScheduled = reminder.FirstScheduled(r, now)

	if err := s.store.CreateReminder(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderService) ListReminders(ctx context.Context, userID string) ([]*reminder.Schedule, error) {
	list, err := s.store.ListReminders(ctx, query.Eq("user_id", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return list, nil
}

func (s *ReminderService) CancelReminder(ctx context.Context, id, userID string) error {
	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return store.ErrNotFound
	}
	if r.Status == reminder.StatusCancelled {
		return nil
	}

	r.Status = reminder.StatusCancelled
	r.UpdatedAt = s.now()
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return fmt.Errorf("failed to cancel reminder: %w", err)
	}
	return nil
}
