package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
	"sweatsyncAPI/internal/store"
)

// ReasonCreatorNotFound marks a rotation that restarted from the first
// participant.
const ReasonCreatorNotFound = "current creator not an active participant"

// RotationService hands the daily-challenge creator role around the
// active members of rotating group challenges.
type RotationService struct {
	store    store.Store
	notifier Notifier
	log      logger.Logger
}

func NewRotationService(st store.Store, notifier Notifier, log logger.Logger) *RotationService {
	return &RotationService{store: st, notifier: notifier, log: log}
}

// CheckAndRotateCreator rotates one challenge if its rotation is due at
// now. Calling it again before the new rotation date is a no-op.
func (s *RotationService) CheckAndRotateCreator(ctx context.Context, challengeID string, now time.Time) (bool, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return false, err
	}
	if !rotationDue(c, now) {
		return false, nil
	}
	item := s.rotate(ctx, c, now)
	if item.Outcome == jobs.OutcomeFailed {
		return false, fmt.Errorf("rotation of %s failed: %s", challengeID, item.Reason)
	}
	return item.Outcome == jobs.OutcomeProcessed, nil
}

// RotateDue rotates every challenge whose rotation date has passed.
func (s *RotationService) RotateDue(ctx context.Context, now time.Time) (*jobs.BatchResult, error) {
	due, err := s.store.ListChallenges(ctx, query.And(
		query.Eq("challenge_type", challenge.TypeGroup),
		query.Eq("daily_challenges", true),
		query.Eq("status", challenge.StatusActive),
		query.Le("next_rotation_date", now),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges due for rotation: %w", err)
	}

	result := jobs.NewBatch(jobs.JobRotateCreator)
	result.Total = len(due)
	for _, c := range due {
		result.Add(s.rotate(ctx, c, now))
	}
	return result, nil
}

// A challenge without a rotation date has never been scheduled and is
// not due.
func rotationDue(c *challenge.Challenge, now time.Time) bool {
	if !c.RotatesCreator() || c.Status != challenge.StatusActive || c.NextRotationDate == nil {
		return false
	}
	return !now.Before(*c.NextRotationDate)
}

func (s *RotationService) rotate(ctx context.Context, c *challenge.Challenge, now time.Time) jobs.ItemResult {
	participants, err := s.store.ListParticipants(ctx, query.And(
		query.Eq("challenge_id", c.ID),
		query.Eq("status", challenge.ParticipantActive),
	))
	if err != nil {
		s.log.Errorf("rotation: failed to list participants of %s: %v", c.ID, err)
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}
	if len(participants) == 0 {
		s.log.Infof("rotation: challenge %s has no active participants", c.ID)
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeSkipped, Reason: "no active participants"}
	}

	current := -1
	if c.CurrentCreatorID != nil {
		for i, p := range participants {
			if p.UserID == *c.CurrentCreatorID {
				current = i
				break
			}
		}
	}

	reason := ""
	if current == -1 {
		// The current creator left or was never set. (-1+1) mod n picks the
		// first participant in join order.
		s.log.Warnf("rotation: current creator of %s is not an active participant, restarting from the first", c.ID)
		reason = ReasonCreatorNotFound
	}
	next := (current + 1) % len(participants)

	newCreator := participants[next].UserID
	nextDate := now.Add(c.RotationInterval())
	c.CurrentCreatorID = &newCreator
	c.NextRotationDate = &nextDate
	c.UpdatedAt = now

	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		s.log.Errorf("rotation: failed to update challenge %s: %v", c.ID, err)
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}

	s.log.Infof("rotation: %s is now creator of %s until %s", newCreator, c.ID, nextDate.Format(time.RFC3339))
	s.notifyCreator(ctx, c.ID, newCreator)
	return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeProcessed, Reason: reason}
}

func (s *RotationService) notifyCreator(ctx context.Context, challengeID, userID string) {
	if s.notifier == nil {
		return
	}
	tpl := reminder.TemplateFor(reminder.TypeCreatorRotation)
	data, _ := json.Marshal(map[string]string{
		"challengeId": challengeID,
		"type":        string(reminder.TypeCreatorRotation),
	})
	_, err := s.notifier.SendPushNotification(ctx, notification.PushRequest{
		Type:   notification.TypeCreatorRotation,
		UserID: userID,
		Title:  tpl.Title,
		Body:   tpl.Body,
		Data:   string(data),
	})
	if err != nil {
		s.log.Warnf("rotation: notification to %s failed: %v", userID, err)
	}
}
