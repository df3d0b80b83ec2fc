package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/store"
)

// CleanupService closes challenges whose end date has passed. Ended
// challenges take one of two paths: Expire completes a challenge together
// with its active participants, ArchiveStale archives a DAILY challenge
// and leaves its participants alone.
type CleanupService struct {
	store store.Store
	log   logger.Logger
}

func NewCleanupService(st store.Store, log logger.Logger) *CleanupService {
	return &CleanupService{store: st, log: log}
}

// Run applies Expire and then ArchiveStale.
func (s *CleanupService) Run(ctx context.Context, now time.Time) (*jobs.BatchResult, error) {
	result := jobs.NewBatch(jobs.JobChallengeCleanup)

	expired, expireErr := s.Expire(ctx, now)
	if expired != nil {
		result.Total += expired.Total
		result.Items = append(result.Items, expired.Items...)
	}

	archived, archiveErr := s.ArchiveStale(ctx, now)
	if archived != nil {
		result.Total += archived.Total
		result.Items = append(result.Items, archived.Items...)
	}

	if err := errors.Join(expireErr, archiveErr); err != nil {
		return nil, err
	}
	return result, nil
}

// Expire completes every ended non-daily challenge and its active
// participants. A challenge whose participants could not all be updated
// stays ACTIVE so the next run retries it.
func (s *CleanupService) Expire(ctx context.Context, now time.Time) (*jobs.BatchResult, error) {
	ended, err := s.store.ListChallenges(ctx, query.And(
		query.Eq("status", challenge.StatusActive),
		query.Le("end_at", now),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list ended challenges: %w", err)
	}

	result := jobs.NewBatch("expire")
	for _, c := range ended {
		if c.ChallengeType == challenge.TypeDaily || !c.HasEnded(now) {
			continue
		}
		result.Total++
		result.Add(s.expire(ctx, c, now))
	}
	return result, nil
}

func (s *CleanupService) expire(ctx context.Context, c *challenge.Challenge, now time.Time) jobs.ItemResult {
	participants, err := s.store.ListParticipants(ctx, query.And(
		query.Eq("challenge_id", c.ID),
		query.Eq("status", challenge.ParticipantActive),
	))
	if err != nil {
		s.log.Errorf("cleanup: failed to list participants of %s: %v", c.ID, err)
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}

	failed := 0
	for _, p := range participants {
		completedAt := now
		p.Status = challenge.ParticipantCompleted
		p.CompletedAt = &completedAt
		p.UpdatedAt = now
		if err := s.store.UpdateParticipant(ctx, p); err != nil {
			s.log.Errorf("cleanup: failed to complete participant %s of %s: %v", p.ID, c.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: fmt.Sprintf("%d participants not completed", failed)}
	}

	c.Status = challenge.StatusCompleted
	c.UpdatedAt = now
	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		s.log.Errorf("cleanup: failed to complete challenge %s: %v", c.ID, err)
		return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()}
	}

	s.log.Infof("cleanup: expired challenge %s (%d participants completed)", c.ID, len(participants))
	return jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeProcessed}
}

// ArchiveStale archives ended DAILY challenges. Their participant rows stay
// ACTIVE; the archived status alone closes the challenge to posts and
// reminders.
func (s *CleanupService) ArchiveStale(ctx context.Context, now time.Time) (*jobs.BatchResult, error) {
	stale, err := s.store.ListChallenges(ctx, query.And(
		query.Eq("challenge_type", challenge.TypeDaily),
		query.Eq("status", challenge.StatusActive),
		query.Le("end_at", now),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale daily challenges: %w", err)
	}

	result := jobs.NewBatch("archive")
	for _, c := range stale {
		if !c.HasEnded(now) {
			continue
		}
		result.Total++

		c.Status = challenge.StatusArchived
		c.UpdatedAt = now
		if err := s.store.UpdateChallenge(ctx, c); err != nil {
			s.log.Errorf("cleanup: failed to archive challenge %s: %v", c.ID, err)
			result.Add(jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeFailed, Reason: err.Error()})
			continue
		}
		result.Add(jobs.ItemResult{ID: c.ID, Outcome: jobs.OutcomeProcessed})
	}
	if result.Total > 0 {
		s.log.Infof("cleanup: archived %d of %d stale daily challenges", result.Processed(), result.Total)
	}
	return result, nil
}
