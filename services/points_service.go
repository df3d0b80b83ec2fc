package services

import (
	"context"
	"fmt"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/store"
)

type PointsService struct {
	store store.Store
	now   func() time.Time
	log   logger.Logger
}

func NewPointsService(st store.Store, log logger.Logger) *PointsService {
	return &PointsService{store: st, now: time.Now, log: log}
}

// AwardPoints credits one validated post to the user's active participant
// row. The increment happens in the store so concurrent posts are all
// counted, and reaching the workout target completes the participant in
// the same write.
func (s *PointsService) AwardPoints(ctx context.Context, upd challenge.PointsUpdate) (*challenge.Participant, error) {
	p, err := s.store.GetActiveParticipant(ctx, upd.ChallengeID, upd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	c, err := s.store.GetChallenge(ctx, upd.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	points := c.PointsPerWorkout()
	if upd.PostType == challenge.PostDailyChallenge {
		points = c.PointsForDailyChallenge()
	}

	updated, err := s.store.AddParticipantProgress(ctx, p.ID, points, c.WorkoutTarget(), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	return updated, nil
}

// UpdateChallengePoints is the fire-and-forget form of AwardPoints. It
// never fails the caller; errors are logged.
func (s *PointsService) UpdateChallengePoints(ctx context.Context, upd challenge.PointsUpdate) bool {
	p, err := s.AwardPoints(ctx, upd)
	if err != nil {
		s.log.Errorf("points update for user %s in challenge %s failed: %v", upd.UserID, upd.ChallengeID, err)
		return false
	}
	if p.Status == challenge.ParticipantCompleted {
		s.log.Infof("user %s completed challenge %s with %d points", p.UserID, p.ChallengeID, p.Points)
	}
	return true
}
