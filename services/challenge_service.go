package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/store"
)

type ChallengeService struct {
	store    store.Store
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	log      logger.Logger
}

func NewChallengeService(st store.Store, notifier Notifier, loc *time.Location, log logger.Logger) *ChallengeService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChallengeService{store: st, notifier: notifier, loc: loc, now: time.Now, log: log}
}

// CreateChallenge stores a new challenge with defaults applied and enrolls
// the creator as its first participant.
func (s *ChallengeService) CreateChallenge(ctx context.Context, userID string, req challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.ChallengeType == "" {
		req.ChallengeType = challenge.TypePublic
	}
	if !req.ChallengeType.Valid() {
		return nil, fmt.Errorf("%w: unknown challenge type %q", ErrInvalidInput, req.ChallengeType)
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if req.EndAt.Before(req.StartAt) {
		return nil, ErrInvalidDates
	}
	if req.WeighInDay != "" {
		if _, ok := challenge.ParseWeekday(req.WeighInDay); !ok {
			return nil, fmt.Errorf("%w: unknown weigh-in day %q", ErrInvalidInput, req.WeighInDay)
		}
	}
	if req.RequireWeeklyWeighIn && req.WeighInDay == "" {
		return nil, fmt.Errorf("%w: weekly weigh-in needs a weigh-in day", ErrInvalidInput)
	}

	now := s.now()
	c := &challenge.Challenge{
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		ChallengeType:        req.ChallengeType,
		Status:               challenge.StatusActive,
		StartAt:              req.StartAt,
		EndAt:                req.EndAt,
		TotalWorkouts:        orDefault(req.TotalWorkouts, challenge.DefaultTotalWorkouts),
		BasePointsPerWorkout: orDefault(req.BasePointsPerWorkout, challenge.DefaultBasePointsPerWorkout),
		CreatedBy:            userID,
		IsDailyChallenge:     req.IsDailyChallenge,
		DailyChallenges:      req.DailyChallenges,
		RotationIntervalDays: orDefault(req.RotationIntervalDays, challenge.DefaultRotationIntervalDays),
		MaxPostsPerDay:       orDefault(req.MaxPostsPerDay, challenge.DefaultMaxPostsPerDay),
		MaxPostsPerWeek:      orDefault(req.MaxPostsPerWeek, challenge.DefaultMaxPostsPerWeek),
		TrackWeight:          req.TrackWeight,
		TrackMeals:           req.TrackMeals,
		RequireWeeklyWeighIn: req.RequireWeeklyWeighIn,
		WeighInDay:           strings.ToUpper(req.WeighInDay),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	c.DailyChallengePoints = orDefault(req.DailyChallengePoints, c.BasePointsPerWorkout)
	if req.Draft {
		c.Status = challenge.StatusDraft
	}

	if c.RotatesCreator() {
		creator := userID
		next := c.StartAt.Add(c.RotationInterval())
		c.CurrentCreatorID = &creator
		c.NextRotationDate = &next
	}

	if err := s.store.CreateChallenge(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if err := s.store.CreateParticipant(ctx, &challenge.Participant{
		ChallengeID: c.ID,
		UserID:      userID,
		Status:      challenge.ParticipantActive,
		JoinedAt:    now,
		UpdatedAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	s.log.Infof("challenge %s (%s) created by %s", c.ID, c.ChallengeType, userID)
	return c, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id string) (*challenge.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

func (s *ChallengeService) ListChallenges(ctx context.Context, f challenge.ListChallengesFilter) ([]*challenge.Challenge, error) {
	var exprs []query.Expr
	if f.ChallengeType != "" {
		exprs = append(exprs, query.Eq("challenge_type", f.ChallengeType))
	}
	if f.Status != "" {
		exprs = append(exprs, query.Eq("status", f.Status))
	}
	if f.CreatedBy != "" {
		exprs = append(exprs, query.Eq("created_by", f.CreatedBy))
	}
	if f.Search != "" {
		exprs = append(exprs, query.Or(
			query.Contains("title", f.Search),
			query.Contains("description", f.Search),
		))
	}

	list, err := s.store.ListChallenges(ctx, query.And(exprs...))
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return list, nil
}

func (s *ChallengeService) JoinChallenge(ctx context.Context, challengeID, userID string, req challenge.JoinChallengeRequest) (*challenge.Participant, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.Status != challenge.StatusActive || c.HasEnded(now) {
		return nil, ErrChallengeClosed
	}
	if c.ChallengeType == challenge.TypePersonal && c.CreatedBy != userID {
		return nil, ErrNotCreator
	}

	_, err = s.store.GetActiveParticipant(ctx, challengeID, userID)
	switch {
	case err == nil, errors.Is(err, store.ErrDuplicateParticipant):
		return nil, ErrAlreadyJoined
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	p := &challenge.Participant{
		ChallengeID:    challengeID,
		UserID:         userID,
		Status:         challenge.ParticipantActive,
		JoinedAt:       now,
		TargetWeight:   req.TargetWeight,
		StartingWeight: req.StartingWeight,
		CurrentWeight:  req.StartingWeight,
		CalorieGoal:    req.CalorieGoal,
		UpdatedAt:      now,
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicateParticipant) {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	return p, nil
}

// LeaveChallenge drops the user's active row. Dropped is terminal.
func (s *ChallengeService) LeaveChallenge(ctx context.Context, challengeID, userID string) error {
	p, err := s.store.GetActiveParticipant(ctx, challengeID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotParticipant
	}
	if err != nil {
		return fmt.Errorf("failed to load participant: %w", err)
	}

	p.Status = challenge.ParticipantDropped
	p.UpdatedAt = s.now()
	if err := s.store.UpdateParticipant(ctx, p); err != nil {
		return fmt.Errorf("failed to leave challenge: %w", err)
	}
	return nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, challengeID, userID string) error {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if c.CreatedBy != userID {
		return ErrNotCreator
	}

	participants, err := s.store.ListParticipants(ctx, query.Eq("challenge_id", challengeID))
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	for _, p := range participants {
		if err := s.store.DeleteParticipant(ctx, p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to delete participant %s: %w", p.ID, err)
		}
	}

	if err := s.store.DeleteChallenge(ctx, challengeID); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	s.log.Infof("challenge %s deleted by %s", challengeID, userID)
	return nil
}

// ListParticipants returns the leaderboard: points descending, earlier
// joiners first on ties.
func (s *ChallengeService) ListParticipants(ctx context.Context, challengeID string) ([]*challenge.Participant, error) {
	list, err := s.store.ListParticipants(ctx, query.Eq("challenge_id", challengeID))
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Points > list[j].Points
	})
	return list, nil
}

// CreateDailyChallenge lets the current creator of a rotating group
// challenge set today's sub-challenge. Every active member of the parent
// is enrolled and notified.
func (s *ChallengeService) CreateDailyChallenge(ctx context.Context, parentID, userID string, req challenge.CreateDailyChallengeRequest) (*challenge.Challenge, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	parent, err := s.store.GetChallenge(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.RotatesCreator() {
		return nil, fmt.Errorf("%w: challenge does not rotate daily creators", ErrInvalidInput)
	}
	if parent.Status != challenge.StatusActive {
		return nil, ErrChallengeClosed
	}
	if parent.CurrentCreatorID == nil || *parent.CurrentCreatorID != userID {
		return nil, ErrNotCurrentCreator
	}

	members, err := s.store.ListParticipants(ctx, query.And(
		query.Eq("challenge_id", parentID),
		query.Eq("status", challenge.ParticipantActive),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	now := s.now()
	parentRef := parent.ID
	daily := &challenge.Challenge{
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		ChallengeType:        challenge.TypeDaily,
		Status:               challenge.StatusActive,
		StartAt:              now,
		EndAt:                challenge.EndOfDay(now, s.loc),
		TotalWorkouts:        1,
		BasePointsPerWorkout: parent.PointsForDailyChallenge(),
		DailyChallengePoints: parent.PointsForDailyChallenge(),
		CreatedBy:            userID,
		IsDailyChallenge:     true,
		ParentChallengeID:    &parentRef,
		RotationIntervalDays: challenge.DefaultRotationIntervalDays,
		MaxPostsPerDay:       1,
		MaxPostsPerWeek:      1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.CreateChallenge(ctx, daily); err != nil {
		return nil, fmt.Errorf("failed to create daily challenge: %w", err)
	}

	for _, m := range members {
		err := s.store.CreateParticipant(ctx, &challenge.Participant{
			ChallengeID: daily.ID,
			UserID:      m.UserID,
			Status:      challenge.ParticipantActive,
			JoinedAt:    now,
			UpdatedAt:   now,
		})
		if err != nil {
			s.log.Errorf("failed to enroll %s in daily challenge %s: %v", m.UserID, daily.ID, err)
			continue
		}
		if m.UserID != userID {
			s.announce(ctx, daily, m.UserID)
		}
	}

	return daily, nil
}

func (s *ChallengeService) announce(ctx context.Context, daily *challenge.Challenge, userID string) {
	if s.notifier == nil {
		return
	}
	data, _ := json.Marshal(map[string]string{
		"challengeId": daily.ID,
		"type":        string(notification.TypeChallenge),
	})
	_, err := s.notifier.SendPushNotification(ctx, notification.PushRequest{
		Type:   notification.TypeChallenge,
		UserID: userID,
		Title:  "New Daily Challenge",
		Body:   daily.Title,
		Data:   string(data),
	})
	if err != nil {
		s.log.Warnf("daily challenge notification to %s failed: %v", userID, err)
	}
}
