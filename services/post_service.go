package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/store"
)

type PostService struct {
	store  store.Store
	rules  *RulesService
	points *PointsService
	now    func() time.Time
	log    logger.Logger
}

func NewPostService(st store.Store, rules *RulesService, points *PointsService, log logger.Logger) *PostService {
	return &PostService{store: st, rules: rules, points: points, now: time.Now, log: log}
}

// RecordPost validates and stores a challenge post. The post, its join
// record and the points update are separate writes with no rollback: if
// the join record fails the post stays saved and ErrPostNotLinked is
// returned alongside it.
func (s *PostService) RecordPost(ctx context.Context, req challenge.CreatePostRequest) (*challenge.RecordPostResponse, error) {
	validation, err := s.rules.ValidateChallengePost(ctx, req.PostSubmission)
	if err != nil {
		return nil, err
	}
	resp := &challenge.RecordPostResponse{Validation: validation}
	if !validation.IsValid {
		return resp, nil
	}

	now := s.now()

	post := &challenge.Post{
		UserID:          req.UserID,
		PostType:        req.PostType,
		Content:         req.Content,
		MeasurementData: req.MeasurementData,
		CreatedAt:       now,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	resp.Post = post

	link := &challenge.PostChallenge{
		PostID:      post.ID,
		ChallengeID: req.ChallengeID,
		UserID:      req.UserID,
		PostType:    req.PostType,
		Timestamp:   now,
		Validated:   true,
	}
	if err := s.store.CreatePostChallenge(ctx, link); err != nil {
		s.log.Errorf("post %s saved without challenge link: %v", post.ID, err)
		return resp, fmt.Errorf("%w: %v", ErrPostNotLinked, err)
	}

	if req.PostType.CountsAsWorkout() {
		resp.PointsAwarded = s.points.UpdateChallengePoints(ctx, challenge.PointsUpdate{
			ChallengeID: req.ChallengeID,
			UserID:      req.UserID,
			PostType:    req.PostType,
		})
	}
	return resp, nil
}

// ListPosts returns a user's validated posts in a challenge, oldest first.
// A link whose post row is gone is returned without the post.
func (s *PostService) ListPosts(ctx context.Context, challengeID, userID string) ([]challenge.PostHistoryItem, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	links, err := s.store.ListPostChallenges(ctx, query.And(
		query.Eq("challenge_id", challengeID),
		query.Eq("user_id", userID),
		query.Eq("validated", true),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	items := make([]challenge.PostHistoryItem, 0, len(links))
	for _, link := range links {
		item := challenge.PostHistoryItem{Link: link}
		post, err := s.store.GetPost(ctx, link.PostID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.log.Warnf("post %s linked to challenge %s is missing", link.PostID, challengeID)
		case err != nil:
			return nil, fmt.Errorf("failed to get post: %w", err)
		default:
			item.Post = post
		}
		items = append(items, item)
	}
	return items, nil
}
