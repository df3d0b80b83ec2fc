package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/metrics"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/store"
)

// RulesService decides whether a prospective post satisfies the rules of
// its challenge. Checks run in a fixed order and stop at the first
// failure: basic requirements, then challenge type rules, then tracking
// rules.
type RulesService struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
	log   logger.Logger
}

func NewRulesService(st store.Store, loc *time.Location, log logger.Logger) *RulesService {
	if loc == nil {
		loc = time.UTC
	}
	return &RulesService{store: st, loc: loc, now: time.Now, log: log}
}

// ValidateChallengePost returns a rejection as a ValidationResult. The
// error is reserved for store failures.
func (s *RulesService) ValidateChallengePost(ctx context.Context, post challenge.PostSubmission) (challenge.ValidationResult, error) {
	result, err := s.validate(ctx, post)
	if err != nil {
		return challenge.ValidationResult{}, err
	}
	if !result.IsValid {
		metrics.RuleRejected(string(post.PostType))
		s.log.Debugf("post by %s rejected for challenge %s: %s", post.UserID, post.ChallengeID, result.Message)
	}
	return result, nil
}

func (s *RulesService) validate(ctx context.Context, post challenge.PostSubmission) (challenge.ValidationResult, error) {
	now := s.now()

	c, err := s.store.GetChallenge(ctx, post.ChallengeID)
	if errors.Is(err, store.ErrNotFound) {
		return challenge.Invalid("Challenge not found"), nil
	}
	if err != nil {
		return challenge.ValidationResult{}, fmt.Errorf("failed to load challenge: %w", err)
	}

	if c.Status != challenge.StatusActive {
		return challenge.Invalid("Challenge is not active"), nil
	}
	if c.HasEnded(now) {
		return challenge.Invalid("Challenge has ended"), nil
	}

	_, err = s.store.GetActiveParticipant(ctx, post.ChallengeID, post.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return challenge.Invalid("User is not an active participant"), nil
	case errors.Is(err, store.ErrDuplicateParticipant):
		s.log.Warnf("user %s has more than one active row in challenge %s", post.UserID, post.ChallengeID)
	case err != nil:
		return challenge.ValidationResult{}, fmt.Errorf("failed to load participant: %w", err)
	}

	// Day and week windows follow the server clock. Clients cannot
	// claim another day for their post.
	if result, err := s.checkTypeRules(ctx, c, post, now); err != nil || !result.IsValid {
		return result, err
	}
	return s.checkTrackingRules(ctx, c, post, now)
}

func (s *RulesService) checkTypeRules(ctx context.Context, c *challenge.Challenge, post challenge.PostSubmission, ref time.Time) (challenge.ValidationResult, error) {
	if c.IsDailyChallenge {
		today, err := s.countToday(ctx, c.ID, post.UserID, ref)
		if err != nil {
			return challenge.ValidationResult{}, err
		}
		if today >= 1 {
			return challenge.Invalid("Already posted today for this daily challenge"), nil
		}
	}

	switch c.ChallengeType {
	case challenge.TypeGroup:
		today, err := s.countToday(ctx, c.ID, post.UserID, ref)
		if err != nil {
			return challenge.ValidationResult{}, err
		}
		if today >= c.PostsPerDayLimit() {
			return challenge.Invalid("Daily post limit reached"), nil
		}

		week, err := s.count(ctx, c.ID, post.UserID, challenge.StartOfWeek(ref, s.loc), challenge.EndOfWeek(ref, s.loc))
		if err != nil {
			return challenge.ValidationResult{}, err
		}
		if week >= c.PostsPerWeekLimit() {
			return challenge.Invalid("Weekly post limit reached"), nil
		}
	case challenge.TypePersonal:
		if c.CreatedBy != post.UserID {
			return challenge.Invalid("Only the creator can post to a personal challenge"), nil
		}
	}

	return challenge.Valid(), nil
}

func (s *RulesService) checkTrackingRules(ctx context.Context, c *challenge.Challenge, post challenge.PostSubmission, ref time.Time) (challenge.ValidationResult, error) {
	md := post.MeasurementData

	switch post.PostType {
	case challenge.PostWorkout, challenge.PostDailyChallenge:
		return challenge.Valid(), nil

	case challenge.PostWeight:
		if !c.TrackWeight {
			return challenge.Invalid("Weight tracking is not enabled for this challenge"), nil
		}
		if md == nil || md.Weight == nil {
			return challenge.Invalid("Weight measurement is required"), nil
		}
		if c.RequireWeeklyWeighIn {
			if !challenge.IsWeekday(ref, s.loc, c.WeighInDay) {
				return challenge.Invalid("Weight check-ins are only allowed on " + strings.ToLower(c.WeighInDay)), nil
			}
			weighIns, err := s.countType(ctx, c.ID, post.UserID, challenge.PostWeight,
				challenge.StartOfWeek(ref, s.loc), challenge.EndOfWeek(ref, s.loc))
			if err != nil {
				return challenge.ValidationResult{}, err
			}
			if weighIns > 0 {
				return challenge.Invalid("Already weighed in this week"), nil
			}
		}
		return challenge.Valid(), nil

	case challenge.PostMeal:
		if !c.TrackMeals {
			return challenge.Invalid("Meal tracking is not enabled for this challenge"), nil
		}
		if md == nil || strings.TrimSpace(md.MealName) == "" || md.Calories == nil || strings.TrimSpace(md.MealTime) == "" {
			return challenge.Invalid("Meal name, calories and time are required"), nil
		}
		meals, err := s.countType(ctx, c.ID, post.UserID, challenge.PostMeal,
			challenge.StartOfDay(ref, s.loc), challenge.EndOfDay(ref, s.loc))
		if err != nil {
			return challenge.ValidationResult{}, err
		}
		if meals >= challenge.MaxMealsPerDay {
			return challenge.Invalid("Daily meal limit reached"), nil
		}
		return challenge.Valid(), nil
	}

	return challenge.Invalid(fmt.Sprintf("Unsupported post type %q", post.PostType)), nil
}

func (s *RulesService) countToday(ctx context.Context, challengeID, userID string, ref time.Time) (int, error) {
	return s.count(ctx, challengeID, userID, challenge.StartOfDay(ref, s.loc), challenge.EndOfDay(ref, s.loc))
}

func (s *RulesService) count(ctx context.Context, challengeID, userID string, from, to time.Time) (int, error) {
	n, err := s.store.CountPostChallenges(ctx, validatedPosts(challengeID, userID, from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

func (s *RulesService) countType(ctx context.Context, challengeID, userID string, postType challenge.PostType, from, to time.Time) (int, error) {
	n, err := s.store.CountPostChallenges(ctx, query.And(
		validatedPosts(challengeID, userID, from, to),
		query.Eq("post_type", postType),
	))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s posts: %w", postType, err)
	}
	return n, nil
}

func validatedPosts(challengeID, userID string, from, to time.Time) query.Expr {
	return query.And(
		query.Eq("challenge_id", challengeID),
		query.Eq("user_id", userID),
		query.Eq("validated", true),
		query.Between("timestamp", from, to),
	)
}
