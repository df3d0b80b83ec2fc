package store

import (
	"context"
	"errors"
	"time"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateParticipant = errors.New("more than one active participant row")
)

// Store is the data service behind the challenge subsystem: per-entity
// get, list by filter, create, update and delete. There are no joins;
// cross-entity lookups are separate calls.
//
// List results are ordered deterministically: challenges by created_at,
// participants by joined_at, reminders by next_scheduled, notifications by
// created_at descending, each with id as the tie breaker.
type Store interface {
	GetChallenge(ctx context.Context, id string) (*challenge.Challenge, error)
	ListChallenges(ctx context.Context, filter query.Expr) ([]*challenge.Challenge, error)
	CreateChallenge(ctx context.Context, c *challenge.Challenge) error
	UpdateChallenge(ctx context.Context, c *challenge.Challenge) error
	DeleteChallenge(ctx context.Context, id string) error

	GetParticipant(ctx context.Context, id string) (*challenge.Participant, error)
	// GetActiveParticipant returns ErrNotFound when the user has no ACTIVE
	// row and ErrDuplicateParticipant when it has more than one.
	GetActiveParticipant(ctx context.Context, challengeID, userID string) (*challenge.Participant, error)
	ListParticipants(ctx context.Context, filter query.Expr) ([]*challenge.Participant, error)
	CreateParticipant(ctx context.Context, p *challenge.Participant) error
	UpdateParticipant(ctx context.Context, p *challenge.Participant) error
	DeleteParticipant(ctx context.Context, id string) error
	// AddParticipantProgress credits one workout and points to an ACTIVE
	// participant in a single atomic write, completing it once
	// workoutsCompleted reaches target. It returns ErrNotFound when the row
	// is missing or no longer ACTIVE.
	AddParticipantProgress(ctx context.Context, id string, points, target int, at time.Time) (*challenge.Participant, error)

	GetPost(ctx context.Context, id string) (*challenge.Post, error)
	CreatePost(ctx context.Context, p *challenge.Post) error

	CreatePostChallenge(ctx context.Context, pc *challenge.PostChallenge) error
	ListPostChallenges(ctx context.Context, filter query.Expr) ([]*challenge.PostChallenge, error)
	CountPostChallenges(ctx context.Context, filter query.Expr) (int, error)

	GetReminder(ctx context.Context, id string) (*reminder.Schedule, error)
	ListReminders(ctx context.Context, filter query.Expr) ([]*reminder.Schedule, error)
	CreateReminder(ctx context.Context, r *reminder.Schedule) error
	UpdateReminder(ctx context.Context, r *reminder.Schedule) error

	GetNotification(ctx context.Context, id string) (*notification.Notification, error)
	ListNotifications(ctx context.Context, filter query.Expr) ([]*notification.Notification, error)
	CreateNotification(ctx context.Context, n *notification.Notification) error
	UpdateNotification(ctx context.Context, n *notification.Notification) error

	UpsertDeviceToken(ctx context.Context, t *notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)

	Ping(ctx context.Context) error
	Close()
}

// Active-participant lookup shared by both implementations.
func activeParticipantFilter(challengeID, userID string) query.Expr {
	return query.And(
		query.Eq("challenge_id", challengeID),
		query.Eq("user_id", userID),
		query.Eq("status", challenge.ParticipantActive),
	)
}
