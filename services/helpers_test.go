package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/store"
)

// Tuesday 13 January 2026, 15:00 UTC.
var testNow = time.Date(2026, 1, 13, 15, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.PushRequest
	err  error
}

func (f *fakeNotifier) SendPushNotification(ctx context.Context, req notification.PushRequest) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	return &notification.Notification{UserID: req.UserID, Type: req.Type, Status: notification.StatusSent}, nil
}

func (f *fakeNotifier) requests() []notification.PushRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.PushRequest(nil), f.sent...)
}

func seedChallenge(t *testing.T, st store.Store, c *challenge.Challenge) *challenge.Challenge {
	t.Helper()
	if c.Status == "" {
		c.Status = challenge.StatusActive
	}
	if c.ChallengeType == "" {
		c.ChallengeType = challenge.TypePublic
	}
	if c.StartAt.IsZero() {
		c.StartAt = testNow.AddDate(0, 0, -7)
	}
	if c.EndAt.IsZero() {
		c.EndAt = testNow.AddDate(0, 0, 30)
	}
	if c.CreatedBy == "" {
		c.CreatedBy = "creator"
	}
	require.NoError(t, st.CreateChallenge(context.Background(), c))
	return c
}

func seedParticipant(t *testing.T, st store.Store, challengeID, userID string, joinedAt time.Time) *challenge.Participant {
	t.Helper()
	p := &challenge.Participant{
		ChallengeID: challengeID,
		UserID:      userID,
		Status:      challenge.ParticipantActive,
		JoinedAt:    joinedAt,
	}
	require.NoError(t, st.CreateParticipant(context.Background(), p))
	return p
}

func seedPost(t *testing.T, st store.Store, challengeID, userID string, postType challenge.PostType, at time.Time) {
	t.Helper()
	require.NoError(t, st.CreatePostChallenge(context.Background(), &challenge.PostChallenge{
		PostID:      "post-" + at.Format(time.RFC3339Nano),
		ChallengeID: challengeID,
		UserID:      userID,
		PostType:    postType,
		Timestamp:   at,
		Validated:   true,
	}))
}

func newTestRules(st store.Store) *RulesService {
	s := NewRulesService(st, time.UTC, logger.Discard())
	s.now = fixedClock(testNow)
	return s
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
