package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/reminder"
)

func TestMemoryStore_ChallengeCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c := &challenge.Challenge{Title: "Spring Shred", Status: challenge.StatusActive, ChallengeType: challenge.TypePublic}
	require.NoError(t, s.CreateChallenge(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := s.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Shred", got.Title)

	// Returned values are copies.
	got.Title = "changed"
	again, err := s.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Shred", again.Title)

	got.Status = challenge.StatusArchived
	require.NoError(t, s.UpdateChallenge(ctx, got))
	again, err = s.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusArchived, again.Status)

	require.NoError(t, s.DeleteChallenge(ctx, c.ID))
	_, err = s.GetChallenge(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteChallenge(ctx, c.ID), ErrNotFound)
}

func TestMemoryStore_ListChallengesFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []challenge.Status{challenge.StatusActive, challenge.StatusDraft, challenge.StatusActive} {
		require.NoError(t, s.CreateChallenge(ctx, &challenge.Challenge{
			ID:        string(rune('c' - i)),
			Status:    status,
			EndAt:     base.AddDate(0, 0, i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	active, err := s.ListChallenges(ctx, query.Eq("status", challenge.StatusActive))
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "c", active[0].ID)
	assert.Equal(t, "a", active[1].ID)

	ended, err := s.ListChallenges(ctx, query.And(
		query.Eq("status", challenge.StatusActive),
		query.Le("end_at", base),
	))
	require.NoError(t, err)
	require.Len(t, ended, 1)
	assert.Equal(t, "c", ended[0].ID)
}

func TestMemoryStore_ActiveParticipantUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := &challenge.Participant{ChallengeID: "ch", UserID: "u1", Status: challenge.ParticipantActive}
	require.NoError(t, s.CreateParticipant(ctx, p))

	err := s.CreateParticipant(ctx, &challenge.Participant{ChallengeID: "ch", UserID: "u1", Status: challenge.ParticipantActive})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)

	// A dropped row does not count.
	require.NoError(t, s.CreateParticipant(ctx, &challenge.Participant{ChallengeID: "ch", UserID: "u1", Status: challenge.ParticipantDropped}))

	got, err := s.GetActiveParticipant(ctx, "ch", "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.GetActiveParticipant(ctx, "ch", "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AddParticipantProgressIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	p := &challenge.Participant{ChallengeID: "ch", UserID: "u1", Status: challenge.ParticipantActive}
	require.NoError(t, s.CreateParticipant(ctx, p))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddParticipantProgress(ctx, p.ID, 5, 20, at)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.WorkoutsCompleted)
	assert.Equal(t, 100, got.Points)
	assert.Equal(t, challenge.ParticipantCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(at))

	// Completed rows take no further progress.
	_, err = s.AddParticipantProgress(ctx, p.ID, 5, 20, at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ParticipantsOrderedByJoinTime(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateParticipant(ctx, &challenge.Participant{ID: "late", ChallengeID: "ch", UserID: "b", Status: challenge.ParticipantActive, JoinedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateParticipant(ctx, &challenge.Participant{ID: "early", ChallengeID: "ch", UserID: "a", Status: challenge.ParticipantActive, JoinedAt: base}))

	list, err := s.ListParticipants(ctx, query.Eq("challenge_id", "ch"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "late", list[1].ID)
}

func TestMemoryStore_CountPostChallengesInWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{day.Add(-time.Minute), day.Add(time.Hour), day.Add(20 * time.Hour)} {
		require.NoError(t, s.CreatePostChallenge(ctx, &challenge.PostChallenge{
			ChallengeID: "ch", UserID: "u1", PostType: challenge.PostWorkout, Timestamp: ts, Validated: true,
		}))
	}

	n, err := s.CountPostChallenges(ctx, query.And(
		query.Eq("challenge_id", "ch"),
		query.Eq("user_id", "u1"),
		query.Between("timestamp", challenge.StartOfDay(day, time.UTC), challenge.EndOfDay(day, time.UTC)),
	))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_FailOnAndCalls(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	s.FailOn("CreatePost", boom)
	err := s.CreatePost(ctx, &challenge.Post{UserID: "u1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Calls("CreatePost"))

	s.FailOn("CreatePost", nil)
	require.NoError(t, s.CreatePost(ctx, &challenge.Post{UserID: "u1"}))
	assert.Equal(t, 2, s.Calls("CreatePost"))
	assert.Equal(t, 0, s.Calls("UpdateParticipant"))
}

func TestMemoryStore_RemindersOrderedByNextScheduled(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateReminder(ctx, &reminder.Schedule{ID: "r2", Status: reminder.StatusPending, NextScheduled: now.Add(2 * time.Minute)}))
	require.NoError(t, s.CreateReminder(ctx, &reminder.Schedule{ID: "r1", Status: reminder.StatusPending, NextScheduled: now.Add(time.Minute)}))
	require.NoError(t, s.CreateReminder(ctx, &reminder.Schedule{ID: "r3", Status: reminder.StatusCancelled, NextScheduled: now}))

	due, err := s.ListReminders(ctx, query.And(
		query.Eq("status", reminder.StatusPending),
		query.Between("next_scheduled", now, now.Add(5*time.Minute)),
	))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "r1", due[0].ID)
	assert.Equal(t, "r2", due[1].ID)
}

func TestMemoryStore_DeviceTokenUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	require.NoError(t, s.UpsertDeviceToken(ctx, &notification.DeviceToken{UserID: "u1", Token: "tok", Platform: "ios", AddedAt: now, LastUsed: now}))
	require.NoError(t, s.UpsertDeviceToken(ctx, &notification.DeviceToken{UserID: "u1", Token: "tok", Platform: "android", AddedAt: now.Add(time.Hour), LastUsed: now.Add(time.Hour)}))

	tokens, err := s.ListDeviceTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "android", tokens[0].Platform)
	assert.True(t, tokens[0].AddedAt.Equal(now))
}
