package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/query"
)

// setupTestDB connects to DATABASE_URL and migrates it. The test is
// skipped when no database is configured.
func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))

	s := NewPostgresStore(pool)
	t.Cleanup(s.Close)
	return s
}

func TestPostgresStore_ChallengeFlow(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	c := &challenge.Challenge{
		Title:         "integration " + uuid.NewString(),
		ChallengeType: challenge.TypeGroup,
		Status:        challenge.StatusActive,
		StartAt:       now,
		EndAt:         now.AddDate(0, 0, 7),
		CreatedBy:     "user_a",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreateChallenge(ctx, c))
	t.Cleanup(func() { _ = s.DeleteChallenge(context.Background(), c.ID) })

	p := &challenge.Participant{ChallengeID: c.ID, UserID: "user_a", Status: challenge.ParticipantActive, JoinedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateParticipant(ctx, p))

	err := s.CreateParticipant(ctx, &challenge.Participant{ChallengeID: c.ID, UserID: "user_a", Status: challenge.ParticipantActive, JoinedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)

	got, err := s.GetActiveParticipant(ctx, c.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	post := &challenge.Post{UserID: "user_a", PostType: challenge.PostWorkout, CreatedAt: now}
	require.NoError(t, s.CreatePost(ctx, post))
	require.NoError(t, s.CreatePostChallenge(ctx, &challenge.PostChallenge{
		PostID: post.ID, ChallengeID: c.ID, UserID: "user_a", PostType: challenge.PostWorkout, Timestamp: now, Validated: true,
	}))

	n, err := s.CountPostChallenges(ctx, query.And(
		query.Eq("challenge_id", c.ID),
		query.Between("timestamp", challenge.StartOfDay(now, time.UTC), challenge.EndOfDay(now, time.UTC)),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddParticipantProgress(ctx, p.ID, 10, 3, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err = s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Points)
	assert.Equal(t, 3, got.WorkoutsCompleted)
	assert.Equal(t, challenge.ParticipantCompleted, got.Status)

	_, err = s.AddParticipantProgress(ctx, p.ID, 10, 3, now)
	assert.ErrorIs(t, err, ErrNotFound)
}
