package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/store"
)

func newTestPoints(st store.Store) *PointsService {
	s := NewPointsService(st, logger.Discard())
	s.now = fixedClock(testNow)
	return s
}

func TestAwardPoints_CompletesAtTargetInOneUpdate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	points := newTestPoints(st)

	c := seedChallenge(t, st, &challenge.Challenge{TotalWorkouts: 3, BasePointsPerWorkout: 10})
	p := seedParticipant(t, st, c.ID, "u1", testNow.AddDate(0, 0, -2))
	p.WorkoutsCompleted = 2
	p.Points = 20
	require.NoError(t, st.UpdateParticipant(ctx, p))
	progressBefore := st.Calls("AddParticipantProgress")

	ok := points.UpdateChallengePoints(ctx, challenge.PointsUpdate{ChallengeID: c.ID, UserID: "u1", PostType: challenge.PostWorkout})
	require.True(t, ok)

	got, err := st.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.WorkoutsCompleted)
	assert.Equal(t, 30, got.Points)
	assert.Equal(t, challenge.ParticipantCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(testNow))
	assert.Equal(t, 1, st.Calls("AddParticipantProgress")-progressBefore)
}

func TestAwardPoints_PointValues(t *testing.T) {
	tests := []struct {
		name      string
		challenge challenge.Challenge
		postType  challenge.PostType
		want      int
	}{
		{"default base points", challenge.Challenge{}, challenge.PostWorkout, challenge.DefaultBasePointsPerWorkout},
		{"custom base points", challenge.Challenge{BasePointsPerWorkout: 15}, challenge.PostWorkout, 15},
		{"daily challenge points", challenge.Challenge{BasePointsPerWorkout: 15, DailyChallengePoints: 40}, challenge.PostDailyChallenge, 40},
		{"daily challenge falls back to base", challenge.Challenge{BasePointsPerWorkout: 15}, challenge.PostDailyChallenge, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemoryStore()
			points := newTestPoints(st)

			c := tt.challenge
			seedChallenge(t, st, &c)
			seedParticipant(t, st, c.ID, "u1", testNow)

			p, err := points.AwardPoints(ctx, challenge.PointsUpdate{ChallengeID: c.ID, UserID: "u1", PostType: tt.postType})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Points)
			assert.Equal(t, 1, p.WorkoutsCompleted)
			assert.Equal(t, challenge.ParticipantActive, p.Status)
		})
	}
}

func TestUpdateChallengePoints_SwallowsErrors(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	points := newTestPoints(st)

	c := seedChallenge(t, st, &challenge.Challenge{})
	seedParticipant(t, st, c.ID, "u1", testNow)
	st.FailOn("AddParticipantProgress", errors.New("write timeout"))

	assert.False(t, points.UpdateChallengePoints(ctx, challenge.PointsUpdate{ChallengeID: c.ID, UserID: "u1", PostType: challenge.PostWorkout}))
	assert.False(t, points.UpdateChallengePoints(ctx, challenge.PointsUpdate{ChallengeID: c.ID, UserID: "nobody", PostType: challenge.PostWorkout}))
}

func TestAwardPoints_ConcurrentPostsAllCount(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	points := newTestPoints(st)

	c := seedChallenge(t, st, &challenge.Challenge{TotalWorkouts: 50, BasePointsPerWorkout: 10})
	p := seedParticipant(t, st, c.ID, "u1", testNow.AddDate(0, 0, -2))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, points.UpdateChallengePoints(ctx, challenge.PointsUpdate{ChallengeID: c.ID, UserID: "u1", PostType: challenge.PostWorkout}))
		}()
	}
	wg.Wait()

	got, err := st.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.WorkoutsCompleted)
	assert.Equal(t, 100, got.Points)
	assert.Equal(t, challenge.ParticipantActive, got.Status)
}
