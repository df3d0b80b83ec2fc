package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/challenge"
	"sweatsyncAPI/internal/jobs"
	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/store"
)

func seedRotatingGroup(t *testing.T, st store.Store, creator string, users ...string) *challenge.Challenge {
	t.Helper()
	due := testNow.Add(-time.Minute)
	c := &challenge.Challenge{
		ChallengeType:        challenge.TypeGroup,
		DailyChallenges:      true,
		RotationIntervalDays: 2,
		NextRotationDate:     &due,
	}
	if creator != "" {
		c.CurrentCreatorID = &creator
	}
	seedChallenge(t, st, c)
	for i, u := range users {
		seedParticipant(t, st, c.ID, u, testNow.AddDate(0, 0, -10).Add(time.Duration(i)*time.Hour))
	}
	return c
}

func TestRotation_AdvancesToNextParticipant(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := NewRotationService(st, notifier, logger.Discard())

	c := seedRotatingGroup(t, st, "B", "A", "B", "C")

	rotated, err := svc.CheckAndRotateCreator(ctx, c.ID, testNow)
	require.NoError(t, err)
	assert.True(t, rotated)

	got, err := st.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", *got.CurrentCreatorID)
	assert.True(t, got.NextRotationDate.Equal(testNow.Add(48*time.Hour)))

	sent := notifier.requests()
	require.Len(t, sent, 1)
	assert.Equal(t, "C", sent[0].UserID)
	assert.Equal(t, notification.TypeCreatorRotation, sent[0].Type)
	assert.Equal(t, "Your Turn to Create", sent[0].Title)

	var data map[string]string
	require.NoError(t, json.Unmarshal([]byte(sent[0].Data), &data))
	assert.Equal(t, c.ID, data["challengeId"])
}

func TestRotation_WrapsAround(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewRotationService(st, nil, logger.Discard())

	c := seedRotatingGroup(t, st, "C", "A", "B", "C")

	_, err := svc.CheckAndRotateCreator(ctx, c.ID, testNow)
	require.NoError(t, err)
	got, err := st.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", *got.CurrentCreatorID)
}

func TestRotation_IsIdempotentWithinWindow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewRotationService(st, nil, logger.Discard())

	c := seedRotatingGroup(t, st, "A", "A", "B", "C")

	first, err := svc.CheckAndRotateCreator(ctx, c.ID, testNow)
	require.NoError(t, err)
	second, err := svc.CheckAndRotateCreator(ctx, c.ID, testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	got, err := st.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", *got.CurrentCreatorID)

	// The batch job sees nothing due either.
	result, err := svc.RotateDue(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}

func TestRotation_CreatorNotFoundRestartsFromFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewRotationService(st, nil, logger.Discard())

	c := seedRotatingGroup(t, st, "departed", "A", "B", "C")

	result, err := svc.RotateDue(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, jobs.OutcomeProcessed, result.Items[0].Outcome)
	assert.Equal(t, ReasonCreatorNotFound, result.Items[0].Reason)

	got, err := st.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", *got.CurrentCreatorID)
}

func TestRotation_NoParticipantsIsNoop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewRotationService(st, nil, logger.Discard())

	c := seedRotatingGroup(t, st, "A")

	result, err := svc.RotateDue(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, jobs.OutcomeSkipped, result.Items[0].Outcome)
	assert.Equal(t, 0, st.Calls("UpdateChallenge"))

	got, err := st.GetChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", *got.CurrentCreatorID)
}

func TestRotateDue_OneFailureDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewRotationService(st, &fakeNotifier{err: errors.New("fcm down")}, logger.Discard())

	seedRotatingGroup(t, st, "A", "A", "B")
	seedRotatingGroup(t, st, "X", "X", "Y")
	// Not rotating: plain group and one not yet due.
	seedChallenge(t, st, &challenge.Challenge{ChallengeType: challenge.TypeGroup})
	later := testNow.Add(time.Hour)
	seedChallenge(t, st, &challenge.Challenge{ChallengeType: challenge.TypeGroup, DailyChallenges: true, NextRotationDate: &later})

	result, err := svc.RotateDue(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Processed())
}
