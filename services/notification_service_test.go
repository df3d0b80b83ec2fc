package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/store"
)

type flakyProvider struct {
	mu       sync.Mutex
	failures int
	calls    int
	lastData map[string]string
}

func (p *flakyProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastData = data
	if p.calls <= p.failures {
		return errors.New("unavailable")
	}
	return nil
}

func newTestNotificationService(st store.Store, provider PushNotificationProvider) *NotificationService {
	s := NewNotificationService(st, 3, 0, logger.Discard())
	s.SetPushProvider(provider)
	s.now = fixedClock(testNow)
	return s
}

func registerDevice(t *testing.T, s *NotificationService, userID string) {
	t.Helper()
	require.NoError(t, s.RegisterDevice(context.Background(), userID, notification.RegisterDeviceRequest{Token: "tok-" + userID, Platform: "ios"}))
}

func TestSendPushNotification_RetriesThenSucceeds(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	provider := &flakyProvider{failures: 2}
	svc := newTestNotificationService(st, provider)
	registerDevice(t, svc, "alice")

	n, err := svc.SendPushNotification(ctx, notification.PushRequest{
		Type:   notification.TypeDailyPost,
		UserID: "alice",
		Title:  "Daily Challenge Reminder",
		Body:   "Time to post",
		Data:   `{"challengeId":"c1","count":2}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n.Attempts)
	assert.Equal(t, notification.StatusSent, n.Status)
	require.NotNil(t, n.SentAt)
	assert.Equal(t, map[string]string{"challengeId": "c1", "count": "2"}, provider.lastData)

	stored, err := st.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, stored.Status)
}

func TestSendPushNotification_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestNotificationService(st, &flakyProvider{failures: 10})
	registerDevice(t, svc, "alice")

	n, err := svc.SendPushNotification(ctx, notification.PushRequest{Type: notification.TypeGroupPost, UserID: "alice", Title: "t"})
	require.Error(t, err)
	require.NotNil(t, n)

	stored, err := st.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusFailed, stored.Status)
	assert.Equal(t, 3, stored.Attempts)
	require.NotNil(t, stored.FailureReason)
}

func TestSendPushNotification_NoDevices(t *testing.T) {
	ctx := context.Background()
	provider := &flakyProvider{}
	svc := newTestNotificationService(store.NewMemoryStore(), provider)

	n, err := svc.SendPushNotification(ctx, notification.PushRequest{Type: notification.TypeChallenge, UserID: "bob", Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, n.Status)
	assert.Equal(t, 0, provider.calls)

	_, err = svc.SendPushNotification(ctx, notification.PushRequest{Title: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotifications_ReadTracking(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestNotificationService(st, &flakyProvider{})

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := svc.SendPushNotification(ctx, notification.PushRequest{Type: notification.TypeChallenge, UserID: "alice", Title: "t"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	assert.ErrorIs(t, svc.MarkAsRead(ctx, ids[0], "mallory"), store.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, ids[0], "alice"))
	require.NoError(t, svc.MarkAsRead(ctx, ids[0], "alice"))

	list, err := svc.GetNotifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalCount)
	assert.Equal(t, 2, list.UnreadCount)

	unread, err := svc.GetNotifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)

	marked, err := svc.MarkAllAsRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	list, err = svc.GetNotifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 0, list.UnreadCount)
}

func TestRegisterDevice_Validation(t *testing.T) {
	svc := newTestNotificationService(store.NewMemoryStore(), &flakyProvider{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.RegisterDevice(ctx, "alice", notification.RegisterDeviceRequest{Platform: "ios"}), ErrInvalidInput)
	assert.ErrorIs(t, svc.RegisterDevice(ctx, "alice", notification.RegisterDeviceRequest{Token: "x", Platform: "blackberry"}), ErrInvalidInput)
}
