package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/metrics"
	"sweatsyncAPI/internal/notification"
	"sweatsyncAPI/internal/query"
	"sweatsyncAPI/internal/store"
)

// Notifier is the push notification function used by the challenge jobs.
// Callers treat it as fire-and-forget and only log its error.
type Notifier interface {
	SendPushNotification(ctx context.Context, req notification.PushRequest) (*notification.Notification, error)
}

type NotificationService struct {
	store      store.Store
	dispatcher *pushDispatcher
	now        func() time.Time
	log        logger.Logger
}

func NewNotificationService(st store.Store, maxAttempts int, backoff time.Duration, log logger.Logger) *NotificationService {
	return &NotificationService{
		store: st,
		dispatcher: &pushDispatcher{
			provider:    &LogPushProvider{Log: log},
			maxAttempts: maxAttempts,
			backoff:     backoff,
			log:         log,
		},
		now: time.Now,
		log: log,
	}
}

// Allow injecting the real FCM provider from main.go
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.provider = provider
}

// SendPushNotification records the notification and pushes it to every
// registered device of the user. The record ends SENT or FAILED.
func (s *NotificationService) SendPushNotification(ctx context.Context, req notification.PushRequest) (*notification.Notification, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	n := &notification.Notification{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
		Status:    notification.StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	tokens, err := s.store.ListDeviceTokens(ctx, req.UserID)
	if err != nil {
		s.markFailed(ctx, n, err)
		return n, fmt.Errorf("failed to load device tokens: %w", err)
	}

	if len(tokens) == 0 {
		// Still visible in the in-app list.
		s.log.Debugf("no devices registered for user %s, skipping push", req.UserID)
		s.markSent(ctx, n)
		return n, nil
	}

	attempts, err := s.dispatcher.deliver(ctx, tokens, req.Title, req.Body, pushData(req.Data))
	n.Attempts = attempts
	if err != nil {
		s.log.Errorf("push failed for user %s after %d attempts: %v", req.UserID, attempts, err)
		s.markFailed(ctx, n, err)
		return n, fmt.Errorf("push failed: %w", err)
	}

	s.markSent(ctx, n)
	return n, nil
}

func (s *NotificationService) markSent(ctx context.Context, n *notification.Notification) {
	sentAt := s.now()
	n.Status = notification.StatusSent
	n.SentAt = &sentAt
	if err := s.store.UpdateNotification(ctx, n); err != nil {
		s.log.Errorf("failed to mark notification %s as sent: %v", n.ID, err)
	}
	metrics.PushDelivered(string(n.Type), string(n.Status))
}

func (s *NotificationService) markFailed(ctx context.Context, n *notification.Notification, cause error) {
	reason := cause.Error()
	n.Status = notification.StatusFailed
	n.FailureReason = &reason
	if err := s.store.UpdateNotification(ctx, n); err != nil {
		s.log.Errorf("failed to mark notification %s as failed: %v", n.ID, err)
	}
	metrics.PushDelivered(string(n.Type), string(n.Status))
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID string, unreadOnly bool) (*notification.NotificationListResponse, error) {
	all, err := s.store.ListNotifications(ctx, query.Eq("user_id", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	resp := &notification.NotificationListResponse{
		Notifications: []*notification.Notification{},
		TotalCount:    len(all),
	}
	for _, n := range all {
		unread := n.ReadAt == nil
		if unread {
			resp.UnreadCount++
		}
		if unreadOnly && !unread {
			continue
		}
		resp.Notifications = append(resp.Notifications, n)
	}
	return resp, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	// Other users' notifications look missing.
	if n.UserID != userID {
		return store.ErrNotFound
	}
	if n.ReadAt != nil {
		return nil
	}

	readAt := s.now()
	n.ReadAt = &readAt
	if err := s.store.UpdateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllAsRead returns how many notifications changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.store.ListNotifications(ctx, query.And(
		query.Eq("user_id", userID),
		query.Eq("read_at", nil),
	))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unread notifications: %w", err)
	}

	readAt := s.now()
	var errs []error
	marked := 0
	for _, n := range unread {
		n.ReadAt = &readAt
		if err := s.store.UpdateNotification(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notification %s: %w", n.ID, err))
			continue
		}
		marked++
	}
	return marked, errors.Join(errs...)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req notification.RegisterDeviceRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if !req.ValidPlatform() {
		return fmt.Errorf("%w: platform must be ios, android or web", ErrInvalidInput)
	}

	now := s.now()
	err := s.store.UpsertDeviceToken(ctx, &notification.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
		AddedAt:  now,
		LastUsed: now,
	})
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
