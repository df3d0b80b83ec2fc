package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sweatsyncAPI/internal/logger"
	"sweatsyncAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

// pushDispatcher sends one notification to a user's devices, retrying
// with exponential backoff.
type pushDispatcher struct {
	provider    PushNotificationProvider
	maxAttempts int
	backoff     time.Duration
	log         logger.Logger
}

// deliver returns the number of attempts made and the last error.
func (d *pushDispatcher) deliver(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) (int, error) {
	attempts := d.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = d.provider.SendPush(ctx, tokens, title, body, data)
		if err == nil {
			return attempt, nil
		}
		if attempt == attempts {
			return attempt, err
		}

		wait := d.backoff * time.Duration(1<<(attempt-1))
		d.log.Warnf("push attempt %d/%d failed, retrying in %s: %v", attempt, attempts, wait, err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return attempt, fmt.Errorf("push retry cancelled: %w", ctx.Err())
		}
	}
	return attempts, err
}

// pushData flattens the JSON payload of a push request into FCM data
// fields, which must be strings.
func pushData(raw string) map[string]string {
	data := map[string]string{}
	if raw == "" {
		return data
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		data["payload"] = raw
		return data
	}
	for k, v := range fields {
		if s, ok := v.(string); ok {
			data[k] = s
			continue
		}
		encoded, _ := json.Marshal(v)
		data[k] = string(encoded)
	}
	return data
}

// LogPushProvider logs pushes instead of sending them. It stands in for
// FCM when no credentials are configured.
type LogPushProvider struct {
	Log logger.Logger
}

func (p *LogPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error {
	p.Log.Infof("PUSH (log only): %d devices: %s - %s %v", len(tokens), title, body, data)
	return nil
}
