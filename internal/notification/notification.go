package notification

import (
	"time"
)

type NotificationType string

const (
	TypeDailyPost       NotificationType = "DAILY_POST"
	TypeGroupPost       NotificationType = "GROUP_POST"
	TypeCreatorRotation NotificationType = "CREATOR_ROTATION"
	TypeChallenge       NotificationType = "CHALLENGE"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

type Notification struct {
	ID            string             `json:"id" db:"id"`
	UserID        string             `json:"user_id" db:"user_id"`
	Type          NotificationType   `json:"type" db:"type"`
	Title         string             `json:"title" db:"title"`
	Body          string             `json:"body" db:"body"`
	Data          string             `json:"data" db:"data"`
	Status        NotificationStatus `json:"status" db:"status"`
	Attempts      int                `json:"attempts" db:"attempts"`
	FailureReason *string            `json:"failure_reason,omitempty" db:"failure_reason"`
	SentAt        *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt        *time.Time         `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	UserID   string    `json:"user_id" db:"user_id"`
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
	LastUsed time.Time `json:"last_used" db:"last_used"`
}
