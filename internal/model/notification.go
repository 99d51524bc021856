package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "pending"
	NotificationStatusSent     NotificationStatus = "sent"
	NotificationStatusFailed   NotificationStatus = "failed"
	NotificationStatusRetrying NotificationStatus = "retrying"
)

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelPush  NotificationChannel = "push"
	NotificationChannelInApp NotificationChannel = "in_app"
)

type Notification struct {
	ID          uuid.UUID           `db:"id" json:"id"`
	RecipientID uuid.UUID           `db:"recipient_id" json:"recipient_id"`
	Channel     NotificationChannel `db:"channel" json:"channel"`
	Priority    string              `db:"priority" json:"priority"`
	Subject     string              `db:"subject" json:"subject"`
	Content     string              `db:"content" json:"content"`
	// Recipient is the channel address (email for email, subscription
	// endpoint for push, empty for in-app).
	Recipient   string             `db:"recipient" json:"recipient,omitempty"`
	Data        JSONMap            `db:"data" json:"data,omitempty"`
	Status      NotificationStatus `db:"status" json:"status"`
	RetryCount  int                `db:"retry_count" json:"retry_count"`
	LastError   string             `db:"last_error" json:"last_error,omitempty"`
	NextRetryAt *time.Time         `db:"next_retry_at" json:"next_retry_at,omitempty"`
	SentAt      *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// PushPayload is what gets relayed to the push delivery channel.
type PushPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Data        JSONMap   `json:"data,omitempty"`
}

type NotificationFilters struct {
	RecipientID uuid.UUID
	Status      NotificationStatus
	Channel     NotificationChannel
}
