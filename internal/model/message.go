package model

import (
	"time"

	"github.com/google/uuid"
)

type MessagePriority string

const (
	MessagePriorityNormal MessagePriority = "normal"
	MessagePriorityHigh   MessagePriority = "high"
	MessagePriorityUrgent MessagePriority = "urgent"
)

type Message struct {
	Base
	SenderID    uuid.UUID       `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID       `db:"recipient_id" json:"recipient_id"`
	Subject     string          `db:"subject" json:"subject"`
	Body        string          `db:"body" json:"body"`
	Priority    MessagePriority `db:"priority" json:"priority"`
	Reads       []MessageRead   `db:"-" json:"reads,omitempty"`
}

// MessageRead is a read receipt: who opened the message and when.
type MessageRead struct {
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}

type SendMessageRequest struct {
	RecipientID uuid.UUID       `json:"recipient_id" binding:"required"`
	Subject     string          `json:"subject" binding:"required,max=200"`
	Body        string          `json:"body" binding:"required"`
	Priority    MessagePriority `json:"priority" binding:"omitempty,oneof=normal high urgent"`
}

type MessageFilters struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	UnreadBy    uuid.UUID
	Range       DateRange
}
