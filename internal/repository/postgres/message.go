package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
)

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, subject, body, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.SenderID,
		message.RecipientID,
		message.Subject,
		message.Body,
		message.Priority,
		message.CreatedAt,
		message.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) Get(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, subject, body, priority,
			   created_at, updated_at, deleted_at
		FROM messages
		WHERE id = $1 AND deleted_at IS NULL
	`
	var message model.Message
	err := r.db.GetContext(ctx, &message, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	reads, err := r.ListReads(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, read := range reads {
		message.Reads = append(message.Reads, *read)
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE messages SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *messageRepository) List(ctx context.Context, filters *model.MessageFilters) ([]*model.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.body, m.priority,
			   m.created_at, m.updated_at, m.deleted_at
		FROM messages m
		WHERE m.deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.SenderID != uuid.Nil {
			query += fmt.Sprintf(" AND m.sender_id = $%d", argCount)
			args = append(args, filters.SenderID)
			argCount++
		}
		if filters.RecipientID != uuid.Nil {
			query += fmt.Sprintf(" AND m.recipient_id = $%d", argCount)
			args = append(args, filters.RecipientID)
			argCount++
		}
		if filters.UnreadBy != uuid.Nil {
			query += fmt.Sprintf(` AND NOT EXISTS (
				SELECT 1 FROM message_reads mr
				WHERE mr.message_id = m.id AND mr.staff_id = $%d
			)`, argCount)
			args = append(args, filters.UnreadBy)
			argCount++
		}
		if !filters.Range.Start.IsZero() {
			query += fmt.Sprintf(" AND m.created_at >= $%d", argCount)
			args = append(args, filters.Range.Start)
			argCount++
		}
		if !filters.Range.End.IsZero() {
			query += fmt.Sprintf(" AND m.created_at <= $%d", argCount)
			args = append(args, filters.Range.End)
		}
	}

	query += " ORDER BY m.created_at DESC"

	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID, staffID uuid.UUID, readAt time.Time) error {
	// Idempotent: re-reading does not move the original receipt time.
	query := `
		INSERT INTO message_reads (message_id, staff_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, staff_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, messageID, staffID, readAt)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (r *messageRepository) ListReads(ctx context.Context, messageID uuid.UUID) ([]*model.MessageRead, error) {
	query := `
		SELECT message_id, staff_id, read_at
		FROM message_reads
		WHERE message_id = $1
		ORDER BY read_at ASC
	`
	var reads []*model.MessageRead
	err := r.db.SelectContext(ctx, &reads, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list message reads: %w", err)
	}
	return reads, nil
}
