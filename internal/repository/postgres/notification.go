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

const notificationColumns = `id, recipient_id, channel, priority, subject, content,
	   recipient, data, status, retry_count, last_error, next_retry_at, sent_at,
	   created_at, updated_at`

const qualifiedNotificationColumns = `n.id, n.recipient_id, n.channel, n.priority, n.subject,
	   n.content, n.recipient, n.data, n.status, n.retry_count, n.last_error,
	   n.next_retry_at, n.sent_at, n.created_at, n.updated_at`

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, channel, priority, subject, content,
			recipient, data, status, retry_count, last_error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Channel,
		notification.Priority,
		notification.Subject,
		notification.Content,
		notification.Recipient,
		notification.Data,
		notification.Status,
		notification.RetryCount,
		notification.LastError,
		notification.CreatedAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var notification model.Notification
	err := r.db.GetContext(ctx, &notification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	query := `
		UPDATE notifications
		SET status = $1, retry_count = $2, last_error = $3,
			next_retry_at = $4, sent_at = $5, updated_at = $6
		WHERE id = $7
	`
	notification.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		notification.Status,
		notification.RetryCount,
		notification.LastError,
		notification.NextRetryAt,
		notification.SentAt,
		notification.UpdatedAt,
		notification.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
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

func (r *notificationRepository) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.RecipientID != uuid.Nil {
			query += fmt.Sprintf(" AND recipient_id = $%d", argCount)
			args = append(args, filters.RecipientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.Channel != "" {
			query += fmt.Sprintf(" AND channel = $%d", argCount)
			args = append(args, filters.Channel)
		}
	}

	query += " ORDER BY created_at DESC"

	var notifications []*model.Notification
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// leaseDuration is how long a claimed notification stays invisible to
// other dispatchers. A dispatcher that dies mid-batch loses its claim
// after the lease expires and the rows become due again.
const leaseDuration = 2 * time.Minute

// ListDue claims a batch of due notifications in a single statement:
// SKIP LOCKED keeps concurrent dispatchers off each other's rows while
// the claim is written, and the lease keeps the rows invisible until
// the dispatcher reports an outcome.
func (r *notificationRepository) ListDue(ctx context.Context, limit int) ([]*model.Notification, error) {
	query := `
		WITH due AS (
			SELECT id
			FROM notifications
			WHERE status IN ($1, $2)
			AND (next_retry_at IS NULL OR next_retry_at <= $3)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		UPDATE notifications n
		SET next_retry_at = $5, updated_at = $6
		FROM due
		WHERE n.id = due.id
		RETURNING ` + qualifiedNotificationColumns

	now := time.Now()
	var notifications []*model.Notification
	err := r.db.SelectContext(ctx, &notifications, query,
		model.NotificationStatusPending,
		model.NotificationStatusRetrying,
		now,
		limit,
		now.Add(leaseDuration),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due notifications: %w", err)
	}
	return notifications, nil
}
