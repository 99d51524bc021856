package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/logger"
)

// Service enqueues notifications for the dispatcher to deliver. Enqueue
// failures are logged but never fail the calling operation: a booked
// appointment outranks its reminder.
type Service struct {
	repo   repository.NotificationRepository
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func (s *Service) Enqueue(ctx context.Context, n *model.Notification) {
	if n.Status == "" {
		n.Status = model.NotificationStatusPending
	}
	if n.Priority == "" {
		n.Priority = "normal"
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error(err, "failed to enqueue notification",
			"recipient_id", n.RecipientID.String(),
			"channel", string(n.Channel))
	}
}

// EnqueueEmail queues an email plus an in-app copy for the recipient.
func (s *Service) EnqueueEmail(ctx context.Context, recipientID uuid.UUID, address, subject, content string) {
	s.Enqueue(ctx, &model.Notification{
		RecipientID: recipientID,
		Channel:     model.NotificationChannelEmail,
		Subject:     subject,
		Content:     content,
		Recipient:   address,
	})
	s.Enqueue(ctx, &model.Notification{
		RecipientID: recipientID,
		Channel:     model.NotificationChannelInApp,
		Subject:     subject,
		Content:     content,
	})
}

// EnqueuePush queues a push relay for the recipient's devices. The
// dispatcher publishes the payload to the push channel on the broker.
func (s *Service) EnqueuePush(ctx context.Context, recipientID uuid.UUID, title, body string, data model.JSONMap) {
	s.Enqueue(ctx, &model.Notification{
		RecipientID: recipientID,
		Channel:     model.NotificationChannelPush,
		Subject:     title,
		Content:     body,
		Data:        data,
	})
}

func (s *Service) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]*model.Notification, error) {
	notifications, err := s.repo.List(ctx, &model.NotificationFilters{
		RecipientID: recipientID,
		Channel:     model.NotificationChannelInApp,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return notifications, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, apperrors.Internal(err)
	}
	return n, nil
}
