package message

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/internal/service/notification"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
)

type Service struct {
	repo      repository.MessageRepository
	staffRepo repository.StaffRepository
	notifSvc  *notification.Service
}

func NewService(repo repository.MessageRepository, staffRepo repository.StaffRepository, notifSvc *notification.Service) *Service {
	return &Service{repo: repo, staffRepo: staffRepo, notifSvc: notifSvc}
}

func (s *Service) SendMessage(ctx context.Context, senderID uuid.UUID, req *model.SendMessageRequest) (*model.Message, error) {
	if senderID == req.RecipientID {
		return nil, apperrors.Validation("cannot send a message to yourself", nil)
	}

	recipient, err := s.staffRepo.Get(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("recipient", err)
		}
		return nil, apperrors.Internal(err)
	}

	msg := &model.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Subject:     req.Subject,
		Body:        req.Body,
		Priority:    req.Priority,
	}
	if msg.Priority == "" {
		msg.Priority = model.MessagePriorityNormal
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, apperrors.Internal(err)
	}

	// Urgent messages also go out over email so they are seen off-shift.
	if msg.Priority == model.MessagePriorityUrgent {
		s.notifSvc.EnqueueEmail(ctx, recipient.ID, recipient.Email,
			"Urgent message: "+msg.Subject, msg.Body)
	}

	return msg, nil
}

func (s *Service) GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("message", err)
		}
		return nil, apperrors.Internal(err)
	}

	reads, err := s.repo.ListReads(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, r := range reads {
		msg.Reads = append(msg.Reads, *r)
	}
	return msg, nil
}

// MarkRead records a read receipt. Reading twice keeps the first
// timestamp.
func (s *Service) MarkRead(ctx context.Context, messageID, staffID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, messageID, staffID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("message", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("message", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListMessages(ctx context.Context, filters *model.MessageFilters) ([]*model.Message, error) {
	messages, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return messages, nil
}
