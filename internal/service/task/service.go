package task

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
	repo      repository.TaskRepository
	staffRepo repository.StaffRepository
	notifSvc  *notification.Service
}

func NewService(repo repository.TaskRepository, staffRepo repository.StaffRepository, notifSvc *notification.Service) *Service {
	return &Service{repo: repo, staffRepo: staffRepo, notifSvc: notifSvc}
}

func (s *Service) CreateTask(ctx context.Context, createdBy uuid.UUID, req *model.CreateTaskRequest) (*model.Task, error) {
	assignee, err := s.staffRepo.Get(ctx, req.AssigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("assignee", err)
		}
		return nil, apperrors.Internal(err)
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  assignee.ID,
		CreatedBy:   createdBy,
		DueDate:     req.DueDate,
		Status:      model.TaskStatusPending,
		Priority:    req.Priority,
		PatientID:   req.PatientID,
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityNormal
	}
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperrors.Internal(err)
	}

	if assignee.ID != createdBy {
		s.notifSvc.EnqueueEmail(ctx, assignee.ID, assignee.Email,
			"New task assigned: "+task.Title, task.Description)
	}

	return task, nil
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("task", err)
		}
		return nil, apperrors.Internal(err)
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, id uuid.UUID, req *model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	reassigned := req.AssigneeID != nil && *req.AssigneeID != task.AssigneeID

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssigneeID != nil {
		task.AssigneeID = *req.AssigneeID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("task", err)
		}
		return nil, apperrors.Internal(err)
	}

	if reassigned {
		if assignee, err := s.staffRepo.Get(ctx, task.AssigneeID); err == nil {
			s.notifSvc.EnqueueEmail(ctx, assignee.ID, assignee.Email,
				"Task assigned to you: "+task.Title, task.Description)
		}
	}

	return task, nil
}

func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("task", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListTasks(ctx context.Context, filters *model.TaskFilters) ([]*model.Task, error) {
	tasks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return tasks, nil
}
