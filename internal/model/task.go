package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	Base
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description,omitempty"`
	AssigneeID  uuid.UUID    `db:"assignee_id" json:"assignee_id"`
	CreatedBy   uuid.UUID    `db:"created_by" json:"created_by"`
	DueDate     *time.Time   `db:"due_date" json:"due_date,omitempty"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	// PatientID optionally links the task to a patient record.
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
}

type CreateTaskRequest struct {
	Title       string       `json:"title" binding:"required,max=200"`
	Description string       `json:"description"`
	AssigneeID  uuid.UUID    `json:"assignee_id" binding:"required"`
	DueDate     *time.Time   `json:"due_date"`
	Priority    TaskPriority `json:"priority" binding:"omitempty,oneof=low normal high"`
	PatientID   *uuid.UUID   `json:"patient_id"`
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title" binding:"omitempty,max=200"`
	Description *string       `json:"description"`
	AssigneeID  *uuid.UUID    `json:"assignee_id"`
	DueDate     *time.Time    `json:"due_date"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *TaskPriority `json:"priority" binding:"omitempty,oneof=low normal high"`
}

type TaskFilters struct {
	AssigneeID uuid.UUID
	Status     TaskStatus
	Priority   TaskPriority
	DueBefore  time.Time
}
