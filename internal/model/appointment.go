package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsActive reports whether the appointment still occupies its time slot.
func (s AppointmentStatus) IsActive() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusCompleted
}

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "followup"
	AppointmentTypeHomeVisit    AppointmentType = "home_visit"
	AppointmentTypeEmergency    AppointmentType = "emergency"
)

type AppointmentPriority string

const (
	AppointmentPriorityNormal AppointmentPriority = "normal"
	AppointmentPriorityHigh   AppointmentPriority = "high"
	AppointmentPriorityUrgent AppointmentPriority = "urgent"
)

type Appointment struct {
	Base
	PatientID    uuid.UUID           `db:"patient_id" json:"patient_id"`
	StaffID      uuid.UUID           `db:"staff_id" json:"staff_id"`
	PatientName  string              `db:"patient_name" json:"patient_name"`
	StaffName    string              `db:"staff_name" json:"staff_name"`
	StartTime    time.Time           `db:"start_time" json:"start_time"`
	EndTime      time.Time           `db:"end_time" json:"end_time"`
	Type         AppointmentType     `db:"type" json:"type"`
	Status       AppointmentStatus   `db:"status" json:"status"`
	Priority     AppointmentPriority `db:"priority" json:"priority"`
	Location     string              `db:"location" json:"location,omitempty"`
	Notes        string              `db:"notes" json:"notes,omitempty"`
	CancelReason *string             `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// Duration returns the booked length of the appointment.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

type CreateAppointmentRequest struct {
	PatientID uuid.UUID           `json:"patient_id" binding:"required"`
	StaffID   uuid.UUID           `json:"staff_id" binding:"required"`
	StartTime time.Time           `json:"start_time" binding:"required"`
	EndTime   time.Time           `json:"end_time" binding:"required,gtfield=StartTime"`
	Type      AppointmentType     `json:"type" binding:"required,oneof=consultation followup home_visit emergency"`
	Priority  AppointmentPriority `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	Location  string              `json:"location"`
	Notes     string              `json:"notes" binding:"max=1000"`
	// Force saves the appointment even when conflicts are detected,
	// preserving the advisory nature of the conflict check.
	Force bool `json:"force"`
}

type UpdateAppointmentRequest struct {
	StartTime    *time.Time           `json:"start_time"`
	EndTime      *time.Time           `json:"end_time"`
	Status       *AppointmentStatus   `json:"status"`
	Priority     *AppointmentPriority `json:"priority"`
	Location     *string              `json:"location"`
	Notes        *string              `json:"notes"`
	CancelReason *string              `json:"cancel_reason"`
	Force        bool                 `json:"force"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AppointmentFilters struct {
	StaffID   uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	Range     DateRange
}
