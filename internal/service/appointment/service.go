package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/internal/scheduling"
	"github.com/coopcare/admin-api/internal/service/notification"
	"github.com/coopcare/admin-api/internal/service/schedule"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
	"github.com/coopcare/admin-api/pkg/metrics"
)

const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
)

// ConflictError carries the detected conflicts back to the handler so
// the caller can inspect them and retry with force if appropriate.
type ConflictError struct {
	Conflicts []scheduling.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointment has %d scheduling conflicts", len(e.Conflicts))
}

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	staffRepo   repository.StaffRepository
	scheduleSvc *schedule.Service
	notifSvc    *notification.Service
	metrics     *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	staffRepo repository.StaffRepository,
	scheduleSvc *schedule.Service,
	notifSvc *notification.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		staffRepo:   staffRepo,
		scheduleSvc: scheduleSvc,
		notifSvc:    notifSvc,
		metrics:     m,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	staff, err := s.staffRepo.Get(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("staff member", err)
		}
		return nil, apperrors.Internal(err)
	}

	apt := &model.Appointment{
		PatientID:   patient.ID,
		StaffID:     staff.ID,
		PatientName: patient.Name,
		StaffName:   staff.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Type:        req.Type,
		Status:      model.AppointmentStatusScheduled,
		Priority:    req.Priority,
		Location:    req.Location,
		Notes:       req.Notes,
	}
	if apt.Priority == "" {
		apt.Priority = model.AppointmentPriorityNormal
	}
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	if !req.Force {
		conflicts, err := s.findConflicts(ctx, scheduling.Candidate{
			PatientID: apt.PatientID,
			StaffID:   apt.StaffID,
			Start:     apt.StartTime,
			End:       apt.EndTime,
		})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
	}

	if err := s.repo.Create(ctx, apt, req.Force); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A competing booking won the race between our check and the
			// insert.
			return nil, apperrors.Conflict("time slot was just taken", err)
		}
		return nil, apperrors.Internal(err)
	}

	subject := "Appointment confirmed"
	content := fmt.Sprintf("Your appointment with %s is booked for %s.",
		staff.Name, apt.StartTime.Format("Monday 2 January at 15:04"))
	s.notifSvc.EnqueueEmail(ctx, patient.ID, patient.Email, subject, content)
	s.notifSvc.EnqueuePush(ctx, patient.ID, subject, content, pushData(apt))

	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}
	return apt, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.Priority != nil {
		apt.Priority = *req.Priority
	}
	if req.Location != nil {
		apt.Location = *req.Location
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.CancelReason != nil {
		apt.CancelReason = req.CancelReason
	}

	if err := validateTimes(apt.StartTime, apt.EndTime); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	rescheduled := req.StartTime != nil || req.EndTime != nil
	if rescheduled && !req.Force && apt.Status.IsActive() {
		conflicts, err := s.findConflicts(ctx, scheduling.Candidate{
			ExcludeID: apt.ID,
			PatientID: apt.PatientID,
			StaffID:   apt.StaffID,
			Start:     apt.StartTime,
			End:       apt.EndTime,
		})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &ConflictError{Conflicts: conflicts}
		}
	}

	if err := s.repo.Update(ctx, apt, req.Force); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Conflict("time slot was just taken", err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	if rescheduled {
		s.notifyPatient(ctx, apt, "Appointment rescheduled",
			fmt.Sprintf("Your appointment with %s was moved to %s.",
				apt.StaffName, apt.StartTime.Format("Monday 2 January at 15:04")))
	}

	return apt, nil
}

// CancelAppointment marks the appointment cancelled, freeing its slot.
// Cancelling twice is a no-op, not an error.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return apt, nil
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.Conflict("completed appointments cannot be cancelled", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	if reason != "" {
		apt.CancelReason = &reason
	}

	if err := s.repo.Update(ctx, apt, true); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.notifyPatient(ctx, apt, "Appointment cancelled",
		fmt.Sprintf("Your appointment with %s on %s was cancelled.",
			apt.StaffName, apt.StartTime.Format("Monday 2 January at 15:04")))

	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

// CheckConflicts runs the advisory conflict scan without saving
// anything, for the pre-booking check endpoint.
func (s *Service) CheckConflicts(ctx context.Context, c scheduling.Candidate) ([]scheduling.Conflict, error) {
	if err := validateTimes(c.Start, c.End); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	return s.findConflicts(ctx, c)
}

func (s *Service) findConflicts(ctx context.Context, c scheduling.Candidate) ([]scheduling.Conflict, error) {
	staffAppts, err := s.repo.ListForStaffDay(ctx, c.StaffID, c.Start)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	patientAppts, err := s.repo.ListForPatientDay(ctx, c.PatientID, c.Start)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	sched, err := s.scheduleSvc.GetForDate(ctx, c.StaffID, c.Start)
	if err != nil {
		return nil, err
	}

	conflicts := scheduling.CheckConflicts(c, staffAppts, patientAppts, sched)
	for _, conflict := range conflicts {
		s.metrics.ConflictsDetected.WithLabelValues(string(conflict.Type)).Inc()
	}
	return conflicts, nil
}

func (s *Service) notifyPatient(ctx context.Context, apt *model.Appointment, subject, content string) {
	patient, err := s.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return
	}
	s.notifSvc.EnqueueEmail(ctx, patient.ID, patient.Email, subject, content)
	s.notifSvc.EnqueuePush(ctx, patient.ID, subject, content, pushData(apt))
}

func pushData(apt *model.Appointment) model.JSONMap {
	return model.JSONMap{
		"appointment_id": apt.ID.String(),
		"start_time":     apt.StartTime.Format(time.RFC3339),
	}
}

func validateTimes(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("end time must be after start time")
	}
	d := end.Sub(start)
	if d < MinAppointmentDuration {
		return fmt.Errorf("appointment must last at least %v", MinAppointmentDuration)
	}
	if d > MaxAppointmentDuration {
		return fmt.Errorf("appointment cannot exceed %v", MaxAppointmentDuration)
	}
	return nil
}
