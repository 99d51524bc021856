package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/internal/scheduling"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Service owns staff working-day schedules and the availability view
// derived from them. Schedule lookups are cached; any write for a staff
// member and date evicts that entry.
type Service struct {
	repo     repository.ScheduleRepository
	apptRepo repository.AppointmentRepository
	cache    *gocache.Cache
}

func NewService(repo repository.ScheduleRepository, apptRepo repository.AppointmentRepository) *Service {
	return &Service{
		repo:     repo,
		apptRepo: apptRepo,
		cache:    gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) UpsertSchedule(ctx context.Context, req *model.UpsertScheduleRequest) (*model.StaffSchedule, error) {
	if err := validateClockOrder(req.WorkStart, req.WorkEnd); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	for _, b := range req.Breaks {
		if err := validateClockOrder(b.Start, b.End); err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("invalid break: %v", err), err)
		}
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	slotMins := req.DefaultSlotMins
	if slotMins <= 0 {
		slotMins = 30
	}

	sched := &model.StaffSchedule{
		StaffID:         req.StaffID,
		Date:            truncateToDay(req.Date),
		WorkStart:       req.WorkStart,
		WorkEnd:         req.WorkEnd,
		Breaks:          req.Breaks,
		IsAvailable:     available,
		MaxAppointments: req.MaxAppointments,
		DefaultSlotMins: slotMins,
	}
	sched.ID = uuid.New()
	sched.CreatedAt = time.Now()
	sched.UpdatedAt = sched.CreatedAt

	if err := s.repo.Upsert(ctx, sched); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.Delete(dayKey(sched.StaffID, sched.Date))
	return sched, nil
}

// GetForDate returns the schedule for the staff member on the given
// date, or nil when none exists. The nil result is cached too.
func (s *Service) GetForDate(ctx context.Context, staffID uuid.UUID, date time.Time) (*model.StaffSchedule, error) {
	key := dayKey(staffID, date)
	if cached, ok := s.cache.Get(key); ok {
		sched, _ := cached.(*model.StaffSchedule)
		return sched, nil
	}

	sched, err := s.repo.GetForDate(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cache.Set(key, (*model.StaffSchedule)(nil), cacheTTL)
			return nil, nil
		}
		return nil, apperrors.Internal(err)
	}

	s.cache.Set(key, sched, cacheTTL)
	return sched, nil
}

func (s *Service) ListForStaff(ctx context.Context, staffID uuid.UUID, rng model.DateRange) ([]*model.StaffSchedule, error) {
	schedules, err := s.repo.ListForStaff(ctx, staffID, rng)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return schedules, nil
}

func (s *Service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	sched, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("schedule", err)
		}
		return apperrors.Internal(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal(err)
	}

	s.cache.Delete(dayKey(sched.StaffID, sched.Date))
	return nil
}

// Availability enumerates open slots of the requested duration for the
// staff member on the given date. A zero duration falls back to the
// schedule's default slot length. No schedule, or one marked
// unavailable, means no slots.
func (s *Service) Availability(ctx context.Context, staffID uuid.UUID, date time.Time, duration time.Duration) ([]model.TimeSlot, error) {
	sched, err := s.GetForDate(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	if sched == nil || !sched.IsAvailable {
		return []model.TimeSlot{}, nil
	}

	if duration <= 0 {
		duration = time.Duration(sched.DefaultSlotMins) * time.Minute
	}
	if duration <= 0 {
		duration = 30 * time.Minute
	}

	appts, err := s.apptRepo.ListForStaffDay(ctx, staffID, date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	slots, err := scheduling.AvailableSlots(sched, appts, duration)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	return slots, nil
}

func validateClockOrder(start, end string) error {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("invalid clock time %q", start)
	}
	en, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("invalid clock time %q", end)
	}
	if !st.Before(en) {
		return fmt.Errorf("start %s must be before end %s", start, end)
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(staffID uuid.UUID, date time.Time) string {
	return staffID.String() + ":" + date.Format("2006-01-02")
}
