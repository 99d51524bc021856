package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
)

type fakeScheduleRepo struct {
	schedules map[uuid.UUID]*model.StaffSchedule
}

func (f *fakeScheduleRepo) Upsert(_ context.Context, sched *model.StaffSchedule) error {
	f.schedules[sched.StaffID] = sched
	return nil
}
func (f *fakeScheduleRepo) Get(_ context.Context, _ uuid.UUID) (*model.StaffSchedule, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeScheduleRepo) GetForDate(_ context.Context, staffID uuid.UUID, _ time.Time) (*model.StaffSchedule, error) {
	s, ok := f.schedules[staffID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}
func (f *fakeScheduleRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeScheduleRepo) ListForStaff(_ context.Context, _ uuid.UUID, _ model.DateRange) ([]*model.StaffSchedule, error) {
	return nil, nil
}

type fakeAppointmentRepo struct{}

func (fakeAppointmentRepo) Create(_ context.Context, _ *model.Appointment, _ bool) error { return nil }
func (fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment, _ bool) error { return nil }
func (fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error                  { return nil }
func (fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (fakeAppointmentRepo) ListForStaffDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (fakeAppointmentRepo) ListForPatientDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func newTestService(sched *model.StaffSchedule) (*Service, uuid.UUID) {
	staffID := uuid.New()
	repo := &fakeScheduleRepo{schedules: make(map[uuid.UUID]*model.StaffSchedule)}
	if sched != nil {
		sched.StaffID = staffID
		repo.schedules[staffID] = sched
	}
	return NewService(repo, fakeAppointmentRepo{}), staffID
}

func testDate() time.Time {
	return time.Date(2026, time.April, 14, 0, 0, 0, 0, time.UTC)
}

func TestAvailabilityDefaultsToScheduleSlotLength(t *testing.T) {
	svc, staffID := newTestService(&model.StaffSchedule{
		Date:            testDate(),
		WorkStart:       "09:00",
		WorkEnd:         "09:50",
		IsAvailable:     true,
		DefaultSlotMins: 20,
	})

	slots, err := svc.Availability(context.Background(), staffID, testDate(), 0)
	require.NoError(t, err)

	// 20-minute slots on the 15-minute grid inside 09:00-09:50.
	require.Len(t, slots, 3)
	for _, slot := range slots {
		assert.Equal(t, 20*time.Minute, slot.End.Sub(slot.Start))
	}
}

func TestAvailabilityExplicitDurationOverridesDefault(t *testing.T) {
	svc, staffID := newTestService(&model.StaffSchedule{
		Date:            testDate(),
		WorkStart:       "09:00",
		WorkEnd:         "09:50",
		IsAvailable:     true,
		DefaultSlotMins: 20,
	})

	slots, err := svc.Availability(context.Background(), staffID, testDate(), 30*time.Minute)
	require.NoError(t, err)

	// Only 09:00 and 09:15 fit a 30-minute slot before 09:50.
	require.Len(t, slots, 2)
	assert.Equal(t, 30*time.Minute, slots[0].End.Sub(slots[0].Start))
}

func TestAvailabilityNoScheduleMeansNoSlots(t *testing.T) {
	svc, staffID := newTestService(nil)

	slots, err := svc.Availability(context.Background(), staffID, testDate(), 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
