package appointment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/internal/scheduling"
	"github.com/coopcare/admin-api/internal/service/notification"
	"github.com/coopcare/admin-api/internal/service/schedule"
	"github.com/coopcare/admin-api/pkg/logger"
	"github.com/coopcare/admin-api/pkg/metrics"
)

// Shared across tests; prometheus collectors register globally once.
var testMetrics = metrics.NewMetrics("appointment_test")

type fakeAppointmentRepo struct {
	appts map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment, _ bool) error {
	cp := *apt
	f.appts[apt.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *apt
	return &cp, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment, _ bool) error {
	if _, ok := f.appts[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *apt
	f.appts[apt.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.appts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appts {
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListForStaffDay(_ context.Context, staffID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appts {
		if apt.StaffID == staffID && sameDay(apt.StartTime, day) {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListForPatientDay(_ context.Context, patientID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appts {
		if apt.PatientID == patientID && sameDay(apt.StartTime, day) {
			out = append(out, apt)
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error     { return nil }
func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*model.StaffMember
}

func (f *fakeStaffRepo) Create(_ context.Context, s *model.StaffMember) error { return nil }
func (f *fakeStaffRepo) Get(_ context.Context, id uuid.UUID) (*model.StaffMember, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}
func (f *fakeStaffRepo) GetByEmail(_ context.Context, _ string) (*model.StaffMember, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeStaffRepo) Update(_ context.Context, s *model.StaffMember) error { return nil }
func (f *fakeStaffRepo) Delete(_ context.Context, id uuid.UUID) error         { return nil }
func (f *fakeStaffRepo) List(_ context.Context, _ *model.StaffFilters) ([]*model.StaffMember, error) {
	return nil, nil
}

type fakeScheduleRepo struct {
	schedules map[string]*model.StaffSchedule
}

func schedKey(staffID uuid.UUID, date time.Time) string {
	return staffID.String() + date.Format("2006-01-02")
}

func (f *fakeScheduleRepo) Upsert(_ context.Context, s *model.StaffSchedule) error {
	f.schedules[schedKey(s.StaffID, s.Date)] = s
	return nil
}
func (f *fakeScheduleRepo) Get(_ context.Context, _ uuid.UUID) (*model.StaffSchedule, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeScheduleRepo) GetForDate(_ context.Context, staffID uuid.UUID, date time.Time) (*model.StaffSchedule, error) {
	s, ok := f.schedules[schedKey(staffID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}
func (f *fakeScheduleRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeScheduleRepo) ListForStaff(_ context.Context, _ uuid.UUID, _ model.DateRange) ([]*model.StaffSchedule, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	created []*model.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.created = append(f.created, n)
	return nil
}
func (f *fakeNotificationRepo) Get(_ context.Context, _ uuid.UUID) (*model.Notification, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeNotificationRepo) Update(_ context.Context, _ *model.Notification) error { return nil }
func (f *fakeNotificationRepo) List(_ context.Context, _ *model.NotificationFilters) ([]*model.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationRepo) ListDue(_ context.Context, _ int) ([]*model.Notification, error) {
	return nil, nil
}

type fixture struct {
	svc       *Service
	apptRepo  *fakeAppointmentRepo
	notifRepo *fakeNotificationRepo
	patientID uuid.UUID
	staffID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patient := &model.Patient{Name: "Ada Moreau", Email: "ada@example.org"}
	patient.ID = uuid.New()
	staff := &model.StaffMember{Name: "Dr. Leroy", Email: "leroy@example.org", Role: model.StaffRoleDoctor}
	staff.ID = uuid.New()

	apptRepo := newFakeAppointmentRepo()
	schedRepo := &fakeScheduleRepo{schedules: make(map[string]*model.StaffSchedule)}
	notifRepo := &fakeNotificationRepo{}

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	notifSvc := notification.NewService(notifRepo, log)
	schedSvc := schedule.NewService(schedRepo, apptRepo)

	svc := NewService(apptRepo,
		&fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeStaffRepo{staff: map[uuid.UUID]*model.StaffMember{staff.ID: staff}},
		schedSvc, notifSvc, testMetrics)

	return &fixture{
		svc:       svc,
		apptRepo:  apptRepo,
		notifRepo: notifRepo,
		patientID: patient.ID,
		staffID:   staff.ID,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, time.April, 14, hour, min, 0, 0, time.UTC)
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(9, 30),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, "Ada Moreau", apt.PatientName)
	assert.Equal(t, "Dr. Leroy", apt.StaffName)
	assert.Len(t, f.apptRepo.appts, 1)

	// Confirmation email, in-app copy, and a push relay.
	require.Len(t, f.notifRepo.created, 3)
	assert.Equal(t, model.NotificationChannelEmail, f.notifRepo.created[0].Channel)
	assert.Equal(t, "ada@example.org", f.notifRepo.created[0].Recipient)

	push := f.notifRepo.created[2]
	assert.Equal(t, model.NotificationChannelPush, push.Channel)
	assert.Equal(t, apt.ID.String(), push.Data["appointment_id"])
	assert.Equal(t, apt.StartTime.Format(time.RFC3339), push.Data["start_time"])
}

func TestCreateAppointmentConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 30),
		EndTime:   at(10, 30),
		Type:      model.AppointmentTypeConsultation,
	})

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	types := make(map[scheduling.ConflictType]bool)
	for _, c := range conflictErr.Conflicts {
		types[c.Type] = true
	}
	assert.True(t, types[scheduling.ConflictOverlap])
	assert.True(t, types[scheduling.ConflictPatientDoubleBooked])
	assert.Len(t, f.apptRepo.appts, 1)
}

func TestCreateAppointmentBackToBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	// Touching intervals do not overlap.
	_, err = f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(10, 0),
		EndTime:   at(11, 0),
		Type:      model.AppointmentTypeFollowUp,
	})
	require.NoError(t, err)
	assert.Len(t, f.apptRepo.appts, 2)
}

func TestCreateAppointmentForceOverridesConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 30),
		EndTime:   at(10, 30),
		Type:      model.AppointmentTypeEmergency,
		Force:     true,
	})
	require.NoError(t, err)
	assert.Len(t, f.apptRepo.appts, 2)
}

func TestCancelAppointmentFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	cancelled, err := f.svc.CancelAppointment(ctx, apt.ID, "patient request")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "patient request", *cancelled.CancelReason)

	// The slot is free again.
	_, err = f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)
}

func TestCancelAppointmentTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	_, err = f.svc.CancelAppointment(ctx, apt.ID, "first")
	require.NoError(t, err)

	again, err := f.svc.CancelAppointment(ctx, apt.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, again.Status)
	assert.Equal(t, "first", *again.CancelReason)
}

func TestUpdateAppointmentRescheduleConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	second, err := f.svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(11, 0),
		EndTime:   at(12, 0),
		Type:      model.AppointmentTypeConsultation,
	})
	require.NoError(t, err)

	// Moving the second onto the first collides.
	newStart, newEnd := at(9, 30), at(10, 30)
	_, err = f.svc.UpdateAppointment(ctx, second.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// Moving it onto its own old window is fine: it never conflicts
	// with itself.
	sameStart, sameEnd := at(11, 15), at(11, 45)
	_, err = f.svc.UpdateAppointment(ctx, second.ID, &model.UpdateAppointmentRequest{
		StartTime: &sameStart,
		EndTime:   &sameEnd,
	})
	require.NoError(t, err)
}

func TestCreateAppointmentInvalidDuration(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientID: f.patientID,
		StaffID:   f.staffID,
		StartTime: at(9, 0),
		EndTime:   at(9, 5),
		Type:      model.AppointmentTypeConsultation,
	})
	require.Error(t, err)
}
