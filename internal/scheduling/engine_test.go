package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopcare/admin-api/internal/model"
)

var testDay = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func testSchedule(breaks ...model.BreakWindow) *model.StaffSchedule {
	return &model.StaffSchedule{
		StaffID:     uuid.New(),
		Date:        testDay,
		WorkStart:   "08:00",
		WorkEnd:     "16:00",
		Breaks:      breaks,
		IsAvailable: true,
	}
}

func appt(start, end time.Time, status model.AppointmentStatus) *model.Appointment {
	a := &model.Appointment{
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	a.ID = uuid.New()
	return a
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"contained", at(9, 15), at(9, 45), at(9, 0), at(10, 0), true},
		{"partial head", at(8, 30), at(9, 30), at(9, 0), at(10, 0), true},
		{"partial tail", at(9, 30), at(10, 30), at(9, 0), at(10, 0), true},
		{"back to back before", at(8, 0), at(9, 0), at(9, 0), at(10, 0), false},
		{"back to back after", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(11, 0), at(12, 0), at(9, 0), at(10, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// The rule is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestCheckConflicts_StaffOverlap(t *testing.T) {
	existing := appt(at(9, 0), at(10, 0), model.AppointmentStatusScheduled)
	c := Candidate{
		StaffID:   uuid.New(),
		PatientID: uuid.New(),
		Start:     at(9, 30),
		End:       at(10, 30),
	}

	conflicts := CheckConflicts(c, []*model.Appointment{existing}, nil, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictOverlap, conflicts[0].Type)
	require.NotNil(t, conflicts[0].AppointmentID)
	assert.Equal(t, existing.ID, *conflicts[0].AppointmentID)
	assert.NotEmpty(t, conflicts[0].Suggestions)
}

func TestCheckConflicts_ExcludesSelf(t *testing.T) {
	existing := appt(at(9, 0), at(10, 0), model.AppointmentStatusScheduled)
	c := Candidate{
		ExcludeID: existing.ID,
		Start:     at(9, 0),
		End:       at(10, 0),
	}

	conflicts := CheckConflicts(c, []*model.Appointment{existing}, nil, nil)
	assert.Empty(t, conflicts)
}

func TestCheckConflicts_IgnoresInactive(t *testing.T) {
	cancelled := appt(at(9, 0), at(10, 0), model.AppointmentStatusCancelled)
	completed := appt(at(9, 0), at(10, 0), model.AppointmentStatusCompleted)
	c := Candidate{Start: at(9, 0), End: at(10, 0)}

	conflicts := CheckConflicts(c, []*model.Appointment{cancelled, completed}, nil, nil)
	assert.Empty(t, conflicts)
}

func TestCheckConflicts_PatientDoubleBooked(t *testing.T) {
	// Same patient, different staff member.
	other := appt(at(9, 0), at(9, 45), model.AppointmentStatusConfirmed)
	c := Candidate{Start: at(9, 30), End: at(10, 0)}

	conflicts := CheckConflicts(c, nil, []*model.Appointment{other}, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictPatientDoubleBooked, conflicts[0].Type)
}

func TestCheckConflicts_StaffUnavailable(t *testing.T) {
	sched := testSchedule()
	sched.IsAvailable = false
	c := Candidate{Start: at(9, 0), End: at(9, 30)}

	conflicts := CheckConflicts(c, nil, nil, sched)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictStaffUnavailable, conflicts[0].Type)
}

func TestCheckConflicts_OutsideWorkingHours(t *testing.T) {
	sched := testSchedule()
	c := Candidate{Start: at(7, 30), End: at(8, 30)}

	conflicts := CheckConflicts(c, nil, nil, sched)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictOutsideHours, conflicts[0].Type)
}

func TestCheckConflicts_BreakCollision(t *testing.T) {
	sched := testSchedule(model.BreakWindow{Start: "12:00", End: "13:00"})
	c := Candidate{Start: at(12, 45), End: at(13, 15)}

	conflicts := CheckConflicts(c, nil, nil, sched)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictBreakCollision, conflicts[0].Type)
}

func TestAvailableSlots_WorkedExample(t *testing.T) {
	// Working window 08:00-16:00, break 12:00-13:00, one existing
	// appointment 09:00-09:30, requesting 30-minute slots.
	sched := testSchedule(model.BreakWindow{Start: "12:00", End: "13:00"})
	existing := []*model.Appointment{
		appt(at(9, 0), at(9, 30), model.AppointmentStatusScheduled),
	}

	slots, err := AvailableSlots(sched, existing, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	starts := make(map[time.Time]bool, len(slots))
	for _, s := range slots {
		starts[s.Start] = true
		// Every slot lies inside working hours.
		assert.False(t, s.Start.Before(at(8, 0)))
		assert.False(t, s.End.After(at(16, 0)))
		// No slot intersects the appointment or the break.
		assert.False(t, Overlaps(s.Start, s.End, at(9, 0), at(9, 30)), "slot %v hits appointment", s.Start)
		assert.False(t, Overlaps(s.Start, s.End, at(12, 0), at(13, 0)), "slot %v hits break", s.Start)
	}

	// Morning run: 08:00 and 08:30 fit; 08:30-09:00 touches the
	// appointment start, which half-open intervals permit.
	assert.True(t, starts[at(8, 0)])
	assert.True(t, starts[at(8, 15)])
	assert.True(t, starts[at(8, 30)])
	// A 30-minute booking at 08:45 would run into 09:00-09:30.
	assert.False(t, starts[at(8, 45)])
	assert.False(t, starts[at(9, 0)])
	assert.False(t, starts[at(9, 15)])
	// Availability resumes at the appointment's end.
	assert.True(t, starts[at(9, 30)])
	// Last slot before the break must end by 12:00.
	assert.True(t, starts[at(11, 30)])
	assert.False(t, starts[at(11, 45)])
	// Availability resumes at the break's end.
	assert.True(t, starts[at(13, 0)])
	// Last slot of the day ends exactly at closing.
	assert.True(t, starts[at(15, 30)])
	assert.False(t, starts[at(15, 45)])

	assert.Len(t, slots, 23)
}

func TestAvailableSlots_UnavailableOrMissingSchedule(t *testing.T) {
	slots, err := AvailableSlots(nil, nil, 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, slots)

	sched := testSchedule()
	sched.IsAvailable = false
	slots, err = AvailableSlots(sched, nil, 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots_IgnoresCancelled(t *testing.T) {
	sched := testSchedule()
	existing := []*model.Appointment{
		appt(at(8, 0), at(16, 0), model.AppointmentStatusCancelled),
	}

	slots, err := AvailableSlots(sched, existing, 60*time.Minute)
	require.NoError(t, err)
	// A cancelled appointment frees the whole day: 08:00..15:00 hourly
	// grid on 15-minute steps.
	assert.Len(t, slots, 29)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(15, 0), slots[len(slots)-1].Start)
}

func TestAvailableSlots_DurationLongerThanDay(t *testing.T) {
	sched := testSchedule()
	slots, err := AvailableSlots(sched, nil, 9*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots_InvalidDuration(t *testing.T) {
	sched := testSchedule()
	_, err := AvailableSlots(sched, nil, 0)
	assert.Error(t, err)
}
