package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
)

// SlotStep is the grid the availability walk uses.
const SlotStep = 15 * time.Minute

type ConflictType string

const (
	ConflictOverlap             ConflictType = "overlap"
	ConflictStaffUnavailable    ConflictType = "staff_unavailable"
	ConflictOutsideHours        ConflictType = "outside_working_hours"
	ConflictBreakCollision      ConflictType = "break_collision"
	ConflictPatientDoubleBooked ConflictType = "patient_double_booked"
)

// Conflict is a detected scheduling collision. Conflicts are advisory:
// the appointment service decides whether to reject or save anyway.
type Conflict struct {
	Type          ConflictType `json:"type"`
	AppointmentID *uuid.UUID   `json:"appointment_id,omitempty"`
	Message       string       `json:"message"`
	Suggestions   []string     `json:"suggestions,omitempty"`
}

// Candidate is a proposed appointment to check. ExcludeID is the id of
// the appointment being edited, so it never conflicts with itself.
type Candidate struct {
	ExcludeID uuid.UUID
	PatientID uuid.UUID
	StaffID   uuid.UUID
	Start     time.Time
	End       time.Time
}

// Overlaps applies the half-open interval rule: [aStart,aEnd) and
// [bStart,bEnd) overlap iff aStart < bEnd && aEnd > bStart.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// CheckConflicts scans the staff member's appointments, the patient's
// appointments and the staff schedule for the candidate's date.
// Cancelled and completed appointments never conflict. A nil schedule
// means no schedule record exists for that date and only overlap checks
// apply.
func CheckConflicts(c Candidate, staffAppts, patientAppts []*model.Appointment, sched *model.StaffSchedule) []Conflict {
	var conflicts []Conflict

	for _, apt := range staffAppts {
		if apt.ID == c.ExcludeID || !apt.Status.IsActive() {
			continue
		}
		if Overlaps(c.Start, c.End, apt.StartTime, apt.EndTime) {
			id := apt.ID
			conflicts = append(conflicts, Conflict{
				Type:          ConflictOverlap,
				AppointmentID: &id,
				Message: fmt.Sprintf("staff member already booked %s-%s",
					apt.StartTime.Format("15:04"), apt.EndTime.Format("15:04")),
				Suggestions: overlapSuggestions,
			})
		}
	}

	for _, apt := range patientAppts {
		if apt.ID == c.ExcludeID || !apt.Status.IsActive() {
			continue
		}
		if Overlaps(c.Start, c.End, apt.StartTime, apt.EndTime) {
			id := apt.ID
			conflicts = append(conflicts, Conflict{
				Type:          ConflictPatientDoubleBooked,
				AppointmentID: &id,
				Message: fmt.Sprintf("patient already has an appointment %s-%s",
					apt.StartTime.Format("15:04"), apt.EndTime.Format("15:04")),
				Suggestions: doubleBookSuggestions,
			})
		}
	}

	if sched != nil {
		conflicts = append(conflicts, checkSchedule(c, sched)...)
	}

	return conflicts
}

func checkSchedule(c Candidate, sched *model.StaffSchedule) []Conflict {
	var conflicts []Conflict

	if !sched.IsAvailable {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictStaffUnavailable,
			Message:     "staff member is not available on this date",
			Suggestions: unavailableSuggestions,
		})
		return conflicts
	}

	workStart, err1 := sched.ClockTime(sched.WorkStart)
	workEnd, err2 := sched.ClockTime(sched.WorkEnd)
	if err1 == nil && err2 == nil {
		if c.Start.Before(workStart) || c.End.After(workEnd) {
			conflicts = append(conflicts, Conflict{
				Type: ConflictOutsideHours,
				Message: fmt.Sprintf("appointment falls outside working hours %s-%s",
					sched.WorkStart, sched.WorkEnd),
				Suggestions: unavailableSuggestions,
			})
		}
	}

	for _, br := range sched.Breaks {
		brStart, err1 := sched.ClockTime(br.Start)
		brEnd, err2 := sched.ClockTime(br.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if Overlaps(c.Start, c.End, brStart, brEnd) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictBreakCollision,
				Message:     fmt.Sprintf("appointment collides with break %s-%s", br.Start, br.End),
				Suggestions: overlapSuggestions,
			})
		}
	}

	return conflicts
}

// AvailableSlots walks the working-hours window in SlotStep increments
// and returns every slot where a duration-length booking would fit
// entirely inside working hours without touching an active appointment
// or a break window.
func AvailableSlots(sched *model.StaffSchedule, appts []*model.Appointment, duration time.Duration) ([]model.TimeSlot, error) {
	if sched == nil || !sched.IsAvailable {
		return nil, nil
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	workStart, err := sched.ClockTime(sched.WorkStart)
	if err != nil {
		return nil, err
	}
	workEnd, err := sched.ClockTime(sched.WorkEnd)
	if err != nil {
		return nil, err
	}

	busy := make([]model.TimeSlot, 0, len(appts)+len(sched.Breaks))
	for _, apt := range appts {
		if apt.Status.IsActive() {
			busy = append(busy, model.TimeSlot{Start: apt.StartTime, End: apt.EndTime})
		}
	}
	for _, br := range sched.Breaks {
		brStart, err1 := sched.ClockTime(br.Start)
		brEnd, err2 := sched.ClockTime(br.End)
		if err1 != nil || err2 != nil {
			continue
		}
		busy = append(busy, model.TimeSlot{Start: brStart, End: brEnd})
	}

	var slots []model.TimeSlot
	for t := workStart; !t.Add(duration).After(workEnd); t = t.Add(SlotStep) {
		end := t.Add(duration)
		if !overlapsAny(t, end, busy) {
			slots = append(slots, model.TimeSlot{Start: t, End: end})
		}
	}
	return slots, nil
}

func overlapsAny(start, end time.Time, busy []model.TimeSlot) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

var (
	overlapSuggestions = []string{
		"pick a different time on the same day",
		"check the staff member's availability for open slots",
		"assign a different staff member",
	}
	doubleBookSuggestions = []string{
		"reschedule one of the patient's appointments",
		"check the staff member's availability for open slots",
	}
	unavailableSuggestions = []string{
		"pick another date",
		"check the staff schedule for working days",
		"assign a different staff member",
	}
)
