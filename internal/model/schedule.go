package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BreakWindow is a pause inside a working day, clock times in "15:04" form.
type BreakWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BreakWindows is stored as a JSONB column.
type BreakWindows []BreakWindow

func (b BreakWindows) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

func (b *BreakWindows) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported type for BreakWindows: %T", src)
	}
}

// StaffSchedule describes one staff member's working day. One row per
// staff member per date, enforced by a unique constraint.
type StaffSchedule struct {
	Base
	StaffID         uuid.UUID    `db:"staff_id" json:"staff_id"`
	Date            time.Time    `db:"date" json:"date"`
	WorkStart       string       `db:"work_start" json:"work_start"`
	WorkEnd         string       `db:"work_end" json:"work_end"`
	Breaks          BreakWindows `db:"breaks" json:"breaks"`
	IsAvailable     bool         `db:"is_available" json:"is_available"`
	MaxAppointments int          `db:"max_appointments" json:"max_appointments"`
	DefaultSlotMins int          `db:"default_slot_mins" json:"default_slot_mins"`
}

// ClockTime parses a "15:04" clock string onto the schedule's date.
func (s *StaffSchedule) ClockTime(clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), nil
}

type UpsertScheduleRequest struct {
	StaffID         uuid.UUID    `json:"staff_id" binding:"required"`
	Date            time.Time    `json:"date" binding:"required"`
	WorkStart       string       `json:"work_start" binding:"required,clocktime"`
	WorkEnd         string       `json:"work_end" binding:"required,clocktime"`
	Breaks          BreakWindows `json:"breaks"`
	IsAvailable     *bool        `json:"is_available"`
	MaxAppointments int          `json:"max_appointments"`
	DefaultSlotMins int          `json:"default_slot_mins"`
}
