package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
)

const appointmentColumns = `id, patient_id, staff_id, patient_name, staff_name,
	   start_time, end_time, type, status, priority, location, notes,
	   cancel_reason, created_at, updated_at, deleted_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, force bool) error {
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if !force {
			if err := r.guardConflicts(ctx, tx, appointment); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO appointments (
				id, patient_id, staff_id, patient_name, staff_name,
				start_time, end_time, type, status, priority, location,
				notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.StaffID,
			appointment.PatientName,
			appointment.StaffName,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Type,
			appointment.Status,
			appointment.Priority,
			appointment.Location,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

// guardConflicts serializes writers on the same staff member and patient
// with transaction-scoped advisory locks, then re-runs the half-open
// overlap check inside the transaction. Two near-simultaneous saves can
// no longer both succeed.
func (r *appointmentRepository) guardConflicts(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment) error {
	for _, id := range []uuid.UUID{apt.StaffID, apt.PatientID} {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, id.String()); err != nil {
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE (staff_id = $1 OR patient_id = $2)
			AND deleted_at IS NULL
			AND status NOT IN ('cancelled', 'completed')
			AND start_time < $4 AND end_time > $3
			AND id != $5
		)
	`
	var hasConflict bool
	err := tx.GetContext(ctx, &hasConflict, query,
		apt.StaffID, apt.PatientID, apt.StartTime, apt.EndTime, apt.ID)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if hasConflict {
		return repository.ErrConflict
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND deleted_at IS NULL`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, force bool) error {
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if !force && appointment.Status.IsActive() {
			if err := r.guardConflicts(ctx, tx, appointment); err != nil {
				return err
			}
		}

		query := `
			UPDATE appointments
			SET start_time = $1, end_time = $2, status = $3, priority = $4,
				location = $5, notes = $6, cancel_reason = $7, updated_at = $8
			WHERE id = $9 AND deleted_at IS NULL
		`
		result, err := tx.ExecContext(ctx, query,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Priority,
			appointment.Location,
			appointment.Notes,
			appointment.CancelReason,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE appointments SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.StaffID != uuid.Nil {
			query += fmt.Sprintf(" AND staff_id = $%d", argCount)
			args = append(args, filters.StaffID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.Range.Start.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", argCount)
			args = append(args, filters.Range.Start)
			argCount++
		}
		if !filters.Range.End.IsZero() {
			query += fmt.Sprintf(" AND start_time <= $%d", argCount)
			args = append(args, filters.Range.End)
		}
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForStaffDay(ctx context.Context, staffID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	return r.listForDay(ctx, "staff_id", staffID, day)
}

func (r *appointmentRepository) ListForPatientDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	return r.listForDay(ctx, "patient_id", patientID, day)
}

func (r *appointmentRepository) listForDay(ctx context.Context, column string, id uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ` + column + ` = $1
		AND start_time >= $2 AND start_time < $3
		AND deleted_at IS NULL
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, id, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list day appointments: %w", err)
	}
	return appointments, nil
}
