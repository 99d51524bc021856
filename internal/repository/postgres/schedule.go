package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
)

const scheduleColumns = `id, staff_id, date, work_start, work_end, breaks,
	   is_available, max_appointments, default_slot_mins,
	   created_at, updated_at, deleted_at`

func (r *scheduleRepository) Upsert(ctx context.Context, schedule *model.StaffSchedule) error {
	// ON CONFLICT keeps one row per staff member per date; last write
	// wins on the payload but the row identity is stable.
	query := `
		INSERT INTO staff_schedules (
			id, staff_id, date, work_start, work_end, breaks,
			is_available, max_appointments, default_slot_mins,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (staff_id, date) WHERE deleted_at IS NULL
		DO UPDATE SET
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			breaks = EXCLUDED.breaks,
			is_available = EXCLUDED.is_available,
			max_appointments = EXCLUDED.max_appointments,
			default_slot_mins = EXCLUDED.default_slot_mins,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	now := time.Now()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	row := r.db.QueryRowxContext(ctx, query,
		schedule.ID,
		schedule.StaffID,
		schedule.Date,
		schedule.WorkStart,
		schedule.WorkEnd,
		schedule.Breaks,
		schedule.IsAvailable,
		schedule.MaxAppointments,
		schedule.DefaultSlotMins,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err := row.Scan(&schedule.ID, &schedule.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", translateError(err))
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id uuid.UUID) (*model.StaffSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM staff_schedules WHERE id = $1 AND deleted_at IS NULL`

	var schedule model.StaffSchedule
	err := r.db.GetContext(ctx, &schedule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) GetForDate(ctx context.Context, staffID uuid.UUID, date time.Time) (*model.StaffSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM staff_schedules
		WHERE staff_id = $1 AND date = $2 AND deleted_at IS NULL
	`
	var schedule model.StaffSchedule
	err := r.db.GetContext(ctx, &schedule, query, staffID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for date: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE staff_schedules SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
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

func (r *scheduleRepository) ListForStaff(ctx context.Context, staffID uuid.UUID, rng model.DateRange) ([]*model.StaffSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM staff_schedules
		WHERE staff_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{staffID}
	argCount := 2

	if !rng.Start.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, rng.Start)
		argCount++
	}
	if !rng.End.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, rng.End)
	}

	query += " ORDER BY date ASC"

	var schedules []*model.StaffSchedule
	err := r.db.SelectContext(ctx, &schedules, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}
