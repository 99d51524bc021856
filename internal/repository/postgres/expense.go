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

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	query := `
		INSERT INTO expenses (id, category, amount, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	expense.ID = uuid.New()
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.Category,
		expense.Amount,
		expense.Date,
		expense.Description,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *expenseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	query := `
		SELECT id, category, amount, date, description, created_at, updated_at, deleted_at
		FROM expenses
		WHERE id = $1 AND deleted_at IS NULL
	`
	var expense model.Expense
	err := r.db.GetContext(ctx, &expense, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE expenses SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
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

func (r *expenseRepository) List(ctx context.Context, filters *model.ExpenseFilters) ([]*model.Expense, error) {
	query := `
		SELECT id, category, amount, date, description, created_at, updated_at, deleted_at
		FROM expenses
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Category != "" {
			query += fmt.Sprintf(" AND category = $%d", argCount)
			args = append(args, filters.Category)
			argCount++
		}
		if !filters.Range.Start.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.Range.Start)
			argCount++
		}
		if !filters.Range.End.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filters.Range.End)
		}
	}

	query += " ORDER BY date DESC"

	var expenses []*model.Expense
	err := r.db.SelectContext(ctx, &expenses, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}
