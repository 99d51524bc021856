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

const invoiceColumns = `id, invoice_number, patient_id, patient_name, issue_date,
	   due_date, status, subtotal, tax_rate, tax, total, paid_amount,
	   remaining_amount, notes, created_at, updated_at, deleted_at`

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO invoices (
				id, invoice_number, patient_id, patient_name, issue_date,
				due_date, status, subtotal, tax_rate, tax, total,
				paid_amount, remaining_amount, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`
		_, err := tx.ExecContext(ctx, query,
			invoice.ID,
			invoice.InvoiceNumber,
			invoice.PatientID,
			invoice.PatientName,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.Status,
			invoice.Subtotal,
			invoice.TaxRate,
			invoice.Tax,
			invoice.Total,
			invoice.PaidAmount,
			invoice.RemainingAmount,
			invoice.Notes,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", translateError(err))
		}

		for i := range invoice.Items {
			item := &invoice.Items[i]
			item.ID = uuid.New()
			item.InvoiceID = invoice.ID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, amount)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.Amount)
			if err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND deleted_at IS NULL`

	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.loadItems(ctx, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) loadItems(ctx context.Context, invoice *model.Invoice) error {
	var items []model.InvoiceLineItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, invoice_id, description, quantity, unit_price, amount
		FROM invoice_items WHERE invoice_id = $1 ORDER BY description ASC
	`, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoice items: %w", err)
	}
	invoice.Items = items
	return nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	query := `
		UPDATE invoices
		SET due_date = $1, status = $2, notes = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	invoice.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		invoice.DueDate,
		invoice.Status,
		invoice.Notes,
		invoice.UpdatedAt,
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
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

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
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

func (r *invoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
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
			query += fmt.Sprintf(" AND issue_date >= $%d", argCount)
			args = append(args, filters.Range.Start)
			argCount++
		}
		if !filters.Range.End.IsZero() {
			query += fmt.Sprintf(" AND issue_date <= $%d", argCount)
			args = append(args, filters.Range.End)
		}
	}

	query += " ORDER BY issue_date DESC"

	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// RecordPayment inserts the payment and rolls the invoice forward in the
// same transaction. The invoice row is locked first so concurrent
// payments serialize instead of racing the read-modify-write.
func (r *invoiceRepository) RecordPayment(ctx context.Context, payment *model.Payment) (*model.Invoice, error) {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	if payment.PaidAt.IsZero() {
		payment.PaidAt = payment.CreatedAt
	}

	var invoice model.Invoice
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
		err := tx.GetContext(ctx, &invoice, query, payment.InvoiceID)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock invoice: %w", err)
		}

		if err := invoice.ApplyPayment(payment.Amount); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO payments (id, invoice_id, amount, method, paid_at, reference, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, payment.ID, payment.InvoiceID, payment.Amount, payment.Method,
			payment.PaidAt, payment.Reference, payment.CreatedAt, payment.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		invoice.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx, `
			UPDATE invoices
			SET paid_amount = $1, remaining_amount = $2, status = $3, updated_at = $4
			WHERE id = $5
		`, invoice.PaidAmount, invoice.RemainingAmount, invoice.Status, invoice.UpdatedAt, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to roll up invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListPayments(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, paid_at, reference,
			   created_at, updated_at, deleted_at
		FROM payments
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.InvoiceID != uuid.Nil {
			query += fmt.Sprintf(" AND invoice_id = $%d", argCount)
			args = append(args, filters.InvoiceID)
			argCount++
		}
		if !filters.Range.Start.IsZero() {
			query += fmt.Sprintf(" AND paid_at >= $%d", argCount)
			args = append(args, filters.Range.Start)
			argCount++
		}
		if !filters.Range.End.IsZero() {
			query += fmt.Sprintf(" AND paid_at <= $%d", argCount)
			args = append(args, filters.Range.End)
		}
	}

	query += " ORDER BY paid_at ASC"

	var payments []*model.Payment
	err := r.db.SelectContext(ctx, &payments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
