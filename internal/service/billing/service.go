package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository"
	"github.com/coopcare/admin-api/internal/service/notification"
	apperrors "github.com/coopcare/admin-api/pkg/errors"
)

const summaryTTL = time.Minute

// Service owns invoicing, payments, expenses and the financial roll-up.
// Summaries are cached per date range and flushed on any write.
type Service struct {
	invoices repository.InvoiceRepository
	expenses repository.ExpenseRepository
	patients repository.PatientRepository
	notifSvc *notification.Service
	cache    *gocache.Cache
}

func NewService(
	invoices repository.InvoiceRepository,
	expenses repository.ExpenseRepository,
	patients repository.PatientRepository,
	notifSvc *notification.Service,
) *Service {
	return &Service{
		invoices: invoices,
		expenses: expenses,
		patients: patients,
		notifSvc: notifSvc,
		cache:    gocache.New(summaryTTL, 5*time.Minute),
	}
}

func (s *Service) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	if !req.DueDate.After(req.IssueDate) {
		return nil, apperrors.Validation("due date must be after issue date", nil)
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}

	invoice := &model.Invoice{
		InvoiceNumber: newInvoiceNumber(req.IssueDate),
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Status:        model.InvoiceStatusDraft,
		TaxRate:       req.TaxRate,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		invoice.Items = append(invoice.Items, model.InvoiceLineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	invoice.Recalculate()

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.Flush()
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("invoice", err)
		}
		return nil, apperrors.Internal(err)
	}
	return invoice, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !invoice.Status.CanTransitionTo(*req.Status) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("invoice cannot move from %s to %s", invoice.Status, *req.Status), nil)
	}

	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("invoice", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.cache.Flush()
	return invoice, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.invoices.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("invoice", err)
		}
		return apperrors.Internal(err)
	}
	s.cache.Flush()
	return nil
}

func (s *Service) ListInvoices(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	invoices, err := s.invoices.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return invoices, nil
}

// RecordPayment books a payment against its invoice. The repository
// applies the payment and rolls the invoice forward in one transaction;
// the updated invoice comes back with amounts and status already
// settled.
func (s *Service) RecordPayment(ctx context.Context, req *model.RecordPaymentRequest) (*model.Invoice, error) {
	payment := &model.Payment{
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		Method:    req.Method,
		PaidAt:    req.PaidAt,
		Reference: req.Reference,
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now()
	}

	invoice, err := s.invoices.RecordPayment(ctx, payment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("invoice", err)
		case errors.Is(err, repository.ErrOverpayment):
			return nil, apperrors.Validation("payment exceeds remaining amount", err)
		default:
			return nil, apperrors.Internal(err)
		}
	}

	s.cache.Flush()

	if patient, perr := s.patients.Get(ctx, invoice.PatientID); perr == nil {
		s.notifSvc.EnqueueEmail(ctx, patient.ID, patient.Email,
			"Payment received",
			fmt.Sprintf("We received your payment of %.2f for invoice %s. Remaining balance: %.2f.",
				payment.Amount, invoice.InvoiceNumber, invoice.RemainingAmount))
	}

	return invoice, nil
}

func (s *Service) ListPayments(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error) {
	payments, err := s.invoices.ListPayments(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return payments, nil
}

func (s *Service) CreateExpense(ctx context.Context, req *model.CreateExpenseRequest) (*model.Expense, error) {
	expense := &model.Expense{
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	}
	expense.ID = uuid.New()
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.Flush()
	return expense, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("expense", err)
		}
		return apperrors.Internal(err)
	}
	s.cache.Flush()
	return nil
}

func (s *Service) ListExpenses(ctx context.Context, filters *model.ExpenseFilters) ([]*model.Expense, error) {
	expenses, err := s.expenses.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return expenses, nil
}

// FinancialSummary rolls up invoices issued, payments received and
// expenses booked inside the range. Overdue is judged against the due
// date at call time, not against the stored status, so a stale "sent"
// invoice past its due date still counts.
func (s *Service) FinancialSummary(ctx context.Context, rng model.DateRange) (*model.FinancialSummary, error) {
	key := summaryKey(rng)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.FinancialSummary), nil
	}

	invoices, err := s.invoices.List(ctx, &model.InvoiceFilters{Range: rng})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	payments, err := s.invoices.ListPayments(ctx, &model.PaymentFilters{Range: rng})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	expenses, err := s.expenses.List(ctx, &model.ExpenseFilters{Range: rng})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	summary := Summarize(invoices, payments, expenses, rng, time.Now())

	s.cache.Set(key, summary, summaryTTL)
	return summary, nil
}

// Summarize computes the roll-up from already loaded records. Payment
// matching for the days-to-payment metric uses the payments slice, so
// the caller should pass payments covering the invoices' lifetimes.
func Summarize(
	invoices []*model.Invoice,
	payments []*model.Payment,
	expenses []*model.Expense,
	rng model.DateRange,
	now time.Time,
) *model.FinancialSummary {
	summary := &model.FinancialSummary{Range: rng}

	lastPayment := make(map[uuid.UUID]time.Time)
	for _, p := range payments {
		summary.Collected += p.Amount
		summary.PaymentCount++
		if p.PaidAt.After(lastPayment[p.InvoiceID]) {
			lastPayment[p.InvoiceID] = p.PaidAt
		}
	}

	var daysTotal float64
	var daysCount int
	for _, inv := range invoices {
		if inv.Status == model.InvoiceStatusCancelled {
			continue
		}
		summary.TotalInvoiced += inv.Total
		summary.InvoiceCount++

		if inv.Status.Outstanding() {
			summary.Outstanding += inv.RemainingAmount
			if now.After(inv.DueDate) {
				summary.Overdue += inv.RemainingAmount
				summary.OverdueCount++
			}
		}

		// Invoices without a matched payment are left out of the
		// days-to-payment average rather than dragging it with zeros.
		if paidAt, ok := lastPayment[inv.ID]; ok {
			daysTotal += paidAt.Sub(inv.IssueDate).Hours() / 24
			daysCount++
		}
	}

	for _, e := range expenses {
		summary.Expenses += e.Amount
	}

	summary.Margin = summary.Collected - summary.Expenses
	if summary.TotalInvoiced > 0 {
		summary.CollectionRate = summary.Collected / summary.TotalInvoiced
	}
	if daysCount > 0 {
		summary.AvgDaysToPayment = daysTotal / float64(daysCount)
	}

	return summary
}

func newInvoiceNumber(issue time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("INV-%s-%s", issue.Format("20060102"), suffix)
}

func summaryKey(rng model.DateRange) string {
	return rng.Start.Format(time.RFC3339) + "/" + rng.End.Format(time.RFC3339)
}
