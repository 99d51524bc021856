package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/coopcare/admin-api/internal/model"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func invoice(id uuid.UUID, status model.InvoiceStatus, total, paid float64, issued, due time.Time) *model.Invoice {
	inv := &model.Invoice{
		Status:          status,
		Total:           total,
		PaidAmount:      paid,
		RemainingAmount: total - paid,
		IssueDate:       issued,
		DueDate:         due,
	}
	inv.ID = id
	return inv
}

func TestSummarize(t *testing.T) {
	paidID := uuid.New()
	partialID := uuid.New()
	overdueID := uuid.New()

	invoices := []*model.Invoice{
		invoice(paidID, model.InvoiceStatusPaid, 100, 100, day(1), day(15)),
		invoice(partialID, model.InvoiceStatusSent, 200, 50, day(2), day(30)),
		invoice(overdueID, model.InvoiceStatusSent, 300, 0, day(3), day(10)),
		invoice(uuid.New(), model.InvoiceStatusCancelled, 999, 0, day(4), day(20)),
	}
	payments := []*model.Payment{
		{InvoiceID: paidID, Amount: 100, PaidAt: day(5)},
		{InvoiceID: partialID, Amount: 50, PaidAt: day(8)},
	}
	expenses := []*model.Expense{
		{Category: model.ExpenseCategorySupplies, Amount: 40},
		{Category: model.ExpenseCategoryRent, Amount: 60},
	}

	now := day(20)
	s := Summarize(invoices, payments, expenses, model.DateRange{Start: day(1), End: day(31)}, now)

	// Cancelled invoices are ignored entirely.
	assert.Equal(t, 3, s.InvoiceCount)
	assert.InDelta(t, 600.0, s.TotalInvoiced, 0.001)

	assert.InDelta(t, 150.0, s.Collected, 0.001)
	assert.Equal(t, 2, s.PaymentCount)

	// Outstanding is the remaining amount on sent invoices.
	assert.InDelta(t, 450.0, s.Outstanding, 0.001)

	// Only the invoice past its due date at "now" counts as overdue.
	assert.InDelta(t, 300.0, s.Overdue, 0.001)
	assert.Equal(t, 1, s.OverdueCount)

	assert.InDelta(t, 100.0, s.Expenses, 0.001)
	assert.InDelta(t, 50.0, s.Margin, 0.001)
	assert.InDelta(t, 0.25, s.CollectionRate, 0.001)

	// Days to payment averages only invoices with a matched payment:
	// (5-1 + 8-2) / 2 = 5 days.
	assert.InDelta(t, 5.0, s.AvgDaysToPayment, 0.001)
}

func TestSummarizeRefundedInvoiceStillOutstanding(t *testing.T) {
	// Refunded is terminal but not settled: any remaining balance keeps
	// counting toward money owed.
	inv := invoice(uuid.New(), model.InvoiceStatusRefunded, 100, 0, day(1), day(30))

	s := Summarize([]*model.Invoice{inv}, nil, nil, model.DateRange{}, day(5))

	assert.InDelta(t, 100.0, s.Outstanding, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, nil, model.DateRange{}, time.Now())

	assert.Zero(t, s.TotalInvoiced)
	assert.Zero(t, s.CollectionRate)
	assert.Zero(t, s.AvgDaysToPayment)
	assert.Zero(t, s.Margin)
}

func TestSummarizeUnpaidInvoicesExcludedFromPaymentLatency(t *testing.T) {
	inv := invoice(uuid.New(), model.InvoiceStatusSent, 500, 0, day(1), day(30))

	s := Summarize([]*model.Invoice{inv}, nil, nil, model.DateRange{}, day(5))

	assert.Equal(t, 1, s.InvoiceCount)
	assert.Zero(t, s.AvgDaysToPayment)
}

func TestRecalculateMaintainsRemaining(t *testing.T) {
	inv := &model.Invoice{
		TaxRate: 0.1,
		Items: []model.InvoiceLineItem{
			{Quantity: 2, UnitPrice: 50},
			{Quantity: 1, UnitPrice: 100},
		},
		PaidAmount: 20,
	}

	inv.Recalculate()

	assert.InDelta(t, 200.0, inv.Subtotal, 0.001)
	assert.InDelta(t, 20.0, inv.Tax, 0.001)
	assert.InDelta(t, 220.0, inv.Total, 0.001)
	assert.InDelta(t, 200.0, inv.RemainingAmount, 0.001)
}
