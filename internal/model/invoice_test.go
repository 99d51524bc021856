package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentFullSettlesInvoice(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusSent, Total: 250, RemainingAmount: 250}

	require.NoError(t, inv.ApplyPayment(250))

	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.InDelta(t, 250.0, inv.PaidAmount, 0.001)
	assert.Zero(t, inv.RemainingAmount)
}

func TestApplyPaymentPartialKeepsInvoiceOpen(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusDraft, Total: 300, RemainingAmount: 300}

	require.NoError(t, inv.ApplyPayment(100))

	// A partial payment puts a draft invoice back into circulation.
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.InDelta(t, 100.0, inv.PaidAmount, 0.001)
	assert.InDelta(t, 200.0, inv.RemainingAmount, 0.001)

	require.NoError(t, inv.ApplyPayment(150))
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.InDelta(t, 50.0, inv.RemainingAmount, 0.001)
}

func TestApplyPaymentOverpaymentRejected(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusSent, Total: 100, PaidAmount: 80, RemainingAmount: 20}

	err := inv.ApplyPayment(25)

	require.ErrorIs(t, err, ErrOverpayment)
	// Rejected payments leave the invoice untouched.
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.InDelta(t, 80.0, inv.PaidAmount, 0.001)
	assert.InDelta(t, 20.0, inv.RemainingAmount, 0.001)
}

func TestInvoiceStatusTransitions(t *testing.T) {
	// Refunds are only reachable from paid, where remaining is already
	// zero, so refunded invoices never hide an outstanding balance.
	assert.False(t, InvoiceStatusDraft.CanTransitionTo(InvoiceStatusRefunded))
	assert.False(t, InvoiceStatusSent.CanTransitionTo(InvoiceStatusRefunded))
	assert.True(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusRefunded))

	// Cancelled and refunded are terminal.
	assert.False(t, InvoiceStatusCancelled.CanTransitionTo(InvoiceStatusSent))
	assert.False(t, InvoiceStatusRefunded.CanTransitionTo(InvoiceStatusSent))

	assert.True(t, InvoiceStatusDraft.CanTransitionTo(InvoiceStatusSent))
	assert.True(t, InvoiceStatusSent.CanTransitionTo(InvoiceStatusCancelled))
}

func TestOutstandingExcludesOnlySettledStatuses(t *testing.T) {
	assert.False(t, InvoiceStatusPaid.Outstanding())
	assert.False(t, InvoiceStatusCancelled.Outstanding())

	assert.True(t, InvoiceStatusDraft.Outstanding())
	assert.True(t, InvoiceStatusSent.Outstanding())
	assert.True(t, InvoiceStatusOverdue.Outstanding())
	assert.True(t, InvoiceStatusRefunded.Outstanding())
}
