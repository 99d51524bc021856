package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusRefunded  InvoiceStatus = "refunded"
)

// Outstanding reports whether the invoice still counts toward money owed.
// Only paid and cancelled invoices are settled; refunded invoices stay in
// the sum, but CanTransitionTo only admits them from paid, where the
// remaining amount is already zero.
func (s InvoiceStatus) Outstanding() bool {
	return s != InvoiceStatusPaid && s != InvoiceStatusCancelled
}

// CanTransitionTo reports whether a manual status change is allowed.
// Cancelled and refunded are terminal, and refunded is only reachable
// from paid.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case InvoiceStatusCancelled, InvoiceStatusRefunded:
		return false
	case InvoiceStatusPaid:
		return to == InvoiceStatusRefunded
	default:
		return to != InvoiceStatusRefunded
	}
}

type Invoice struct {
	Base
	InvoiceNumber   string            `db:"invoice_number" json:"invoice_number"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName     string            `db:"patient_name" json:"patient_name"`
	IssueDate       time.Time         `db:"issue_date" json:"issue_date"`
	DueDate         time.Time         `db:"due_date" json:"due_date"`
	Status          InvoiceStatus     `db:"status" json:"status"`
	Subtotal        float64           `db:"subtotal" json:"subtotal"`
	TaxRate         float64           `db:"tax_rate" json:"tax_rate"`
	Tax             float64           `db:"tax" json:"tax"`
	Total           float64           `db:"total" json:"total"`
	PaidAmount      float64           `db:"paid_amount" json:"paid_amount"`
	RemainingAmount float64           `db:"remaining_amount" json:"remaining_amount"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	Items           []InvoiceLineItem `db:"-" json:"items"`
}

type InvoiceLineItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	Amount      float64   `db:"amount" json:"amount"`
}

// Recalculate derives subtotal, tax, total and remaining amount from the
// line items and recorded payments. The remaining = total - paid invariant
// is maintained here, not left to callers.
func (i *Invoice) Recalculate() {
	i.Subtotal = 0
	for idx := range i.Items {
		item := &i.Items[idx]
		item.Amount = float64(item.Quantity) * item.UnitPrice
		i.Subtotal += item.Amount
	}
	i.Tax = i.Subtotal * i.TaxRate
	i.Total = i.Subtotal + i.Tax
	i.RemainingAmount = i.Total - i.PaidAmount
}

// ErrOverpayment is returned when a payment exceeds the invoice's
// remaining amount.
var ErrOverpayment = errors.New("payment exceeds remaining amount")

// ApplyPayment folds one payment into the totals and advances the
// status: zero remaining marks the invoice paid, a partial payment puts
// a draft or overdue invoice back into circulation.
func (i *Invoice) ApplyPayment(amount float64) error {
	if amount > i.RemainingAmount {
		return ErrOverpayment
	}
	i.PaidAmount += amount
	i.RemainingAmount = i.Total - i.PaidAmount
	if i.RemainingAmount <= 0 {
		i.RemainingAmount = 0
		i.Status = InvoiceStatusPaid
	} else if i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusOverdue {
		i.Status = InvoiceStatusSent
	}
	return nil
}

type CreateInvoiceRequest struct {
	PatientID uuid.UUID               `json:"patient_id" binding:"required"`
	IssueDate time.Time               `json:"issue_date" binding:"required"`
	DueDate   time.Time               `json:"due_date" binding:"required"`
	TaxRate   float64                 `json:"tax_rate" binding:"gte=0,lte=1"`
	Notes     string                  `json:"notes"`
	Items     []CreateInvoiceLineItem `json:"items" binding:"required,min=1,dive"`
}

type CreateInvoiceLineItem struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
}

type UpdateInvoiceRequest struct {
	DueDate *time.Time     `json:"due_date"`
	Status  *InvoiceStatus `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled refunded"`
	Notes   *string        `json:"notes"`
}

type InvoiceFilters struct {
	PatientID uuid.UUID
	Status    InvoiceStatus
	Range     DateRange
}
