package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
)

// Payment is created once and never mutated; the owning invoice's
// paid/remaining amounts and status are recomputed in the same
// transaction that records the payment.
type Payment struct {
	Base
	InvoiceID uuid.UUID     `db:"invoice_id" json:"invoice_id"`
	Amount    float64       `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	PaidAt    time.Time     `db:"paid_at" json:"paid_at"`
	Reference string        `db:"reference" json:"reference,omitempty"`
}

type RecordPaymentRequest struct {
	InvoiceID uuid.UUID     `json:"invoice_id" binding:"required"`
	Amount    float64       `json:"amount" binding:"required,gt=0"`
	Method    PaymentMethod `json:"method" binding:"required,oneof=cash card transfer check"`
	PaidAt    time.Time     `json:"paid_at"`
	Reference string        `json:"reference"`
}

type PaymentFilters struct {
	InvoiceID uuid.UUID
	Range     DateRange
}
