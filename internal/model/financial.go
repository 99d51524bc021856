package model

// FinancialSummary is the roll-up of invoices, payments and expenses
// within a date range. All monetary fields share the invoice currency.
type FinancialSummary struct {
	Range DateRange `json:"range"`

	TotalInvoiced float64 `json:"total_invoiced"`
	Collected     float64 `json:"collected"`
	Outstanding   float64 `json:"outstanding"`
	Overdue       float64 `json:"overdue"`
	Expenses      float64 `json:"expenses"`
	Margin        float64 `json:"margin"`

	InvoiceCount int `json:"invoice_count"`
	PaymentCount int `json:"payment_count"`
	OverdueCount int `json:"overdue_count"`

	// CollectionRate is collected / total invoiced, zero when nothing
	// was invoiced in the range.
	CollectionRate float64 `json:"collection_rate"`

	// AvgDaysToPayment averages issue-to-last-payment intervals over
	// invoices that have at least one recorded payment. Invoices without
	// a matched payment are excluded from this metric only.
	AvgDaysToPayment float64 `json:"avg_days_to_payment"`
}
