package model

import (
	"time"
)

type ExpenseCategory string

const (
	ExpenseCategorySupplies  ExpenseCategory = "supplies"
	ExpenseCategorySalaries  ExpenseCategory = "salaries"
	ExpenseCategoryRent      ExpenseCategory = "rent"
	ExpenseCategoryTransport ExpenseCategory = "transport"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

type Expense struct {
	Base
	Category    ExpenseCategory `db:"category" json:"category"`
	Amount      float64         `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	Description string          `db:"description" json:"description,omitempty"`
}

type CreateExpenseRequest struct {
	Category    ExpenseCategory `json:"category" binding:"required,oneof=supplies salaries rent transport other"`
	Amount      float64         `json:"amount" binding:"required,gt=0"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
}

type ExpenseFilters struct {
	Category ExpenseCategory
	Range    DateRange
}
