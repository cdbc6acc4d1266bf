package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense record. Amount is always positive;
// the sign is carried by Type.
type Transaction struct {
	ID         string          `json:"id"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
	Date       time.Time       `json:"date"`
	Comment    *string         `json:"comment,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  *time.Time      `json:"updatedAt,omitempty"`
}

// TransactionDraft holds the caller-supplied fields of a new transaction
type TransactionDraft struct {
	Type       TransactionType
	Amount     decimal.Decimal
	CategoryID string
	Date       time.Time
	Comment    *string
}

// TransactionPatch is a partial update; nil fields are left unchanged
type TransactionPatch struct {
	Type       *TransactionType
	Amount     *decimal.Decimal
	CategoryID *string
	Date       *time.Time
	Comment    *string
}

// Apply shallow-merges the patch onto t and returns the result
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Comment != nil {
		comment := *p.Comment
		t.Comment = &comment
	}
	return t
}

// Draft returns the editable fields of t
func (t Transaction) Draft() TransactionDraft {
	return TransactionDraft{
		Type:       t.Type,
		Amount:     t.Amount,
		CategoryID: t.CategoryID,
		Date:       t.Date,
		Comment:    t.Comment,
	}
}

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	Type      *TransactionType
	StartDate *time.Time
	EndDate   *time.Time
}
