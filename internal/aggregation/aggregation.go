// Package aggregation derives statistics from an in-memory transaction list.
// Every function is pure; callers pass the mirror they already hold.
package aggregation

import (
	"sort"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Balance sums income as +amount and expenses as -amount
func Balance(txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			total = total.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// TotalByType sums the amounts of transactions of the given type
func TotalByType(txs []domain.Transaction, txType domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == txType {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// FilterByMonth keeps transactions dated in ref's calendar month and year
func FilterByMonth(txs []domain.Transaction, ref time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if util.SameMonth(tx.Date, ref) {
			out = append(out, tx)
		}
	}
	return out
}

// TotalsForMonth is TotalByType restricted to ref's month
func TotalsForMonth(txs []domain.Transaction, txType domain.TransactionType, ref time.Time) decimal.Decimal {
	return TotalByType(FilterByMonth(txs, ref), txType)
}

// GroupedTotalsByCategory sums amounts per category for one type within ref's
// month. Categories without matching transactions have no key.
func GroupedTotalsByCategory(txs []domain.Transaction, txType domain.TransactionType, ref time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != txType || !util.SameMonth(tx.Date, ref) {
			continue
		}
		totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount)
	}
	return totals
}

// CategoryTotal sums a single category across all time, optionally limited to one type
func CategoryTotal(txs []domain.Transaction, categoryID string, txType *domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.CategoryID != categoryID {
			continue
		}
		if txType != nil && tx.Type != *txType {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// Percentage returns amount/total*100, or zero when total is zero
func Percentage(amount, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return amount.Div(total).Mul(hundred)
}

// CategoryShare is one row of a category breakdown
type CategoryShare struct {
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CategoryBreakdown returns per-category totals for ref's month with their share
// of the month total, largest first. Ties are ordered by category id.
func CategoryBreakdown(txs []domain.Transaction, txType domain.TransactionType, ref time.Time) []CategoryShare {
	grouped := GroupedTotalsByCategory(txs, txType, ref)

	total := decimal.Zero
	for _, amount := range grouped {
		total = total.Add(amount)
	}

	shares := make([]CategoryShare, 0, len(grouped))
	for id, amount := range grouped {
		shares = append(shares, CategoryShare{
			CategoryID: id,
			Amount:     amount,
			Percentage: Percentage(amount, total),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Amount.Cmp(shares[j].Amount); c != 0 {
			return c > 0
		}
		return shares[i].CategoryID < shares[j].CategoryID
	})
	return shares
}

// MonthSummary holds income and expense totals for one month
type MonthSummary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// MonthlySummary computes income, expenses and net for ref's month
func MonthlySummary(txs []domain.Transaction, ref time.Time) MonthSummary {
	monthly := FilterByMonth(txs, ref)
	income := TotalByType(monthly, domain.TransactionTypeIncome)
	expenses := TotalByType(monthly, domain.TransactionTypeExpense)
	return MonthSummary{
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}
}
