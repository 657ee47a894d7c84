// Package analytics turns a collection of expenses into the totals, series
// and listings the dashboard views render. Every function is pure: the same
// input always produces the same output and nothing is mutated.
package analytics

import (
	"tally/internal/core"
)

// Predicate selects the expenses an aggregation should include.
type Predicate func(core.Expense) bool

// All matches every expense.
func All(core.Expense) bool { return true }

// OnDay matches expenses dated on the same calendar day as ref.
// Expenses with an invalid date never match.
func OnDay(ref core.Date) Predicate {
	return func(e core.Expense) bool {
		d, ok := e.ParsedDate()
		return ok && core.SameDay(d, ref)
	}
}

// InMonth matches expenses dated in the same month and year as ref.
func InMonth(ref core.Date) Predicate {
	return func(e core.Expense) bool {
		d, ok := e.ParsedDate()
		return ok && core.SameMonth(d, ref)
	}
}

// CategoryTotals sums amounts per category for expenses matching pred (all
// expenses when pred is nil). Categories with no matching expense are absent.
func CategoryTotals(expenses []core.Expense, pred Predicate) map[string]float64 {
	if pred == nil {
		pred = All
	}
	totals := make(map[string]float64)
	for _, e := range expenses {
		if !pred(e) {
			continue
		}
		totals[core.NormalizeCategory(e.Category)] += e.Amount
	}
	return totals
}

// Total sums every amount.
func Total(expenses []core.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}

// Partition splits spending into impulse and planned purchases.
type Partition struct {
	Impulse float64 `json:"impulse_total"`
	Planned float64 `json:"planned_total"`
}

// ImpulseVsPlanned sums amounts by impulse flag. Only "yes" counts as
// impulse; every other value, including unknown strings, is planned.
func ImpulseVsPlanned(expenses []core.Expense) Partition {
	var p Partition
	for _, e := range expenses {
		if e.Impulse == core.ImpulseYes {
			p.Impulse += e.Amount
		} else {
			p.Planned += e.Amount
		}
	}
	return p
}
