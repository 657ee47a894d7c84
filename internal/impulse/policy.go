// Package impulse implements the monthly impulse-spending policy: before an
// impulse purchase is recorded, count the impulse purchases already made in
// the same calendar month and ask for confirmation past a threshold.
package impulse

import (
	"fmt"

	"tally/internal/core"
)

// Threshold is the number of impulse purchases already recorded in a month
// at which the next one requires confirmation. With four on record, the
// fifth warns; with three, the fourth does not.
const Threshold = 4

// Stats counts and sums impulse purchases.
type Stats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Decision is the outcome of evaluating a candidate expense.
type Decision struct {
	Existing Stats `json:"existing"`
	Pending  Stats `json:"pending"`
	Warn     bool  `json:"warn"`
}

// MonthlyStats counts impulse purchases dated in the same month and year as
// ref. Expenses with an invalid date are ignored.
func MonthlyStats(expenses []core.Expense, ref core.Date) Stats {
	var s Stats
	for _, e := range expenses {
		if !e.IsImpulse() {
			continue
		}
		d, ok := e.ParsedDate()
		if !ok || !core.SameMonth(d, ref) {
			continue
		}
		s.Count++
		s.Total += e.Amount
	}
	return s
}

// ShouldWarn reports whether a new impulse purchase needs confirmation given
// the purchases already on record. It looks at the count before insertion.
func ShouldWarn(existing Stats) bool {
	return existing.Count >= Threshold
}

// Evaluate decides whether recording candidate needs confirmation. Only
// impulse purchases are evaluated; a candidate whose date is invalid is
// measured against an empty month.
func Evaluate(expenses []core.Expense, candidate core.Expense) Decision {
	if !candidate.IsImpulse() {
		return Decision{}
	}
	var existing Stats
	if d, ok := candidate.ParsedDate(); ok {
		existing = MonthlyStats(expenses, d)
	}
	return Decision{
		Existing: existing,
		Pending:  Stats{Count: existing.Count + 1, Total: existing.Total + candidate.Amount},
		Warn:     ShouldWarn(existing),
	}
}

// Message is the confirmation prompt shown when Warn is set.
func (d Decision) Message() string {
	return fmt.Sprintf("You have spent %s on impulse purchases this month and have made %d impulse purchases.\nAre you sure you want to continue?",
		core.FormatDollars(d.Pending.Total), d.Pending.Count)
}
