package impulse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

func impulses(n int, date string, amount float64) []core.Expense {
	out := make([]core.Expense, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Expense{Amount: amount, Category: "fun", Impulse: "yes", Date: date})
	}
	return out
}

func TestMonthlyStats(t *testing.T) {
	expenses := []core.Expense{
		{Amount: 10, Impulse: "yes", Date: "01/06/2024"},
		{Amount: 5, Impulse: "YES", Date: "30/06/2024"},
		{Amount: 7, Impulse: "no", Date: "02/06/2024"},
		{Amount: 3, Impulse: "yes", Date: "01/07/2024"},
		{Amount: 4, Impulse: "yes", Date: "15/06/2023"},
		{Amount: 9, Impulse: "yes", Date: "31/06/2024"},
		{Amount: 8, Impulse: "", Date: "03/06/2024"},
	}
	s := MonthlyStats(expenses, core.NewDate(2024, 6, 15))
	assert.Equal(t, Stats{Count: 2, Total: 15}, s)

	assert.Equal(t, Stats{}, MonthlyStats(nil, core.NewDate(2024, 6, 15)))
}

func TestShouldWarnThreshold(t *testing.T) {
	cases := []struct {
		existing int
		warn     bool
	}{
		{0, false},
		{3, false},
		{4, true},
		{5, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("existing_%d", tc.existing), func(t *testing.T) {
			assert.Equal(t, tc.warn, ShouldWarn(Stats{Count: tc.existing}))
		})
	}
}

func TestEvaluateFifthImpulseWarns(t *testing.T) {
	existing := impulses(4, "03/06/2024", 10)
	d := Evaluate(existing, core.Expense{Amount: 12.5, Impulse: "yes", Date: "20/06/2024"})
	require.True(t, d.Warn)
	assert.Equal(t, Stats{Count: 4, Total: 40}, d.Existing)
	assert.Equal(t, Stats{Count: 5, Total: 52.5}, d.Pending)
	assert.Equal(t, "You have spent $52.50 on impulse purchases this month and have made 5 impulse purchases.\nAre you sure you want to continue?", d.Message())
}

func TestEvaluateFourthImpulseDoesNotWarn(t *testing.T) {
	d := Evaluate(impulses(3, "03/06/2024", 10), core.Expense{Amount: 1, Impulse: "yes", Date: "04/06/2024"})
	assert.False(t, d.Warn)
	assert.Equal(t, 4, d.Pending.Count)
}

func TestEvaluateOtherMonthDoesNotCount(t *testing.T) {
	d := Evaluate(impulses(6, "03/05/2024", 10), core.Expense{Amount: 1, Impulse: "yes", Date: "04/06/2024"})
	assert.False(t, d.Warn)
	assert.Equal(t, 0, d.Existing.Count)
}

func TestEvaluatePlannedNeverWarns(t *testing.T) {
	d := Evaluate(impulses(10, "03/06/2024", 10), core.Expense{Amount: 1, Impulse: "no", Date: "04/06/2024"})
	assert.Equal(t, Decision{}, d)
}

func TestEvaluateInvalidCandidateDate(t *testing.T) {
	d := Evaluate(impulses(10, "03/06/2024", 10), core.Expense{Amount: 2, Impulse: "yes", Date: "bad"})
	assert.False(t, d.Warn)
	assert.Equal(t, Stats{Count: 1, Total: 2}, d.Pending)
}
