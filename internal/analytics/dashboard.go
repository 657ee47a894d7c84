package analytics

import (
	"sort"

	"tally/internal/categories"
	"tally/internal/core"
	"tally/internal/impulse"
)

// CategoryTotal is a category total decorated with registry metadata.
type CategoryTotal struct {
	categories.Category
	Total float64 `json:"total"`
}

// Dashboard is the view model behind the analytics page.
type Dashboard struct {
	Date            string          `json:"date"`
	TodayByCategory []CategoryTotal `json:"today_by_category"`
	Daily           []Point         `json:"daily"`
	Weekly          []Point         `json:"weekly"`
	Monthly         []Point         `json:"monthly"`
	ImpulseVsPlan   Partition       `json:"impulse_vs_planned"`
	ImpulseMonth    impulse.Stats   `json:"impulse_month"`
	Total           float64         `json:"total"`
	Count           int             `json:"count"`
}

// BuildDashboard computes every dashboard aggregation relative to ref.
func BuildDashboard(expenses []core.Expense, reg *categories.Registry, ref core.Date) Dashboard {
	// Colors are assigned in first-seen order of the data, not map order.
	reg.Discover(expenses)
	return Dashboard{
		Date:            core.FormatDate(ref),
		TodayByCategory: Decorate(CategoryTotals(expenses, OnDay(ref)), reg),
		Daily:           DailySeries(expenses),
		Weekly:          WeeklySeries(expenses, ref),
		Monthly:         MonthlySeries(expenses),
		ImpulseVsPlan:   ImpulseVsPlanned(expenses),
		ImpulseMonth:    impulse.MonthlyStats(expenses, ref),
		Total:           Total(expenses),
		Count:           len(expenses),
	}
}

// Decorate attaches label and color to each total, ordered as the registry
// lists categories. Ids the registry has not seen are resolved in sorted
// order so their colors do not depend on map iteration.
func Decorate(totals map[string]float64, reg *categories.Registry) []CategoryTotal {
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]CategoryTotal, 0, len(totals))
	for _, id := range ids {
		out = append(out, CategoryTotal{Category: reg.Resolve(id), Total: totals[id]})
	}
	order := make(map[string]int)
	for i, c := range reg.All() {
		order[c.ID] = i
	}
	sort.Slice(out, func(i, j int) bool {
		return order[out[i].ID] < order[out[j].ID]
	})
	return out
}
