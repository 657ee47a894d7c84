package analytics

import (
	"sort"

	"tally/internal/core"
)

// Point is one bucket of a time series. Key is the sortable ISO form
// (YYYY-MM-DD or YYYY-MM); Label is a short display form.
type Point struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// DailySeries returns one point per distinct valid date, oldest first.
func DailySeries(expenses []core.Expense) []Point {
	totals := make(map[string]float64)
	labels := make(map[string]string)
	for _, e := range expenses {
		d, ok := e.ParsedDate()
		if !ok {
			continue
		}
		key := d.ISO()
		totals[key] += e.Amount
		labels[key] = d.Format("02/01")
	}
	return sortedPoints(totals, labels)
}

// WeeklySeries returns exactly seven points, Sunday through Saturday, for the
// week containing ref. Days without spending are present with a zero total.
func WeeklySeries(expenses []core.Expense, ref core.Date) []Point {
	start := core.WeekStart(ref)
	end := start.AddDays(6)

	points := make([]Point, 7)
	for i := range points {
		d := start.AddDays(i)
		points[i] = Point{Key: d.ISO(), Label: d.Weekday().String()[:3]}
	}
	for _, e := range expenses {
		d, ok := e.ParsedDate()
		if !ok || d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		points[int(d.Sub(start.Time).Hours()/24)].Total += e.Amount
	}
	return points
}

// MonthlySeries returns one point per YYYY-MM present in the data, oldest first.
func MonthlySeries(expenses []core.Expense) []Point {
	totals := make(map[string]float64)
	labels := make(map[string]string)
	for _, e := range expenses {
		d, ok := e.ParsedDate()
		if !ok {
			continue
		}
		key := d.MonthKey()
		totals[key] += e.Amount
		labels[key] = d.Format("Jan 2006")
	}
	return sortedPoints(totals, labels)
}

func sortedPoints(totals map[string]float64, labels map[string]string) []Point {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		points = append(points, Point{Key: k, Label: labels[k], Total: totals[k]})
	}
	return points
}
