package analytics

import (
	"sort"

	"tally/internal/categories"
	"tally/internal/core"
)

// Entry is an expense as shown in a listing.
type Entry struct {
	core.Expense
	CategoryLabel string `json:"category_label"`
	// SourceLabel is set on the copy of an impulse purchase listed under the
	// impulse pseudo-category and names the category it was recorded in.
	SourceLabel string `json:"source_label,omitempty"`
	DisplayDate string `json:"display_date"`
}

// CategoryGroup is one category with its expenses, newest first.
type CategoryGroup struct {
	categories.Category
	Entries []Entry `json:"entries"`
	Total   float64 `json:"total"`
}

// Listing is the flat overview of every expense.
type Listing struct {
	Entries []Entry `json:"entries"`
	Total   float64 `json:"total"`
}

// GroupByCategory builds the category-grouped listing. Every preset appears,
// in catalog order, even when empty; discovered categories follow in the
// order they were first seen. Impulse purchases are listed twice: under their
// own category and under the impulse pseudo-category.
func GroupByCategory(expenses []core.Expense, reg *categories.Registry) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	ensure := func(id string) *CategoryGroup {
		c := reg.Resolve(id)
		i, ok := index[c.ID]
		if !ok {
			i = len(groups)
			index[c.ID] = i
			groups = append(groups, CategoryGroup{Category: c, Entries: []Entry{}})
		}
		return &groups[i]
	}

	for _, p := range reg.Presets() {
		ensure(p.ID)
	}
	for _, e := range expenses {
		g := ensure(e.Category)
		g.Entries = append(g.Entries, newEntry(e, g.Label, ""))
		g.Total += e.Amount
		sourceLabel := g.Label

		if e.IsImpulse() {
			ig := ensure(categories.Impulse)
			ig.Entries = append(ig.Entries, newEntry(e, ig.Label, sourceLabel))
			ig.Total += e.Amount
		}
	}
	for i := range groups {
		sortNewestFirst(groups[i].Entries)
	}
	return groups
}

// Overview lists every expense newest first with the grand total.
// Expenses with an invalid date are listed last.
func Overview(expenses []core.Expense, reg *categories.Registry) Listing {
	l := Listing{Entries: make([]Entry, 0, len(expenses))}
	for _, e := range expenses {
		l.Entries = append(l.Entries, newEntry(e, reg.Resolve(e.Category).Label, ""))
		l.Total += e.Amount
	}
	sortNewestFirst(l.Entries)
	return l
}

func newEntry(e core.Expense, label, source string) Entry {
	display := e.Date
	if d, ok := e.ParsedDate(); ok {
		display = core.FormatDate(d)
	} else if display == "" {
		display = "Date not provided"
	}
	return Entry{Expense: e, CategoryLabel: label, SourceLabel: source, DisplayDate: display}
}

// sortNewestFirst orders entries by date descending. Invalid dates sink to
// the end and keep their relative order.
func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, okI := entries[i].ParsedDate()
		dj, okJ := entries[j].ParsedDate()
		switch {
		case okI && okJ:
			return di.After(dj.Time)
		case okI:
			return true
		default:
			return false
		}
	})
}
