// Package categories maintains the catalog of expense categories: a fixed set
// of presets plus categories discovered from the data, each with a stable
// display label and color.
package categories

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"tally/internal/core"
)

// Impulse is the pseudo-category impulse purchases are additionally listed under.
const Impulse = "impulse"

// Category is a registry entry.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var presets = []Category{
	{ID: "housing", Label: "Housing", Color: "#60a5fa"},
	{ID: "utilities", Label: "Utilities", Color: "#facc15"},
	{ID: "transportation", Label: "Transportation", Color: "#34d399"},
	{ID: "food", Label: "Food", Color: "#fb7185"},
	{ID: "entertainment", Label: "Entertainment", Color: "#a855f7"},
	{ID: "health", Label: "Health", Color: "#22d3ee"},
	{ID: "savings", Label: "Savings", Color: "#f97316"},
	{ID: "miscellaneous", Label: "Miscellaneous", Color: "#c084fc"},
	{ID: Impulse, Label: "Impulse purchases", Color: "#f87171"},
}

// Palette is cycled, in discovery order, for categories without a preset.
var Palette = []string{"#4ade80", "#2dd4bf", "#38bdf8", "#f59e0b", "#f472b6", "#f97316"}

var wordSeparators = regexp.MustCompile(`[\s_-]+`)

// Registry maps category ids to Category entries. Unknown ids are created on
// first lookup and keep their color for the lifetime of the registry.
type Registry struct {
	mu           sync.Mutex
	byID         map[string]Category
	discovered   []string
	paletteIndex int
}

// New returns a registry holding only the presets.
func New() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset forgets every discovered category and restarts the palette.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]Category, len(presets))
	for _, p := range presets {
		r.byID[p.ID] = p
	}
	r.discovered = nil
	r.paletteIndex = 0
}

// Resolve returns the entry for id, creating it if needed.
func (r *Registry) Resolve(id string) Category {
	id = core.NormalizeCategory(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return c
	}
	c := Category{
		ID:    id,
		Label: Label(id),
		Color: Palette[r.paletteIndex%len(Palette)],
	}
	r.paletteIndex++
	r.byID[id] = c
	r.discovered = append(r.discovered, id)
	return c
}

// Discover resolves the category of every expense, in order.
func (r *Registry) Discover(expenses []core.Expense) {
	for _, e := range expenses {
		r.Resolve(e.Category)
	}
}

// Presets returns the fixed catalog in display order.
func (r *Registry) Presets() []Category {
	return append([]Category(nil), presets...)
}

// All returns the presets followed by discovered categories in first-seen order.
func (r *Registry) All() []Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Category, 0, len(presets)+len(r.discovered))
	out = append(out, presets...)
	for _, id := range r.discovered {
		out = append(out, r.byID[id])
	}
	return out
}

// IsPreset reports whether id names a preset category.
func IsPreset(id string) bool {
	for _, p := range presets {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Label renders a display label for a category id: words split on
// whitespace, hyphens and underscores, each capitalised.
func Label(id string) string {
	if id == core.Uncategorized {
		return "Uncategorized"
	}
	parts := wordSeparators.Split(id, -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(p)
		words = append(words, string(unicode.ToUpper(first))+p[size:])
	}
	return strings.Join(words, " ")
}
