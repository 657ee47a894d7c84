package memory

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"tally/internal/core"
)

// Store keeps the collection in process memory.
type Store struct {
	mu    sync.Mutex
	items []core.RawRecord
	saves int
}

func New(seed ...core.Expense) *Store {
	s := &Store{}
	s.items = toRecords(seed)
	return s
}

// NewWithRecords seeds the store with raw, possibly malformed records.
func NewWithRecords(records []core.RawRecord) *Store {
	return &Store{items: cloneRecords(records)}
}

// NewFromFile seeds the store from a JSON collection file when present.
// Missing or malformed files leave the store empty.
func NewFromFile(path string) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}
	recs, err := core.DecodeRecords(data)
	if err != nil {
		return New()
	}
	return NewWithRecords(recs)
}

// Load returns a copy of the stored records.
func (s *Store) Load(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.items), nil
}

// Save replaces the stored collection.
func (s *Store) Save(_ context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = toRecords(expenses)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// ReadCategoryLines reads one category id per line, skipping blanks and
// # comments, deduplicated in input order.
func ReadCategoryLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = core.NormalizeCategory(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toRecords(expenses []core.Expense) []core.RawRecord {
	out := make([]core.RawRecord, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.Record())
	}
	return out
}

func cloneRecords(in []core.RawRecord) []core.RawRecord {
	out := make([]core.RawRecord, 0, len(in))
	for _, r := range in {
		c := make(core.RawRecord, len(r))
		for k, v := range r {
			c[k] = v
		}
		out = append(out, c)
	}
	return out
}
