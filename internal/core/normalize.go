package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Normalize converts an untrusted record into an Expense. It never fails:
// every field that cannot be read falls back to a safe default. Dates are
// not validated here so that bad rows still count toward category totals.
func Normalize(raw RawRecord) Expense {
	return Expense{
		Amount:   normalizeAmount(raw["amount"]),
		Category: NormalizeCategory(raw["category"]),
		Impulse:  NormalizeImpulse(raw["impulse"]),
		Date:     stringOr(raw["date"], true),
		Label:    stringOr(raw["label"], false),
	}
}

// NormalizeAll normalizes every record in order.
func NormalizeAll(records []RawRecord) []Expense {
	out := make([]Expense, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r))
	}
	return out
}

// NormalizeCategory trims and lowercases a category id. Empty and non-string
// values become Uncategorized.
func NormalizeCategory(v any) string {
	s, ok := v.(string)
	if !ok {
		return Uncategorized
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Uncategorized
	}
	return s
}

// NormalizeImpulse maps the impulse flag onto its stored form. Strings are
// lowercased, booleans become "yes"/"no", anything else is "".
func NormalizeImpulse(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case bool:
		if t {
			return ImpulseYes
		}
		return ImpulseNo
	default:
		return ""
	}
}

func normalizeAmount(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := ParseAmount(t.String())
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := ParseAmount(t)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func stringOr(v any, trim bool) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if trim {
		return strings.TrimSpace(s)
	}
	return s
}

// DecodeRecords decodes a persisted collection. Entries that are not JSON
// objects are dropped. A payload that is not an array yields
// ErrMalformedCollection; empty input is an empty collection.
func DecodeRecords(data []byte) ([]RawRecord, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
	}
	out := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// EncodeExpenses serializes a collection in the persisted record shape.
func EncodeExpenses(expenses []Expense) ([]byte, error) {
	if expenses == nil {
		expenses = []Expense{}
	}
	return json.Marshal(expenses)
}
