package core

import (
	"errors"
	"strings"
)

const (
	ImpulseYes = "yes"
	ImpulseNo  = "no"

	// Uncategorized is the category assigned when none was given.
	Uncategorized = "uncategorized"
)

type (
	// Expense is a normalized spending record. Date is kept in its stored
	// DD/MM/YYYY form; use ParsedDate for computation.
	Expense struct {
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Impulse  string  `json:"impulse"`
		Date     string  `json:"date"`
		Label    string  `json:"label,omitempty"`
	}

	// RawRecord is an untrusted persisted record as decoded from JSON.
	RawRecord = map[string]any
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMalformedCollection = errors.New("malformed expense collection")
)

// ParsedDate returns the calendar date of the expense and whether it is valid.
func (e Expense) ParsedDate() (Date, bool) {
	d, err := ParseDate(e.Date)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// IsImpulse reports whether the expense was flagged as an impulse purchase.
func (e Expense) IsImpulse() bool {
	return strings.EqualFold(e.Impulse, ImpulseYes)
}

// Record converts the expense back into its persisted shape.
func (e Expense) Record() RawRecord {
	r := RawRecord{
		"amount":   e.Amount,
		"category": e.Category,
		"impulse":  e.Impulse,
		"date":     e.Date,
	}
	if e.Label != "" {
		r["label"] = e.Label
	}
	return r
}
