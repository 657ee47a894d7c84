// Package core provides money parsing and handling utilities.
//
// This file contains the lenient amount parser used when normalizing stored
// records and the dollar formatter used at presentation time.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads the longest leading decimal number from s.
//
// Trailing garbage is ignored, so "12.50 USD" parses as 12.5. A string with
// no leading number returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount(" 7abc")    -> 7, nil
//	ParseAmount("1e2")      -> 100, nil
//	ParseAmount("abc")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := amountPrefix.FindString(s)
	if m == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatDollars renders an amount as $X.XX for display purposes.
// Rounding to cents only ever happens here, never during aggregation.
func FormatDollars(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
