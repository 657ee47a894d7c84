package http

import (
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
)

// parseRefDate reads the reference day from ?date=DD/MM/YYYY, defaulting
// to today.
func parseRefDate(r *http.Request, now time.Time) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(v)
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(stripControl(s))
}

// sanitizeLabel drops control characters but keeps surrounding spaces.
func sanitizeLabel(s string) string {
	return stripControl(s)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
