package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the textual form dates are stored in.
const DateLayout = "02/01/2006"

var datePattern = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])/(0[1-9]|1[0-2])/(\d{4})$`)

// Date is a calendar day. The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a DD/MM/YYYY string. Impossible days such as 31/02 are
// rejected instead of rolling over into the next month.
func ParseDate(text string) (Date, error) {
	text = strings.TrimSpace(text)
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return Date{}, fmt.Errorf("%w: %q does not match DD/MM/YYYY", ErrInvalidDate, text)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := NewDate(year, month, day)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return Date{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, text)
	}
	return d, nil
}

// FormatDate renders d as DD/MM/YYYY.
func FormatDate(d Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day(), d.Month(), d.Year())
}

// String implements fmt.Stringer
func (d Date) String() string {
	return FormatDate(d)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO returns the YYYY-MM-DD form, which sorts chronologically.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// MonthKey returns the YYYY-MM bucket key.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b Date) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SameMonth reports whether a and b fall in the same month of the same year.
func SameMonth(a, b Date) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// WeekStart returns the Sunday on or before ref.
func WeekStart(ref Date) Date {
	return ref.AddDays(-int(ref.Weekday()))
}
