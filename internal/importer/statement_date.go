package importer

import (
	"fmt"
	"strconv"
	"strings"

	"tally/internal/core"
)

var months = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// ConvertStatementDate turns a bank statement date such as "JAN 5" into
// DD/MM/YYYY for the given year. Month names are case-insensitive.
func ConvertStatementDate(s string, year int) (string, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q is not MON D", core.ErrInvalidDate, s)
	}
	month, ok := months[strings.ToUpper(parts[0])]
	if !ok {
		return "", fmt.Errorf("%w: unknown month %q", core.ErrInvalidDate, parts[0])
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad day %q", core.ErrInvalidDate, parts[1])
	}

	text := fmt.Sprintf("%02d/%02d/%04d", day, month, year)
	if _, err := core.ParseDate(text); err != nil {
		return "", err
	}
	return text, nil
}
