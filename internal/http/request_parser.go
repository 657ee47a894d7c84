package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tally/internal/core"
)

// maxBodyBytes bounds request bodies; a full collection upload fits easily.
const maxBodyBytes = 4 << 20

// RequestBodyParser reads a JSON object or form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// TooLarge reports whether the body was rejected for exceeding maxBodyBytes.
func (p *RequestBodyParser) TooLarge() bool {
	var maxErr *http.MaxBytesError
	return errors.As(p.err, &maxErr)
}

// Raw returns the decoded JSON value for key, or nil for form bodies.
func (p *RequestBodyParser) Raw(key string) any {
	if p.jsonData == nil {
		return nil
	}
	return p.jsonData[key]
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		p.err = json.Unmarshal([]byte(trimmed), &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized, trimmed field value.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetRaw returns a field without sanitizing, as labels keep their spacing.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// expenseRequest is the validated add-expense form.
type expenseRequest struct {
	Expense core.Expense
	Confirm bool
}

var (
	errMissingDate    = errors.New("date is required")
	errNegativeAmount = errors.New("amount must not be negative")
)

// parseExpenseRequest validates the form the way the add-expense page does:
// the date must be a real DD/MM/YYYY day and the amount a non-negative number.
func parseExpenseRequest(p *RequestBodyParser) (expenseRequest, error) {
	date := p.Get("date")
	if date == "" {
		return expenseRequest{}, errMissingDate
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return expenseRequest{}, err
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return expenseRequest{}, fmt.Errorf("amount: %w", err)
	}
	if amount < 0 {
		return expenseRequest{}, errNegativeAmount
	}

	// JSON booleans go through the normalizer so true/false map to yes/no.
	impulse := p.Get("impulse")
	if raw, ok := p.Raw("impulse").(bool); ok {
		impulse = core.NormalizeImpulse(raw)
	}
	if impulse == "" {
		impulse = core.ImpulseNo
	}
	confirm, _ := strconv.ParseBool(p.Get("confirm"))

	return expenseRequest{
		Expense: core.Expense{
			Amount:   amount,
			Category: p.Get("category"),
			Impulse:  impulse,
			Date:     core.FormatDate(d),
			Label:    sanitizeLabel(p.GetRaw("label")),
		},
		Confirm: confirm,
	}, nil
}
