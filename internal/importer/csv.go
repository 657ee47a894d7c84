// Package importer turns bank statement CSV exports into expenses. Every
// row goes through the expense service, so the impulse policy applies to
// imported rows exactly as it does to manual entries.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
)

// Unmapped marks a column that is not present in the statement.
const Unmapped = -1

// ColumnMapping says which zero-based CSV column holds which field.
type ColumnMapping struct {
	Date     int
	Amount   int
	Category int
	Label    int
	Impulse  int

	// SkipHeader drops the first row.
	SkipHeader bool
	// Year completes statement dates written as "MON D".
	Year int
}

// DefaultMapping maps date, label and amount in the first three columns.
func DefaultMapping(year int) ColumnMapping {
	return ColumnMapping{
		Date:     0,
		Label:    1,
		Amount:   2,
		Category: Unmapped,
		Impulse:  Unmapped,
		Year:     year,
	}
}

func (m ColumnMapping) Validate() error {
	if m.Date < 0 {
		return errors.New("date column is required")
	}
	if m.Amount < 0 {
		return errors.New("amount column is required")
	}
	if m.Year < 1 {
		return errors.New("year must be positive")
	}
	return nil
}

// RowError describes a row that could not be imported. Row is the 1-based
// CSV record number, header included; blank lines are not counted.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

type Result struct {
	Imported int
	Declined int
	Errors   []RowError
}

// Adder is the part of the expense service the importer needs.
type Adder interface {
	AddExpense(ctx context.Context, e core.Expense, c services.Confirmer) (services.AddResult, error)
}

type Importer struct {
	adder  Adder
	logger *log.Logger
}

func New(adder Adder, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Importer{adder: adder, logger: logger.WithComponent(log.ComponentImporter)}
}

// Import reads every CSV row from r and adds it through the service. Bad
// rows are collected as RowErrors; a failing service call aborts the run.
func (im *Importer) Import(ctx context.Context, r io.Reader, m ColumnMapping, c services.Confirmer) (Result, error) {
	var res Result
	if err := m.Validate(); err != nil {
		return res, fmt.Errorf("column mapping: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row, Err: err})
			continue
		}
		if row == 1 && m.SkipHeader {
			continue
		}
		if isBlank(record) {
			continue
		}

		e, err := m.expense(record)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row, Err: err})
			continue
		}

		added, err := im.adder.AddExpense(ctx, e, c)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", row, err)
		}
		if added.Committed {
			res.Imported++
		} else {
			res.Declined++
		}
	}

	im.logger.InfoContext(ctx, "Statement imported",
		log.FieldOperation, log.OpImport,
		"imported", res.Imported,
		"declined", res.Declined,
		"errors", len(res.Errors))
	return res, nil
}

func (m ColumnMapping) expense(record []string) (core.Expense, error) {
	dateCell, ok := cell(record, m.Date)
	if !ok {
		return core.Expense{}, fmt.Errorf("missing date column %d", m.Date)
	}
	amountCell, ok := cell(record, m.Amount)
	if !ok {
		return core.Expense{}, fmt.Errorf("missing amount column %d", m.Amount)
	}

	date, err := statementDate(dateCell, m.Year)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseAmount(strings.TrimPrefix(strings.TrimSpace(amountCell), "$"))
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %q", err, amountCell)
	}
	if amount < 0 {
		return core.Expense{}, fmt.Errorf("%w: %q is negative", core.ErrInvalidAmount, amountCell)
	}

	raw := core.RawRecord{"amount": amount, "date": date, "impulse": core.ImpulseNo}
	if v, ok := cell(record, m.Category); ok {
		raw["category"] = v
	}
	if v, ok := cell(record, m.Label); ok {
		raw["label"] = strings.TrimSpace(v)
	}
	if v, ok := cell(record, m.Impulse); ok && strings.TrimSpace(v) != "" {
		raw["impulse"] = v
	}
	return core.Normalize(raw), nil
}

// statementDate accepts DD/MM/YYYY as is and converts "MON D".
func statementDate(s string, year int) (string, error) {
	if d, err := core.ParseDate(s); err == nil {
		return core.FormatDate(d), nil
	}
	return ConvertStatementDate(s, year)
}

func cell(record []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(record) {
		return "", false
	}
	return record[idx], true
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
