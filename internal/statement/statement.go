// Package statement reads bank statement exports. Every source yields the
// same three columns: date, description and signed amount.
package statement

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"facturas/internal/core"
)

// ErrIncomplete marks a row missing its date, description or amount.
var ErrIncomplete = errors.New("incomplete statement row")

// Row is one undecoded statement line. Line is 1-based and counts the header.
type Row struct {
	Line        int
	Date        string
	Description string
	Amount      string
}

// Reader returns the data rows of a statement, header excluded. Blank lines
// are dropped; incomplete ones are kept so they can be reported.
type Reader interface {
	Rows(ctx context.Context) ([]Row, error)
}

// Decode parses the amount of r. The date stays textual; the importer
// accepts several layouts.
func (r Row) Decode() (core.StatementRow, error) {
	if r.Date == "" || r.Description == "" || r.Amount == "" {
		return core.StatementRow{}, fmt.Errorf("line %d: %w", r.Line, ErrIncomplete)
	}
	amount, err := core.ParseAmount(normalizeAmount(r.Amount))
	if err != nil {
		return core.StatementRow{}, fmt.Errorf("line %d: %w", r.Line, err)
	}
	return core.StatementRow{
		Line:        r.Line,
		Date:        r.Date,
		Description: r.Description,
		Amount:      amount,
	}, nil
}

// fromCells builds a Row from the first three cells, or reports false when
// the line is blank.
func fromCells(line int, cells []string) (Row, bool) {
	r := Row{
		Line:        line,
		Date:        strings.TrimSpace(safeGet(cells, 0)),
		Description: strings.TrimSpace(safeGet(cells, 1)),
		Amount:      strings.TrimSpace(safeGet(cells, 2)),
	}
	if r.Date == "" && r.Description == "" && r.Amount == "" {
		return Row{}, false
	}
	return r, true
}

// dotGrouped matches whole amounts grouped with dots, "1.234" or
// "-12.345.678". Bank exports use the comma for decimals, so a dot followed
// by exactly three digits is a thousands separator.
var dotGrouped = regexp.MustCompile(`^[-+]?\d{1,3}(\.\d{3})+$`)

// normalizeAmount strips currency symbols and spaces and resolves the
// thousands separator of "1.234,56", "1,234.56" and "1.234".
func normalizeAmount(s string) string {
	s = strings.NewReplacer("€", "", "$", "", "£", "", " ", "", "\u00a0", "").Replace(s)
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case dotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
