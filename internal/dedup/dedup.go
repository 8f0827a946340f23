// Package dedup flags imported statement rows that look like records
// already stored as expenses or incomes.
package dedup

import (
	"strings"
	"time"

	"facturas/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultWindowDays is the date tolerance used by the import service.
const DefaultWindowDays = 3

// UnknownDays marks a pair whose dates could not both be parsed.
const UnknownDays = -1

var (
	tolerance = decimal.New(1, -2)

	dateLayouts = []string{
		core.DateLayout,
		"02/01/2006",
		"02-01-2006",
		"2/1/2006",
	}
)

// Record is a stored expense or income reduced to the compared fields.
type Record struct {
	Kind        string // "expense" or "income"
	ID          int64
	Date        string
	Description string
	Amount      decimal.Decimal
}

// Duplicate pairs a batch row with the stored record it resembles.
type Duplicate struct {
	Row       core.StatementRow
	Existing  Record
	DaysApart int
}

// Detector compares every batch row with every stored record.
type Detector struct {
	WindowDays int
}

// New returns a Detector using DefaultWindowDays.
func New() Detector {
	return Detector{WindowDays: DefaultWindowDays}
}

// Find returns one Duplicate per matching (row, record) pair, in batch order.
//
// A pair matches when absolute amounts differ by less than a cent, the
// descriptions are similar (see SimilarDescription), and the dates are at most
// WindowDays apart. Pairs with an unparseable date are reported with
// DaysApart set to UnknownDays rather than dropped.
func (d Detector) Find(batch []core.StatementRow, existing []Record) []Duplicate {
	window := d.WindowDays
	if window < 0 {
		window = 0
	}
	var out []Duplicate
	for _, row := range batch {
		rowDesc := normalize(row.Description)
		if rowDesc == "" {
			continue
		}
		rowDate, rowOK := ParseDate(row.Date)
		for _, rec := range existing {
			if !SameAmount(row.Amount, rec.Amount) {
				continue
			}
			if !SimilarDescription(rowDesc, rec.Description) {
				continue
			}
			recDate, recOK := ParseDate(rec.Date)
			if !rowOK || !recOK {
				out = append(out, Duplicate{Row: row, Existing: rec, DaysApart: UnknownDays})
				continue
			}
			days := daysBetween(rowDate, recDate)
			if days <= window {
				out = append(out, Duplicate{Row: row, Existing: rec, DaysApart: days})
			}
		}
	}
	return out
}

// SimilarDescription reports whether one description contains the other,
// ignoring case. Containment is checked on the raw text and on the word sets,
// so "FACTURA CLIENTE A" and "cliente a factura" are similar.
func SimilarDescription(a, b string) bool {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	wa, wb := words(a), words(b)
	return subset(wa, wb) || subset(wb, wa)
}

func words(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func subset(small, big map[string]struct{}) bool {
	for w := range small {
		if _, ok := big[w]; !ok {
			return false
		}
	}
	return true
}

// SameAmount compares absolute values with a one cent tolerance.
func SameAmount(a, b decimal.Decimal) bool {
	return a.Abs().Sub(b.Abs()).Abs().LessThan(tolerance)
}

// ParseDate accepts ISO dates and the day-first layouts found in bank exports.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func daysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
