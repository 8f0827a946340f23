// Package numbering formats invoice and estimate document numbers.
//
// Invoice numbers look like 2504-AIO-1: the month before generation, the
// client's initials and a per-client sequence. Estimate numbers look like
// 2024-07-P001: the issue month and a global three-digit sequence.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"facturas/internal/core"
)

// InvoiceCounter counts stored invoice numbers of clientID starting with
// prefix. Implementations run inside the same transaction as the insert.
type InvoiceCounter interface {
	CountInvoiceNumbers(ctx context.Context, clientID int64, prefix string) (int64, error)
	InvoiceNumberExists(ctx context.Context, clientID int64, number string) (bool, error)
}

// EstimateCounter counts stored estimate numbers starting with prefix.
type EstimateCounter interface {
	CountEstimateNumbers(ctx context.Context, prefix string) (int64, error)
	EstimateNumberExists(ctx context.Context, number string) (bool, error)
}

// maxSequenceSteps bounds the walk past taken numbers. A scope only has
// holes where documents were deleted, so the walk is short.
const maxSequenceSteps = 10000

// InvoicePeriod returns the YYMM code of the month before now.
// January maps to December of the previous year.
func InvoicePeriod(now time.Time) string {
	y, m := now.Year(), now.Month()
	if m == time.January {
		y, m = y-1, time.December
	} else {
		m--
	}
	return fmt.Sprintf("%02d%02d", y%100, int(m))
}

// ClientPrefix returns the upper-cased first letters of up to the first three
// whitespace separated words of name.
func ClientPrefix(name string) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// InvoicePattern is the "YYMM-PFX-" prefix shared by one client's invoices
// in a period.
func InvoicePattern(period, prefix string) string {
	return period + "-" + prefix + "-"
}

// FormatInvoiceNumber renders YYMM-PFX-N.
func FormatInvoiceNumber(period, prefix string, seq int64) string {
	return fmt.Sprintf("%s%d", InvoicePattern(period, prefix), seq)
}

// EstimatePeriod returns the YYYY-MM code of the issue date.
func EstimatePeriod(issue time.Time) string {
	return issue.Format("2006-01")
}

// EstimatePattern is the "YYYY-MM-P" prefix shared by a month's estimates.
func EstimatePattern(period string) string {
	return period + "-P"
}

// FormatEstimateNumber renders YYYY-MM-PNNN.
func FormatEstimateNumber(period string, seq int64) string {
	return fmt.Sprintf("%s%03d", EstimatePattern(period), seq)
}

// Generator computes the next number from the stored count. After deletes
// the count can point at a number still in use; the sequence then moves up
// until it reaches a free one.
type Generator struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

func (g Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// NextInvoiceNumber returns the next number for client, billing the month
// before the current one.
func (g Generator) NextInvoiceNumber(ctx context.Context, counter InvoiceCounter, client core.Client) (string, error) {
	prefix := ClientPrefix(client.Name)
	if prefix == "" {
		return "", core.InvalidInput("client %d has an empty name", client.ID)
	}
	period := InvoicePeriod(g.now())
	n, err := counter.CountInvoiceNumbers(ctx, client.ID, InvoicePattern(period, prefix))
	if err != nil {
		return "", fmt.Errorf("count invoice numbers: %w", err)
	}
	return firstFree(n+1, func(seq int64) string {
		return FormatInvoiceNumber(period, prefix, seq)
	}, func(number string) (bool, error) {
		return counter.InvoiceNumberExists(ctx, client.ID, number)
	})
}

// NextEstimateNumber returns the next number for an estimate issued on issue.
func (g Generator) NextEstimateNumber(ctx context.Context, counter EstimateCounter, issue core.Date) (string, error) {
	if err := issue.Validate(); err != nil {
		return "", err
	}
	period := EstimatePeriod(issue.Time)
	n, err := counter.CountEstimateNumbers(ctx, EstimatePattern(period))
	if err != nil {
		return "", fmt.Errorf("count estimate numbers: %w", err)
	}
	return firstFree(n+1, func(seq int64) string {
		return FormatEstimateNumber(period, seq)
	}, func(number string) (bool, error) {
		return counter.EstimateNumberExists(ctx, number)
	})
}

// firstFree formats seq, seq+1, ... and returns the first number that is
// not taken.
func firstFree(seq int64, format func(int64) string, taken func(string) (bool, error)) (string, error) {
	for i := 0; i < maxSequenceSteps; i, seq = i+1, seq+1 {
		number := format(seq)
		exists, err := taken(number)
		if err != nil {
			return "", fmt.Errorf("check number %s: %w", number, err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free number after %s: %w", format(seq-1), core.ErrComputation)
}
