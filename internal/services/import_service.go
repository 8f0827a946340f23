package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"facturas/internal/amqp"
	"facturas/internal/categorize"
	"facturas/internal/core"
	"facturas/internal/dedup"
	applog "facturas/internal/log"
	"facturas/internal/metrics"
	"facturas/internal/statement"
)

const (
	ImportPaymentMethod = "Bank Transfer"
	ImportNote          = "Imported from bank statement"
)

type RowStatus string

const (
	RowImported RowStatus = "imported"
	RowSkipped  RowStatus = "skipped"
	RowError    RowStatus = "error"
)

type ImportStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	CreateIncome(ctx context.Context, i core.Income) (int64, error)
	ListExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error)
	ListIncomes(ctx context.Context, from, to core.Date) ([]core.Income, error)
}

// ImportOptions tune a statement import. Default ids replace the catch-all
// category or source chosen by the categorizer; zero keeps it.
type ImportOptions struct {
	Source          string
	DefaultCategory int64
	DefaultSource   int64
	SkipDuplicates  bool
}

// RowOutcome reports what happened to one statement line.
type RowOutcome struct {
	Row     int
	Status  RowStatus
	Kind    string // "expense" or "income"
	ID      int64
	Message string
}

// ImportResult summarizes a batch. Duplicates lists every suspected match,
// whether or not the row was skipped for it.
type ImportResult struct {
	BatchID    string
	Outcomes   []RowOutcome
	Duplicates []dedup.Duplicate
	Imported   int
	Expenses   int
	Incomes    int
	Skipped    int
	Failed     int
}

type ImportService struct {
	store     ImportStore
	detector  dedup.Detector
	publisher amqp.Publisher
	stats     Invalidator
	logger    *applog.StructuredLogger
}

func NewImportService(store ImportStore, publisher amqp.Publisher, stats Invalidator) *ImportService {
	return &ImportService{
		store:     store,
		detector:  dedup.New(),
		publisher: orNopPublisher(publisher),
		stats:     orNopInvalidator(stats),
		logger:    componentLogger(applog.ComponentImport),
	}
}

// Import stores every usable row of r as an expense (negative amount) or an
// income (positive amount). A failing row is recorded in its outcome and the
// batch carries on.
func (s *ImportService) Import(ctx context.Context, r statement.Reader, opts ImportOptions) (ImportResult, error) {
	raw, err := r.Rows(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read statement: %w", err)
	}

	res := ImportResult{BatchID: uuid.NewString()}

	type pending struct {
		row  core.StatementRow
		date core.Date
	}
	var batch []pending
	for _, row := range raw {
		decoded, err := row.Decode()
		switch {
		case errors.Is(err, statement.ErrIncomplete):
			res.add(RowOutcome{Row: row.Line, Status: RowSkipped, Message: "missing date, description or amount"})
			continue
		case err != nil:
			res.add(RowOutcome{Row: row.Line, Status: RowError, Message: err.Error()})
			continue
		}
		if decoded.Amount.IsZero() {
			res.add(RowOutcome{Row: row.Line, Status: RowSkipped, Message: "zero amount"})
			continue
		}
		t, ok := dedup.ParseDate(decoded.Date)
		if !ok {
			res.add(RowOutcome{Row: row.Line, Status: RowError, Message: fmt.Sprintf("unrecognized date %q", decoded.Date)})
			continue
		}
		batch = append(batch, pending{row: decoded, date: core.Date{Time: t}})
	}

	if len(batch) > 0 {
		rows := make([]core.StatementRow, len(batch))
		from, to := batch[0].date, batch[0].date
		for i, p := range batch {
			rows[i] = p.row
			if p.date.Before(from.Time) {
				from = p.date
			}
			if p.date.After(to.Time) {
				to = p.date
			}
		}
		window := s.detector.WindowDays
		existing, err := s.existing(ctx,
			core.Date{Time: from.AddDate(0, 0, -window)},
			core.Date{Time: to.AddDate(0, 0, window)})
		if err != nil {
			return ImportResult{}, err
		}
		res.Duplicates = s.detector.Find(rows, existing)
	}

	flagged := map[int]dedup.Duplicate{}
	for _, d := range res.Duplicates {
		if _, ok := flagged[d.Row.Line]; !ok {
			flagged[d.Row.Line] = d
		}
	}

	for _, p := range batch {
		if d, ok := flagged[p.row.Line]; ok && opts.SkipDuplicates {
			res.add(RowOutcome{
				Row:     p.row.Line,
				Status:  RowSkipped,
				Kind:    d.Existing.Kind,
				Message: fmt.Sprintf("possible duplicate of %s %d", d.Existing.Kind, d.Existing.ID),
			})
			continue
		}
		res.add(s.importRow(ctx, p.row, p.date, opts))
	}

	sort.SliceStable(res.Outcomes, func(i, j int) bool { return res.Outcomes[i].Row < res.Outcomes[j].Row })

	if res.Imported > 0 {
		s.stats.Invalidate()
	}
	s.logger.LogImportFinished(ctx, res.BatchID, res.Imported, res.Skipped, res.Failed)
	publish(ctx, s.publisher, amqp.EventImportFinished, res.BatchID, amqp.ImportPayload{
		BatchID:  res.BatchID,
		Source:   opts.Source,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
	})
	return res, nil
}

func (s *ImportService) importRow(ctx context.Context, row core.StatementRow, date core.Date, opts ImportOptions) RowOutcome {
	out := RowOutcome{Row: row.Line}
	if row.Amount.IsNegative() {
		category := categorize.ExpenseCategory(row.Description)
		if category == categorize.OtherExpenseCategory && opts.DefaultCategory > 0 {
			category = opts.DefaultCategory
		}
		out.Kind = "expense"
		out.ID, out.Message = s.save(func() (int64, error) {
			return s.store.CreateExpense(ctx, core.Expense{
				CategoryID:    category,
				Description:   row.Description,
				Amount:        row.Amount.Abs(),
				Date:          date,
				PaymentMethod: ImportPaymentMethod,
				Notes:         ImportNote,
				TaxDeductible: categorize.IsTaxDeductible(row.Description, category),
			})
		})
	} else {
		source := categorize.IncomeSource(row.Description)
		if source == categorize.OtherIncomeSource && opts.DefaultSource > 0 {
			source = opts.DefaultSource
		}
		out.Kind = "income"
		out.ID, out.Message = s.save(func() (int64, error) {
			return s.store.CreateIncome(ctx, core.Income{
				SourceID:    source,
				Description: row.Description,
				Amount:      row.Amount,
				Date:        date,
				Notes:       ImportNote,
			})
		})
	}
	if out.Message != "" {
		out.Status = RowError
	} else {
		out.Status = RowImported
	}
	return out
}

func (s *ImportService) save(create func() (int64, error)) (int64, string) {
	id, err := create()
	if err != nil {
		return 0, err.Error()
	}
	return id, ""
}

func (s *ImportService) existing(ctx context.Context, from, to core.Date) ([]dedup.Record, error) {
	expenses, err := s.store.ListExpenses(ctx, from, to)
	if err != nil {
		return nil, err
	}
	incomes, err := s.store.ListIncomes(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dedup.Record, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		out = append(out, dedup.Record{Kind: "expense", ID: e.ID, Date: e.Date.String(), Description: e.Description, Amount: e.Amount})
	}
	for _, i := range incomes {
		out = append(out, dedup.Record{Kind: "income", ID: i.ID, Date: i.Date.String(), Description: i.Description, Amount: i.Amount})
	}
	return out, nil
}

func (r *ImportResult) add(o RowOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	metrics.ImportRows.WithLabelValues(string(o.Status)).Inc()
	switch o.Status {
	case RowImported:
		r.Imported++
		if o.Kind == "expense" {
			r.Expenses++
		} else {
			r.Incomes++
		}
	case RowSkipped:
		r.Skipped++
	case RowError:
		r.Failed++
	}
}
