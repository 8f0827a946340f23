package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"facturas/internal/core"
	"facturas/internal/stats"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateNumber is returned when a document number collides with the
// unique index. The caller may generate a new number and retry.
var ErrDuplicateNumber = errors.New("document number already exists")

// DocumentCounter counts and looks up stored document numbers within the
// insert transaction.
type DocumentCounter interface {
	CountInvoiceNumbers(ctx context.Context, clientID int64, prefix string) (int64, error)
	CountEstimateNumbers(ctx context.Context, prefix string) (int64, error)
	InvoiceNumberExists(ctx context.Context, clientID int64, number string) (bool, error)
	EstimateNumberExists(ctx context.Context, number string) (bool, error)
}

// NumberFunc picks the number of a document about to be inserted.
type NumberFunc func(ctx context.Context, counter DocumentCounter) (string, error)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN builds a modernc connection string. Transactions start with BEGIN
// IMMEDIATE so numbering reads take the write lock before counting.
func DSN(dbPath string) string {
	return "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Clients

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.queries.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]core.Client, len(rows))
	for i, c := range rows {
		out[i] = toCoreClient(c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (core.Client, error) {
	c, err := r.queries.GetClient(ctx, id)
	if err != nil {
		return core.Client{}, notFound(err, "client %d", id)
	}
	return toCoreClient(c), nil
}

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	id, err := r.queries.CreateClient(ctx, clientParams(c))
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	slog.InfoContext(ctx, "Client saved", "id", id, "name", c.Name)
	return id, nil
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	n, err := r.queries.UpdateClient(ctx, UpdateClientParams{CreateClientParams: clientParams(c), ID: c.ID})
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %d: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteClient removes a client that no invoice or estimate refers to.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(q *Queries) error {
		invoices, err := q.CountInvoicesByClient(ctx, id)
		if err != nil {
			return fmt.Errorf("count client invoices: %w", err)
		}
		estimates, err := q.CountEstimatesByClient(ctx, id)
		if err != nil {
			return fmt.Errorf("count client estimates: %w", err)
		}
		if invoices+estimates > 0 {
			return fmt.Errorf("client %d has %d invoices and %d estimates: %w",
				id, invoices, estimates, core.ErrReferentialConflict)
		}
		n, err := q.DeleteClient(ctx, id)
		if err != nil {
			return mapConstraint(err, "delete client", core.ErrReferentialConflict)
		}
		if n == 0 {
			return fmt.Errorf("client %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// Services

func (r *SQLiteRepository) ListServices(ctx context.Context) ([]core.Service, error) {
	rows, err := r.queries.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]core.Service, len(rows))
	for i, s := range rows {
		out[i] = toCoreService(s)
	}
	return out, nil
}

func (r *SQLiteRepository) GetService(ctx context.Context, id int64) (core.Service, error) {
	s, err := r.queries.GetService(ctx, id)
	if err != nil {
		return core.Service{}, notFound(err, "service %d", id)
	}
	return toCoreService(s), nil
}

func (r *SQLiteRepository) CreateService(ctx context.Context, s core.Service) (int64, error) {
	params, err := serviceParams(s)
	if err != nil {
		return 0, err
	}
	id, err := r.queries.CreateService(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("create service: %w", err)
	}
	slog.InfoContext(ctx, "Service saved", "id", id, "description", s.Description)
	return id, nil
}

func (r *SQLiteRepository) UpdateService(ctx context.Context, s core.Service) error {
	params, err := serviceParams(s)
	if err != nil {
		return err
	}
	n, err := r.queries.UpdateService(ctx, UpdateServiceParams{CreateServiceParams: params, ID: s.ID})
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("service %d: %w", s.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteService(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(q *Queries) error {
		invoices, err := q.CountInvoicesByService(ctx, id)
		if err != nil {
			return fmt.Errorf("count service invoices: %w", err)
		}
		estimates, err := q.CountEstimatesByService(ctx, id)
		if err != nil {
			return fmt.Errorf("count service estimates: %w", err)
		}
		if invoices+estimates > 0 {
			return fmt.Errorf("service %d has %d invoices and %d estimates: %w",
				id, invoices, estimates, core.ErrReferentialConflict)
		}
		n, err := q.DeleteService(ctx, id)
		if err != nil {
			return mapConstraint(err, "delete service", core.ErrReferentialConflict)
		}
		if n == 0 {
			return fmt.Errorf("service %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// Invoices

// InsertInvoice numbers and stores inv in one immediate transaction. The
// returned invoice carries the assigned ID and Number.
func (r *SQLiteRepository) InsertInvoice(ctx context.Context, inv core.Invoice, number NumberFunc) (core.Invoice, error) {
	err := r.inTx(ctx, func(q *Queries) error {
		num, err := number(ctx, txCounter{q})
		if err != nil {
			return err
		}
		params, err := invoiceParams(num, inv)
		if err != nil {
			return err
		}
		id, err := q.CreateInvoice(ctx, params)
		if err != nil {
			return mapConstraint(err, "create invoice", core.ErrNotFound)
		}
		inv.ID, inv.Number = id, num
		return nil
	})
	if err != nil {
		return core.Invoice{}, err
	}
	slog.InfoContext(ctx, "Invoice saved",
		"id", inv.ID,
		"number", inv.Number,
		"client_id", inv.ClientID,
		"total", inv.Totals.Total.StringFixed(2))
	return inv, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (core.Invoice, error) {
	row, err := r.queries.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, notFound(err, "invoice %d", id)
	}
	return toCoreInvoice(row)
}

func (r *SQLiteRepository) ListInvoicesByYear(ctx context.Context, year int) ([]core.Invoice, error) {
	rows, err := r.queries.ListInvoicesByYear(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("list invoices for %d: %w", year, err)
	}
	return toCoreInvoices(rows)
}

func (r *SQLiteRepository) ListRecentInvoices(ctx context.Context, limit int) ([]core.Invoice, error) {
	rows, err := r.queries.ListRecentInvoices(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent invoices: %w", err)
	}
	return toCoreInvoices(rows)
}

func (r *SQLiteRepository) InvoiceYears(ctx context.Context) ([]int, error) {
	years, err := r.queries.ListInvoiceYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoice years: %w", err)
	}
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = int(y)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Invoice deleted", "id", id)
	return nil
}

// DuplicateNumbers lists document numbers stored more than once within their
// uniqueness scope.
func (r *SQLiteRepository) DuplicateNumbers(ctx context.Context) ([]DuplicateNumber, error) {
	rows, err := r.queries.ListDuplicateDocumentNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list duplicate numbers: %w", err)
	}
	return rows, nil
}

// Estimates

func (r *SQLiteRepository) InsertEstimate(ctx context.Context, est core.Estimate, number NumberFunc) (core.Estimate, error) {
	err := r.inTx(ctx, func(q *Queries) error {
		num, err := number(ctx, txCounter{q})
		if err != nil {
			return err
		}
		params, err := estimateParams(num, est)
		if err != nil {
			return err
		}
		id, err := q.CreateEstimate(ctx, params)
		if err != nil {
			return mapConstraint(err, "create estimate", core.ErrNotFound)
		}
		est.ID, est.Number = id, num
		return nil
	})
	if err != nil {
		return core.Estimate{}, err
	}
	slog.InfoContext(ctx, "Estimate saved", "id", est.ID, "number", est.Number, "client_id", est.ClientID)
	return est, nil
}

func (r *SQLiteRepository) GetEstimate(ctx context.Context, number string) (core.Estimate, error) {
	row, err := r.queries.GetEstimateByNumber(ctx, number)
	if err != nil {
		return core.Estimate{}, notFound(err, "estimate %s", number)
	}
	return toCoreEstimate(row)
}

func (r *SQLiteRepository) ListEstimates(ctx context.Context) ([]core.Estimate, error) {
	rows, err := r.queries.ListEstimates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	out := make([]core.Estimate, 0, len(rows))
	for _, row := range rows {
		e, err := toCoreEstimate(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateEstimateStatus(ctx context.Context, number string, status core.EstimateStatus) error {
	n, err := r.queries.UpdateEstimateStatus(ctx, number, string(status))
	if err != nil {
		return mapConstraint(err, "update estimate status", core.ErrNotFound)
	}
	if n == 0 {
		return fmt.Errorf("estimate %s: %w", number, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteEstimate(ctx context.Context, number string) error {
	n, err := r.queries.DeleteEstimateByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("estimate %s: %w", number, core.ErrNotFound)
	}
	return nil
}

// Expenses and incomes

func (r *SQLiteRepository) ExpenseCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListExpenseCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	return toCoreCategories(rows), nil
}

func (r *SQLiteRepository) IncomeSources(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListIncomeSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	return toCoreCategories(rows), nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	cents, err := core.ToCents(e.Amount)
	if err != nil {
		return 0, err
	}
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		AmountCents:   cents,
		Date:          e.Date.String(),
		PaymentMethod: e.PaymentMethod,
		Notes:         e.Notes,
		TaxDeductible: e.TaxDeductible,
	})
	if err != nil {
		return 0, mapConstraint(err, "create expense", core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"description", e.Description,
		"amount_cents", cents,
		"category_id", e.CategoryID)
	return id, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, i core.Income) (int64, error) {
	cents, err := core.ToCents(i.Amount)
	if err != nil {
		return 0, err
	}
	id, err := r.queries.CreateIncome(ctx, CreateIncomeParams{
		SourceID:    i.SourceID,
		Description: i.Description,
		AmountCents: cents,
		Date:        i.Date.String(),
		Notes:       i.Notes,
	})
	if err != nil {
		return 0, mapConstraint(err, "create income", core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Income saved",
		"id", id,
		"description", i.Description,
		"amount_cents", cents,
		"source_id", i.SourceID)
	return id, nil
}

// ListExpenses returns expenses dated within [from, to]. Zero dates leave the
// range open on that side.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	var (
		rows []Expense
		err  error
	)
	if from.IsZero() && to.IsZero() {
		rows, err = r.queries.ListAllExpenses(ctx)
	} else {
		lo, hi := dateRange(from, to)
		rows, err = r.queries.ListExpensesBetween(ctx, lo, hi)
	}
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return toCoreExpenses(rows)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, from, to core.Date) ([]core.Income, error) {
	var (
		rows []Income
		err  error
	)
	if from.IsZero() && to.IsZero() {
		rows, err = r.queries.ListAllIncomes(ctx)
	} else {
		lo, hi := dateRange(from, to)
		rows, err = r.queries.ListIncomesBetween(ctx, lo, hi)
	}
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("income %d: %w", row.ID, err)
		}
		out = append(out, core.Income{
			ID:          row.ID,
			SourceID:    row.SourceID,
			Description: row.Description,
			Amount:      core.FromCents(row.AmountCents),
			Date:        d,
			Notes:       row.Notes,
			SourceName:  row.SourceName,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) TaxDeductibleExpenses(ctx context.Context, year int) ([]core.Expense, error) {
	rows, err := r.queries.ListTaxDeductibleExpenses(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("list tax deductible expenses: %w", err)
	}
	return toCoreExpenses(rows)
}

func (r *SQLiteRepository) ExpensesByCategory(ctx context.Context, year int) ([]core.CategoryAmount, error) {
	rows, err := r.queries.ExpensesByCategory(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	out := make([]core.CategoryAmount, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryAmount{Name: row.Name, Amount: core.FromCents(row.TotalCents)}
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// YearTotals holds the raw sums behind a financial summary. Invoice
// subtotals are kept per currency so the caller can normalize them.
type YearTotals struct {
	Expenses   decimal.Decimal
	Deductible decimal.Decimal
	Incomes    decimal.Decimal
	Invoices   []CurrencyAmount
}

type CurrencyAmount struct {
	Currency core.Currency
	Amount   decimal.Decimal
}

func (r *SQLiteRepository) YearTotals(ctx context.Context, year int) (YearTotals, error) {
	key := yearKey(year)
	t, err := r.queries.YearTotals(ctx, key)
	if err != nil {
		return YearTotals{}, fmt.Errorf("year totals: %w", err)
	}
	inv, err := r.queries.InvoiceSubtotalsByCurrency(ctx, key)
	if err != nil {
		return YearTotals{}, fmt.Errorf("invoice subtotals: %w", err)
	}
	out := YearTotals{
		Expenses:   core.FromCents(t.ExpensesCents),
		Deductible: core.FromCents(t.DeductibleCents),
		Incomes:    core.FromCents(t.IncomesCents),
	}
	for _, row := range inv {
		out.Invoices = append(out.Invoices, CurrencyAmount{
			Currency: core.Currency{Code: row.CurrencyCode, Symbol: row.CurrencySymbol},
			Amount:   core.FromCents(row.SubtotalCents),
		})
	}
	return out, nil
}

// Statistics

func (r *SQLiteRepository) InvoiceCountsByMonth(ctx context.Context, year int) ([]stats.MonthCount, error) {
	rows, err := r.queries.InvoiceCountsByMonth(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("invoice counts by month: %w", err)
	}
	out := make([]stats.MonthCount, len(rows))
	for i, row := range rows {
		out[i] = stats.MonthCount{Month: int(row.Month), Count: row.Count}
	}
	return out, nil
}

func (r *SQLiteRepository) InvoiceRevenueByMonth(ctx context.Context, year int) ([]stats.RevenueRow, error) {
	rows, err := r.queries.InvoiceRevenueByMonth(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("invoice revenue by month: %w", err)
	}
	out := make([]stats.RevenueRow, len(rows))
	for i, row := range rows {
		out[i] = stats.RevenueRow{
			Month:    int(row.Month),
			Amount:   core.FromCents(row.SubtotalCents),
			Currency: core.Currency{Code: row.CurrencyCode, Symbol: row.CurrencySymbol},
		}
	}
	return out, nil
}

func (r *SQLiteRepository) InvoiceCountsByClient(ctx context.Context, year int) ([]stats.ClientCount, error) {
	rows, err := r.queries.InvoiceCountsByClient(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("invoice counts by client: %w", err)
	}
	out := make([]stats.ClientCount, len(rows))
	for i, row := range rows {
		out[i] = stats.ClientCount{Name: row.Name, Count: row.Count}
	}
	return out, nil
}

func (r *SQLiteRepository) InvoiceCountsByClientMonth(ctx context.Context, year int) ([]stats.ClientMonthCount, error) {
	rows, err := r.queries.InvoiceCountsByClientMonth(ctx, yearKey(year))
	if err != nil {
		return nil, fmt.Errorf("invoice counts by client and month: %w", err)
	}
	out := make([]stats.ClientMonthCount, len(rows))
	for i, row := range rows {
		out[i] = stats.ClientMonthCount{Month: int(row.Month), Name: row.Name, Count: row.Count}
	}
	return out, nil
}

// Audit events

// RecordAuditEvent stores an event once; replays of the same EventID are
// ignored and reported as false.
func (r *SQLiteRepository) RecordAuditEvent(ctx context.Context, e AuditEvent) (bool, error) {
	added, err := r.queries.InsertAuditEvent(ctx, InsertAuditEventParams{
		EventID:    e.EventID,
		Kind:       e.Kind,
		Subject:    e.Subject,
		Payload:    e.Payload,
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		return false, fmt.Errorf("insert audit event: %w", err)
	}
	return added, nil
}

func (r *SQLiteRepository) AuditEvents(ctx context.Context, limit int) ([]AuditEvent, error) {
	rows, err := r.queries.ListAuditEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return rows, nil
}

// txCounter adapts transaction-scoped queries to DocumentCounter.
type txCounter struct {
	q *Queries
}

func (c txCounter) CountInvoiceNumbers(ctx context.Context, clientID int64, prefix string) (int64, error) {
	return c.q.CountInvoiceNumbers(ctx, clientID, utf8.RuneCountInString(prefix), prefix)
}

func (c txCounter) CountEstimateNumbers(ctx context.Context, prefix string) (int64, error) {
	return c.q.CountEstimateNumbers(ctx, utf8.RuneCountInString(prefix), prefix)
}

func (c txCounter) InvoiceNumberExists(ctx context.Context, clientID int64, number string) (bool, error) {
	return c.q.InvoiceNumberExists(ctx, clientID, number)
}

func (c txCounter) EstimateNumberExists(ctx context.Context, number string) (bool, error) {
	return c.q.EstimateNumberExists(ctx, number)
}

func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// mapConstraint translates SQLite constraint failures into domain errors.
// A foreign key failure means a missing parent on insert and a live child on
// delete, so the caller names the error to use.
func mapConstraint(err error, op string, fkErr error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", op, ErrDuplicateNumber)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w", op, fkErr)
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w: %v", op, core.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func yearKey(year int) string {
	return fmt.Sprintf("%04d", year)
}

func dateRange(from, to core.Date) (string, string) {
	lo, hi := "0000-01-01", "9999-12-31"
	if !from.IsZero() {
		lo = from.String()
	}
	if !to.IsZero() {
		hi = to.String()
	}
	return lo, hi
}

func toCoreClient(c Client) core.Client {
	return core.Client{
		ID:       c.ID,
		Name:     c.Name,
		TaxID:    c.TaxID,
		Address:  c.Address,
		Country:  c.Country,
		Email:    c.Email,
		Currency: core.Currency{Code: c.CurrencyCode, Symbol: c.CurrencySymbol},
	}
}

func clientParams(c core.Client) CreateClientParams {
	cur := core.ResolveCurrency(c, core.DefaultCurrency)
	return CreateClientParams{
		Name:           c.Name,
		TaxID:          c.TaxID,
		Address:        c.Address,
		Country:        c.Country,
		Email:          c.Email,
		CurrencyCode:   cur.Code,
		CurrencySymbol: cur.Symbol,
	}
}

func toCoreService(s Service) core.Service {
	return core.Service{
		ID:          s.ID,
		Description: s.Description,
		UnitPrice:   core.FromCents(s.UnitPriceCents),
		UnitType:    s.UnitType,
	}
}

func serviceParams(s core.Service) (CreateServiceParams, error) {
	cents, err := core.ToCents(s.UnitPrice)
	if err != nil {
		return CreateServiceParams{}, err
	}
	return CreateServiceParams{Description: s.Description, UnitPriceCents: cents, UnitType: s.UnitType}, nil
}

type centsTotals struct {
	sub, vat, wh, total int64
}

func totalsToCents(t core.Totals) (centsTotals, error) {
	var c centsTotals
	var err error
	if c.sub, err = core.ToCents(t.Subtotal); err != nil {
		return c, err
	}
	if c.vat, err = core.ToCents(t.VAT); err != nil {
		return c, err
	}
	if c.wh, err = core.ToCents(t.Withholding); err != nil {
		return c, err
	}
	if c.total, err = core.ToCents(t.Total); err != nil {
		return c, err
	}
	return c, nil
}

func totalsFromCents(sub, vat, wh, total int64) core.Totals {
	return core.Totals{
		Subtotal:    core.FromCents(sub),
		VAT:         core.FromCents(vat),
		Withholding: core.FromCents(wh),
		Total:       core.FromCents(total),
	}
}

func invoiceParams(number string, inv core.Invoice) (CreateInvoiceParams, error) {
	c, err := totalsToCents(inv.Totals)
	if err != nil {
		return CreateInvoiceParams{}, err
	}
	return CreateInvoiceParams{
		Number:           number,
		ClientID:         inv.ClientID,
		ServiceID:        inv.ServiceID,
		Quantity:         inv.Quantity,
		Date:             inv.Date.String(),
		ApplyVat:         inv.ApplyVAT,
		ApplyWithholding: inv.ApplyWithholding,
		SubtotalCents:    c.sub,
		VatCents:         c.vat,
		WithholdingCents: c.wh,
		TotalCents:       c.total,
		CurrencyCode:     inv.Currency.Code,
		CurrencySymbol:   inv.Currency.Symbol,
	}, nil
}

func toCoreInvoice(row InvoiceRow) (core.Invoice, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("invoice %s: %w", row.Number, err)
	}
	return core.Invoice{
		ID:                 row.ID,
		Number:             row.Number,
		ClientID:           row.ClientID,
		ServiceID:          row.ServiceID,
		Quantity:           row.Quantity,
		Date:               d,
		ApplyVAT:           row.ApplyVat,
		ApplyWithholding:   row.ApplyWithholding,
		Totals:             totalsFromCents(row.SubtotalCents, row.VatCents, row.WithholdingCents, row.TotalCents),
		Currency:           core.Currency{Code: row.CurrencyCode, Symbol: row.CurrencySymbol},
		ClientName:         row.ClientName,
		ServiceDescription: row.ServiceDescription,
	}, nil
}

func toCoreInvoices(rows []InvoiceRow) ([]core.Invoice, error) {
	out := make([]core.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := toCoreInvoice(row)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func estimateParams(number string, e core.Estimate) (CreateEstimateParams, error) {
	c, err := totalsToCents(e.Totals)
	if err != nil {
		return CreateEstimateParams{}, err
	}
	status := e.Status
	if status == "" {
		status = core.EstimateDraft
	}
	return CreateEstimateParams{
		Number:           number,
		ClientID:         e.ClientID,
		ServiceID:        e.ServiceID,
		Quantity:         e.Quantity,
		IssueDate:        e.IssueDate.String(),
		ValidUntil:       e.ValidUntil.String(),
		WithholdingRate:  e.WithholdingRate.String(),
		SubtotalCents:    c.sub,
		VatCents:         c.vat,
		WithholdingCents: c.wh,
		TotalCents:       c.total,
		CurrencyCode:     e.Currency.Code,
		CurrencySymbol:   e.Currency.Symbol,
		Status:           string(status),
		Notes:            e.Notes,
		Terms:            e.Terms,
	}, nil
}

func toCoreEstimate(row EstimateRow) (core.Estimate, error) {
	issue, err := core.ParseDate(row.IssueDate)
	if err != nil {
		return core.Estimate{}, fmt.Errorf("estimate %s: %w", row.Number, err)
	}
	var validUntil core.Date
	if row.ValidUntil != "" {
		if validUntil, err = core.ParseDate(row.ValidUntil); err != nil {
			return core.Estimate{}, fmt.Errorf("estimate %s: %w", row.Number, err)
		}
	}
	rate, err := decimal.NewFromString(row.WithholdingRate)
	if err != nil {
		return core.Estimate{}, fmt.Errorf("estimate %s withholding rate %q: %w", row.Number, row.WithholdingRate, core.ErrComputation)
	}
	return core.Estimate{
		ID:                 row.ID,
		Number:             row.Number,
		ClientID:           row.ClientID,
		ServiceID:          row.ServiceID,
		Quantity:           row.Quantity,
		IssueDate:          issue,
		ValidUntil:         validUntil,
		WithholdingRate:    rate,
		Totals:             totalsFromCents(row.SubtotalCents, row.VatCents, row.WithholdingCents, row.TotalCents),
		Currency:           core.Currency{Code: row.CurrencyCode, Symbol: row.CurrencySymbol},
		Status:             core.EstimateStatus(row.Status),
		Notes:              row.Notes,
		Terms:              row.Terms,
		ClientName:         row.ClientName,
		ServiceDescription: row.ServiceDescription,
	}, nil
}

func toCoreExpenses(rows []Expense) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", row.ID, err)
		}
		out = append(out, core.Expense{
			ID:            row.ID,
			CategoryID:    row.CategoryID,
			Description:   row.Description,
			Amount:        core.FromCents(row.AmountCents),
			Date:          d,
			PaymentMethod: row.PaymentMethod,
			Notes:         row.Notes,
			TaxDeductible: row.TaxDeductible,
			CategoryName:  row.CategoryName,
		})
	}
	return out, nil
}

func toCoreCategories(rows []Category) []core.Category {
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{ID: c.ID, Name: c.Name}
	}
	return out
}
