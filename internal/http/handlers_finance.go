package http

import (
	"net/http"
	"strconv"

	"facturas/internal/core"
)

// dateRange reads the from/to query parameters. Missing bounds default to
// the whole selected year.
func (s *Server) dateRange(r *http.Request) (from, to core.Date, year int, err error) {
	q := r.URL.Query()
	year = ParseYear(q, s.now())
	from, to = core.NewDate(year, 1, 1), core.NewDate(year, 12, 31)
	if v := q.Get("from"); v != "" {
		if from, err = core.ParseDate(v); err != nil {
			return
		}
	}
	if v := q.Get("to"); v != "" {
		to, err = core.ParseDate(v)
	}
	return
}

type expenseListData struct {
	Year       int
	From, To   core.Date
	Expenses   []core.Expense
	Categories []core.Category
	Today      string
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, year, err := s.dateRange(r)
	if err != nil {
		s.fail(w, r, "list expenses", err)
		return
	}
	expenses, err := s.svc.Finance.Expenses(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, "list expenses", err)
		return
	}
	categories, err := s.svc.Finance.Categories(r.Context())
	if err != nil {
		s.fail(w, r, "list categories", err)
		return
	}
	s.render(w, r, "expenses.html", "Expenses", expenseListData{
		Year:       year,
		From:       from,
		To:         to,
		Expenses:   expenses,
		Categories: categories,
		Today:      s.now().Format(core.DateLayout),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	e := core.Expense{
		Description:   p.Get("description"),
		PaymentMethod: p.Get("payment_method"),
		Notes:         p.Get("notes"),
		TaxDeductible: p.Bool("tax_deductible"),
	}
	var err error
	if e.CategoryID, err = p.ID("category_id"); err == nil {
		if e.Amount, err = p.Amount("amount"); err == nil {
			e.Date, err = p.Date("date")
		}
	}
	if err != nil {
		s.fail(w, r, "add expense", err)
		return
	}

	id, err := s.svc.Finance.AddExpense(r.Context(), e)
	if err != nil {
		s.fail(w, r, "add expense", err)
		return
	}
	s.done(w, r, "/expenses?year="+strconv.Itoa(e.Date.Year()), "Expense recorded",
		NewHTMXResponse().TriggerRecordCreated("expense", id).TriggerFormReset())
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "delete expense", err)
		return
	}
	if err := s.svc.Finance.DeleteExpense(r.Context(), id); err != nil {
		s.fail(w, r, "delete expense", err)
		return
	}
	s.done(w, r, "/expenses", "Expense deleted", NewHTMXResponse().TriggerRecordDeleted("expense", id))
}

type incomeListData struct {
	Year     int
	From, To core.Date
	Incomes  []core.Income
	Sources  []core.Category
	Today    string
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	from, to, year, err := s.dateRange(r)
	if err != nil {
		s.fail(w, r, "list incomes", err)
		return
	}
	incomes, err := s.svc.Finance.Incomes(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, "list incomes", err)
		return
	}
	sources, err := s.svc.Finance.Sources(r.Context())
	if err != nil {
		s.fail(w, r, "list income sources", err)
		return
	}
	s.render(w, r, "incomes.html", "Incomes", incomeListData{
		Year:    year,
		From:    from,
		To:      to,
		Incomes: incomes,
		Sources: sources,
		Today:   s.now().Format(core.DateLayout),
	})
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	in := core.Income{
		Description: p.Get("description"),
		Notes:       p.Get("notes"),
	}
	var err error
	if in.SourceID, err = p.ID("source_id"); err == nil {
		if in.Amount, err = p.Amount("amount"); err == nil {
			in.Date, err = p.Date("date")
		}
	}
	if err != nil {
		s.fail(w, r, "add income", err)
		return
	}

	id, err := s.svc.Finance.AddIncome(r.Context(), in)
	if err != nil {
		s.fail(w, r, "add income", err)
		return
	}
	s.done(w, r, "/incomes?year="+strconv.Itoa(in.Date.Year()), "Income recorded",
		NewHTMXResponse().TriggerRecordCreated("income", id).TriggerFormReset())
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, "delete income", err)
		return
	}
	if err := s.svc.Finance.DeleteIncome(r.Context(), id); err != nil {
		s.fail(w, r, "delete income", err)
		return
	}
	s.done(w, r, "/incomes", "Income deleted", NewHTMXResponse().TriggerRecordDeleted("income", id))
}

type summaryData struct {
	core.FinancialSummary
	Deductible []core.Expense
	Currency   core.Currency
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year := ParseYear(r.URL.Query(), s.now())
	summary, err := s.svc.Finance.Summary(r.Context(), year)
	if err != nil {
		s.fail(w, r, "financial summary", err)
		return
	}
	deductible, err := s.svc.Finance.DeductibleExpenses(r.Context(), year)
	if err != nil {
		s.fail(w, r, "deductible expenses", err)
		return
	}
	s.render(w, r, "summary.html", "Summary "+strconv.Itoa(year), summaryData{
		FinancialSummary: summary,
		Deductible:       deductible,
		Currency:         core.ReportingCurrency,
	})
}
