package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/amqp"
	"facturas/internal/categorize"
	"facturas/internal/core"
	"facturas/internal/statement"
)

func statementRows() statement.MemoryReader {
	return statement.MemoryReader{
		{Line: 2, Date: "05/03/2024", Description: "UBER EATS MADRID", Amount: "-23,40"},
		{Line: 3, Date: "06/03/2024", Description: "FACTURA CLIENTE A", Amount: "1210"},
		{Line: 4, Date: "someday", Description: "Unknown date", Amount: "-5"},
		{Line: 5, Date: "07/03/2024", Description: "Nothing moved", Amount: "0"},
		{Line: 6, Date: "07/03/2024", Description: "", Amount: "-3"},
		{Line: 7, Date: "2024-03-08", Description: "Misc thing", Amount: "-10"},
		{Line: 8, Date: "08/03/2024", Description: "Broken", Amount: "12..5"},
	}
}

func TestImportService_Outcomes(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImportService(env.repo, env.pub, env.stats)
	ctx := context.Background()

	res, err := svc.Import(ctx, statementRows(), ImportOptions{Source: "test.csv", DefaultCategory: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 2, res.Expenses)
	assert.Equal(t, 1, res.Incomes)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, res.Duplicates)

	status := map[int]RowStatus{}
	for _, o := range res.Outcomes {
		status[o.Row] = o.Status
	}
	assert.Equal(t, map[int]RowStatus{
		2: RowImported, 3: RowImported, 4: RowError, 5: RowSkipped,
		6: RowSkipped, 7: RowImported, 8: RowError,
	}, status)
	for i := 1; i < len(res.Outcomes); i++ {
		assert.Less(t, res.Outcomes[i-1].Row, res.Outcomes[i].Row)
	}

	expenses, err := env.repo.ListExpenses(ctx, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	byDesc := map[string]core.Expense{}
	for _, e := range expenses {
		byDesc[e.Description] = e
	}
	uber := byDesc["UBER EATS MADRID"]
	assert.Equal(t, int64(2), uber.CategoryID)
	assert.Equal(t, "23.40", uber.Amount.StringFixed(2))
	assert.Equal(t, "2024-03-05", uber.Date.String())
	assert.Equal(t, ImportPaymentMethod, uber.PaymentMethod)
	assert.True(t, uber.TaxDeductible)

	misc := byDesc["Misc thing"]
	assert.Equal(t, int64(1), misc.CategoryID)
	assert.True(t, misc.TaxDeductible)

	incomes, err := env.repo.ListIncomes(ctx, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, int64(1), incomes[0].SourceID)
	assert.Equal(t, ImportNote, incomes[0].Notes)

	assert.Equal(t, 1, env.stats.count())
	assert.Equal(t, []amqp.EventKind{amqp.EventImportFinished}, env.pub.kinds())
}

func TestImportService_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImportService(env.repo, nil, nil)
	ctx := context.Background()

	first := statement.MemoryReader{
		{Line: 2, Date: "05/03/2024", Description: "UBER EATS MADRID", Amount: "-23,40"},
		{Line: 3, Date: "06/03/2024", Description: "FACTURA CLIENTE A", Amount: "50"},
	}
	_, err := svc.Import(ctx, first, ImportOptions{})
	require.NoError(t, err)

	again := statement.MemoryReader{
		{Line: 2, Date: "07/03/2024", Description: "uber eats madrid", Amount: "-23.40"},
		{Line: 3, Date: "08/03/2024", Description: "cliente a factura", Amount: "50"},
		{Line: 4, Date: "30/03/2024", Description: "FACTURA CLIENTE A", Amount: "50"},
	}

	res, err := svc.Import(ctx, again, ImportOptions{SkipDuplicates: true})
	require.NoError(t, err)
	require.Len(t, res.Duplicates, 2)
	assert.Equal(t, 2, res.Duplicates[0].DaysApart)
	assert.Equal(t, "expense", res.Duplicates[0].Existing.Kind)
	assert.Equal(t, "income", res.Duplicates[1].Existing.Kind)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, RowSkipped, res.Outcomes[0].Status)
	assert.Equal(t, RowImported, res.Outcomes[2].Status)

	res, err = svc.Import(ctx, statement.MemoryReader{again[0]}, ImportOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Duplicates, 1)
	assert.Equal(t, 1, res.Imported)
}

func TestImportService_DefaultSource(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImportService(env.repo, nil, nil)
	ctx := context.Background()

	rows := statement.MemoryReader{{Line: 2, Date: "2024-04-01", Description: "Transferencia recibida", Amount: "75"}}
	_, err := svc.Import(ctx, rows, ImportOptions{DefaultSource: 3})
	require.NoError(t, err)

	incomes, err := env.repo.ListIncomes(ctx, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, int64(3), incomes[0].SourceID)
	assert.NotEqual(t, categorize.OtherIncomeSource, incomes[0].SourceID)
}
