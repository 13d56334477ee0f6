package reconcile

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/logging"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/metrics"
)

var (
	leadsCols = []string{"Number", "Customer Name", "Assigned To", "Source", "Phone"}
	salesCols = []string{"Order ID", "Name", "Agent", "Deposit"}
)

func newTestService(costs report.CostTable) (*Service, *metrics.Recorder) {
	rec := metrics.NewRecorder()
	return NewService(costs, rec, logging.Discard()), rec
}

func TestService_Run_FullPipeline(t *testing.T) {
	// Arrange
	svc, rec := newTestService(report.CostTable{"FB": 2.5})
	leads := table.New(leadsCols, [][]string{
		{"O1", "Ann", "X", "FB", "1"},
		{"O1", "Ann", " x ", "FB", "1"}, // duplicate once the assignee is normalized
		{"O2", "Bob", "y", "Google", "2"},
		{"", "Cat", "y", "FB", "3"},
	})
	sales := table.New(salesCols, [][]string{
		{"O1", "Ann", "x", "$100"},
		{"", "Cat", "y", "$250.50"},
		{"O9", "Nobody", "z", "$75"},
		{"O2", "Bob", "y", "-$5"},
	})

	// Act
	res, err := svc.Run(context.Background(), Input{Leads: leads, Sales: sales})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.SalesLoaded)
	assert.Equal(t, 1, res.Dedup.Removed)
	assert.Equal(t, 3, res.Dedup.Leads.Len())

	require.Len(t, res.Report, 2)
	assert.Equal(t, report.Row{Source: "FB", TotalLeads: 2, Deposits: 350.5, TotalUniqueSales: 2, LeadCost: 2.5, TotalLeadsCost: 5}, res.Report[0])
	assert.Equal(t, report.Row{Source: "Google", TotalLeads: 1, LeadCost: 1, TotalLeadsCost: 1}, res.Report[1])
	assert.Equal(t, 3, res.Totals.TotalLeads)
	assert.InDelta(t, 350.5, res.Totals.Deposits, 0.001)
	require.NotNil(t, res.Check)
	assert.True(t, res.Check.Valid, res.Check.Reasons)

	assert.Equal(t, 1, res.Match.Stats.Pass1)
	assert.Equal(t, 1, res.Match.Stats.Pass2)
	assert.Equal(t, 1, res.Match.Stats.Unmatched)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Runs.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.DuplicatesRemoved))
}

func TestService_Run_WithoutSales(t *testing.T) {
	svc, _ := newTestService(nil)
	leads := table.New(leadsCols, [][]string{{"O1", "Ann", "x", "FB", "1"}})

	res, err := svc.Run(context.Background(), Input{Leads: leads})

	require.NoError(t, err)
	assert.False(t, res.SalesLoaded)
	require.Len(t, res.Report, 1)
	assert.Equal(t, 0.0, res.Report[0].Deposits)
	assert.Equal(t, 0, res.Report[0].TotalUniqueSales)
	assert.Empty(t, res.Match.Sales)
}

// A cost table entry multiplies the lead count.
func TestService_Run_LeadCostFromTable(t *testing.T) {
	svc, _ := newTestService(report.CostTable{"FB": 2.5})
	leads := table.New(leadsCols, [][]string{
		{"", "", "a", "FB", "1"},
		{"", "", "a", "FB", "2"},
		{"", "", "a", "FB", "3"},
		{"", "", "a", "FB", "4"},
	})

	res, err := svc.Run(context.Background(), Input{Leads: leads})

	require.NoError(t, err)
	require.Len(t, res.Report, 1)
	assert.InDelta(t, 10.0, res.Report[0].TotalLeadsCost, 0.0001)
}

func TestService_Run_NoSourceColumn(t *testing.T) {
	svc, rec := newTestService(nil)
	leads := table.New([]string{"Phone", "Assigned To"}, [][]string{{"1", "x"}})

	_, err := svc.Run(context.Background(), Input{Leads: leads})

	var emptyErr *report.EmptySourceError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "leads", emptyErr.Dataset)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Runs.WithLabelValues("failed")))
}

func TestService_Run_MissingColumns(t *testing.T) {
	svc, _ := newTestService(nil)
	leads := table.New([]string{"Phone", "Assigned To", "Source"}, [][]string{{"1", "x", "FB"}})
	sales := table.New([]string{"Order ID"}, [][]string{{"O1"}})

	_, err := svc.Run(context.Background(), Input{Leads: leads, Sales: sales})

	var missing *matcher.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"sales.agent", "sales.deposit", "sales.customer_name_sales", "leads.customer_name_leads"}, missing.Roles)
}

func TestService_Run_NoLeads(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Run(context.Background(), Input{})

	assert.ErrorIs(t, err, ErrNoLeads)
}

func TestService_Run_CancelledContext(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Input{Leads: table.New(leadsCols, nil)})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_ReportTable(t *testing.T) {
	svc, _ := newTestService(nil)
	leads := table.New(leadsCols, [][]string{{"O1", "Ann", "x", "FB", "1"}})
	sales := table.New(salesCols, [][]string{{"O1", "Ann", "x", "$12,345.40"}})

	res, err := svc.Run(context.Background(), Input{Leads: leads, Sales: sales})
	require.NoError(t, err)
	tbl := res.ReportTable()

	assert.Equal(t, report.Columns, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"FB", "1", "$12,345", "1", "1.00", "1.00"}, tbl.Rows[0])
	assert.Equal(t, "Total", tbl.Rows[1][0])
}

func TestResult_WriteWorkbook(t *testing.T) {
	svc, _ := newTestService(nil)
	leads := table.New(leadsCols, [][]string{{"O1", "Ann", "x", "FB", "1"}})
	sales := table.New(salesCols, [][]string{{"O1", "Ann", "x", "$100"}})
	res, err := svc.Run(context.Background(), Input{Leads: leads, Sales: sales})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteWorkbook(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetReport, SheetSales, SheetLeads}, f.GetSheetList())
	rows, err := f.GetRows(SheetSales, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, matcher.SalesColumns, rows[0])
	assert.Equal(t, []string{"FB", "ann", "x", "100", "O1"}, rows[1])

	// Numeric columns are numbers, not text.
	typ, err := f.GetCellType(SheetSales, "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	typ, err = f.GetCellType(SheetReport, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	typ, err = f.GetCellType(SheetReport, "C2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, typ)
}
