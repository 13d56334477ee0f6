package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/adapters/sheets"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/config"
)

// RunReconcile loads the inputs named by flags, runs the pipeline, prints
// the report to stdout and writes -out when set.
func RunReconcile(ctx context.Context, cfg *config.Config, flags ReconcileFlags, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	leads, err := sheets.ReadFile(flags.Leads, sheets.Options{Header: sheets.HeaderLeads})
	if err != nil {
		return fmt.Errorf("load leads: %w", err)
	}
	logger.Debug("leads loaded", "path", flags.Leads, "rows", leads.Len(), "columns", leads.Columns)

	sales, salesName, err := loadSales(flags, stdin)
	if err != nil {
		return fmt.Errorf("load sales: %w", err)
	}
	if sales != nil {
		logger.Debug("sales loaded", "from", salesName, "rows", sales.Len(), "columns", sales.Columns)
	}

	svc := reconcile.NewService(cfg.CostTable(), nil, logger)
	res, err := svc.Run(ctx, reconcile.Input{Leads: leads, Sales: sales})
	if err != nil {
		return err
	}

	PrintHeader(stdout, flags.Leads, salesName)
	if err := PrintReport(stdout, res, flags.Preview); err != nil {
		return err
	}

	if flags.Out == "" {
		return nil
	}
	if err := writeOutput(flags.Out, res); err != nil {
		return fmt.Errorf("write %s: %w", flags.Out, err)
	}
	fmt.Fprintf(stdout, "\nWrote %s\n", flags.Out)
	return nil
}

func loadSales(flags ReconcileFlags, stdin io.Reader) (*table.Table, string, error) {
	switch {
	case flags.Sales != "":
		t, err := sheets.ReadFile(flags.Sales, sheets.Options{Header: sheets.HeaderFirstRow})
		return t, flags.Sales, err
	case flags.SalesPaste:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", err
		}
		t, err := sheets.ParsePasted(string(data))
		return t, "stdin", err
	default:
		return nil, "", nil
	}
}

func writeOutput(path string, res *reconcile.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = sheets.WriteCSV(f, res.ReportTable())
	} else {
		err = res.WriteWorkbook(f)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
