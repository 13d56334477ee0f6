// Package reconcile runs the attribution pipeline over loaded datasets and
// keeps per-user working sessions in memory.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/bats-attribution/internal/domain/dedup"
	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
	"github.com/eshaffer321/bats-attribution/internal/domain/validator"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/metrics"
)

// ErrNoLeads is returned when a run is started without a leads dataset.
var ErrNoLeads = errors.New("leads data not loaded")

// Input holds the datasets of one run. Sales may be nil.
type Input struct {
	Leads *table.Table
	Sales *table.Table
}

// Result is everything a run produced.
type Result struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	SalesLoaded bool

	Dedup  dedup.Result
	Match  *matcher.Result
	Report []report.Row
	Totals report.Row

	// Check cross-validates the report against the matched sales.
	Check *validator.TotalsValidation
}

// ReportTable renders the report rows followed by the totals row.
func (r *Result) ReportTable() *table.Table {
	rows := append(append([]report.Row(nil), r.Report...), r.Totals)
	return report.ToTable(rows)
}

// Service runs deduplication, matching and aggregation.
type Service struct {
	costs   report.CostTable
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a reconcile service. recorder may be nil.
func NewService(costs report.CostTable, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		costs:   costs,
		metrics: recorder,
		logger:  logger.With("system", "reconcile"),
		now:     time.Now,
	}
}

// Run processes the input from scratch. Without sales the report is still
// produced, with zero deposits and sales.
func (s *Service) Run(ctx context.Context, in Input) (*Result, error) {
	res := &Result{
		RunID:       uuid.New().String(),
		StartedAt:   s.now(),
		SalesLoaded: in.Sales != nil,
	}
	logger := s.logger.With("run_id", res.RunID)

	err := s.run(ctx, in, res)
	res.Duration = s.now().Sub(res.StartedAt)

	if err != nil {
		s.metrics.ObserveRun(metrics.RunSample{Status: "failed", Duration: res.Duration})
		logger.Warn("run failed", "error", err)
		return nil, err
	}

	st := res.Match.Stats
	s.metrics.ObserveRun(metrics.RunSample{
		Status:      "completed",
		Duration:    res.Duration,
		Duplicates:  res.Dedup.Removed,
		Pass1:       st.Pass1,
		Pass2:       st.Pass2,
		Malformed:   st.Malformed,
		NonPositive: st.NonPositive,
		Unmatched:   st.Unmatched,
	})
	logger.Info("run complete",
		"leads", res.Dedup.Leads.Len(),
		"duplicates_removed", res.Dedup.Removed,
		"sources", len(res.Report),
		"sales_rows", st.InputRows,
		"pass1", st.Pass1,
		"pass2", st.Pass2,
		"unmatched", st.Unmatched,
		"duration", res.Duration,
	)
	if !res.Check.Valid {
		logger.Warn("report totals inconsistent",
			"difference", res.Check.Difference,
			"reasons", res.Check.Reasons,
		)
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, in Input, res *Result) error {
	if in.Leads == nil {
		return ErrNoLeads
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res.Dedup = dedup.Deduplicate(in.Leads)
	if res.Dedup.SourceColumn == "" {
		return &report.EmptySourceError{Dataset: "leads"}
	}

	res.Match = &matcher.Result{}
	if in.Sales != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := matcher.Match(in.Sales, res.Dedup.Leads)
		if err != nil {
			return fmt.Errorf("match sales: %w", err)
		}
		res.Match = m
	}

	res.Report = report.Aggregate(res.Dedup.Counts, res.Match.Sales, s.costs)
	res.Totals = report.Totals(res.Report)
	res.Check = validator.ValidateTotals(res.Report, res.Match.Sales, res.Dedup.Leads.Len())
	return nil
}
