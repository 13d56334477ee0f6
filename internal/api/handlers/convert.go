package handlers

import (
	"time"

	"github.com/eshaffer321/bats-attribution/internal/api/dto"
	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// toResultResponse converts a run result to an API response.
func toResultResponse(res *reconcile.Result) dto.ResultResponse {
	st := res.Match.Stats
	response := dto.ResultResponse{
		RunID:       res.RunID,
		StartedAt:   res.StartedAt.Format(time.RFC3339),
		DurationMS:  res.Duration.Milliseconds(),
		SalesLoaded: res.SalesLoaded,
		Dedup: dto.DedupResponse{
			Rows:         res.Dedup.Leads.Len(),
			Removed:      res.Dedup.Removed,
			SourceColumn: res.Dedup.SourceColumn,
			KeyColumns:   res.Dedup.KeyColumns,
			LeadCounts:   res.Dedup.Counts,
		},
		Match: dto.MatchStatsResponse{
			InputRows:   st.InputRows,
			Malformed:   st.Malformed,
			NonPositive: st.NonPositive,
			Candidates:  st.Candidates,
			Pass1:       st.Pass1,
			Pass2:       st.Pass2,
			Unmatched:   st.Unmatched,
		},
		Sales:      make([]dto.MatchedSaleResponse, 0, len(res.Match.Sales)),
		Report:     make([]dto.ReportRowResponse, 0, len(res.Report)),
		Totals:     toReportRowResponse(res.Totals),
		Consistent: true,
	}
	if res.Check != nil {
		response.Consistent = res.Check.Valid
		response.Warnings = res.Check.Reasons
	}

	for _, s := range res.Match.Sales {
		response.Sales = append(response.Sales, dto.MatchedSaleResponse{
			Source:   s.Source,
			Name:     s.Name,
			Agent:    s.Agent,
			Deposit:  s.Deposit,
			OrderIDs: s.OrderIDs,
		})
	}
	for _, r := range res.Report {
		response.Report = append(response.Report, toReportRowResponse(r))
	}
	return response
}

func toReportRowResponse(r report.Row) dto.ReportRowResponse {
	return dto.ReportRowResponse{
		Source:           r.Source,
		TotalLeads:       r.TotalLeads,
		Deposits:         r.Deposits,
		DepositsDisplay:  report.FormatCurrency(r.Deposits),
		TotalUniqueSales: r.TotalUniqueSales,
		LeadCost:         r.LeadCost,
		TotalLeadsCost:   r.TotalLeadsCost,
	}
}

// toDatasetResponse describes a dataset with its first preview rows.
func toDatasetResponse(name string, t *table.Table, preview int) *dto.DatasetResponse {
	if t == nil {
		return nil
	}
	head := t.Head(preview)
	return &dto.DatasetResponse{
		Name:    name,
		Rows:    t.Len(),
		Columns: t.Columns,
		Preview: head.Rows,
	}
}

// toSessionResponse converts a session to an API response.
func toSessionResponse(sess *reconcile.Session, preview int) dto.SessionResponse {
	st := sess.State()
	return dto.SessionResponse{
		ID:        st.ID,
		CreatedAt: st.CreatedAt.Format(time.RFC3339),
		LastUsed:  st.LastUsed.Format(time.RFC3339),
		Leads:     toDatasetResponse(st.LeadsName, sess.Leads(), preview),
		Sales:     toDatasetResponse(st.SalesName, sess.Sales(), preview),
		Processed: st.Processed,
	}
}
