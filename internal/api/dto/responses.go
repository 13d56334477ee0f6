package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Sessions  int    `json:"sessions"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse(sessions int) HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sessions:  sessions,
	}
}

// MessageResponse is a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// DatasetResponse describes a loaded leads or sales dataset.
type DatasetResponse struct {
	Name    string     `json:"name"`
	Rows    int        `json:"rows"`
	Columns []string   `json:"columns"`
	Preview [][]string `json:"preview"`
}

// SessionResponse describes a working session.
type SessionResponse struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"created_at"`
	LastUsed  string           `json:"last_used"`
	Leads     *DatasetResponse `json:"leads,omitempty"`
	Sales     *DatasetResponse `json:"sales,omitempty"`
	Processed bool             `json:"processed"`
}

// DedupResponse summarizes lead deduplication.
type DedupResponse struct {
	Rows         int            `json:"rows"`
	Removed      int            `json:"removed"`
	SourceColumn string         `json:"source_column"`
	KeyColumns   []string       `json:"key_columns"`
	LeadCounts   map[string]int `json:"lead_counts"`
}

// MatchStatsResponse counts what happened to the sales rows.
type MatchStatsResponse struct {
	InputRows   int `json:"input_rows"`
	Malformed   int `json:"malformed"`
	NonPositive int `json:"non_positive"`
	Candidates  int `json:"candidates"`
	Pass1       int `json:"matched_by_order_id"`
	Pass2       int `json:"matched_by_name"`
	Unmatched   int `json:"unmatched"`
}

// MatchedSaleResponse is one attributed sale.
type MatchedSaleResponse struct {
	Source   string   `json:"source"`
	Name     string   `json:"name"`
	Agent    string   `json:"agent"`
	Deposit  float64  `json:"deposit"`
	OrderIDs []string `json:"order_ids"`
}

// ReportRowResponse is one report line with display strings alongside the
// numeric values.
type ReportRowResponse struct {
	Source           string  `json:"source"`
	TotalLeads       int     `json:"total_leads"`
	Deposits         float64 `json:"deposits"`
	DepositsDisplay  string  `json:"deposits_display"`
	TotalUniqueSales int     `json:"total_unique_sales"`
	LeadCost         float64 `json:"lead_cost"`
	TotalLeadsCost   float64 `json:"total_leads_cost"`
}

// ResultResponse is returned by a reconcile run.
type ResultResponse struct {
	RunID       string                `json:"run_id"`
	StartedAt   string                `json:"started_at"`
	DurationMS  int64                 `json:"duration_ms"`
	SalesLoaded bool                  `json:"sales_loaded"`
	Dedup       DedupResponse         `json:"dedup"`
	Match       MatchStatsResponse    `json:"match"`
	Sales       []MatchedSaleResponse `json:"matched_sales"`
	Report      []ReportRowResponse   `json:"report"`
	Totals      ReportRowResponse     `json:"totals"`
	Consistent  bool                  `json:"consistent"`
	Warnings    []string              `json:"warnings,omitempty"`
}
