// ABOUTME: Dashboard MCP tool handler
// ABOUTME: Implements dashboard_stats from the first page of each sales collection
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DashboardHandlers struct {
	svc *dashboard.Service
}

func NewDashboardHandlers(svc *dashboard.Service) *DashboardHandlers {
	return &DashboardHandlers{svc: svc}
}

type DashboardStatsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Bypass cached pages"`
}

type QuoteSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	TotalPrice  string `json:"total_price"`
	CreatedBy   string `json:"created_by,omitempty"`
	Opportunity string `json:"opportunity,omitempty"`
}

type DashboardStatsOutput struct {
	TotalQuotesValue    string         `json:"total_quotes_value"`
	ActiveLeads         int            `json:"active_leads"`
	PendingTasks        int            `json:"pending_tasks"`
	ActiveOpportunities int            `json:"active_opportunities"`
	ActiveProducts      int            `json:"active_products"`
	RecentQuotes        []QuoteSummary `json:"recent_quotes"`
}

func (h *DashboardHandlers) DashboardStats(ctx context.Context, _ *mcp.CallToolRequest, input DashboardStatsInput) (*mcp.CallToolResult, DashboardStatsOutput, error) {
	st, err := h.load(ctx, input.Refresh)
	if err != nil {
		return nil, DashboardStatsOutput{}, err
	}
	return nil, statsToOutput(st), nil
}

func (h *DashboardHandlers) load(ctx context.Context, refresh bool) (*dashboard.Stats, error) {
	var (
		st  *dashboard.Stats
		err error
	)
	if refresh {
		st, err = h.svc.Reload(ctx)
	} else {
		st, err = h.svc.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dashboard.ErrorMessage, err)
	}
	return st, nil
}

func statsToOutput(st *dashboard.Stats) DashboardStatsOutput {
	out := DashboardStatsOutput{
		TotalQuotesValue:    models.FormatMoney(st.TotalQuotesValue),
		ActiveLeads:         st.ActiveLeads,
		PendingTasks:        st.PendingTasks,
		ActiveOpportunities: st.ActiveOpportunities,
		ActiveProducts:      st.ActiveProducts,
		RecentQuotes:        make([]QuoteSummary, 0, len(st.RecentQuotes)),
	}
	for _, q := range st.RecentQuotes {
		out.RecentQuotes = append(out.RecentQuotes, QuoteSummary{
			ID:          q.ID,
			Title:       q.Title,
			TotalPrice:  models.FormatAmount(q.TotalPrice),
			CreatedBy:   q.CreatedByName,
			Opportunity: q.OpportunityName,
		})
	}
	return out
}
