// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds pipeline review and record summary prompts from live backend data
package handlers

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	records   *RecordHandlers
	dashboard *DashboardHandlers
}

func NewPromptHandlers(records *RecordHandlers, dash *DashboardHandlers) *PromptHandlers {
	return &PromptHandlers{records: records, dashboard: dash}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	case "record-summary":
		return h.getRecordSummaryPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	st, err := h.dashboard.load(ctx, false)
	if err != nil {
		return nil, err
	}
	out := statsToOutput(st)

	var promptText strings.Builder
	promptText.WriteString("Please review the current sales pipeline:\n\n")
	promptText.WriteString(fmt.Sprintf("Total Quotes Value: %s\n", out.TotalQuotesValue))
	promptText.WriteString(fmt.Sprintf("Active Leads: %d\n", out.ActiveLeads))
	promptText.WriteString(fmt.Sprintf("Active Opportunities: %d\n", out.ActiveOpportunities))
	promptText.WriteString(fmt.Sprintf("Pending Tasks: %d\n", out.PendingTasks))
	if len(out.RecentQuotes) > 0 {
		promptText.WriteString("\nRecent Quotes:\n")
		for _, q := range out.RecentQuotes {
			promptText.WriteString(fmt.Sprintf("- %s (%s) for %s\n", q.Title, q.TotalPrice, q.Opportunity))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. An assessment of pipeline health")
	promptText.WriteString("\n2. Which opportunities and tasks need attention first")
	promptText.WriteString("\n3. Suggested next actions for the sales team")

	return &mcp.GetPromptResult{
		Description: "Sales pipeline review",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getRecordSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	entity, ok := args["entity"]
	if !ok || entity == "" {
		return nil, fmt.Errorf("entity is required")
	}
	id, err := strconv.ParseInt(args["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}

	t, err := h.records.set.Lookup(entity)
	if err != nil {
		return nil, err
	}
	_, rec, err := h.records.GetRecord(ctx, nil, GetRecordInput{Entity: entity, ID: id})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Please summarize this %s record:\n\n", strings.ToLower(t.Name())))
	for _, k := range keys {
		if v := rec.Fields[k]; v != "" {
			promptText.WriteString(fmt.Sprintf("%s: %s\n", k, v))
		}
	}
	promptText.WriteString("\nPlease provide a brief summary and recommend follow-up actions.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summary for %s: %s", t.Name(), rec.Label),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
