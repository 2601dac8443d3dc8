// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON views of the dashboard and each entity's first page via crm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	records   *RecordHandlers
	dashboard *DashboardHandlers
}

func NewResourceHandlers(records *RecordHandlers, dash *DashboardHandlers) *ResourceHandlers {
	return &ResourceHandlers{records: records, dashboard: dash}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	path, ok := strings.CutPrefix(uri, "crm://")
	if !ok {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	var payload any
	switch path {
	case "dashboard":
		st, err := h.dashboard.load(ctx, false)
		if err != nil {
			return nil, err
		}
		payload = statsToOutput(st)
	default:
		_, out, err := h.records.ListRecords(ctx, nil, ListRecordsInput{Entity: path, Page: 1})
		if err != nil {
			return nil, fmt.Errorf("unknown resource %s: %w", uri, err)
		}
		payload = out
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
