// ABOUTME: Record MCP tool handlers
// ABOUTME: Implements list_records, get_record, create_record, update_record and delete_record over the entity screens
package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/listing"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecordHandlers struct {
	set *entities.Set
	// mu serializes list and mutation calls. Lists move the shared screen's
	// page and search; mutations re-fetch that screen and would supersede a
	// list in flight.
	mu sync.Mutex
}

func NewRecordHandlers(set *entities.Set) *RecordHandlers {
	return &RecordHandlers{set: set}
}

type RecordOutput struct {
	ID     int64             `json:"id"`
	Label  string            `json:"label"`
	Fields map[string]string `json:"fields"`
}

type ListRecordsInput struct {
	Entity string `json:"entity" jsonschema:"Entity name: leads, opportunities, accounts, contacts, products, quotes, tasks, interactions or customers"`
	Page   int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Search string `json:"search,omitempty" jsonschema:"Search term matched by the backend"`
}

type ListRecordsOutput struct {
	Entity      string         `json:"entity"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"total_pages"`
	Count       int            `json:"count"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
	Columns     []string       `json:"columns"`
	Records     []RecordOutput `json:"records"`
	Message     string         `json:"message,omitempty"`
}

func (h *RecordHandlers) ListRecords(ctx context.Context, _ *mcp.CallToolRequest, input ListRecordsInput) (*mcp.CallToolResult, ListRecordsOutput, error) {
	t, err := h.set.Lookup(input.Entity)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t.SetSearch(input.Search)
	if err := t.Seek(ctx, page); err != nil {
		return nil, ListRecordsOutput{}, fmt.Errorf("failed to list %s: %w", t.Plural(), err)
	}

	v := t.View()
	out := ListRecordsOutput{
		Entity:      v.Plural,
		Page:        v.Page,
		TotalPages:  v.TotalPages(),
		Count:       v.Count,
		HasNext:     v.HasNext,
		HasPrevious: v.HasPrev,
		Columns:     make([]string, 0, len(v.Columns)),
		Records:     make([]RecordOutput, 0, len(v.Rows)),
	}
	for _, c := range v.Columns {
		out.Columns = append(out.Columns, c.Title)
	}
	for _, row := range v.Rows {
		out.Records = append(out.Records, rowToOutput(v.Columns, row))
	}
	if v.Empty() {
		out.Message = v.EmptyMessage
	}
	return nil, out, nil
}

type GetRecordInput struct {
	Entity string `json:"entity" jsonschema:"Entity name, e.g. quotes"`
	ID     int64  `json:"id" jsonschema:"Record ID"`
}

func (h *RecordHandlers) GetRecord(ctx context.Context, _ *mcp.CallToolRequest, input GetRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	t, err := h.set.Lookup(input.Entity)
	if err != nil {
		return nil, RecordOutput{}, err
	}

	d, err := t.Detail(ctx, input.ID)
	if err != nil {
		return nil, RecordOutput{}, fmt.Errorf("failed to get %s %d: %w", t.Name(), input.ID, err)
	}

	out := RecordOutput{ID: d.ID, Label: d.Label, Fields: make(map[string]string, len(d.Lines))}
	for _, line := range d.Lines {
		out.Fields[line.Label] = line.Value
	}
	return nil, out, nil
}

type CreateRecordInput struct {
	Entity string            `json:"entity" jsonschema:"Entity name, e.g. leads"`
	Fields map[string]string `json:"fields" jsonschema:"Field values keyed by field name, e.g. {\"name\": \"Acme\", \"email\": \"buy@acme.com\"}"`
}

func (h *RecordHandlers) CreateRecord(ctx context.Context, _ *mcp.CallToolRequest, input CreateRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	t, err := h.set.Lookup(input.Entity)
	if err != nil {
		return nil, RecordOutput{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	row, err := t.Create(ctx, listing.Draft(input.Fields))
	if err != nil {
		return nil, RecordOutput{}, fmt.Errorf("failed to create %s: %w", t.Name(), err)
	}
	return nil, rowToOutput(t.Columns(), row), nil
}

type UpdateRecordInput struct {
	Entity string            `json:"entity" jsonschema:"Entity name, e.g. tasks"`
	ID     int64             `json:"id" jsonschema:"Record ID"`
	Fields map[string]string `json:"fields" jsonschema:"Only the fields to change"`
}

func (h *RecordHandlers) UpdateRecord(ctx context.Context, _ *mcp.CallToolRequest, input UpdateRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	t, err := h.set.Lookup(input.Entity)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	if len(input.Fields) == 0 {
		return nil, RecordOutput{}, fmt.Errorf("at least one field is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	row, err := t.Patch(ctx, input.ID, listing.Draft(input.Fields))
	if err != nil {
		return nil, RecordOutput{}, fmt.Errorf("failed to update %s %d: %w", t.Name(), input.ID, err)
	}
	return nil, rowToOutput(t.Columns(), row), nil
}

type DeleteRecordInput struct {
	Entity string `json:"entity" jsonschema:"Entity name, e.g. products"`
	ID     int64  `json:"id" jsonschema:"Record ID"`
}

type DeleteRecordOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

// DeleteRecord deletes without the confirmation dialog; calling the tool is the confirmation.
func (h *RecordHandlers) DeleteRecord(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordInput) (*mcp.CallToolResult, DeleteRecordOutput, error) {
	t, err := h.set.Lookup(input.Entity)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := t.Delete(ctx, input.ID); err != nil {
		return nil, DeleteRecordOutput{}, fmt.Errorf("failed to delete %s %d: %w", t.Name(), input.ID, err)
	}
	return nil, DeleteRecordOutput{
		Deleted: true,
		Message: fmt.Sprintf("Deleted %s %d", t.Name(), input.ID),
	}, nil
}

func rowToOutput(cols []listing.ColumnInfo, row listing.Row) RecordOutput {
	out := RecordOutput{ID: row.ID, Label: row.Label, Fields: make(map[string]string, len(cols))}
	for i, c := range cols {
		if i < len(row.Cells) {
			out.Fields[c.Title] = row.Cells[i]
		}
	}
	return out
}
