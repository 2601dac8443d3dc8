// ABOUTME: Assembles the MCP server from the record, dashboard, resource and prompt handlers
// ABOUTME: Every tool goes through the same list controllers the TUI and CLI use
package handlers

import (
	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer registers all tools, resources and prompts.
func NewServer(set *entities.Set, dash *dashboard.Service, version string) *mcp.Server {
	records := NewRecordHandlers(set)
	dashboardHandlers := NewDashboardHandlers(dash)
	resources := NewResourceHandlers(records, dashboardHandlers)
	prompts := NewPromptHandlers(records, dashboardHandlers)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salescrm",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List one page of leads, opportunities, accounts, contacts, products, quotes, tasks, interactions or customers, optionally filtered by a search term",
	}, records.ListRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_record",
		Description: "Get one record with all of its details",
	}, records.GetRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_record",
		Description: "Create a record. Required fields are checked before anything is sent",
	}, records.CreateRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_record",
		Description: "Change only the given fields of a record",
	}, records.UpdateRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete a record permanently",
	}, records.DeleteRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard_stats",
		Description: "Pipeline summary: total quotes value, active leads, pending tasks, active opportunities and recent quotes",
	}, dashboardHandlers.DashboardStats)

	server.AddResource(&mcp.Resource{
		URI:         "crm://dashboard",
		Name:        "dashboard",
		Description: "Pipeline summary",
		MIMEType:    "application/json",
	}, resources.ReadResource)

	for _, name := range set.Names() {
		server.AddResource(&mcp.Resource{
			URI:         "crm://" + name,
			Name:        name,
			Description: "First page of " + name,
			MIMEType:    "application/json",
		}, resources.ReadResource)
	}

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review pipeline health from the dashboard numbers",
	}, prompts.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "record-summary",
		Description: "Summarize one record and suggest follow-ups",
		Arguments: []*mcp.PromptArgument{
			{Name: "entity", Description: "Entity name, e.g. leads", Required: true},
			{Name: "id", Description: "Record ID", Required: true},
		},
	}, prompts.GetPrompt)

	return server
}
