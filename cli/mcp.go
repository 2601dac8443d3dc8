// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for Claude Desktop integration
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/handlers"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio. Outcomes go into tool results,
// so controller notifications are only recorded.
func MCPCommand(env *Env) error {
	if !env.Session.IsLoggedIn() {
		return fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}
	env.Logger.Info("Starting sales CRM MCP server", "server", env.Session.Client().BaseURL())

	set := entities.NewSet(env.Session.Client(), env.ListOptions(&notify.Recorder{}))
	defer set.Close()
	dash := dashboard.New(env.Session.Client(), env.Cache)

	server := handlers.NewServer(set, dash, env.Version)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
