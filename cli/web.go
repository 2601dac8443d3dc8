// ABOUTME: Web UI subcommand
// ABOUTME: Serves the read-only browser view until interrupted
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/session"
	"github.com/harperreed/salescrm/web"
)

// WebCommand serves the web UI on localhost.
func WebCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	port := fs.Int("port", 8080, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !env.Session.IsLoggedIn() {
		return fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}

	set := entities.NewSet(env.Session.Client(), env.ListOptions(&notify.Recorder{}))
	defer set.Close()

	server, err := web.NewServer(set, dashboard.New(env.Session.Client(), env.Cache), env.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, _ = fmt.Fprintf(env.Out, "Serving http://localhost:%d (Ctrl+C to stop)\n", *port)
	return server.Start(ctx, *port)
}
