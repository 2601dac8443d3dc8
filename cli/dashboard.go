// ABOUTME: Dashboard CLI command
// ABOUTME: Prints the pipeline summary cards and recent activity
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/session"
)

// DashboardCommand prints the dashboard.
func DashboardCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	refresh := fs.Bool("refresh", false, "Ignore cached pages")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !env.Session.IsLoggedIn() {
		return fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}

	svc := dashboard.New(env.Session.Client(), env.Cache)
	load := svc.Load
	if *refresh {
		load = svc.Reload
	}
	st, err := load(context.Background())
	if err != nil {
		env.Logger.Error("dashboard failed", "err", err)
		return errors.New(dashboard.ErrorMessage)
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total Quotes Value\t%s\n", models.FormatMoney(st.TotalQuotesValue))
	_, _ = fmt.Fprintf(w, "Active Leads\t%d\n", st.ActiveLeads)
	_, _ = fmt.Fprintf(w, "Pending Tasks\t%d\n", st.PendingTasks)
	_, _ = fmt.Fprintf(w, "Active Opportunities\t%d\n", st.ActiveOpportunities)
	_ = w.Flush()

	_, _ = fmt.Fprintln(env.Out, "\nRecent Quotes")
	if len(st.RecentQuotes) == 0 {
		_, _ = fmt.Fprintln(env.Out, "  No quotes found")
	}
	for _, q := range st.RecentQuotes {
		_, _ = fmt.Fprintf(env.Out, "  • %s by %s  %s  %s\n",
			q.Title, dashIfEmpty(q.CreatedByName), models.FormatAmount(q.TotalPrice), q.OpportunityName)
	}

	_, _ = fmt.Fprintln(env.Out, "\nUpcoming Tasks")
	if len(st.UpcomingTasks) == 0 {
		_, _ = fmt.Fprintln(env.Out, "  No pending tasks found")
	}
	for _, t := range st.UpcomingTasks {
		_, _ = fmt.Fprintf(env.Out, "  • %s (%s) due %s\n", t.Title, t.Type, t.DueDate)
	}

	_, _ = fmt.Fprintln(env.Out, "\nRecent Activities")
	if len(st.RecentInteractions) == 0 {
		_, _ = fmt.Fprintln(env.Out, "  No recent activities found")
	}
	for _, i := range st.RecentInteractions {
		_, _ = fmt.Fprintf(env.Out, "  • %s  %s - %s\n", i.Summary, i.Type, dashboard.InteractionSubject(i))
	}
	return nil
}
