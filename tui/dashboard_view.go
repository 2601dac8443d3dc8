package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(24)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDashboardView() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	switch {
	case m.statsErr != nil:
		s.WriteString(errorStyle.Render(dashboard.ErrorMessage))
		s.WriteString("\n")
	case m.stats == nil:
		s.WriteString(m.spinner.View() + " " + dashboard.LoadingMessage)
		s.WriteString("\n")
	default:
		s.WriteString(renderStats(m.stats))
	}

	s.WriteString(m.renderDashboardHelp())
	return s.String()
}

func renderStats(st *dashboard.Stats) string {
	var s strings.Builder

	cards := []string{
		card("Total Quotes Value", models.FormatMoney(st.TotalQuotesValue)),
		card("Active Leads", fmt.Sprint(st.ActiveLeads)),
		card("Pending Tasks", fmt.Sprint(st.PendingTasks)),
		card("Active Opportunities", fmt.Sprint(st.ActiveOpportunities)),
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	s.WriteString("\n\n")

	s.WriteString(sectionStyle.Render("Recent Quotes"))
	s.WriteString("\n")
	if len(st.RecentQuotes) == 0 {
		s.WriteString("  No quotes found\n")
	}
	for _, q := range st.RecentQuotes {
		s.WriteString(fmt.Sprintf("  • %s by %s  %s  %s\n",
			q.Title, dash(q.CreatedByName), models.FormatAmount(q.TotalPrice), q.OpportunityName))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("Upcoming Tasks"))
	s.WriteString("\n")
	if len(st.UpcomingTasks) == 0 {
		s.WriteString("  No pending tasks found\n")
	}
	for _, t := range st.UpcomingTasks {
		s.WriteString(fmt.Sprintf("  • %s (%s) due %s\n", t.Title, t.Type, t.DueDate))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("Recent Activities"))
	s.WriteString("\n")
	if len(st.RecentInteractions) == 0 {
		s.WriteString("  No recent activities found\n")
	}
	for _, i := range st.RecentInteractions {
		s.WriteString(fmt.Sprintf("  • %s  %s - %s  %s\n",
			i.Summary, i.Type, dashboard.InteractionSubject(i), i.UserName))
	}
	return s.String()
}

func card(title, value string) string {
	return cardStyle.Render(title + "\n" + cardValueStyle.Render(value))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) renderDashboardHelp() string {
	help := []string{
		"Tab: Switch tabs",
		"r: Refresh",
		"s: Settings",
		"o: Log out",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.switchTab(m.active + 1)
	case "shift+tab":
		return m.switchTab(m.active - 1)
	case "r":
		m.statsLoading = true
		m.statsErr = nil
		return m, loadStatsCmd(m.ctx, m.dash, true)
	case "s":
		return m.openSettings()
	case "o":
		return m.logout()
	}
	return m, nil
}
