// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Shows the screen's confirmation prompt for entities that require one before deleting
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salescrm/listing"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// requestDelete asks the screen whether the delete needs confirmation and
// either opens the dialog or deletes right away.
func (m Model) requestDelete(t listing.Table, id int64) (Model, tea.Cmd) {
	if t.RequestDelete(id) {
		m.viewMode = ViewConfirmDelete
		m.detailTable = t
		m.detailID = id
		return m, nil
	}
	return m, deleteCmd(m.ctx, t, id, false)
}

func (m Model) renderConfirmDeleteView() string {
	prompt := "Delete this record?"
	if m.detailTable != nil {
		if p := m.detailTable.View().DeletePrompt; p != "" {
			prompt = p
		}
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		prompt,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	// Center the box on screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.detailTable
	if t == nil {
		m.viewMode = ViewList
		return m, nil
	}

	switch msg.String() {
	case "y", "Y":
		return m, deleteCmd(m.ctx, t, m.detailID, true)
	case "n", "N", "esc":
		t.CancelDelete()
		if m.detail != nil {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
	}

	return m, nil
}
