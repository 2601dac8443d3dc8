package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salescrm/listing"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	t := m.table()
	if t == nil {
		return s.String()
	}
	v := t.View()

	// Search
	if m.searching || v.RawSearch != "" {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n\n")
	}

	// Table
	s.WriteString(m.renderTable(v))
	s.WriteString("\n\n")

	// Paging
	s.WriteString(m.renderPaging(v))
	s.WriteString("\n")

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTable(v listing.View) string {
	switch {
	case v.State == listing.FetchError:
		return errorStyle.Render(fmt.Sprintf("Error loading %s: %v", v.Plural, v.Err))
	case v.Loading() && len(v.Rows) == 0:
		return m.spinner.View() + " Loading " + v.Plural + "..."
	case v.Empty():
		return helpStyle.Render(v.EmptyMessage)
	}

	columns := make([]table.Column, len(v.Columns))
	for i, c := range v.Columns {
		columns[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	rows := make([]table.Row, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = table.Row(r.Cells)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderPaging(v listing.View) string {
	parts := []string{v.PageLabel()}
	if v.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d total", v.Count))
	}
	if v.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", v.Search))
	}
	prev, next := "‹ Previous", "Next ›"
	if !v.HasPrev {
		prev = tabInactiveStyle.Render(prev)
	}
	if !v.HasNext {
		next = tabInactiveStyle.Render(next)
	}
	return prev + "  " + strings.Join(parts, " · ") + "  " + next
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"←/→: Page",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Search",
		"n: New",
		"e: Edit",
		"d: Delete",
		"r: Refresh",
		"s: Settings",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// selected returns the highlighted row.
func (m Model) selected() (listing.Row, bool) {
	t := m.table()
	if t == nil {
		return listing.Row{}, false
	}
	rows := t.View().Rows
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return listing.Row{}, false
	}
	return rows[m.selectedRow], true
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	t := m.table()
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(t.View().Rows)-1 {
			m.selectedRow++
		}
	case "tab":
		return m.switchTab(m.active + 1)
	case "shift+tab":
		return m.switchTab(m.active - 1)
	case "right", "l", "]":
		if t.ChangePage(1) {
			m.selectedRow = 0
			return m, loadCmd(m.ctx, m.active-1, t)
		}
	case "left", "h", "[":
		if t.ChangePage(-1) {
			m.selectedRow = 0
			return m, loadCmd(m.ctx, m.active-1, t)
		}
	case "r":
		return m, loadCmd(m.ctx, m.active-1, t)
	case "enter":
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.openDetail(t, row.ID)
	case "/":
		m.searching = true
		m.searchInput.SetValue(t.View().RawSearch)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case "n":
		m.viewMode = ViewEdit
		m.editing = false
		m.form = entityForm(t, false)
		return m, tea.Batch(m.form.focusCmd(), loadOptionsCmd(m.ctx, t))
	case "e":
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.beginEdit(t, row.ID)
	case "d":
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.requestDelete(t, row.ID)
	case "s":
		return m.openSettings()
	case "esc":
		return m.switchTab(0)
	}

	return m, nil
}

// handleSearchKeys echoes each keystroke into the controller, which settles
// the term after its search delay and reports back through watchSearch.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.table()
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		t.Search("")
		return m, nil
	}

	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		t.Search(after)
	}
	return m, cmd
}
