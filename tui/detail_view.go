package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func detailCmd(ctx context.Context, t listing.Table, id int64) tea.Cmd {
	return func() tea.Msg {
		d, err := t.Detail(ctx, id)
		if err != nil {
			return detailMsg{err: err}
		}
		return detailMsg{detail: &d}
	}
}

func (m Model) openDetail(t listing.Table, id int64) (Model, tea.Cmd) {
	m.viewMode = ViewDetail
	m.detailTable = t
	m.detailID = id
	m.detail = nil
	m.detailErr = nil
	return m, detailCmd(m.ctx, t, id)
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	name := "RECORD"
	if m.detailTable != nil {
		name = strings.ToUpper(m.detailTable.Name())
	}
	s.WriteString(titleStyle.Render(name + " DETAIL"))
	s.WriteString("\n\n")

	switch {
	case errors.Is(m.detailErr, api.ErrNotFound):
		s.WriteString(m.renderNotFound())
	case m.detailErr != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.detailErr)))
	case m.detail == nil:
		s.WriteString(m.spinner.View() + " Loading...")
	default:
		for _, line := range m.detail.Lines {
			s.WriteString(m.renderField(line.Label, line.Value))
		}
		if q, ok := m.detail.Record.(models.Quote); ok {
			s.WriteString(m.renderLineItems(q))
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderNotFound() string {
	name := "Record"
	if m.detailTable != nil {
		name = titleCase(m.detailTable.Name())
	}
	return warningStyle.Render(name+" not found") + "\n" +
		fmt.Sprintf("The %s you are looking for does not exist or has been deleted.\n", strings.ToLower(name))
}

// renderLineItems lists a quote's products with their subtotals.
func (m Model) renderLineItems(q models.Quote) string {
	var s strings.Builder
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("LINE ITEMS"))
	s.WriteString("\n")

	if len(q.LineItems) == 0 {
		s.WriteString("  No line items\n")
		return s.String()
	}

	var total float64
	for _, item := range q.LineItems {
		unit, _ := models.ParseAmount(item.UnitPrice)
		sub := unit * float64(item.Quantity)
		if item.TotalPrice != "" {
			sub, _ = models.ParseAmount(item.TotalPrice)
		}
		total += sub
		s.WriteString(fmt.Sprintf("  • %s  %d × %s = %s\n",
			item.ProductName, item.Quantity, models.FormatAmount(item.UnitPrice), models.FormatMoney(sub)))
	}
	s.WriteString(m.renderField("Total", models.FormatMoney(total)))
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.detail = nil
		m.detailErr = nil
	case "e":
		if m.detail == nil || m.detailTable == nil {
			return m, nil
		}
		return m.beginEdit(m.detailTable, m.detailID)
	case "d":
		if m.detail == nil || m.detailTable == nil {
			return m, nil
		}
		return m.requestDelete(m.detailTable, m.detailID)
	}

	return m, nil
}
