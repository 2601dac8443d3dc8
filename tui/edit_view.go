package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salescrm/listing"
)

// entityForm builds the create or edit form from the screen's field list.
// Create-only fields are left out of edits.
func entityForm(t listing.Table, edit bool) form {
	v := t.View()
	values := v.Draft
	title := "NEW " + strings.ToUpper(t.Name())
	if edit {
		values = v.EditDraft
		title = "EDIT " + strings.ToUpper(t.Name())
	}

	var fields []formField
	for _, f := range t.Fields() {
		if edit && f.CreateOnly {
			continue
		}
		label := f.Label
		if f.Required {
			label += " *"
		}
		value := values[f.Key]
		if !edit && value == "" {
			value = f.Default
		}
		fields = append(fields, formField{
			key:         f.Key,
			label:       label,
			placeholder: placeholder(f),
			value:       value,
		})
	}
	return newForm(title, fields...)
}

// loadOptionsCmd fetches the choices of every reference field on t's form.
func loadOptionsCmd(ctx context.Context, t listing.Table) tea.Cmd {
	var keys []string
	for _, f := range t.Fields() {
		if f.HasOptions {
			keys = append(keys, f.Key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return func() tea.Msg {
		msg := optionsMsg{table: t, options: make(map[string][]listing.Option, len(keys))}
		for _, key := range keys {
			opts, err := t.Options(ctx, key)
			if err != nil {
				msg.err = err
				continue
			}
			msg.options[key] = opts
		}
		return msg
	}
}

// handleOptions attaches loaded choices to the open form. Results for a form
// that was closed or replaced meanwhile are ignored.
func (m Model) handleOptions(msg optionsMsg) (tea.Model, tea.Cmd) {
	if m.viewMode != ViewEdit || m.editTable() != msg.table {
		return m, nil
	}
	if msg.err != nil {
		m.toasts.Error(msg.err.Error())
	}
	for _, f := range msg.table.Fields() {
		if opts, ok := msg.options[f.Key]; ok {
			m.form.setOptions(f.Key, opts, !f.Required)
		}
	}
	return m, nil
}

func placeholder(f listing.FieldInfo) string {
	switch f.Kind {
	case listing.KindChoice:
		return strings.Join(f.Choices, "/")
	case listing.KindDate:
		return "YYYY-MM-DD"
	case listing.KindReference:
		if f.HasOptions {
			return "←/→ to choose"
		}
		return f.Label + " ID"
	case listing.KindBool:
		return "true/false"
	case listing.KindDecimal:
		return "0.00"
	}
	return f.Label
}

func (m Model) beginEdit(t listing.Table, id int64) (Model, tea.Cmd) {
	if err := t.BeginEdit(id); err != nil {
		m.toasts.Error("Cannot edit " + t.Name() + ": " + err.Error())
		return m, nil
	}
	m.viewMode = ViewEdit
	m.editing = true
	m.form = entityForm(t, true)
	return m, tea.Batch(m.form.focusCmd(), loadOptionsCmd(m.ctx, t))
}

func (m Model) renderEditView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.form.title))
	s.WriteString("\n\n")
	s.WriteString(m.form.view())
	s.WriteString("\n")

	if m.saving {
		s.WriteString(m.spinner.View() + " Saving...\n")
	}

	s.WriteString(m.renderEditHelp())
	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"←/→: Choose",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.editTable()
	if t == nil {
		m.viewMode = ViewList
		return m, nil
	}
	if m.saving {
		return m, nil
	}

	if msg.String() == "esc" {
		if m.editing {
			t.CancelEdit()
		}
		m.viewMode = ViewList
		m.form.err = ""
		return m, nil
	}

	submit, cmd := m.form.update(msg)
	if !submit {
		return m, cmd
	}

	m.form.err = ""
	if m.editing {
		for key, value := range m.form.values() {
			if err := t.SetEditField(key, value); err != nil {
				m.form.err = err.Error()
				return m, nil
			}
		}
		m.saving = true
		return m, updateCmd(m.ctx, t)
	}

	draft := listing.Draft(m.form.values())
	m.saving = true
	return m, createCmd(m.ctx, t, draft)
}

// editTable is the screen the form belongs to: the detail's table when the
// edit started there, else the active tab.
func (m Model) editTable() listing.Table {
	if m.detailTable != nil && m.detail != nil {
		return m.detailTable
	}
	return m.table()
}

func createCmd(ctx context.Context, t listing.Table, draft listing.Draft) tea.Cmd {
	return func() tea.Msg {
		_, err := t.Create(ctx, draft)
		return mutationMsg{op: "create", err: err}
	}
}

func updateCmd(ctx context.Context, t listing.Table) tea.Cmd {
	return func() tea.Msg {
		_, err := t.Update(ctx)
		return mutationMsg{op: "update", err: err}
	}
}

func deleteCmd(ctx context.Context, t listing.Table, id int64, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if confirmed {
			err = t.ConfirmDelete(ctx)
		} else {
			err = t.Delete(ctx, id)
		}
		return mutationMsg{op: "delete", err: err}
	}
}

// handleMutation returns to the list on success. Failures keep the form open
// with its values; the controller has already raised a toast.
func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	m.saving = false

	if msg.err != nil {
		var verr *listing.ValidationError
		if errors.As(msg.err, &verr) {
			m.form.err = verr.Error()
		}
		if msg.op == "delete" && m.viewMode == ViewConfirmDelete {
			m.viewMode = ViewList
		}
		return m, nil
	}

	switch msg.op {
	case "create", "update":
		if m.viewMode == ViewEdit {
			m.viewMode = ViewList
			m.form = form{}
		}
	case "delete":
		m.viewMode = ViewList
		m.selectedRow = max(m.selectedRow-1, 0)
	}
	m.detail = nil
	m.detailTable = nil
	m.statsLoading = m.stats == nil
	return m, nil
}
