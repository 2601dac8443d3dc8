// ABOUTME: Small multi-field text form shared by entity edit dialogs and auth screens
// ABOUTME: Tracks focus across textinputs, cycles reference options and collects values by field key
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salescrm/listing"
)

var optionHintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// fieldOptions are the values a reference input can cycle through.
type fieldOptions struct {
	opts     []listing.Option
	optional bool
}

type formField struct {
	key         string
	label       string
	placeholder string
	value       string
	secret      bool
	limit       int
}

type form struct {
	title   string
	keys    []string
	labels  []string
	inputs  []textinput.Model
	options map[int]fieldOptions
	focus   int
	err     string
}

func newForm(title string, fields ...formField) form {
	f := form{title: title}
	for _, ff := range fields {
		in := textinput.New()
		in.Placeholder = ff.placeholder
		if in.Placeholder == "" {
			in.Placeholder = ff.label
		}
		in.CharLimit = 200
		if ff.limit > 0 {
			in.CharLimit = ff.limit
		}
		if ff.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		in.SetValue(ff.value)

		f.keys = append(f.keys, ff.key)
		f.labels = append(f.labels, ff.label)
		f.inputs = append(f.inputs, in)
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.focus = ((i % len(f.inputs)) + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f form) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (f form) value(key string) string {
	for i, k := range f.keys {
		if k == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

func (f *form) set(key, value string) {
	for i, k := range f.keys {
		if k == key {
			f.inputs[i].SetValue(value)
		}
	}
}

// setOptions attaches selectable values to a field. Optional fields can
// cycle back to blank.
func (f *form) setOptions(key string, opts []listing.Option, optional bool) {
	for i, k := range f.keys {
		if k != key {
			continue
		}
		if f.options == nil {
			f.options = make(map[int]fieldOptions)
		}
		f.options[i] = fieldOptions{opts: opts, optional: optional}
	}
}

// cycle moves the focused input to the next or previous option.
// It reports false when the focused input has none.
func (f *form) cycle(step int) bool {
	fo, ok := f.options[f.focus]
	if !ok || len(fo.opts) == 0 {
		return false
	}
	values := make([]string, 0, len(fo.opts)+1)
	if fo.optional {
		values = append(values, "")
	}
	for _, o := range fo.opts {
		values = append(values, o.Value)
	}

	current := strings.TrimSpace(f.inputs[f.focus].Value())
	next := 0
	for i, v := range values {
		if v == current {
			next = ((i+step)%len(values) + len(values)) % len(values)
			break
		}
	}
	f.inputs[f.focus].SetValue(values[next])
	f.inputs[f.focus].CursorEnd()
	return true
}

// hint names the option an input currently holds.
func (f form) hint(i int) string {
	fo, ok := f.options[i]
	if !ok {
		return ""
	}
	v := strings.TrimSpace(f.inputs[i].Value())
	if v == "" {
		return "←/→ to choose"
	}
	for _, o := range fo.opts {
		if o.Value == v {
			return o.Label
		}
	}
	return "not in list"
}

func (f form) values() map[string]string {
	out := make(map[string]string, len(f.keys))
	for i, k := range f.keys {
		out[k] = f.inputs[i].Value()
	}
	return out
}

// update handles navigation and passes other keys to the focused input.
// It reports whether the form was submitted.
func (f *form) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	case "enter":
		return true, nil
	case "left":
		if f.cycle(-1) {
			return false, nil
		}
	case "right":
		if f.cycle(1) {
			return false, nil
		}
	}
	if len(f.inputs) == 0 {
		return false, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f form) view() string {
	var s strings.Builder
	width := 0
	for _, l := range f.labels {
		width = max(width, len(l))
	}
	for i, in := range f.inputs {
		if i == f.focus {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(fieldLabelStyle.Width(width + 2).Render(f.labels[i] + ":"))
		s.WriteString(" ")
		s.WriteString(in.View())
		if h := f.hint(i); h != "" {
			s.WriteString("  ")
			s.WriteString(optionHintStyle.Render(h))
		}
		s.WriteString("\n")
	}
	if f.err != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(f.err))
		s.WriteString("\n")
	}
	return s.String()
}
