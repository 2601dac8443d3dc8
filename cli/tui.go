// ABOUTME: Interactive terminal UI subcommand
// ABOUTME: Runs the bubbletea program with toasts, the shared cache and configured list behaviour
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/tui"
)

// TUICommand runs the terminal UI until the user quits.
func TUICommand(env *Env) error {
	toasts := notify.NewCenter(notify.DefaultTTL, env.Logger)

	model := tui.NewModel(tui.Options{
		Session: env.Session,
		Cache:   env.Cache,
		Toasts:  toasts,
		List:    env.ListOptions(toasts),
		Logger:  env.Logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
