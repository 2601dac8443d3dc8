// ABOUTME: Config CLI commands
// ABOUTME: Shows, reads and persists client settings
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/salescrm/config"
)

// ConfigCommand handles "config show|get|set|path".
func ConfigCommand(env *Env, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
		for _, key := range config.Keys() {
			value, err := env.Config.Get(key)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", key, dashIfEmpty(value))
		}
		return w.Flush()

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: config get <key>")
		}
		value, err := env.Config.Get(args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(env.Out, value)
		return nil

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: config set <key> <value>")
		}
		if err := env.Config.Set(args[1], args[2]); err != nil {
			return err
		}
		if err := env.Config.Save(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(env.Out, "✓ %s saved to %s\n", args[1], env.Config.Path)
		return nil

	case "path":
		_, _ = fmt.Fprintln(env.Out, env.Config.Path)
		return nil
	}
	return fmt.Errorf("unknown config command: %s", args[0])
}
