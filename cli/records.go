// ABOUTME: Record CLI commands
// ABOUTME: List, show, create, update and delete records of any entity through the shared list screens
package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/salescrm/listing"
)

// fieldsFlag collects repeated --set key=value pairs.
type fieldsFlag listing.Draft

func (f fieldsFlag) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f fieldsFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f[key] = value
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// entityArgs splits "<entity> [id] [flags]".
func entityArgs(args []string, withID bool) (entity string, id int64, rest []string, err error) {
	want := 1
	usage := "<entity>"
	if withID {
		want = 2
		usage = "<entity> <id>"
	}
	if len(args) < want || strings.HasPrefix(args[0], "-") {
		return "", 0, nil, fmt.Errorf("usage: %s", usage)
	}
	entity = args[0]
	if withID {
		if id, err = parseID(args[1]); err != nil {
			return "", 0, nil, err
		}
	}
	return entity, id, args[want:], nil
}

// ListCommand prints one page of an entity.
func ListCommand(env *Env, args []string) error {
	entity, _, rest, err := entityArgs(args, false)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	search := fs.String("search", "", "Search term")
	page := fs.Int("page", 1, "Page number")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	t.SetSearch(*search)
	if err := t.Seek(context.Background(), *page); err != nil {
		return fmt.Errorf("failed to list %s: %w", t.Plural(), err)
	}

	v := t.View()
	if v.Empty() {
		_, _ = fmt.Fprintln(env.Out, v.EmptyMessage)
		return nil
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	titles := make([]string, len(v.Columns))
	rules := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		titles[i] = strings.ToUpper(c.Title)
		rules[i] = strings.Repeat("-", len(c.Title))
	}
	_, _ = fmt.Fprintln(w, strings.Join(titles, "\t"))
	_, _ = fmt.Fprintln(w, strings.Join(rules, "\t"))
	for _, row := range v.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = dashIfEmpty(c)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(env.Out, "\n%s (%d %s)\n", v.PageLabel(), v.Count, v.Plural)
	return nil
}

// GetCommand prints every detail line of one record.
func GetCommand(env *Env, args []string) error {
	entity, id, _, err := entityArgs(args, true)
	if err != nil {
		return err
	}
	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	d, err := t.Detail(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get %s %d: %w", t.Name(), id, err)
	}

	_, _ = fmt.Fprintf(env.Out, "%s #%d: %s\n\n", t.Name(), d.ID, d.Label)
	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	for _, line := range d.Lines {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", line.Label, dashIfEmpty(line.Value))
	}
	_ = w.Flush()
	return nil
}

// FieldsCommand lists the fields accepted by --set for an entity.
func FieldsCommand(env *Env, args []string) error {
	entity, _, _, err := entityArgs(args, false)
	if err != nil {
		return err
	}
	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tLABEL\tKIND\tREQUIRED\tDEFAULT\tCHOICES")
	_, _ = fmt.Fprintln(w, "---\t-----\t----\t--------\t-------\t-------")
	for _, f := range t.Fields() {
		required := ""
		if f.Required {
			required = "yes"
		}
		kind := f.Kind.String()
		if f.CreateOnly {
			kind += " (create only)"
		}
		choices := strings.Join(f.Choices, "/")
		if f.HasOptions {
			opts, err := t.Options(context.Background(), f.Key)
			if err != nil {
				env.Logger.Warn("could not load options", "field", f.Key, "err", err)
			}
			parts := make([]string, 0, len(opts))
			for _, o := range opts {
				parts = append(parts, o.Value+"="+o.Label)
			}
			choices = strings.Join(parts, ", ")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Key, f.Label, kind, dashIfEmpty(required), dashIfEmpty(f.Default), dashIfEmpty(choices))
	}
	_ = w.Flush()
	return nil
}

// CreateCommand creates a record from --set pairs.
func CreateCommand(env *Env, args []string) error {
	entity, _, rest, err := entityArgs(args, false)
	if err != nil {
		return err
	}
	fields := fieldsFlag{}
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	fs.Var(fields, "set", "Field value as key=value (repeatable)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	row, err := t.Create(context.Background(), listing.Draft(fields))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.Out, "  ID: %d\n", row.ID)
	return nil
}

// UpdateCommand changes only the given fields of a record.
func UpdateCommand(env *Env, args []string) error {
	entity, id, rest, err := entityArgs(args, true)
	if err != nil {
		return err
	}
	fields := fieldsFlag{}
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	fs.Var(fields, "set", "Field value as key=value (repeatable)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("at least one --set key=value is required")
	}

	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	_, err = t.Patch(context.Background(), id, listing.Draft(fields))
	return err
}

// DeleteCommand deletes a record, asking first when the entity requires it.
func DeleteCommand(env *Env, args []string) error {
	entity, id, rest, err := entityArgs(args, true)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	set, err := env.entitySet()
	if err != nil {
		return err
	}
	defer set.Close()
	t, err := set.Lookup(entity)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *yes || !t.RequestDelete(id) {
		return t.Delete(ctx, id)
	}

	ok, err := env.confirm(t.View().DeletePrompt)
	if err != nil {
		t.CancelDelete()
		return err
	}
	if !ok {
		t.CancelDelete()
		_, _ = fmt.Fprintln(env.Out, "Cancelled")
		return nil
	}
	return t.ConfirmDelete(ctx)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
