// ABOUTME: Shared state for CLI commands
// ABOUTME: Builds entity screens on the logged-in client and reads prompted input
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/salescrm/config"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/query"
	"github.com/harperreed/salescrm/session"
	"golang.org/x/term"
)

// Env carries what every command needs. main builds it once.
type Env struct {
	Config  *config.Config
	Session *session.Session
	Cache   *query.Cache
	Logger  *log.Logger
	Version string

	Out io.Writer
	In  io.Reader

	reader *bufio.Reader
}

// ListOptions applies the configured paging, search and delete policy.
func (e *Env) ListOptions(n notify.Notifier) listing.Options {
	opts := listing.Options{
		Cache:    e.Cache,
		Notifier: n,
		Logger:   e.Logger,
	}
	if e.Config != nil {
		opts.PageSize = e.Config.PageSize
		opts.SearchDelay = e.Config.SearchDelay
		opts.ConfirmDeletes = e.Config.ConfirmDeletes
	}
	return opts
}

// printer reports successes on Out. Failures come back as errors and are
// printed once by main.
func (e *Env) printer() *notify.Printer {
	return &notify.Printer{Out: e.Out, Err: io.Discard}
}

func (e *Env) entitySet() (*entities.Set, error) {
	if !e.Session.IsLoggedIn() {
		return nil, fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}
	return entities.NewSet(e.Session.Client(), e.ListOptions(e.printer())), nil
}

func (e *Env) input() *bufio.Reader {
	if e.reader == nil {
		in := e.In
		if in == nil {
			in = os.Stdin
		}
		e.reader = bufio.NewReader(in)
	}
	return e.reader
}

// prompt prints label and reads one line.
func (e *Env) prompt(label string) (string, error) {
	_, _ = fmt.Fprint(e.Out, label)
	line, err := e.input().ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func (e *Env) promptSecret(label string) (string, error) {
	f, ok := e.In.(*os.File)
	if e.In == nil {
		f, ok = os.Stdin, true
	}
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return e.prompt(label)
	}

	_, _ = fmt.Fprint(e.Out, label)
	secret, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(e.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

func (e *Env) confirm(question string) (bool, error) {
	answer, err := e.prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
