// ABOUTME: Fire-and-forget user notifications for operation outcomes
// ABOUTME: A toast center for the TUI and a line printer for the CLI share one Notifier interface
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Notifier reports the outcome of a user action. Calls never block and never fail.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Toast is one notification shown to the user.
type Toast struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 4 * time.Second

const maxToasts = 5

// Center keeps recent toasts for display. It is safe for concurrent use.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
	notify chan struct{}
}

// NewCenter creates a toast center. A nil logger disables logging.
func NewCenter(ttl time.Duration, logger *log.Logger) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Center{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		notify: make(chan struct{}, 1),
	}
}

func (c *Center) Success(msg string) { c.push(LevelSuccess, msg) }

func (c *Center) Error(msg string) { c.push(LevelError, msg) }

func (c *Center) push(level Level, msg string) {
	t := Toast{ID: uuid.NewString(), Level: level, Message: msg, CreatedAt: c.now()}

	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
	c.mu.Unlock()

	if level == LevelError {
		c.logger.Warn("notify", "level", level, "msg", msg)
	} else {
		c.logger.Debug("notify", "level", level, "msg", msg)
	}

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Active returns unexpired toasts, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if t.CreatedAt.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.toasts = kept

	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// Latest returns the newest unexpired toast.
func (c *Center) Latest() (Toast, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Toast{}, false
	}
	return active[len(active)-1], true
}

// Dismiss removes a toast by ID.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

// Updates fires (coalesced) whenever a toast is added.
func (c *Center) Updates() <-chan struct{} {
	return c.notify
}

// Printer writes one line per notification, for the CLI.
type Printer struct {
	mu  sync.Mutex
	Out io.Writer
	Err io.Writer
}

func (p *Printer) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.Out, "✓ %s\n", msg)
}

func (p *Printer) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := p.Err
	if w == nil {
		w = p.Out
	}
	_, _ = fmt.Fprintf(w, "✗ %s\n", msg)
}

// Recorder keeps every message. Useful for tests and the MCP server, which
// reports outcomes in its tool results instead of showing them.
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// Reset forgets all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = nil
	r.errors = nil
}
