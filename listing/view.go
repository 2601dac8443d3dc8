// ABOUTME: Render-side state of a list controller
// ABOUTME: Fetch and dialog states, rows, paging flags and the untyped Table interface used by the TUI, CLI and MCP
package listing

import (
	"context"
	"fmt"
)

// FetchState follows idle -> loading -> success | error for each load.
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchSuccess
	FetchError
)

func (s FetchState) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchSuccess:
		return "success"
	case FetchError:
		return "error"
	}
	return "idle"
}

// DialogState follows closed -> open -> saving -> closed on success, or back to open on failure.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSaving
)

func (s DialogState) String() string {
	switch s {
	case DialogOpen:
		return "open"
	case DialogSaving:
		return "saving"
	}
	return "closed"
}

// Row is one rendered record.
type Row struct {
	ID     int64
	Label  string
	Cells  []string
	Record any
}

type DetailLine struct {
	Label string
	Value string
}

// Detail is one record rendered for a detail view.
type Detail struct {
	Row
	Lines []DetailLine
}

type ColumnInfo struct {
	Title string
	Width int
}

type FieldInfo struct {
	Key        string
	Label      string
	Kind       FieldKind
	Required   bool
	Choices    []string
	CreateOnly bool
	Default    string
	// HasOptions marks a reference whose values can be listed with Table.Options.
	HasOptions bool
}

// View is a copy of a controller's state. Rows are only present when the
// last load for the current key succeeded.
type View struct {
	Name    string
	Plural  string
	Columns []ColumnInfo
	Rows    []Row

	Page      int
	PageSize  int
	Count     int
	HasPrev   bool
	HasNext   bool
	RawSearch string
	Search    string
	Ordering  string
	Key       string

	State        FetchState
	Err          error
	EmptyMessage string

	Dialog    DialogState
	EditingID int64
	EditDraft Draft
	Draft     Draft

	PendingDelete int64
	DeletePrompt  string
}

// Loading reports whether a fetch is in flight.
func (v View) Loading() bool {
	return v.State == FetchLoading
}

// Empty reports a successful load with no rows.
func (v View) Empty() bool {
	return v.State == FetchSuccess && len(v.Rows) == 0
}

// TotalPages derives the page count from the total, at least 1.
func (v View) TotalPages() int {
	if v.PageSize <= 0 || v.Count <= 0 {
		return 1
	}
	return (v.Count + v.PageSize - 1) / v.PageSize
}

// PageLabel renders e.g. "Page 2 of 5".
func (v View) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages())
}

// Snapshot is a View plus the typed records on the page.
type Snapshot[T any] struct {
	View
	Items []T
}

// Table is the entity-agnostic face of a Controller.
type Table interface {
	Name() string
	Plural() string
	Columns() []ColumnInfo
	Fields() []FieldInfo
	View() View

	Load(ctx context.Context) error
	Search(text string)
	SetSearch(text string)
	Changed() <-chan struct{}
	ChangePage(delta int) bool
	Seek(ctx context.Context, n int) error

	Options(ctx context.Context, key string) ([]Option, error)
	SetDraftField(key, value string) error
	Create(ctx context.Context, draft Draft) (Row, error)
	BeginEdit(id int64) error
	SetEditField(key, value string) error
	CancelEdit()
	Update(ctx context.Context) (Row, error)
	Patch(ctx context.Context, id int64, fields Draft) (Row, error)

	Delete(ctx context.Context, id int64) error
	RequestDelete(id int64) bool
	ConfirmDelete(ctx context.Context) error
	CancelDelete()

	Detail(ctx context.Context, id int64) (Detail, error)
	Close()
}

var _ Table = (*Controller[struct{}])(nil)
