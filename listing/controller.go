// ABOUTME: Generic entity list controller shared by every entity screen
// ABOUTME: Owns paging, debounced search, drafts and dialogs, and refreshes through the keyed cache after mutations
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/query"
)

// DefaultSearchDelay is the quiet period before a search term is applied.
const DefaultSearchDelay = 400 * time.Millisecond

var (
	// ErrSuperseded is returned by a load whose parameters changed, or that a
	// newer load overtook, before its response arrived. Its result is dropped.
	ErrSuperseded = errors.New("list response superseded by a newer request")
	// ErrNoRecord means the ID is not among the rows currently shown.
	ErrNoRecord = errors.New("record is not on the current page")
	// ErrNoDialog means no edit is in progress.
	ErrNoDialog = errors.New("no record is being edited")
	// ErrBusy means the edit dialog is saving.
	ErrBusy = errors.New("edit is already being saved")
	// ErrNoPendingDelete means ConfirmDelete was called without a request.
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
)

// Source is the API collaborator for one collection. *api.Resource satisfies it.
type Source[T any] interface {
	ListKey(p api.ListParams) query.Key
	List(ctx context.Context, p api.ListParams) (*models.Page[T], error)
	Retrieve(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, payload any) (*T, error)
	PartialUpdate(ctx context.Context, id int64, payload any) (*T, error)
	Destroy(ctx context.Context, id int64) error
}

// Options wires a controller to its collaborators.
type Options struct {
	Cache    *query.Cache
	Notifier notify.Notifier
	// SearchDelay defaults to DefaultSearchDelay.
	SearchDelay time.Duration
	// PageSize overrides the descriptor's page size.
	PageSize int
	// ConfirmDeletes gates deletes behind confirmation for every entity.
	ConfirmDeletes bool
	Logger         *log.Logger
}

type pendingDelete struct {
	id     int64
	prompt string
}

// Controller drives one entity screen. It is safe for concurrent use: the TUI
// calls it from its update loop and from command goroutines.
type Controller[T any] struct {
	desc     Descriptor[T]
	src      Source[T]
	cache    *query.Cache
	notifier notify.Notifier
	logger   *log.Logger
	delay    time.Duration
	pageSize int
	confirm  bool

	mu        sync.Mutex
	page      int
	rawSearch string
	search    string
	ordering  string
	timer     *time.Timer
	searchSeq uint64
	changed   chan struct{}
	closed    bool

	gen     uint64
	state   FetchState
	err     error
	data    *models.Page[T]
	dataKey query.Key

	draft        Draft
	dialog       DialogState
	editID       int64
	editDraft    Draft
	editOriginal Draft
	pending      *pendingDelete
}

// New creates a controller on page 1 with an empty search.
func New[T any](desc Descriptor[T], src Source[T], opts Options) *Controller[T] {
	cache := opts.Cache
	if cache == nil {
		cache = query.NewCache()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = &notify.Recorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	delay := opts.SearchDelay
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = desc.PageSize
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	ordering := desc.Ordering
	if ordering == "" {
		ordering = "id"
	}

	return &Controller[T]{
		desc:     desc,
		src:      src,
		cache:    cache,
		notifier: notifier,
		logger:   logger.With("entity", desc.Plural),
		delay:    delay,
		pageSize: pageSize,
		confirm:  desc.ConfirmDelete || opts.ConfirmDeletes,
		page:     1,
		ordering: ordering,
		changed:  make(chan struct{}, 1),
		draft:    Draft{},
	}
}

func (c *Controller[T]) Name() string   { return c.desc.Name }
func (c *Controller[T]) Plural() string { return c.desc.Plural }

// Descriptor returns the controller's configuration.
func (c *Controller[T]) Descriptor() Descriptor[T] { return c.desc }

func (c *Controller[T]) paramsLocked() api.ListParams {
	return api.ListParams{Page: c.page, Ordering: c.ordering, Search: c.search}
}

// Key returns the cache key for the current page, search and ordering.
func (c *Controller[T]) Key() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src.ListKey(c.paramsLocked())
}

// Load fetches the current page, from cache when the key was already fetched.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.fetch(ctx, false)
}

func (c *Controller[T]) fetch(ctx context.Context, revalidate bool) error {
	c.mu.Lock()
	params := c.paramsLocked()
	key := c.src.ListKey(params)
	c.gen++
	gen := c.gen
	c.state = FetchLoading
	c.mu.Unlock()

	fn := func(ctx context.Context) (*models.Page[T], error) {
		return c.src.List(ctx, params)
	}

	var (
		page *models.Page[T]
		err  error
	)
	if revalidate {
		page, err = query.Refresh(ctx, c.cache, key, fn)
	} else {
		page, err = query.Get(ctx, c.cache, key, fn)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || key != c.src.ListKey(c.paramsLocked()) {
		c.logger.Debug("dropping superseded response", "key", key.String())
		return ErrSuperseded
	}
	if err != nil {
		c.state = FetchError
		c.err = err
		c.data = nil
		c.logger.Warn("list failed", "key", key.String(), "err", err)
		return err
	}

	c.state = FetchSuccess
	c.err = nil
	c.data = page
	c.dataKey = key
	return nil
}

// refresh re-fetches after a mutation. Other cached pages of the resource are
// dropped so they are fetched fresh when next shown.
func (c *Controller[T]) refresh(ctx context.Context) {
	key := c.Key()
	c.cache.InvalidatePrefix(key.Resource)
	if err := c.fetch(ctx, true); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Warn("refresh after mutation failed", "err", err)
	}
}

// Search echoes text immediately and applies it after the search delay. A
// call inside the delay restarts the wait, so a burst of keystrokes yields one
// settled term. Settling resets to page 1 and signals Changed.
func (c *Controller[T]) Search(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawSearch = text
	c.searchSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.closed {
		return
	}

	seq := c.searchSeq
	c.timer = time.AfterFunc(c.delay, func() { c.settle(seq) })
}

func (c *Controller[T]) settle(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.searchSeq || c.closed {
		return
	}
	c.timer = nil
	c.search = c.rawSearch
	c.page = 1
	c.logger.Debug("search settled", "search", c.search)

	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// SetSearch applies a search term without debouncing, for non-interactive callers.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.rawSearch = text
	c.search = text
	c.page = 1
}

// Changed fires when a debounced search settles and the page should be reloaded.
func (c *Controller[T]) Changed() <-chan struct{} {
	return c.changed
}

// Close cancels a pending search. The controller stays usable for loads and mutations.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.searchSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// ChangePage moves one page forward or back. It returns false, changing
// nothing, at either boundary or for any delta other than ±1.
func (c *Controller[T]) ChangePage(delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch delta {
	case -1:
		if c.page <= 1 {
			return false
		}
	case 1:
		if !c.hasNextLocked() {
			return false
		}
	default:
		return false
	}
	c.page += delta
	return true
}

// Seek loads page n by stepping forward one page at a time from the first.
func (c *Controller[T]) Seek(ctx context.Context, n int) error {
	c.mu.Lock()
	c.page = 1
	c.mu.Unlock()

	if err := c.Load(ctx); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		if !c.ChangePage(1) {
			return fmt.Errorf("page %d is past the last page of %s", n, c.desc.Plural)
		}
		if err := c.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller[T]) currentLocked() bool {
	return c.state == FetchSuccess && c.data != nil && c.dataKey == c.src.ListKey(c.paramsLocked())
}

func (c *Controller[T]) hasNextLocked() bool {
	if !c.currentLocked() {
		return false
	}
	if c.desc.Paging == PagingCursor {
		return c.data.Next != nil
	}
	return len(c.data.Results) >= c.pageSize && c.data.Count > c.page*c.pageSize
}

func (c *Controller[T]) findLocked(id int64) (T, bool) {
	if c.currentLocked() {
		for _, item := range c.data.Results {
			if c.desc.ID(item) == id {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

// Options loads the selectable values of a reference field. Fields without
// an option source return nil.
func (c *Controller[T]) Options(ctx context.Context, key string) ([]Option, error) {
	f, ok := c.desc.field(key)
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", c.desc.lowerName(), key)
	}
	if f.Options == nil {
		return nil, nil
	}
	opts, err := f.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s options: %w", strings.ToLower(f.Label), err)
	}
	return opts, nil
}

// checkOptions rejects reference values missing from their field's options.
// Options that cannot be loaded leave the check to the backend.
func (c *Controller[T]) checkOptions(ctx context.Context, fields []Field[T], d Draft) error {
	for _, f := range fields {
		v := strings.TrimSpace(d[f.Key])
		if f.Options == nil || v == "" {
			continue
		}
		opts, err := f.Options(ctx)
		if err != nil {
			c.logger.Warn("could not load options", "field", f.Key, "err", err)
			continue
		}
		if !HasOption(opts, v) {
			return &ValidationError{Field: f.Key, Message: fmt.Sprintf("%s %s is not one of the available options", f.Label, v)}
		}
	}
	return nil
}

// SetDraftField updates the new-record draft.
func (c *Controller[T]) SetDraftField(key, value string) error {
	if _, ok := c.desc.field(key); !ok {
		return fmt.Errorf("%s has no field %q", c.desc.lowerName(), key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft[key] = value
	return nil
}

// Create validates draft locally and posts it. On success the draft is
// cleared and the current page re-fetched; on failure the draft is kept.
// A draft that fails validation never reaches the network or the cache.
func (c *Controller[T]) Create(ctx context.Context, draft Draft) (Row, error) {
	c.mu.Lock()
	c.draft = draft.clone()
	c.mu.Unlock()

	if err := validateDraft(c.desc.Fields, draft); err != nil {
		c.notifier.Error(err.Error())
		return Row{}, err
	}
	if err := c.checkOptions(ctx, c.desc.Fields, draft); err != nil {
		c.notifier.Error(err.Error())
		return Row{}, err
	}

	item, err := c.src.Create(ctx, createPayload(c.desc.Fields, draft))
	if err != nil {
		c.notifier.Error(c.failure("create", err))
		return Row{}, err
	}

	c.mu.Lock()
	c.draft = Draft{}
	c.mu.Unlock()

	c.logger.Info("created", "id", c.desc.ID(*item))
	c.notifier.Success(c.desc.createdMessage())
	c.refresh(ctx)
	return c.row(*item), nil
}

// BeginEdit opens the edit dialog pre-populated from a row on the current page.
func (c *Controller[T]) BeginEdit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == DialogSaving {
		return ErrBusy
	}
	item, ok := c.findLocked(id)
	if !ok {
		return ErrNoRecord
	}
	c.editID = id
	c.editOriginal = draftFrom(c.desc.Fields, item, true)
	c.editDraft = c.editOriginal.clone()
	c.dialog = DialogOpen
	return nil
}

// SetEditField changes one field of the open edit dialog.
func (c *Controller[T]) SetEditField(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog != DialogOpen {
		return ErrNoDialog
	}
	if f, ok := c.desc.field(key); !ok || f.CreateOnly {
		return fmt.Errorf("%s has no editable field %q", c.desc.lowerName(), key)
	}
	c.editDraft[key] = value
	return nil
}

// CancelEdit closes the dialog and discards its edits.
func (c *Controller[T]) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == DialogOpen {
		c.closeDialogLocked()
	}
}

func (c *Controller[T]) closeDialogLocked() {
	c.dialog = DialogClosed
	c.editID = 0
	c.editDraft = nil
	c.editOriginal = nil
}

// Update saves the open edit dialog, sending only the fields that changed.
// Success closes the dialog and re-fetches; failure reopens it with the edits kept.
func (c *Controller[T]) Update(ctx context.Context) (Row, error) {
	c.mu.Lock()
	if c.dialog != DialogOpen {
		defer c.mu.Unlock()
		if c.dialog == DialogSaving {
			return Row{}, ErrBusy
		}
		return Row{}, ErrNoDialog
	}

	id := c.editID
	changed := Draft{}
	var editable, touched []Field[T]
	for _, f := range c.desc.Fields {
		if f.CreateOnly {
			continue
		}
		editable = append(editable, f)
		if c.editDraft[f.Key] != c.editOriginal[f.Key] {
			changed[f.Key] = c.editDraft[f.Key]
			touched = append(touched, f)
		}
	}

	if err := validateDraft(editable, c.editDraft); err != nil {
		c.mu.Unlock()
		c.notifier.Error(err.Error())
		return Row{}, err
	}
	if len(changed) == 0 {
		c.closeDialogLocked()
		c.mu.Unlock()
		return Row{}, nil
	}
	c.dialog = DialogSaving
	c.mu.Unlock()

	if err := c.checkOptions(ctx, touched, changed); err != nil {
		c.mu.Lock()
		c.dialog = DialogOpen
		c.mu.Unlock()
		c.notifier.Error(err.Error())
		return Row{}, err
	}

	item, err := c.src.PartialUpdate(ctx, id, c.patchPayload(changed))

	c.mu.Lock()
	if err != nil {
		c.dialog = DialogOpen
		c.mu.Unlock()
		c.notifier.Error(c.failure("update", err))
		return Row{}, err
	}
	c.closeDialogLocked()
	c.mu.Unlock()

	c.notifier.Success(c.desc.updatedMessage())
	c.refresh(ctx)
	return c.row(*item), nil
}

// Patch partially updates a record by ID without the edit dialog. Only the
// given fields are validated and sent.
func (c *Controller[T]) Patch(ctx context.Context, id int64, fields Draft) (Row, error) {
	var touched []Field[T]
	for key := range fields {
		f, ok := c.desc.field(key)
		if !ok || f.CreateOnly {
			err := &ValidationError{Field: key, Message: fmt.Sprintf("%s has no editable field %q", c.desc.lowerName(), key)}
			c.notifier.Error(err.Error())
			return Row{}, err
		}
		touched = append(touched, f)
	}
	if err := validateDraft(touched, fields); err != nil {
		c.notifier.Error(err.Error())
		return Row{}, err
	}
	if err := c.checkOptions(ctx, touched, fields); err != nil {
		c.notifier.Error(err.Error())
		return Row{}, err
	}

	item, err := c.src.PartialUpdate(ctx, id, c.patchPayload(fields))
	if err != nil {
		c.notifier.Error(c.failure("update", err))
		return Row{}, err
	}

	c.notifier.Success(c.desc.updatedMessage())
	c.refresh(ctx)
	return c.row(*item), nil
}

func (c *Controller[T]) patchPayload(fields Draft) map[string]any {
	payload := make(map[string]any, len(fields))
	for key, raw := range fields {
		f, _ := c.desc.field(key)
		payload[key] = encodeField(f, raw)
	}
	return payload
}

// Delete destroys a record. A failed delete leaves the row in place.
func (c *Controller[T]) Delete(ctx context.Context, id int64) error {
	if err := c.src.Destroy(ctx, id); err != nil {
		c.notifier.Error(c.failure("delete", err))
		return err
	}

	c.logger.Info("deleted", "id", id)
	c.notifier.Success(c.desc.deletedMessage())
	c.refresh(ctx)
	return nil
}

// RequestDelete starts a delete. It reports true when the entity requires
// confirmation, in which case ConfirmDelete or CancelDelete must follow; on
// false the caller deletes directly.
func (c *Controller[T]) RequestDelete(id int64) bool {
	if !c.confirm {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prompt := fmt.Sprintf("Delete %s %d?", c.desc.lowerName(), id)
	if item, ok := c.findLocked(id); ok {
		prompt = fmt.Sprintf("Delete %s '%s'?", c.desc.lowerName(), c.desc.label(item))
	}
	c.pending = &pendingDelete{id: id, prompt: prompt}
	return true
}

// ConfirmDelete performs the delete awaiting confirmation.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()

	if p == nil {
		return ErrNoPendingDelete
	}
	return c.Delete(ctx, p.id)
}

// CancelDelete drops the delete awaiting confirmation.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Get retrieves one record straight from the backend. A missing record or a
// non-positive ID matches api.ErrNotFound.
func (c *Controller[T]) Get(ctx context.Context, id int64) (*T, error) {
	return c.src.Retrieve(ctx, id)
}

// Detail retrieves one record and renders its detail lines.
func (c *Controller[T]) Detail(ctx context.Context, id int64) (Detail, error) {
	item, err := c.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Row: c.row(*item)}
	for _, col := range c.desc.details() {
		d.Lines = append(d.Lines, DetailLine{Label: col.Title, Value: col.Value(*item)})
	}
	return d, nil
}

func (c *Controller[T]) failure(action string, err error) string {
	msg := fmt.Sprintf("Failed to %s %s", action, c.desc.lowerName())

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if detail := apiErr.Message(); detail != "" {
			return msg + ": " + detail
		}
	}
	return msg
}

func (c *Controller[T]) row(item T) Row {
	cells := make([]string, len(c.desc.Columns))
	for i, col := range c.desc.Columns {
		cells[i] = strings.TrimSpace(col.Value(item))
	}
	return Row{
		ID:     c.desc.ID(item),
		Label:  c.desc.label(item),
		Cells:  cells,
		Record: item,
	}
}

// Snapshot copies the state for rendering.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot[T]{View: c.viewLocked()}
	if c.currentLocked() {
		s.Items = append([]T(nil), c.data.Results...)
	}
	return s
}

// View is the untyped form of Snapshot.
func (c *Controller[T]) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[T]) viewLocked() View {
	v := View{
		Name:         c.desc.Name,
		Plural:       c.desc.Plural,
		Columns:      c.Columns(),
		Page:         c.page,
		PageSize:     c.pageSize,
		RawSearch:    c.rawSearch,
		Search:       c.search,
		Ordering:     c.ordering,
		Key:          c.src.ListKey(c.paramsLocked()).String(),
		State:        c.state,
		Err:          c.err,
		HasPrev:      c.page > 1,
		HasNext:      c.hasNextLocked(),
		EmptyMessage: c.desc.emptyMessage(),
		Dialog:       c.dialog,
		EditingID:    c.editID,
		EditDraft:    c.editDraft.clone(),
		Draft:        c.draft.clone(),
	}
	if c.pending != nil {
		v.PendingDelete = c.pending.id
		v.DeletePrompt = c.pending.prompt
	}
	if c.currentLocked() {
		v.Count = c.data.Count
		v.Rows = make([]Row, len(c.data.Results))
		for i, item := range c.data.Results {
			v.Rows[i] = c.row(item)
		}
	}
	return v
}

// Columns describes the table columns.
func (c *Controller[T]) Columns() []ColumnInfo {
	out := make([]ColumnInfo, len(c.desc.Columns))
	for i, col := range c.desc.Columns {
		out[i] = ColumnInfo{Title: col.Title, Width: col.Width}
	}
	return out
}

// Fields describes the form fields.
func (c *Controller[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(c.desc.Fields))
	for i, f := range c.desc.Fields {
		out[i] = FieldInfo{
			Key:        f.Key,
			Label:      f.Label,
			Kind:       f.Kind,
			Required:   f.Required,
			Choices:    f.Choices,
			CreateOnly: f.CreateOnly,
			Default:    f.Default,
			HasOptions: f.Options != nil,
		}
	}
	return out
}
