// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Routes keys and command results between the dashboard, entity tabs, forms and auth screens
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/query"
	"github.com/harperreed/salescrm/session"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewList
	ViewDetail
	ViewEdit
	ViewConfirmDelete
	ViewLogin
	ViewRegister
	ViewOnboarding
	ViewSettings
)

// Options wires the TUI to the process-wide session and shared services.
type Options struct {
	Session *session.Session
	Cache   *query.Cache
	Toasts  *notify.Center
	// List carries paging, search delay and delete policy for every screen.
	// Its Cache and Notifier are replaced with the ones above.
	List   listing.Options
	Logger *log.Logger
}

// Model is the main bubbletea model
type Model struct {
	ctx     context.Context
	session *session.Session
	cache   *query.Cache
	toasts  *notify.Center
	list    listing.Options
	logger  *log.Logger

	set    *entities.Set
	dash   *dashboard.Service
	tables []listing.Table
	done   chan struct{}

	viewMode ViewMode
	// active is the tab index: 0 is the dashboard, i > 0 is tables[i-1].
	active int

	// List view state
	selectedRow int
	searching   bool
	searchInput textinput.Model

	// Detail view state
	detail      *listing.Detail
	detailErr   error
	detailID    int64
	detailTable listing.Table

	// Edit view state
	form    form
	editing bool
	saving  bool

	// Dashboard state
	stats        *dashboard.Stats
	statsErr     error
	statsLoading bool

	spinner spinner.Model

	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. A logged-in session with an organization
// opens on the dashboard; otherwise the login or onboarding screen comes first.
func NewModel(opts Options) Model {
	cache := opts.Cache
	if cache == nil {
		cache = query.NewCache()
	}
	toasts := opts.Toasts
	if toasts == nil {
		toasts = notify.NewCenter(notify.DefaultTTL, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	search := textinput.New()
	search.Placeholder = "Search..."
	search.Prompt = "/ "
	search.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         context.Background(),
		session:     opts.Session,
		cache:       cache,
		toasts:      toasts,
		list:        opts.List,
		logger:      logger,
		searchInput: search,
		spinner:     sp,
		width:       80,
		height:      24,
	}
	m.route()
	return m
}

// route picks the screen for the session's current state.
func (m *Model) route() {
	user, ok := m.session.User()
	switch {
	case !ok:
		m.teardown()
		m.viewMode = ViewLogin
		m.form = loginForm("")
	case !user.HasOrganization():
		m.teardown()
		m.viewMode = ViewOnboarding
		m.form = onboardingForm()
	default:
		if m.set == nil {
			m.build()
		}
		m.viewMode = ViewDashboard
		m.active = 0
	}
}

func (m *Model) build() {
	opts := m.list
	opts.Cache = m.cache
	opts.Notifier = m.toasts
	if opts.Logger == nil {
		opts.Logger = m.logger
	}

	client := m.session.Client()
	m.set = entities.NewSet(client, opts)
	m.tables = m.set.Tables()
	m.dash = dashboard.New(client, m.cache)
	m.done = make(chan struct{})
	m.stats = nil
	m.statsErr = nil
	m.statsLoading = true
}

func (m *Model) teardown() {
	if m.set == nil {
		return
	}
	m.set.Close()
	close(m.done)
	m.set = nil
	m.tables = nil
	m.dash = nil
	m.stats = nil
	m.cache = query.NewCache()
}

// Close releases the screens of the final model once the program exits.
func (m Model) Close() {
	m.teardown()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForToast(m.toasts)}
	cmds = append(cmds, m.startCmds()...)
	return tea.Batch(cmds...)
}

// startCmds are the commands a freshly built set needs.
func (m Model) startCmds() []tea.Cmd {
	if m.set == nil {
		return nil
	}
	cmds := []tea.Cmd{loadStatsCmd(m.ctx, m.dash, false)}
	for i, t := range m.tables {
		cmds = append(cmds, watchSearch(i, t, m.done))
	}
	return cmds
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case toastMsg:
		return m, tea.Batch(waitForToast(m.toasts), expireToasts())
	case tickMsg:
		return m, nil
	case loadedMsg:
		return m.handleLoaded(msg)
	case searchSettledMsg:
		if m.set == nil || msg.table >= len(m.tables) {
			return m, nil
		}
		m.selectedRow = 0
		return m, tea.Batch(loadCmd(m.ctx, msg.table, m.tables[msg.table]), watchSearch(msg.table, m.tables[msg.table], m.done))
	case statsMsg:
		m.statsLoading = false
		m.stats = msg.stats
		m.statsErr = msg.err
		return m, nil
	case detailMsg:
		m.detail = msg.detail
		m.detailErr = msg.err
		return m, nil
	case mutationMsg:
		return m.handleMutation(msg)
	case optionsMsg:
		return m.handleOptions(msg)
	case authMsg:
		return m.handleAuth(msg)
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.viewMode {
	case ViewDashboard:
		body = m.renderDashboardView()
	case ViewList:
		body = m.renderListView()
	case ViewDetail:
		body = m.renderDetailView()
	case ViewEdit:
		body = m.renderEditView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewLogin, ViewRegister, ViewOnboarding, ViewSettings:
		body = m.renderAuthView()
	}
	if toasts := m.renderToasts(); toasts != "" {
		body += "\n" + toasts
	}
	return body
}

// typing reports whether keystrokes belong to a text input.
func (m Model) typing() bool {
	switch m.viewMode {
	case ViewEdit, ViewLogin, ViewRegister, ViewOnboarding, ViewSettings:
		return true
	case ViewList:
		return m.searching
	}
	return false
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.typing() {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewLogin, ViewRegister, ViewOnboarding, ViewSettings:
		return m.handleAuthKeys(msg)
	}

	return m, nil
}

// table returns the controller behind the active tab.
func (m Model) table() listing.Table {
	if m.active <= 0 || m.active > len(m.tables) {
		return nil
	}
	return m.tables[m.active-1]
}

// switchTab moves to tab i, loading the table when it is a list.
func (m Model) switchTab(i int) (Model, tea.Cmd) {
	n := len(m.tables) + 1
	m.active = ((i % n) + n) % n
	m.selectedRow = 0
	m.searching = false
	m.searchInput.Blur()

	if m.active == 0 {
		m.viewMode = ViewDashboard
		m.statsLoading = m.stats == nil
		return m, loadStatsCmd(m.ctx, m.dash, false)
	}
	m.viewMode = ViewList
	t := m.table()
	m.searchInput.SetValue(t.View().RawSearch)
	return m, loadCmd(m.ctx, m.active-1, t)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, listing.ErrSuperseded) {
		return m, nil
	}
	if msg.table == m.active-1 {
		rows := len(m.table().View().Rows)
		if m.selectedRow >= rows {
			m.selectedRow = max(rows-1, 0)
		}
	}
	return m, nil
}

func (m Model) renderTabs() string {
	tabs := []string{"Dashboard"}
	for _, t := range m.tables {
		tabs = append(tabs, titleCase(t.Plural()))
	}

	var rendered []string
	for i, tab := range tabs {
		if i == m.active {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHeader() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("SALES COOKBOOK"))
	if user, ok := m.session.User(); ok {
		s.WriteString("  ")
		s.WriteString(helpStyle.Render(user.FullName() + " · " + user.OrganizationName))
	}
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	return s.String()
}

func (m Model) renderToasts() string {
	var lines []string
	for _, t := range m.toasts.Active() {
		if t.Level == notify.LevelError {
			lines = append(lines, toastErrorStyle.Render("✗ "+t.Message))
		} else {
			lines = append(lines, toastSuccessStyle.Render("✓ "+t.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Messages

type loadedMsg struct {
	table int
	err   error
}

type searchSettledMsg struct{ table int }

type statsMsg struct {
	stats *dashboard.Stats
	err   error
}

type detailMsg struct {
	detail *listing.Detail
	err    error
}

type mutationMsg struct {
	op  string
	err error
}

type optionsMsg struct {
	table   listing.Table
	options map[string][]listing.Option
	err     error
}

type authMsg struct {
	op   string
	user string
	err  error
}

type toastMsg struct{}

type tickMsg time.Time

// Commands

func loadCmd(ctx context.Context, idx int, t listing.Table) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{table: idx, err: t.Load(ctx)}
	}
}

func loadStatsCmd(ctx context.Context, svc *dashboard.Service, reload bool) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		var (
			st  *dashboard.Stats
			err error
		)
		if reload {
			st, err = svc.Reload(ctx)
		} else {
			st, err = svc.Load(ctx)
		}
		return statsMsg{stats: st, err: err}
	}
}

// watchSearch turns one settled search into a message. It is re-armed after
// every settle and released when the set is torn down.
func watchSearch(idx int, t listing.Table, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-t.Changed():
			return searchSettledMsg{table: idx}
		case <-done:
			return nil
		}
	}
}

func waitForToast(c *notify.Center) tea.Cmd {
	return func() tea.Msg {
		<-c.Updates()
		return toastMsg{}
	}
}

// expireToasts re-renders once the newest toast has timed out.
func expireToasts() tea.Cmd {
	return tea.Tick(notify.DefaultTTL+100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10"))

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
