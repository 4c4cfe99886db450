package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"

	"github.com/oarafat/podtail/internal/api"
	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/internal/config"
	"github.com/oarafat/podtail/internal/logging"
	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/internal/ui/header"
	"github.com/oarafat/podtail/internal/ui/monitoring"
	"github.com/oarafat/podtail/internal/ui/search"
	"github.com/oarafat/podtail/internal/ui/sidebar"
	"github.com/oarafat/podtail/internal/ui/theme"
)

const toastDuration = 3 * time.Second

// Focus tracks which pane is active.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusTerminal
)

type directoryLoadedMsg struct {
	apps []svc.Application
	err  error
}

// toastMsg shows a short-lived confirmation or error in the help bar.
type toastMsg struct {
	text string
	err  error
}

// Option customises the root model. Used to inject collaborators in tests.
type Option func(*Model)

// WithTransport overrides the stream transport built from config.
func WithTransport(t svc.Transport) Option {
	return func(m *Model) { m.transport = t }
}

// WithDirectory overrides the application directory built from config.
func WithDirectory(d api.Directory) Option {
	return func(m *Model) { m.directory = d }
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyToClipboard = fn }
}

// WithBrowser overrides the URL opener.
func WithBrowser(fn func(string) error) Option {
	return func(m *Model) { m.openURL = fn }
}

// Model is the root Bubble Tea model that composes all UI components.
type Model struct {
	// Submodels
	header     header.Model
	sidebar    sidebar.Model
	monitoring monitoring.Model
	search     search.Model
	keys       theme.KeyMap

	// State
	focus      Focus
	showSearch bool
	showHelp   bool
	cfg        *config.Config
	console    *svc.Console
	transport  svc.Transport
	directory  api.Directory
	log        *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	copyToClipboard func(string) error
	openURL         func(string) error

	// Dimensions
	width  int
	height int

	// Status display
	toast       string
	toastExpiry time.Time
	err         error
}

// NewModel creates the root model.
func NewModel(cfg *config.Config, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		header:          header.New(cfg),
		sidebar:         sidebar.New(),
		monitoring:      monitoring.New(cfg.FollowThreshold),
		search:          search.New(),
		keys:            theme.DefaultKeyMap(),
		cfg:             cfg,
		log:             logging.NewLogger("app"),
		ctx:             ctx,
		cancel:          cancel,
		copyToClipboard: writeClipboard,
		openURL:         openBrowser,
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.transport == nil || m.directory == nil {
		authenticator, err := auth.New(cfg)
		if err != nil {
			m.err = err
			authenticator = auth.NoAuth{}
		}
		if m.transport == nil {
			m.transport = newTransport(cfg, authenticator)
		}
		if m.directory == nil {
			m.directory = api.NewDirectory(authenticator, cfg, logging.NewLogger("directory"))
		}
	}

	m.console = svc.NewConsole(m.transport,
		svc.WithMaxLines(cfg.MaxLines),
		svc.WithLogger(logging.NewLogger("session")),
	)
	m.sidebar.SetLoading()
	m.search.SetLoading(true)
	m.syncSession()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchDirectoryCmd(),
		m.sidebar.SpinnerInit(),
		tea.SetWindowTitle("podtail"),
	)
}

// fetchDirectoryCmd loads the application list in the background.
func (m Model) fetchDirectoryCmd() tea.Cmd {
	dir := m.directory
	ctx := m.ctx
	return func() tea.Msg {
		apps, err := dir.ListApplications(ctx)
		return directoryLoadedMsg{apps: apps, err: err}
	}
}

// Update handles all messages for the application.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case directoryLoadedMsg:
		m.search.SetLoading(false)
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("failed to load applications")
			m.sidebar.SetError(msg.err)
			m.console.Notice("Failed to load applications: " + msg.err.Error())
			m.refreshTerminal()
			return m, nil
		}
		m.sidebar.SetApplications(msg.apps)
		m.search.SetItems(msg.apps)
		return m, nil

	case sidebar.SelectMsg:
		cmd := m.selectApp(msg.App)
		return m, cmd

	case search.NavigateMsg:
		m.showSearch = false
		m.sidebar.SelectApp(msg.App)
		cmd := m.selectApp(msg.App)
		return m, cmd

	case search.CloseMsg:
		m.showSearch = false
		return m, nil

	case tailFrameMsg:
		cmd := m.handleFrame(msg)
		return m, cmd

	case tailClosedMsg:
		if m.console.Closed(msg.sessionID) {
			m.refreshTerminal()
			m.syncSession()
		}
		return m, nil

	case monitoring.ClearMsg:
		m.console.Clear()
		m.refreshTerminal()
		return m, nil

	case toastMsg:
		if msg.err != nil {
			m.err = msg.err
			m.toast = ""
		} else {
			m.err = nil
			m.toast = msg.text
			m.toastExpiry = time.Now().Add(toastDuration)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.showSearch || m.showHelp {
			return m, nil
		}
		var sbCmd, monCmd tea.Cmd
		m.sidebar, sbCmd = m.sidebar.Update(msg)
		// The wheel scrolls the terminal only while the pointer is over it.
		if !isWheel(msg) || zone.Get(monitoring.ZonePane).InBounds(msg) {
			m.monitoring, monCmd = m.monitoring.Update(msg)
		}
		return m, tea.Batch(sbCmd, monCmd)

	case tea.KeyMsg:
		if m.showSearch {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Escape) {
				m.showHelp = false
			}
			return m, nil
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.showSearch = true
		m.search.SetItems(m.sidebar.Applications())
		m.search.Reset()
		// Reopening the selector retries a failed directory fetch.
		if m.sidebar.Failed() {
			m.search.SetLoading(true)
			return m, tea.Batch(m.sidebar.SetLoading(), m.fetchDirectoryCmd())
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.sidebar.Loading() {
			return m, nil
		}
		m.search.SetLoading(true)
		return m, tea.Batch(m.sidebar.SetLoading(), m.fetchDirectoryCmd())
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyBufferCmd()
	case key.Matches(msg, m.keys.Open):
		return m, m.openStreamCmd()
	case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Follow):
		var cmd tea.Cmd
		m.monitoring, cmd = m.monitoring.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusSidebar:
		m.sidebar, cmd = m.sidebar.Update(msg)
	case FocusTerminal:
		m.monitoring, cmd = m.monitoring.Update(msg)
	}
	return m, cmd
}

func isWheel(msg tea.MouseMsg) bool {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return true
	}
	return false
}

func (m *Model) toggleFocus() {
	switch m.focus {
	case FocusSidebar:
		m.focus = FocusTerminal
		m.sidebar.SetFocused(false)
	case FocusTerminal:
		m.focus = FocusSidebar
		m.sidebar.SetFocused(true)
	}
}

// shutdown tears down the active session and cancels in-flight requests.
func (m *Model) shutdown() {
	m.console.Teardown()
	m.cancel()
	m.syncSession()
}

// refreshTerminal pushes the console buffer into the pane.
func (m *Model) refreshTerminal() {
	m.monitoring.Refresh(m.console.Lines())
}

// syncSession mirrors the console's target and state into the header and pane.
func (m *Model) syncSession() {
	label := ""
	if s := m.console.Active(); s != nil {
		label = s.App.Label()
	}
	state := m.console.State()
	m.header.SetTarget(label, state)
	m.monitoring.SetSession(label, state)
}

// layout recalculates component sizes based on terminal dimensions.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	headerHeight := 1
	helpHeight := 1
	contentHeight := m.height - headerHeight - helpHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	sidebarWidth := int(float64(m.width) * theme.SidebarRatio)
	if sidebarWidth < theme.SidebarMinWidth {
		sidebarWidth = theme.SidebarMinWidth
	}
	if sidebarWidth > theme.SidebarMaxWidth {
		sidebarWidth = theme.SidebarMaxWidth
	}

	terminalWidth := m.width - sidebarWidth
	if terminalWidth < 10 {
		terminalWidth = 10
	}

	m.header.SetWidth(m.width)
	m.sidebar.SetSize(sidebarWidth, contentHeight)
	m.monitoring.SetSize(terminalWidth, contentHeight)
}
