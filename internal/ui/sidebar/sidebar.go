package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/internal/ui/theme"
)

// SelectMsg is sent when the user picks an application to tail.
type SelectMsg struct {
	App svc.Application
}

// ItemZoneID returns the bubblezone ID for the application at index i.
func ItemZoneID(i int) string {
	return fmt.Sprintf("sidebar-app-%d", i)
}

// Model represents the application selector panel.
type Model struct {
	apps    []svc.Application
	cursor  int
	offset  int // first visible item
	active  svc.Application
	focused bool
	loading bool
	errText string
	spinner spinner.Model
	keys    theme.KeyMap
	width   int
	height  int
}

// New creates a new sidebar model.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)
	return Model{
		focused: true,
		spinner: s,
		keys:    theme.DefaultKeyMap(),
	}
}

// SetSize updates the sidebar dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

// SetFocused sets whether the sidebar is the focused pane.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the sidebar is focused.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading marks a directory fetch in flight and returns the spinner tick.
func (m *Model) SetLoading() tea.Cmd {
	m.loading = true
	m.errText = ""
	return m.spinner.Tick
}

// SpinnerInit returns the command that starts the loading spinner.
func (m Model) SpinnerInit() tea.Cmd {
	return m.spinner.Tick
}

// Loading reports whether a directory fetch is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// SetApplications replaces the list, keeping the cursor on the same
// application when it is still present.
func (m *Model) SetApplications(apps []svc.Application) {
	var prev svc.Application
	if m.cursor >= 0 && m.cursor < len(m.apps) {
		prev = m.apps[m.cursor]
	}
	m.apps = apps
	m.loading = false
	m.errText = ""
	m.cursor = 0
	for i, a := range apps {
		if svc.SameApplication(a, prev) {
			m.cursor = i
			break
		}
	}
	m.ensureVisible()
}

// SetError records a failed directory fetch. The previous list stays usable.
func (m *Model) SetError(err error) {
	m.loading = false
	m.errText = err.Error()
}

// Failed reports whether the last directory fetch failed.
func (m Model) Failed() bool {
	return m.errText != ""
}

// SetActive marks which application is being tailed.
func (m *Model) SetActive(app svc.Application) {
	m.active = app
}

// Applications returns the current list.
func (m Model) Applications() []svc.Application {
	return m.apps
}

// Selected returns the application under the cursor, if any.
func (m Model) Selected() (svc.Application, bool) {
	if m.cursor >= 0 && m.cursor < len(m.apps) {
		return m.apps[m.cursor], true
	}
	return nil, false
}

// SetCursor sets the cursor to a specific index (clamped to valid range).
func (m *Model) SetCursor(idx int) {
	if idx >= len(m.apps) {
		idx = len(m.apps) - 1
	}
	if idx < 0 {
		idx = 0
	}
	m.cursor = idx
	m.ensureVisible()
}

// SelectApp moves the cursor to app, if it is in the list.
func (m *Model) SelectApp(app svc.Application) {
	for i, a := range m.apps {
		if svc.SameApplication(a, app) {
			m.SetCursor(i)
			return
		}
	}
}

func (m Model) listHeight() int {
	h := m.height - 4 // border top/bottom + title + separator
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.listHeight() {
		m.offset = m.cursor - m.listHeight() + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Update handles key, mouse and spinner events for the sidebar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		for i := m.offset; i < len(m.apps) && i < m.offset+m.listHeight(); i++ {
			if zone.Get(ItemZoneID(i)).InBounds(msg) {
				m.SetCursor(i)
				app := m.apps[i]
				return m, func() tea.Msg { return SelectMsg{App: app} }
			}
		}

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.SetCursor(m.cursor - 1)
		case key.Matches(msg, m.keys.Down):
			m.SetCursor(m.cursor + 1)
		case key.Matches(msg, m.keys.PageUp):
			m.SetCursor(m.cursor - m.listHeight())
		case key.Matches(msg, m.keys.PageDown):
			m.SetCursor(m.cursor + m.listHeight())
		case key.Matches(msg, m.keys.Top):
			m.SetCursor(0)
		case key.Matches(msg, m.keys.Bottom):
			m.SetCursor(len(m.apps) - 1)
		case key.Matches(msg, m.keys.Enter):
			if app, ok := m.Selected(); ok {
				return m, func() tea.Msg { return SelectMsg{App: app} }
			}
		}
	}

	return m, nil
}

// View renders the sidebar.
func (m Model) View() string {
	borderStyle := theme.BorderStyle
	if m.focused {
		borderStyle = theme.ActiveBorderStyle
	}

	titleText := "  Applications"
	if m.loading {
		titleText = fmt.Sprintf("  Applications %s", m.spinner.View())
	}
	title := theme.TitleStyle.Render(titleText)
	sepWidth := m.width - 4
	if sepWidth < 0 {
		sepWidth = 0
	}
	separator := lipgloss.NewStyle().Foreground(theme.ColorDarkGray).Render(
		fmt.Sprintf(" %s", strings.Repeat("─", sepWidth)))

	itemWidth := m.width - 6
	if itemWidth < 4 {
		itemWidth = 4
	}

	var items []string
	switch {
	case m.errText != "" && len(m.apps) == 0:
		items = append(items, theme.ErrorStyle.Render("  Failed to load"), theme.DimStyle.Render("  r to retry"))
	case len(m.apps) == 0 && !m.loading:
		items = append(items, theme.DimStyle.Render("  No applications"))
	}

	end := m.offset + m.listHeight()
	if end > len(m.apps) {
		end = len(m.apps)
	}
	for i := m.offset; i < end; i++ {
		app := m.apps[i]
		cursor := "  "
		style := theme.NormalItemStyle
		if i == m.cursor {
			cursor = theme.SelectedItemStyle.Render("> ")
			style = theme.SelectedItemStyle
		}
		marker := " "
		if m.active != nil && svc.SameApplication(app, m.active) {
			marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("●")
		}

		line := fmt.Sprintf("%s%s %s", cursor, marker, style.Render(ansi.Truncate(app.Label(), itemWidth, "…")))
		items = append(items, zone.Mark(ItemZoneID(i), line))
	}

	content := fmt.Sprintf("%s\n%s\n%s", title, separator, strings.Join(items, "\n"))

	return borderStyle.
		Width(m.width - 2). // subtract border chars
		Height(m.listHeight() + 2).
		Render(content)
}
