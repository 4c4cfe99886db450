package search

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/internal/ui/theme"
)

// NavigateMsg is sent when the user picks an application to tail.
type NavigateMsg struct {
	App svc.Application
}

// CloseMsg is sent when the search overlay should be closed without navigation.
type CloseMsg struct{}

// Model represents the quick-jump popup over the application directory.
type Model struct {
	query      string
	items      []svc.Application // all searchable applications
	results    []svc.Application // filtered results
	cursor     int
	maxResults int
	loading    bool // directory fetch in flight
	keys       theme.KeyMap
}

// New creates a new search overlay model.
func New() Model {
	return Model{
		maxResults: 12,
		keys:       theme.DefaultKeyMap(),
	}
}

// SetItems updates the searchable pool and re-filters.
func (m *Model) SetItems(items []svc.Application) {
	m.items = items
	m.filter()
}

// SetLoading marks whether the directory is still being fetched.
func (m *Model) SetLoading(v bool) {
	m.loading = v
}

// Reset clears the search state for a fresh opening.
func (m *Model) Reset() {
	m.query = ""
	m.cursor = 0
	m.filter()
}

// Update handles key events for the search overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Escape), msg.String() == "ctrl+k":
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Enter):
			if len(m.results) > 0 && m.cursor < len(m.results) {
				app := m.results[m.cursor]
				return m, func() tea.Msg { return NavigateMsg{App: app} }
			}
		case msg.String() == "up", msg.String() == "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
		case msg.String() == "down", msg.String() == "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case msg.String() == "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
				m.cursor = 0
				m.filter()
			}
		default:
			if len(msg.String()) == 1 {
				m.query += msg.String()
				m.cursor = 0
				m.filter()
			}
		}
	}
	return m, nil
}

// filter keeps applications whose label contains every space-separated term.
func (m *Model) filter() {
	if m.query == "" {
		m.results = nil
		return
	}

	terms := strings.Fields(strings.ToLower(m.query))
	var matched []svc.Application

	for _, app := range m.items {
		label := strings.ToLower(app.Label())
		ok := true
		for _, term := range terms {
			if !strings.Contains(label, term) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, app)
			if len(matched) >= m.maxResults {
				break
			}
		}
	}

	m.results = matched
}

// View renders the search overlay as a centered popup.
func (m Model) View(termWidth, termHeight int) string {
	popupWidth := termWidth / 2
	if popupWidth < 40 {
		popupWidth = 40
	}
	if popupWidth > 80 {
		popupWidth = 80
	}

	title := theme.TitleStyle.Render("  Jump to application")

	inputStyle := lipgloss.NewStyle().
		Foreground(theme.ColorWhite).
		Bold(true)
	promptStyle := lipgloss.NewStyle().
		Foreground(theme.ColorAccent).
		Bold(true)

	input := fmt.Sprintf("%s %s%s",
		promptStyle.Render(">"),
		inputStyle.Render(m.query),
		theme.SelectedItemStyle.Render("_"))

	sep := lipgloss.NewStyle().Foreground(theme.ColorDarkGray).Render(
		strings.Repeat("─", popupWidth-4))

	var resultLines []string
	switch {
	case m.query == "" && m.loading:
		resultLines = append(resultLines, theme.DimStyle.Render("  Type to search...  ↻ loading applications"))
	case m.query == "":
		resultLines = append(resultLines, theme.DimStyle.Render("  Type to search..."))
	case len(m.results) == 0:
		resultLines = append(resultLines, theme.DimStyle.Render("  No matches"))
	default:
		for i, app := range m.results {
			cursor := "  "
			nameStyle := theme.NormalItemStyle
			if i == m.cursor {
				cursor = theme.SelectedItemStyle.Render("> ")
				nameStyle = theme.SelectedItemStyle
			}

			kind := "app"
			if _, ok := app.(svc.MultiPod); ok {
				kind = "pod"
			}
			tag := lipgloss.NewStyle().
				Foreground(theme.ColorAccentDim).
				Render(fmt.Sprintf("[%s]", kind))

			resultLines = append(resultLines, fmt.Sprintf("%s%s %s", cursor, tag, nameStyle.Render(app.Label())))
		}
	}

	help := theme.DimStyle.Render("  esc close  |  enter tail  |  up/down navigate")

	lines := []string{title, input, sep}
	lines = append(lines, resultLines...)
	lines = append(lines, sep, help)

	popup := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorAccent).
		Padding(1, 2).
		Width(popupWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(termWidth, termHeight,
		lipgloss.Center, lipgloss.Center,
		popup,
		lipgloss.WithWhitespaceChars(" "),
	)
}
