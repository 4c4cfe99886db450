// Package monitoring implements the terminal pane: the live log view for the
// selected application, with follow (auto-scroll) handling and the clear control.
package monitoring

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/internal/ui/theme"
)

const (
	zoneClear  = "monitoring-clear"
	zoneFollow = "monitoring-follow"

	// ZonePane marks the whole pane so the parent can hit-test wheel events.
	ZonePane = "monitoring-pane"

	wheelStep = 3

	// title + separator above, help line below
	chromeRows = 3
)

// ClearMsg asks the app to clear the terminal buffer.
type ClearMsg struct{}

// Model holds the terminal pane state. The line buffer itself lives in the
// service console; the pane keeps the rendered rows and the scroll position.
type Model struct {
	label  string
	state  svc.SessionState
	active bool

	lines   []svc.Line
	rows    []string
	yOffset int
	follow  Follow

	keys theme.KeyMap

	width  int
	height int
}

// New creates an empty pane using the given follow threshold (rows).
func New(followThreshold int) Model {
	return Model{follow: NewFollow(followThreshold), keys: theme.DefaultKeyMap()}
}

// SetSize updates the available dimensions and re-renders.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.render()
	m.settle()
}

// SetSession records the target label and state shown in the title.
func (m *Model) SetSession(label string, state svc.SessionState) {
	m.label = label
	m.state = state
	m.active = state != svc.StateIdle
}

// Refresh replaces the displayed lines. Rows are rendered first so the
// follow scroll lands on the new bottom.
func (m *Model) Refresh(lines []svc.Line) {
	m.lines = lines
	m.render()
	m.settle()
}

// settle pins to the bottom when following, otherwise clamps the offset.
func (m *Model) settle() {
	if m.follow.Enabled() {
		m.yOffset = m.maxOffset()
		return
	}
	m.clamp()
}

// Following reports whether the pane auto-scrolls on new content.
func (m Model) Following() bool {
	return m.follow.Enabled()
}

// ToggleFollow flips auto-scroll. Turning it on jumps to the bottom.
func (m *Model) ToggleFollow() {
	if m.follow.Toggle() {
		m.yOffset = m.maxOffset()
	}
}

// YOffset returns the index of the first visible row.
func (m Model) YOffset() int {
	return m.yOffset
}

// ContentHeight is the number of rows available for log output.
func (m Model) ContentHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return h
}

// TotalRows returns the number of rendered rows.
func (m Model) TotalRows() int {
	return len(m.rows)
}

func (m Model) maxOffset() int {
	off := len(m.rows) - m.ContentHeight()
	if off < 0 {
		return 0
	}
	return off
}

func (m *Model) clamp() {
	if m.yOffset > m.maxOffset() {
		m.yOffset = m.maxOffset()
	}
	if m.yOffset < 0 {
		m.yOffset = 0
	}
}

// scrollTo moves the pane and treats it as a scroll event for the follow policy.
func (m *Model) scrollTo(offset int) {
	m.yOffset = offset
	m.clamp()
	client := m.ContentHeight()
	scrollHeight := len(m.rows)
	if scrollHeight < client {
		scrollHeight = client
	}
	m.follow.Observe(scrollHeight, client, m.yOffset)
}

// ScrollBy scrolls n rows (negative is up).
func (m *Model) ScrollBy(n int) {
	m.scrollTo(m.yOffset + n)
}

// --- Update ---

// Update handles scroll keys, the clear/follow controls and the mouse.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.ScrollBy(-1)
		case key.Matches(msg, m.keys.Down):
			m.ScrollBy(1)
		case key.Matches(msg, m.keys.PageUp):
			m.ScrollBy(-m.ContentHeight())
		case key.Matches(msg, m.keys.PageDown):
			m.ScrollBy(m.ContentHeight())
		case key.Matches(msg, m.keys.Top):
			m.scrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.scrollTo(m.maxOffset())
		case key.Matches(msg, m.keys.Follow):
			m.ToggleFollow()
		case key.Matches(msg, m.keys.Clear):
			return m, func() tea.Msg { return ClearMsg{} }
		}
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ScrollBy(-wheelStep)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.ScrollBy(wheelStep)
		return m, nil
	}
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	if zone.Get(zoneClear).InBounds(msg) {
		return m, func() tea.Msg { return ClearMsg{} }
	}
	if zone.Get(zoneFollow).InBounds(msg) {
		m.ToggleFollow()
	}
	return m, nil
}

// --- View ---

// render turns lines into display rows. Embedded newlines become extra rows;
// long rows are truncated to the pane width.
func (m *Model) render() {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	rows := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		style := theme.LogDataStyle
		if l.Kind == svc.LineSystem {
			style = theme.LogSystemStyle
		}
		ts := l.Timestamp
		prefix := fmt.Sprintf("  %s  ", theme.LogTimestampStyle.Render(ts))
		textWidth := width - ansi.StringWidth(prefix)
		if textWidth < 5 {
			textWidth = 5
		}
		for i, part := range strings.Split(strings.ReplaceAll(l.Content, "\t", "    "), "\n") {
			lead := prefix
			if i > 0 {
				lead = strings.Repeat(" ", ansi.StringWidth(prefix))
			}
			rows = append(rows, lead+style.Render(ansi.Truncate(part, textWidth, "…")))
		}
	}
	m.rows = rows
}

// View renders the terminal pane.
func (m Model) View() string {
	if !m.active {
		return m.viewIdle()
	}

	sepWidth := m.width - 2
	if sepWidth < 0 {
		sepWidth = 0
	}
	sep := lipgloss.NewStyle().Foreground(theme.ColorDarkGray).Render(
		fmt.Sprintf(" %s", strings.Repeat("─", sepWidth)))

	help := theme.DimStyle.Render("  c clear  |  f follow  |  j/k scroll  |  pgup/pgdn page  |  g/G top/bottom  |  y copy")

	content := m.visibleRows()
	if len(content) == 0 {
		content = []string{"  " + theme.DimStyle.Render("Waiting for log events...")}
	}
	for len(content) < m.ContentHeight() {
		content = append(content, "")
	}

	lines := []string{m.titleLine(), sep}
	lines = append(lines, content...)
	lines = append(lines, help)
	return m.applyBackground(lines, m.width)
}

func (m Model) titleLine() string {
	var title string
	switch m.state {
	case svc.StateConnecting:
		title = fmt.Sprintf("  Connecting to %s...", m.label)
	case svc.StateClosed:
		title = fmt.Sprintf("  ▹ %s (closed)", m.label)
	case svc.StateError:
		title = fmt.Sprintf("  ▸ %s (error, reconnecting)", m.label)
	default:
		title = fmt.Sprintf("  ▸ Live Logs · %s", m.label)
	}

	clearBtn := zone.Mark(zoneClear, theme.ButtonStyle.Render("[Clear]"))
	followStyle := theme.ButtonStyle
	if m.follow.Enabled() {
		followStyle = theme.ButtonActiveStyle
	}
	follow := zone.Mark(zoneFollow, followStyle.Render("[Follow]"))
	controls := clearBtn + " " + follow

	left := theme.LogConsoleHeaderStyle.Render(ansi.Truncate(title, m.width/2, "…"))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(controls) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + controls
}

func (m Model) visibleRows() []string {
	if len(m.rows) == 0 {
		return nil
	}
	end := m.yOffset + m.ContentHeight()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	start := m.yOffset
	if start > end {
		start = end
	}
	out := make([]string, end-start)
	copy(out, m.rows[start:end])
	return out
}

func (m Model) viewIdle() string {
	contentHeight := m.height
	if contentHeight < 1 {
		contentHeight = 1
	}
	hint := theme.DimStyle.Render("  No application selected. Pick one from the list and press enter.")
	lines := []string{"", hint}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines[:contentHeight], "\n")
}

func (m Model) applyBackground(lines []string, width int) string {
	bgStyle := lipgloss.NewStyle().Background(theme.LogConsoleBg).Width(width)
	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = bgStyle.Render(line)
	}
	return strings.Join(result, "\n")
}
