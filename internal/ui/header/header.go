package header

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/oarafat/podtail/internal/config"
	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/internal/ui/theme"
)

// Model represents the header bar at the top of the TUI.
type Model struct {
	server        string
	transport     string
	authenticated bool
	target        string
	state         svc.SessionState
	width         int
}

// New creates a new header model.
func New(cfg *config.Config) Model {
	server := cfg.ServerURL
	if u, err := url.Parse(cfg.ServerURL); err == nil && u.Host != "" {
		server = u.Host
	}
	if cfg.DirectoryFile != "" {
		server += " (file directory)"
	}
	return Model{
		server:        server,
		transport:     string(cfg.Transport),
		authenticated: cfg.IsAuthenticated(),
	}
}

// SetWidth updates the header width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetTarget records the label and connection state of the tailed application.
func (m *Model) SetTarget(label string, state svc.SessionState) {
	m.target = label
	m.state = state
}

// Badge renders the connection state pill.
func Badge(state svc.SessionState) string {
	switch state {
	case svc.StateConnecting:
		return theme.BadgeConnectingStyle.Render("connecting")
	case svc.StateStreaming:
		return theme.BadgeLiveStyle.Render("live")
	case svc.StateError:
		return theme.BadgeErrorStyle.Render("error")
	case svc.StateClosed:
		return theme.BadgeIdleStyle.Render("closed")
	default:
		return theme.BadgeIdleStyle.Render("idle")
	}
}

// View renders the header bar.
func (m Model) View() string {
	left := theme.HeaderStyle.Render(" podtail ")

	bar := lipgloss.NewStyle().
		Foreground(theme.ColorWhite).
		Background(theme.ColorDarkGray).
		Padding(0, 1)

	target := m.target
	if target == "" {
		target = "no application"
	}

	authLabel := ""
	if m.authenticated {
		authLabel = " · token"
	}
	right := bar.Render(fmt.Sprintf("%s · %s%s", m.server, m.transport, authLabel))
	badge := Badge(m.state)

	maxTarget := m.width - lipgloss.Width(left) - lipgloss.Width(badge) - lipgloss.Width(right) - 2
	if maxTarget < 4 {
		maxTarget = 4
	}
	middle := bar.Render(ansi.Truncate(target, maxTarget, "…"))

	leftWidth := lipgloss.Width(left) + lipgloss.Width(middle) + lipgloss.Width(badge)
	gap := m.width - leftWidth - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	fill := lipgloss.NewStyle().
		Background(theme.ColorDarkGray).
		Render(fmt.Sprintf("%*s", gap, ""))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, middle, badge, fill, right)
}
