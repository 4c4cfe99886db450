package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/oarafat/podtail/internal/ui/monitoring"
	"github.com/oarafat/podtail/internal/ui/theme"
	"github.com/oarafat/podtail/version"
)

// View renders the full application.
// zone.Scan() strips bubblezone markers and records zone positions for mouse hit-testing.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showSearch {
		bg := dimContent(m.renderContent())
		return zone.Scan(overlayCenter(bg, m.search.View(m.width, m.height), m.width, m.height))
	}
	if m.showHelp {
		bg := dimContent(m.renderContent())
		return zone.Scan(overlayCenter(bg, m.renderFullHelp(), m.width, m.height))
	}
	return zone.Scan(m.renderContent())
}

// renderContent renders header, the sidebar and terminal panes, and the help bar.
func (m Model) renderContent() string {
	terminal := zone.Mark(monitoring.ZonePane, m.monitoring.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), terminal)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), panes, m.renderHelp())
}

// dimContent applies ANSI dim (faint) styling to every line of the rendered string.
// It wraps each line with the SGR dim code (\033[2m) and a full reset at the end.
// This causes the terminal to render all text at reduced brightness.
func dimContent(s string) string {
	const dimOn = "\033[2m"
	const reset = "\033[0m"
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Wrap the entire line: dim-on at the start, reset at the end.
		// Any inner resets in the line will cancel dimming mid-line, so we
		// also inject dim-on after every reset sequence we find.
		lines[i] = dimOn + strings.ReplaceAll(line, reset, reset+dimOn) + reset
	}
	return strings.Join(lines, "\n")
}

// overlayCenter composites a foreground popup centered on top of a dimmed background.
// Lines outside the popup's Y range show the dimmed background as-is.
// Lines inside the popup's Y range splice the popup content into the dimmed
// background using ANSI-aware string truncation, preserving the dimmed background
// on the left and right sides of the popup.
func overlayCenter(bg, fg string, termWidth, termHeight int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	// Pad or truncate background to exactly termHeight lines
	for len(bgLines) < termHeight {
		bgLines = append(bgLines, "")
	}
	bgLines = bgLines[:termHeight]

	fgHeight := len(fgLines)
	fgWidth := 0
	for _, line := range fgLines {
		if w := lipgloss.Width(line); w > fgWidth {
			fgWidth = w
		}
	}

	startY := (termHeight - fgHeight) / 2
	startX := (termWidth - fgWidth) / 2
	if startY < 0 {
		startY = 0
	}
	if startX < 0 {
		startX = 0
	}

	result := make([]string, termHeight)
	for i := 0; i < termHeight; i++ {
		if i >= startY && i < startY+fgHeight {
			fgIdx := i - startY
			// Splice: dimmed-bg-left + popup-line + dimmed-bg-right
			bgLeft := ansi.Truncate(bgLines[i], startX, "")
			bgRight := ansi.TruncateLeft(bgLines[i], startX+fgWidth, "")
			result[i] = bgLeft + fgLines[fgIdx] + bgRight
		} else {
			result[i] = bgLines[i]
		}
	}

	return strings.Join(result, "\n")
}

var helpKeyStyle = lipgloss.NewStyle().Foreground(theme.ColorAccent).Bold(true)

func renderBinding(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s %s", helpKeyStyle.Render(h.Key), theme.DimStyle.Render(h.Desc))
}

func (m Model) renderHelp() string {
	var parts []string
	for _, b := range append(m.keys.ShortHelp(), m.keys.Help) {
		parts = append(parts, renderBinding(b))
	}
	help := strings.Join(parts, theme.DimStyle.Render("  |  "))

	// Status takes precedence over the version on the right.
	right := theme.DimStyle.Render(version.GetShort())
	if m.toast != "" && time.Now().Before(m.toastExpiry) {
		right = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("✓ " + m.toast)
	} else if m.err != nil {
		right = theme.ErrorStyle.Render("Error: " + m.err.Error())
	}

	avail := m.width - 4 // HelpBarStyle padding
	rightWidth := ansi.StringWidth(right)
	if ansi.StringWidth(help)+rightWidth+2 > avail {
		help = ansi.Truncate(help, max(avail-rightWidth-2, 0), "…")
	}
	gap := avail - ansi.StringWidth(help) - rightWidth
	if gap < 2 {
		gap = 2
	}
	return theme.HelpBarStyle.Render(help + strings.Repeat(" ", gap) + right)
}

// renderFullHelp renders every binding, one column per group, as a popup.
func (m Model) renderFullHelp() string {
	var cols []string
	for _, group := range m.keys.FullHelp() {
		rows := make([]string, len(group))
		for i, b := range group {
			rows[i] = renderBinding(b)
		}
		cols = append(cols, lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(rows, "\n")))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Keys"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		"",
		theme.DimStyle.Render("? or esc to close"),
	)
	return theme.ActiveBorderStyle.Padding(1, 2).Render(body)
}
