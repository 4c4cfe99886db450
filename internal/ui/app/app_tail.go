package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/internal/config"
	"github.com/oarafat/podtail/internal/logging"
	svc "github.com/oarafat/podtail/internal/service"
)

// tailFrameMsg carries one frame tagged with the session that produced it.
type tailFrameMsg struct {
	sessionID uint64
	frame     svc.Frame
}

// tailClosedMsg reports that a session's frame stream has ended.
type tailClosedMsg struct {
	sessionID uint64
}

// newTransport builds the configured stream transport.
func newTransport(cfg *config.Config, a auth.Authenticator) svc.Transport {
	backoff := svc.Backoff{
		Initial: cfg.RetryInitial,
		Max:     cfg.RetryMax,
		Limit:   cfg.RetryLimit,
	}
	log := logging.NewLogger("transport")

	if cfg.Transport == config.TransportWebSocket {
		return &svc.WebSocketTransport{
			URL:     cfg.WebSocketURL,
			Auth:    a,
			Backoff: backoff,
			Log:     log,
		}
	}
	return &svc.SSETransport{
		URL:     cfg.StreamURL,
		Auth:    a,
		Client:  &http.Client{}, // no timeout: streams stay open indefinitely
		Backoff: backoff,
		Log:     log,
	}
}

// --- Tail lifecycle helpers ---

// selectApp supersedes any running session with a new one for app.
func (m *Model) selectApp(app svc.Application) tea.Cmd {
	session := m.console.Select(m.ctx, app)
	m.sidebar.SetActive(app)
	m.syncSession()
	m.refreshTerminal()
	return tea.Batch(
		waitForFrames(session),
		tea.SetWindowTitle("podtail · "+app.Label()),
	)
}

// waitForFrames returns a command that blocks on the session's channel and
// returns the next frame, or tailClosedMsg once the channel is closed.
func waitForFrames(session *svc.TailSession) tea.Cmd {
	if session == nil {
		return nil
	}
	return func() tea.Msg {
		frame, ok := <-session.Frames()
		if !ok {
			return tailClosedMsg{sessionID: session.ID}
		}
		return tailFrameMsg{sessionID: session.ID, frame: frame}
	}
}

// handleFrame applies a frame from the live session and re-arms the wait.
// Frames from superseded sessions are dropped and their wait is not re-armed.
func (m *Model) handleFrame(msg tailFrameMsg) tea.Cmd {
	if !m.console.Current(msg.sessionID) {
		return nil
	}
	if m.console.Apply(msg.sessionID, msg.frame) {
		m.refreshTerminal()
	}
	m.syncSession()
	return waitForFrames(m.console.Active())
}

// --- Clipboard and browser ---

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

func openBrowser(url string) error {
	return browser.OpenURL(url)
}

// copyBufferCmd copies the terminal contents to the system clipboard.
func (m Model) copyBufferCmd() tea.Cmd {
	lines := m.console.Lines()
	if len(lines) == 0 {
		return func() tea.Msg { return toastMsg{text: "Nothing to copy"} }
	}
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s\n", l.Timestamp, l.Content)
	}
	text := b.String()
	write := m.copyToClipboard
	return func() tea.Msg {
		if err := write(text); err != nil {
			return toastMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return toastMsg{text: fmt.Sprintf("Copied %d lines", len(lines))}
	}
}

// openStreamCmd opens the raw stream URL of the current application in a browser.
func (m Model) openStreamCmd() tea.Cmd {
	session := m.console.Active()
	if session == nil {
		return func() tea.Msg { return toastMsg{text: "No application selected"} }
	}
	url := m.cfg.StreamURL(session.App.Key())
	open := m.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return toastMsg{err: fmt.Errorf("open browser: %w", err)}
		}
		return toastMsg{text: "Opened stream in browser"}
	}
}
