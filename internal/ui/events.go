package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"webcanvas/internal/chat"
)

// Notice is a user-facing notification surfaced in the status area.
type Notice struct {
	Title       string
	Description string
	Severity    chat.Severity
}

// Events bridges callbacks from the responder and the preview server
// into the bubbletea update loop. Callbacks fire on arbitrary
// goroutines; the channels hand them to the UI without blocking the
// caller.
type Events struct {
	notices  chan Notice
	fixCode  chan struct{}
	warnings chan []string
}

func NewEvents() *Events {
	return &Events{
		notices:  make(chan Notice, 8),
		fixCode:  make(chan struct{}, 1),
		warnings: make(chan []string, 4),
	}
}

// Notify implements chat.Notifier. Drops the notice if the UI is not
// draining the channel rather than stall a network goroutine.
func (e *Events) Notify(title, description string, severity chat.Severity) {
	select {
	case e.notices <- Notice{Title: title, Description: description, Severity: severity}:
	default:
	}
}

// FixRequested is wired to the preview server's fix-code button.
func (e *Events) FixRequested() {
	select {
	case e.fixCode <- struct{}{}:
	default:
	}
}

// SyntaxWarning is wired to the preview server's unclosed-tag check.
func (e *Events) SyntaxWarning(tags []string) {
	select {
	case e.warnings <- tags:
	default:
	}
}

type NoticeMsg struct {
	Notice Notice
}

type FixRequestedMsg struct{}

type SyntaxWarningMsg struct {
	Tags []string
}

func waitForNotice(e *Events) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Notice: <-e.notices}
	}
}

func waitForFixRequest(e *Events) tea.Cmd {
	return func() tea.Msg {
		<-e.fixCode
		return FixRequestedMsg{}
	}
}

func waitForSyntaxWarning(e *Events) tea.Cmd {
	return func() tea.Msg {
		return SyntaxWarningMsg{Tags: <-e.warnings}
	}
}
