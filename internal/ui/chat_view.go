package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"webcanvas/internal/chat"
	"webcanvas/internal/htmlfile"
	"webcanvas/internal/logging"
	"webcanvas/internal/models"
)

const (
	titleHeight    = 3
	textareaHeight = 5
	helpHeight     = 2
	padding        = 2

	openCommand  = "/open "
	clearCommand = "/clear"
)

// Conductor is the slice of the conversation controller the chat view drives.
type Conductor interface {
	Messages() []models.Message
	Send(ctx context.Context, input string) (*models.Message, bool)
	Apply(block models.CodeBlock)
	Clear()
}

// ArtifactKeeper records a document loaded from disk as the working artifact.
type ArtifactKeeper interface {
	SaveLastHTML(code string) error
}

// EditorMirror holds the latest applied document so the status line can
// report on it. Satisfies the controller's editor port.
type EditorMirror struct {
	mu    sync.Mutex
	value string
}

func (e *EditorMirror) SetValue(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
}

func (e *EditorMirror) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

type ChatViewModel struct {
	conductor  Conductor
	keeper     ArtifactKeeper
	editor     *EditorMirror
	events     *Events
	messages   []models.Message
	viewport   viewport.Model
	textarea   textarea.Model
	spinner    spinner.Model
	confirm    ConfirmOverlayModel
	width      int
	height     int
	waiting    bool
	longWait   bool
	sendSeq    int
	notice     *Notice
	previewURL string
	modelName  string
	err        error
	ctx        context.Context
	cancelFunc context.CancelFunc
	mdRenderer *glamour.TermRenderer
}

type ResponseReceived struct {
	Seq      int
	Response *models.Message
}

type LongWaitMsg struct {
	Seq int
}

type FileOpened struct {
	Doc *htmlfile.Document
}

type FileOpenFailed struct {
	Err error
}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	renderer, err = glamour.NewTermRenderer(
		glamour.WithWordWrap(width - 10),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with basic style: %v, using no style", err)

	renderer, err = glamour.NewTermRenderer()
	if err != nil {
		logging.Error("Critical: Failed to create basic markdown renderer: %v", err)
		return nil
	}

	return renderer
}

// safeRenderMarkdown safely renders markdown with panic recovery and fallback
func (m *ChatViewModel) safeRenderMarkdown(content string) string {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
		}
	}()

	if m.mdRenderer == nil {
		return content
	}
	if content == "" {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

func NewChatViewModel(conductor Conductor, keeper ArtifactKeeper, editor *EditorMirror, events *Events, modelName, previewURL string, width, height int) ChatViewModel {
	ta := textarea.New()
	ta.Placeholder = "Describe the page you want, or /open file.html..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	// Keep only essential editing keys
	ta.KeyMap.CharacterForward = key.NewBinding(key.WithKeys("right"))
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.LineStart = key.NewBinding(key.WithKeys("home"))
	ta.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end"))
	ta.KeyMap.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	ta.KeyMap.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	ta.KeyMap.LineNext = key.NewBinding()
	ta.KeyMap.LinePrevious = key.NewBinding()
	ta.KeyMap.InsertNewline = key.NewBinding()

	viewportHeight := height - titleHeight - textareaHeight - helpHeight - padding
	vp := viewport.New(width-6, viewportHeight)
	vp.SetContent("")
	vp.MouseWheelDelta = 2

	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	return ChatViewModel{
		conductor:  conductor,
		keeper:     keeper,
		editor:     editor,
		events:     events,
		viewport:   vp,
		textarea:   ta,
		spinner:    sp,
		confirm:    NewConfirmOverlayModel("Clear conversation?", "The chat history will be reset. The current preview is kept."),
		width:      width,
		height:     height,
		previewURL: previewURL,
		modelName:  modelName,
		ctx:        ctx,
		cancelFunc: cancel,
		mdRenderer: createMarkdownRenderer(width),
	}
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.loadMessages(),
		waitForNotice(m.events),
		waitForFixRequest(m.events),
		waitForSyntaxWarning(m.events),
	)
}

func (m ChatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case ConfirmAccepted:
		m.confirm.Hide()
		m.textarea.Focus()
		m.conductor.Clear()
		m.notice = &Notice{Title: "Conversation cleared", Severity: chat.SeverityInfo}
		return m, m.loadMessages()

	case ConfirmDismissed:
		m.confirm.Hide()
		m.textarea.Focus()
		return m, nil
	}

	if m.confirm.IsVisible() {
		cmd := m.confirm.UpdateConfirm(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - titleHeight - textareaHeight - helpHeight - padding
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = viewportHeight
		m.textarea.SetWidth(msg.Width - 4)
		m.confirm.UpdateSize(msg.Width)
		m.mdRenderer = createMarkdownRenderer(msg.Width)
		m.renderMessages()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+x", "ctrl+c":
			m.cancelFunc()
			return m, tea.Quit

		case "ctrl+l":
			if !m.waiting {
				m.confirm.Show()
				m.textarea.Blur()
			}
			return m, nil

		case "enter":
			if m.waiting || strings.TrimSpace(m.textarea.Value()) == "" {
				return m, nil
			}
			input := m.textarea.Value()
			m.textarea.Reset()
			return m.dispatchInput(input)
		}

	case MessagesLoaded:
		m.messages = msg.Messages
		m.renderMessages()
		m.viewport.GotoBottom()
		return m, nil

	case ResponseReceived:
		if msg.Seq != m.sendSeq {
			// A newer send superseded this one; the controller already
			// discarded its history effects.
			return m, nil
		}
		m.waiting = false
		m.longWait = false
		return m, m.loadMessages()

	case LongWaitMsg:
		if m.waiting && msg.Seq == m.sendSeq {
			m.longWait = true
		}
		return m, nil

	case NoticeMsg:
		m.notice = &msg.Notice
		return m, waitForNotice(m.events)

	case FixRequestedMsg:
		cmds = append(cmds, waitForFixRequest(m.events))
		if !m.waiting {
			sendCmds := m.startSend(chat.FixCodeSentinel)
			cmds = append(cmds, sendCmds...)
		}
		return m, tea.Batch(cmds...)

	case SyntaxWarningMsg:
		m.notice = &Notice{
			Title:       "Possible syntax issue",
			Description: "Unclosed tags: " + strings.Join(msg.Tags, ", ") + ". Use the Fix button in the preview.",
			Severity:    chat.SeverityInfo,
		}
		return m, waitForSyntaxWarning(m.events)

	case FileOpened:
		m.conductor.Apply(models.CodeBlock{Language: "html", Code: msg.Doc.Content})
		if err := m.keeper.SaveLastHTML(msg.Doc.Content); err != nil {
			logging.Error("Failed to save opened file as working artifact: %v", err)
		}
		m.notice = &Notice{
			Title:       "File opened",
			Description: fmt.Sprintf("%s (%s)", msg.Doc.Path, msg.Doc.Encoding),
			Severity:    chat.SeveritySuccess,
		}
		return m, nil

	case FileOpenFailed:
		m.notice = &Notice{
			Title:       "Could not open file",
			Description: msg.Err.Error(),
			Severity:    chat.SeverityError,
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.waiting {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// dispatchInput routes slash commands and plain prompts.
func (m ChatViewModel) dispatchInput(input string) (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(input)

	if trimmed == clearCommand {
		m.confirm.Show()
		m.textarea.Blur()
		return m, nil
	}

	if strings.HasPrefix(trimmed, openCommand) {
		path := strings.TrimSpace(strings.TrimPrefix(trimmed, openCommand))
		return m, m.openFile(path)
	}

	cmds := m.startSend(input)
	// Show the outgoing message right away; the authoritative copy
	// arrives from the controller with the response.
	pending := models.NewMessage("", models.RoleUser, input)
	m.messages = append(m.messages, *pending)
	m.renderMessages()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

func (m *ChatViewModel) startSend(input string) []tea.Cmd {
	m.waiting = true
	m.longWait = false
	m.notice = nil
	m.sendSeq++
	seq := m.sendSeq
	return []tea.Cmd{
		m.sendMessage(seq, input),
		m.scheduleLongWait(seq),
	}
}

func (m ChatViewModel) sendMessage(seq int, input string) tea.Cmd {
	return func() tea.Msg {
		resp, _ := m.conductor.Send(m.ctx, input)
		return ResponseReceived{Seq: seq, Response: resp}
	}
}

func (m ChatViewModel) scheduleLongWait(seq int) tea.Cmd {
	return tea.Tick(chat.LongWaitThreshold, func(time.Time) tea.Msg {
		return LongWaitMsg{Seq: seq}
	})
}

func (m ChatViewModel) openFile(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := htmlfile.ReadDocument(path)
		if err != nil {
			logging.Error("Open file %q failed: %v", path, err)
			return FileOpenFailed{Err: err}
		}
		logging.Info("Opened %s (%s, %d bytes)", doc.Path, doc.Encoding, doc.Size)
		return FileOpened{Doc: doc}
	}
}

func (m ChatViewModel) loadMessages() tea.Cmd {
	return func() tea.Msg {
		return MessagesLoaded{Messages: m.conductor.Messages()}
	}
}

func (m ChatViewModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+X to exit", m.err))
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("webcanvas") + "\n")

	statusLine := fmt.Sprintf("Model: %s | Preview: %s", m.modelName, m.previewURL)
	b.WriteString(statusBarStyle.Render(statusLine) + "\n")

	var stateLine string
	switch {
	case m.longWait:
		stateLine = m.spinner.View() + " Still working, long generations can take a while..."
	case m.waiting:
		stateLine = m.spinner.View() + " Thinking..."
	default:
		if doc := m.editor.Value(); doc != "" {
			stateLine = fmt.Sprintf("Artifact: %d lines", strings.Count(doc, "\n")+1)
		}
	}
	if m.notice != nil {
		noticeText := m.notice.Title
		if m.notice.Description != "" {
			noticeText += ": " + m.notice.Description
		}
		if stateLine != "" {
			stateLine += " | "
		}
		stateLine += NoticeStyleFor(string(m.notice.Severity)).Render(noticeText)
	}
	b.WriteString(statusBarStyle.Render(stateLine) + "\n")

	b.WriteString(RenderViewportWithBorder(m.viewport.View()))
	b.WriteString("\n")

	scrollInfo := m.renderScrollIndicator()
	if scrollInfo != "" {
		b.WriteString(scrollInfo)
	}
	b.WriteString("\n")

	b.WriteString(m.textarea.View() + "\n")

	helpText := "Enter: Send • /open <file>: Load HTML • Ctrl+L: Clear chat • ↑/↓: Scroll • Ctrl+X: Exit"
	b.WriteString(helpStyle.Render(helpText))

	baseView := b.String()

	return m.confirm.RenderOverlay(baseView)
}

func (m *ChatViewModel) renderMessages() {
	var b strings.Builder

	for _, msg := range m.messages {
		if msg.Role == models.RoleUser {
			label := UserMessageLabelStyle.Render("You:")
			renderedContent := m.safeRenderMarkdown(msg.Content)
			b.WriteString(GetUserMessageContentStyle(m.width).Render(label + "\n" + renderedContent))
			b.WriteString("\n\n")
		} else {
			label := AssistantMessageLabelStyle.Render("Assistant:")
			renderedContent := m.safeRenderMarkdown(msg.Content)
			b.WriteString(GetAssistantMessageContentStyle(m.width).Render(label + "\n" + renderedContent))
			b.WriteString("\n\n")
		}
	}

	m.viewport.SetContent(b.String())
}

func (m ChatViewModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	return ScrollIndicatorStyle.Render(fmt.Sprintf("Scroll: %d%% ↕", scrollPercent))
}

type MessagesLoaded struct {
	Messages []models.Message
}
