package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// ConfirmModel is a yes/no dialog rendered over the chat view.
type ConfirmModel struct {
	title      string
	message    string
	yesFocused bool
	width      int
}

// ConfirmAccepted is sent when the user confirms the dialog.
type ConfirmAccepted struct{}

// ConfirmDismissed is sent when the user cancels the dialog.
type ConfirmDismissed struct{}

func NewConfirmModel(title, message string) ConfirmModel {
	return ConfirmModel{
		title:   title,
		message: message,
	}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "right", "tab":
			m.yesFocused = !m.yesFocused
			return m, nil
		case "y":
			return m, func() tea.Msg { return ConfirmAccepted{} }
		case "n", "esc":
			return m, func() tea.Msg { return ConfirmDismissed{} }
		case "enter":
			if m.yesFocused {
				return m, func() tea.Msg { return ConfirmAccepted{} }
			}
			return m, func() tea.Msg { return ConfirmDismissed{} }
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	dialogWidth := m.width / 2
	if dialogWidth < 44 {
		dialogWidth = 44
	}

	var content strings.Builder
	content.WriteString(ConfirmTitleStyle.Render(m.title))
	content.WriteString("\n\n")
	content.WriteString(m.message)
	content.WriteString("\n\n")
	content.WriteString(RenderButton("Yes", m.yesFocused))
	content.WriteString("  ")
	content.WriteString(RenderButton("No", !m.yesFocused))
	content.WriteString("\n\n")
	content.WriteString(HelpTextSimpleStyle.Render("←/→: Switch • Enter: Confirm • Esc: Cancel"))

	return ConfirmBorderStyle.Width(dialogWidth - 4).Render(content.String())
}

// ConfirmOverlayModel wraps the confirm dialog with the overlay library
type ConfirmOverlayModel struct {
	confirm ConfirmModel
	visible bool
}

func NewConfirmOverlayModel(title, message string) ConfirmOverlayModel {
	return ConfirmOverlayModel{
		confirm: NewConfirmModel(title, message),
	}
}

func (m *ConfirmOverlayModel) Show() {
	m.confirm.yesFocused = false
	m.visible = true
}

func (m *ConfirmOverlayModel) Hide() {
	m.visible = false
}

func (m *ConfirmOverlayModel) IsVisible() bool {
	return m.visible
}

func (m *ConfirmOverlayModel) UpdateSize(width int) {
	m.confirm.width = width
}

func (m *ConfirmOverlayModel) UpdateConfirm(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	var cmd tea.Cmd
	var mdl tea.Model
	mdl, cmd = m.confirm.Update(msg)
	m.confirm = mdl.(ConfirmModel)
	return cmd
}

func (m ConfirmOverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	overlayModel := overlay.New(
		m.confirm,
		&staticViewModel{content: backgroundView},
		overlay.Center, // horizontal position
		overlay.Center, // vertical position
		0,
		0,
	)

	return overlayModel.View()
}

// staticViewModel renders static content as the overlay background
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
