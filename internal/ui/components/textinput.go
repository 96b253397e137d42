package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/socratiz/internal/ui/theme"
)

// ChatInput wraps bubbles/textinput for the student's replies.
type ChatInput struct {
	Model textinput.Model
}

// NewChatInput creates a focused input. charLimit caps what the student
// can type; the session sanitizer truncates anyway.
func NewChatInput(placeholder string, charLimit int) ChatInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return ChatInput{Model: ti}
}

// Init returns the initial command.
func (c ChatInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// Update handles messages.
func (c ChatInput) Update(msg tea.Msg) (ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the input, dimmed when not focused.
func (c ChatInput) View() string {
	if !c.Model.Focused() {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(c.Model.View())
	}
	return c.Model.View()
}

// Value returns the current input value.
func (c ChatInput) Value() string {
	return c.Model.Value()
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.Model.Reset()
}

// Blur stops accepting keystrokes.
func (c *ChatInput) Blur() {
	c.Model.Blur()
}

// SetWidth sets the visible width of the input.
func (c *ChatInput) SetWidth(w int) {
	c.Model.SetWidth(w)
}
