package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/socratiz/internal/ui/theme"
)

// Picker is a vertical list of choices navigated with the arrow keys.
type Picker struct {
	Items    []string
	Selected int
	offset   int
}

// NewPicker creates a picker with the first item selected.
func NewPicker(items []string) Picker {
	return Picker{Items: items}
}

// Update moves the selection. It returns the chosen item and true when the
// student presses enter.
func (p Picker) Update(msg tea.Msg) (Picker, string, bool) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(p.Items) == 0 {
		return p, "", false
	}

	switch kmsg.String() {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Items)-1 {
			p.Selected++
		}
	case "home", "g":
		p.Selected = 0
	case "end", "G":
		p.Selected = len(p.Items) - 1
	case "enter":
		return p, p.Items[p.Selected], true
	}
	return p, "", false
}

// View renders at most height rows, scrolled so the selection is visible.
func (p *Picker) View(height int) string {
	if len(p.Items) == 0 {
		return theme.Hint.Render("  Nothing here yet.")
	}
	if height <= 0 || height > len(p.Items) {
		height = len(p.Items)
	}
	if p.Selected < p.offset {
		p.offset = p.Selected
	}
	if p.Selected >= p.offset+height {
		p.offset = p.Selected - height + 1
	}

	rows := make([]string, 0, height)
	for i := p.offset; i < p.offset+height; i++ {
		if i == p.Selected {
			rows = append(rows, lipgloss.NewStyle().
				Foreground(theme.Primary).
				Bold(true).
				Render("  ▸ "+p.Items[i]))
			continue
		}
		rows = append(rows, lipgloss.NewStyle().
			Foreground(theme.Text).
			Render("    "+p.Items[i]))
	}
	return strings.Join(rows, "\n")
}
