package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/socratiz/internal/ui/components"
	"github.com/abhisek/socratiz/internal/ui/layout"
	"github.com/abhisek/socratiz/internal/ui/theme"
)

// PickerModel lets the student choose what to study.
type PickerModel struct {
	title  string
	picker components.Picker
	chosen string

	width  int
	height int
}

// NewPicker creates a picker over items.
func NewPicker(title string, items []string) PickerModel {
	return PickerModel{title: title, picker: components.NewPicker(items)}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
	}

	var (
		item string
		ok   bool
	)
	m.picker, item, ok = m.picker.Update(msg)
	if ok {
		m.chosen = item
		return m, tea.Quit
	}
	return m, nil
}

// Chosen returns the selected item, or "" if the student quit.
func (m PickerModel) Chosen() string { return m.chosen }

func (m PickerModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if frame := m.frame(); frame != "" {
		v.SetContent(frame)
	}
	return v
}

func (m PickerModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.title, "", m.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Quit"},
	}, m.width)

	rows := layout.ContentHeight(header, footer, m.height) - 2
	content := "\n" + theme.Title.Render("  What would you like to explore?") + "\n" + m.picker.View(rows)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Pick runs the picker and returns the chosen item, or "" if the student
// quit without choosing.
func Pick(ctx context.Context, title string, items []string) (string, error) {
	p := tea.NewProgram(NewPicker(title, items), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(PickerModel); ok {
		return fm.Chosen(), nil
	}
	return "", nil
}
