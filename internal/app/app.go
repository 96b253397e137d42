// Package app is the terminal chat front end for a tutoring session.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/safety"
	"github.com/abhisek/socratiz/internal/session"
	"github.com/abhisek/socratiz/internal/ui/components"
	"github.com/abhisek/socratiz/internal/ui/layout"
	"github.com/abhisek/socratiz/internal/ui/theme"
)

const progressWidth = 20

// Options configures the chat model.
type Options struct {
	Session *session.Session
	Flow    *flow.Flow
	Title   string
}

type speaker int

const (
	speakerTutor speaker = iota
	speakerStudent
	speakerNotice
)

type chatLine struct {
	who  speaker
	text string
}

// replyMsg carries a tutor reply back from the session.
type replyMsg struct {
	Reply *session.Reply
	Err   error
}

// AppModel is the root Bubble Tea model: a transcript, an input box and a
// progress bar tracking the flow.
type AppModel struct {
	ctx   context.Context
	sess  *session.Session
	flow  *flow.Flow
	title string

	input components.ChatInput
	lines []chatLine

	step    int
	total   int
	waiting bool
	done    bool
	err     error

	width  int
	height int
}

// New creates the chat model. The session must not have been started.
func New(ctx context.Context, opts Options) (AppModel, error) {
	if opts.Session == nil || opts.Flow == nil {
		return AppModel{}, errors.New("app: session and flow are required")
	}
	_, total, _ := opts.Flow.Progress(flow.StartID)
	return AppModel{
		ctx:     ctx,
		sess:    opts.Session,
		flow:    opts.Flow,
		title:   opts.Title,
		input:   components.NewChatInput("Type your answer...", safety.MaxInputRunes),
		total:   total,
		waiting: true,
	}, nil
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.start())
}

func (m AppModel) start() tea.Cmd {
	return func() tea.Msg {
		r, err := m.sess.Start(m.ctx)
		return replyMsg{Reply: r, Err: err}
	}
}

func (m AppModel) respond(text string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.sess.Respond(m.ctx, text)
		return replyMsg{Reply: r, Err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 6)
		return m, nil

	case replyMsg:
		return m.handleReply(msg), nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		}
	}

	if m.done {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AppModel) handleReply(msg replyMsg) AppModel {
	m.waiting = false
	if msg.Err != nil {
		m.err = msg.Err
		m.lines = append(m.lines, chatLine{who: speakerNotice, text: "Something went wrong: " + msg.Err.Error()})
		return m
	}

	r := msg.Reply
	if r.Redirected {
		m.lines = append(m.lines, chatLine{who: speakerNotice, text: "Let's keep our chat about the lesson."})
	}
	m.lines = append(m.lines, chatLine{who: speakerTutor, text: r.Text})
	if pos, _, ok := m.flow.Progress(r.StateID); ok {
		m.step = pos
	}
	if r.Done {
		m.done = true
		m.input.Blur()
	}
	return m
}

func (m AppModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}
	if m.waiting {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.lines = append(m.lines, chatLine{who: speakerStudent, text: text})
	m.waiting = true
	return m, m.respond(text)
}

// Transcript returns the conversation as plain text, one "who: text" line
// per message.
func (m AppModel) Transcript() string {
	var b strings.Builder
	for _, l := range m.lines {
		switch l.who {
		case speakerTutor:
			b.WriteString("tutor: ")
		case speakerStudent:
			b.WriteString("you: ")
		default:
			b.WriteString("-- ")
		}
		b.WriteString(l.text)
		b.WriteString("\n")
	}
	return b.String()
}

// Done reports whether the session has reached its summary.
func (m AppModel) Done() bool { return m.done }

// Err returns the last session error, if any.
func (m AppModel) Err() error { return m.err }

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if frame := m.frame(); frame != "" {
		v.SetContent(frame)
	}
	return v
}

// frame renders the whole screen, or "" before the first resize.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	progress := components.NewProgressBar(m.step, m.total, progressWidth).View()
	header := layout.RenderHeader(m.title, progress, m.width)

	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Quit"},
	}
	if m.done {
		hints = []layout.KeyHint{{Key: "Enter", Description: "Finish"}}
	}
	footer := layout.RenderFooter(hints, m.width)

	inputView := m.renderInput()
	rows := layout.ContentHeight(header, footer, m.height) - lipgloss.Height(inputView) - 1
	content := layout.TailLines(m.renderLines(m.width-4), rows) + "\n" + inputView

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) renderInput() string {
	switch {
	case m.done:
		return theme.Hint.Render("  Session complete. Press Enter to finish.")
	case m.waiting:
		return theme.Hint.Render("  Thinking...")
	}
	return "  " + m.input.View()
}

func (m AppModel) renderLines(width int) string {
	bubbleWidth := width * 3 / 4
	var b strings.Builder
	for _, l := range m.lines {
		switch l.who {
		case speakerTutor:
			b.WriteString("  " + theme.TutorName.Render("Tutor") + "\n")
			b.WriteString(indent(theme.TutorBubble.Width(bubbleWidth).Render(l.text), 2))
		case speakerStudent:
			pad := width - bubbleWidth
			b.WriteString(strings.Repeat(" ", pad) + theme.StudentName.Render("You") + "\n")
			b.WriteString(indent(theme.StudentBubble.Width(bubbleWidth).Render(l.text), pad))
		case speakerNotice:
			b.WriteString("  " + theme.Notice.Render(l.text))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

// Run starts the Bubble Tea program and blocks until the student quits.
func Run(ctx context.Context, opts Options) error {
	model, err := New(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	if fm, ok := final.(AppModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
