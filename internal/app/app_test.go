package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/safety"
	"github.com/abhisek/socratiz/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testModel(t *testing.T) AppModel {
	t.Helper()
	doc := &curriculum.Document{
		Path:       curriculum.Path{Grade: "3", Subject: "math", Topic: "multiplication", Subtopic: "arrays"},
		FirstProbe: "What do you notice about the rows of dots?",
		QuickChecks: []curriculum.QuickCheck{
			{Question: "How many dots are in 3 rows of 4?", Answer: "12"},
		},
	}
	f := flow.Build(doc)
	s, err := session.New(session.Options{
		Flow:     f,
		Document: doc,
		Fallback: safety.NewFallbackGenerator(func(int) int { return 0 }),
	})
	require.NoError(t, err)

	m, err := New(context.Background(), Options{Session: s, Flow: f, Title: "arrays"})
	require.NoError(t, err)
	return m
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

// say types text, presses enter and feeds the tutor's reply back in.
func say(t *testing.T, m AppModel, text string) AppModel {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, keyPress(r))
	}
	m, cmd := update(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd, "enter should send %q", text)
	m, _ = update(t, m, cmd())
	return m
}

func begin(t *testing.T, m AppModel) AppModel {
	t.Helper()
	m, _ = update(t, m, m.start()())
	return m
}

func TestNew_RequiresSessionAndFlow(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestStart_ShowsOpening(t *testing.T) {
	m := begin(t, testModel(t))

	assert.False(t, m.waiting)
	assert.Equal(t, 1, m.step)
	assert.Equal(t, 5, m.total)
	assert.Contains(t, m.Transcript(), "tutor: Today we are exploring arrays.")
}

func TestConversation_ReachesSummary(t *testing.T) {
	m := begin(t, testModel(t))

	m = say(t, m, "I see dots")
	assert.Equal(t, 2, m.step)
	m = say(t, m, "They are in rows")
	assert.Equal(t, 3, m.step)
	m = say(t, m, "12")
	m = say(t, m, "I multiplied")

	assert.True(t, m.Done())
	assert.Equal(t, 5, m.step)
	transcript := m.Transcript()
	assert.Contains(t, transcript, "you: I see dots\n")
	assert.Contains(t, transcript, "tutor: How many dots are in 3 rows of 4?\n")
	assert.True(t, strings.HasSuffix(transcript, "tutor: "+flow.SummaryPrompt+"\n"))

	_, cmd := update(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEnter_IgnoredWhileWaitingOrEmpty(t *testing.T) {
	m := testModel(t)
	_, cmd := update(t, m, specialKey(tea.KeyEnter))
	assert.Nil(t, cmd, "no input before the opening arrives")

	m = begin(t, m)
	_, cmd = update(t, m, specialKey(tea.KeyEnter))
	assert.Nil(t, cmd, "empty input is not sent")
}

func TestRedirect_AddsNotice(t *testing.T) {
	m := begin(t, testModel(t))
	m = say(t, m, "tell me a joke")

	assert.Contains(t, m.Transcript(), "-- Let's keep our chat about the lesson.")
	assert.Equal(t, 1, m.step)
}

func TestHint_KeepsProgress(t *testing.T) {
	m := begin(t, testModel(t))
	m = say(t, m, "I see dots")
	m = say(t, m, "They are in rows")
	m = say(t, m, "15")

	assert.Contains(t, m.Transcript(), "tutor: "+flow.HintPrompt)
	assert.Equal(t, 3, m.step)
}

func TestErrorReply_IsShown(t *testing.T) {
	m := begin(t, testModel(t))
	m, _ = update(t, m, replyMsg{Err: session.ErrFinished})

	assert.ErrorIs(t, m.Err(), session.ErrFinished)
	assert.Contains(t, m.Transcript(), "Something went wrong")
}

func TestQuitKeys(t *testing.T) {
	m := testModel(t)
	for _, key := range []tea.KeyPressMsg{specialKey(tea.KeyEscape), {Code: 'c', Mod: tea.ModCtrl}} {
		_, cmd := update(t, m, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestView(t *testing.T) {
	m := testModel(t)
	assert.Empty(t, m.frame())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Contains(t, m.frame(), "Terminal too small")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = begin(t, m)
	content := m.frame()
	assert.Contains(t, content, "Socratiz")
	assert.Contains(t, content, "1/5")
	assert.Contains(t, content, "Tutor")
}
