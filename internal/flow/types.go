package flow

// Intent describes what the tutor is trying to do in a state.
type Intent string

const (
	IntentStart      Intent = "start"
	IntentAskProbe   Intent = "ask_probe"
	IntentGiveHint   Intent = "give_hint"
	IntentCheckpoint Intent = "checkpoint"
	IntentReflect    Intent = "reflect"
	IntentSummarize  Intent = "summarize"
)

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentStart, IntentAskProbe, IntentGiveHint, IntentCheckpoint, IntentReflect, IntentSummarize:
		return true
	}
	return false
}

// Event labels a transition. Events are produced by the session walker
// from the student's reply.
type Event string

const (
	EventAnswered   Event = "answered"
	EventGoodAnswer Event = "good_answer"
	EventStuck      Event = "stuck"
	EventCorrect    Event = "correct"
	EventWrong      Event = "wrong"
	EventNext       Event = "next"
)

// Valid reports whether e is one of the known events.
func (e Event) Valid() bool {
	switch e {
	case EventAnswered, EventGoodAnswer, EventStuck, EventCorrect, EventWrong, EventNext:
		return true
	}
	return false
}

// Well-known state IDs.
const (
	StartID      = "start"
	HintID       = "hint1"
	CheckpointID = "checkpoint"
	ReflectID    = "reflect"
	SummaryID    = "summary"

	// FirstCheckpointRef links the checkpoint state to the first quick check.
	FirstCheckpointRef = "checkpoint_1"
)

// Fixed prompts for the states whose text is not authored.
const (
	HintPrompt    = "Let's take a smaller step. What is one thing you already know that could help here?"
	ReflectPrompt = "Nice thinking! How did you figure that out?"
	SummaryPrompt = "Great work today! Let's look back at what you discovered."
)

// State is a node in a conversation flow.
type State struct {
	ID            string `json:"id"`
	Intent        Intent `json:"intent"`
	Prompt        string `json:"prompt,omitempty"`
	CheckpointRef string `json:"checkpointRef,omitempty"`
}

// Transition is a labeled edge between two states.
type Transition struct {
	From string `json:"from"`
	On   Event  `json:"on"`
	To   string `json:"to"`
}

// Flow is a compiled Socratic teaching script. A Flow is immutable once
// built and may be shared between goroutines.
type Flow struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}
