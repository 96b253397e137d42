package flow

import (
	"fmt"
	"strings"

	"github.com/abhisek/socratiz/internal/curriculum"
)

// Build compiles a curriculum document into a conversation flow:
// probe, hint when stuck, checkpoint, remediate when wrong, reflect, summarize.
//
// Build never fails. Missing optional fields only suppress the states that
// depend on them; a nil or empty document yields the minimal
// start -> checkpoint -> reflect -> summary flow. Probe IDs are positional
// (probe{idx+2} for step_probes[idx]), so skipped empty probes leave gaps.
func Build(doc *curriculum.Document) *Flow {
	if doc == nil {
		doc = &curriculum.Document{}
	}
	b := &builder{}

	b.state(State{ID: StartID, Intent: IntentStart})

	lastProbeID := StartID
	if first := strings.TrimSpace(doc.FirstProbe); first != "" {
		b.state(State{ID: "probe1", Intent: IntentAskProbe, Prompt: first})
		b.edge(StartID, EventAnswered, "probe1")
		lastProbeID = "probe1"
	} else {
		b.edge(StartID, EventAnswered, CheckpointID)
	}

	for idx, step := range doc.StepProbes {
		text := strings.TrimSpace(step.Probe)
		if text == "" {
			continue
		}
		id := fmt.Sprintf("probe%d", idx+2)
		b.state(State{ID: id, Intent: IntentAskProbe, Prompt: text})
		b.edge(lastProbeID, EventGoodAnswer, id)
		b.edge(lastProbeID, EventStuck, HintID)
		b.edge(HintID, EventAnswered, id)
		lastProbeID = id
	}

	b.state(State{ID: HintID, Intent: IntentGiveHint, Prompt: HintPrompt})

	b.state(State{ID: CheckpointID, Intent: IntentCheckpoint, CheckpointRef: FirstCheckpointRef})
	b.edge(lastProbeID, EventGoodAnswer, CheckpointID)
	b.edge(HintID, EventAnswered, CheckpointID)

	b.edge(CheckpointID, EventCorrect, ReflectID)
	b.edge(CheckpointID, EventWrong, HintID)

	summary := SummaryPrompt
	if len(doc.SummaryTemplates) > 0 && strings.TrimSpace(doc.SummaryTemplates[0]) != "" {
		summary = strings.TrimSpace(doc.SummaryTemplates[0])
	}
	b.state(State{ID: ReflectID, Intent: IntentReflect, Prompt: ReflectPrompt})
	b.state(State{ID: SummaryID, Intent: IntentSummarize, Prompt: summary})
	b.edge(ReflectID, EventNext, SummaryID)

	return &Flow{States: b.states, Transitions: b.transitions}
}

type builder struct {
	states      []State
	transitions []Transition
}

func (b *builder) state(s State) {
	b.states = append(b.states, s)
}

func (b *builder) edge(from string, on Event, to string) {
	b.transitions = append(b.transitions, Transition{From: from, On: on, To: to})
}
