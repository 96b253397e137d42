package session

import (
	"strings"

	"github.com/abhisek/socratiz/internal/checkpoint"
	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
)

// candidateEvents maps a student reply in a state to the events it may
// fire, most specific first. The walker takes the first one with an edge.
func candidateEvents(st flow.State, doc *curriculum.Document, reply string, stuck bool) []flow.Event {
	switch st.Intent {
	case flow.IntentStart:
		if stuck {
			return []flow.Event{flow.EventStuck, flow.EventGoodAnswer, flow.EventAnswered}
		}
		return []flow.Event{flow.EventGoodAnswer, flow.EventAnswered}

	case flow.IntentAskProbe:
		if stuck {
			return []flow.Event{flow.EventStuck}
		}
		return []flow.Event{flow.EventGoodAnswer}

	case flow.IntentGiveHint:
		return []flow.Event{flow.EventAnswered}

	case flow.IntentCheckpoint:
		if gradeCheckpoint(st, doc, reply, stuck) {
			return []flow.Event{flow.EventCorrect}
		}
		return []flow.Event{flow.EventWrong}

	case flow.IntentReflect:
		return []flow.Event{flow.EventNext}
	}
	return nil
}

// gradeCheckpoint reports whether the reply passes the state's quick check.
// With no answer key, any reply from a student who is not stuck passes.
func gradeCheckpoint(st flow.State, doc *curriculum.Document, reply string, stuck bool) bool {
	qc, ok := doc.QuickCheckFor(st.CheckpointRef)
	if !ok || qc.Answer == "" {
		return !stuck
	}
	return checkpoint.CheckAnswer(reply, qc)
}

// isStuck separates real distress from terse answers: "12" and "3/4" are
// short enough to trip the frustration detector but are attempts.
func isStuck(reply string, frustrated bool) bool {
	if !frustrated {
		return false
	}
	r := strings.TrimSpace(reply)
	return r == "" || checkpoint.InferType(r) == checkpoint.TypeText
}
