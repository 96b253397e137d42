package flow

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/abhisek/socratiz/internal/curriculum"
)

func stateIDs(f *Flow) []string {
	ids := make([]string, len(f.States))
	for i, s := range f.States {
		ids[i] = s.ID
	}
	return ids
}

func hasTransition(f *Flow, from string, on Event, to string) bool {
	for _, t := range f.Transitions {
		if t.From == from && t.On == on && t.To == to {
			return true
		}
	}
	return false
}

func probes(texts ...string) []curriculum.StepProbe {
	out := make([]curriculum.StepProbe, len(texts))
	for i, s := range texts {
		out[i] = curriculum.StepProbe{Probe: s}
	}
	return out
}

func TestBuild_MinimalDocument(t *testing.T) {
	f := Build(&curriculum.Document{})

	want := []string{"start", "hint1", "checkpoint", "reflect", "summary"}
	if got := stateIDs(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}

	wantEdges := []Transition{
		{StartID, EventAnswered, CheckpointID},
		{StartID, EventGoodAnswer, CheckpointID},
		{HintID, EventAnswered, CheckpointID},
		{CheckpointID, EventCorrect, ReflectID},
		{CheckpointID, EventWrong, HintID},
		{ReflectID, EventNext, SummaryID},
	}
	if !reflect.DeepEqual(f.Transitions, wantEdges) {
		t.Errorf("transitions = %v, want %v", f.Transitions, wantEdges)
	}
	if err := Validate(f); err != nil {
		t.Errorf("minimal flow should validate: %v", err)
	}
}

func TestBuild_NilDocument(t *testing.T) {
	f := Build(nil)
	if len(f.States) != 5 {
		t.Errorf("got %d states, want 5", len(f.States))
	}
}

func TestBuild_FullDocument(t *testing.T) {
	doc := &curriculum.Document{
		FirstProbe:       "What do you notice?",
		StepProbes:       probes("Why?", "How?"),
		SummaryTemplates: []string{"You found the pattern.", "unused"},
	}
	f := Build(doc)

	want := []string{"start", "probe1", "probe2", "probe3", "hint1", "checkpoint", "reflect", "summary"}
	if got := stateIDs(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}

	wantEdges := []Transition{
		{"start", EventAnswered, "probe1"},
		{"probe1", EventGoodAnswer, "probe2"},
		{"probe1", EventStuck, "hint1"},
		{"hint1", EventAnswered, "probe2"},
		{"probe2", EventGoodAnswer, "probe3"},
		{"probe2", EventStuck, "hint1"},
		{"hint1", EventAnswered, "probe3"},
		{"probe3", EventGoodAnswer, "checkpoint"},
		{"hint1", EventAnswered, "checkpoint"},
		{"checkpoint", EventCorrect, "reflect"},
		{"checkpoint", EventWrong, "hint1"},
		{"reflect", EventNext, "summary"},
	}
	if !reflect.DeepEqual(f.Transitions, wantEdges) {
		t.Errorf("transitions =\n%v\nwant\n%v", f.Transitions, wantEdges)
	}

	probe1, _ := f.State("probe1")
	if probe1.Prompt != "What do you notice?" || probe1.Intent != IntentAskProbe {
		t.Errorf("probe1 = %+v", probe1)
	}
	summary, _ := f.State("summary")
	if summary.Prompt != "You found the pattern." {
		t.Errorf("summary prompt = %q", summary.Prompt)
	}
	cp, _ := f.State("checkpoint")
	if cp.CheckpointRef != FirstCheckpointRef {
		t.Errorf("checkpointRef = %q, want %q", cp.CheckpointRef, FirstCheckpointRef)
	}
}

func TestBuild_SkippedProbesLeaveGaps(t *testing.T) {
	doc := &curriculum.Document{
		FirstProbe: "Start here.",
		StepProbes: probes("", "Second real probe", "   ", "Third real probe"),
	}
	f := Build(doc)

	want := []string{"start", "probe1", "probe3", "probe5", "hint1", "checkpoint", "reflect", "summary"}
	if got := stateIDs(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	if !hasTransition(f, "probe1", EventGoodAnswer, "probe3") {
		t.Error("expected probe1 --good_answer--> probe3")
	}
	if !hasTransition(f, "probe3", EventGoodAnswer, "probe5") {
		t.Error("expected probe3 --good_answer--> probe5")
	}
	if _, ok := f.State("probe2"); ok {
		t.Error("probe2 should not exist")
	}
}

func TestBuild_StepProbesWithoutFirstProbe(t *testing.T) {
	f := Build(&curriculum.Document{StepProbes: probes("A", "B")})

	if !hasTransition(f, StartID, EventAnswered, CheckpointID) {
		t.Error("expected start --answered--> checkpoint")
	}
	if !hasTransition(f, StartID, EventGoodAnswer, "probe2") {
		t.Error("expected start --good_answer--> probe2")
	}
	if !hasTransition(f, StartID, EventStuck, HintID) {
		t.Error("expected start --stuck--> hint1")
	}
	if !hasTransition(f, "probe3", EventGoodAnswer, CheckpointID) {
		t.Error("expected probe3 --good_answer--> checkpoint")
	}
}

func TestBuild_BlankFirstProbeIsAbsent(t *testing.T) {
	f := Build(&curriculum.Document{FirstProbe: " \t\n ", StepProbes: probes("A")})

	if _, ok := f.State("probe1"); ok {
		t.Error("whitespace-only first_probe should not create probe1")
	}
	if !hasTransition(f, StartID, EventAnswered, CheckpointID) {
		t.Error("expected start --answered--> checkpoint")
	}
	if !hasTransition(f, StartID, EventGoodAnswer, "probe2") {
		t.Error("expected start --good_answer--> probe2")
	}
	if hasTransition(f, StartID, EventAnswered, "probe1") {
		t.Error("unexpected start --answered--> probe1")
	}
}

func TestBuild_ProbeCountMatchesNonEmptySteps(t *testing.T) {
	tests := []struct {
		name  string
		first string
		steps []string
		want  int
	}{
		{"none", "", nil, 0},
		{"three", "", []string{"a", "b", "c"}, 3},
		{"with blanks", "first", []string{"a", "", "c", ""}, 2},
		{"all blank", "first", []string{"", ""}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(&curriculum.Document{FirstProbe: tt.first, StepProbes: probes(tt.steps...)})
			predecessor := StartID
			if tt.first != "" {
				predecessor = "probe1"
			}
			count := 0
			for _, s := range f.States {
				if s.Intent != IntentAskProbe || s.ID == "probe1" {
					continue
				}
				count++
				if !hasTransition(f, predecessor, EventGoodAnswer, s.ID) {
					t.Errorf("%s not reachable from %s via good_answer", s.ID, predecessor)
				}
				if !hasTransition(f, HintID, EventAnswered, s.ID) {
					t.Errorf("%s not reachable from hint1 via answered", s.ID)
				}
				predecessor = s.ID
			}
			if count != tt.want {
				t.Errorf("got %d step probe states, want %d", count, tt.want)
			}
		})
	}
}

func TestBuild_SingleSharedHint(t *testing.T) {
	f := Build(&curriculum.Document{FirstProbe: "p", StepProbes: probes("a", "b", "c", "d")})
	hints := 0
	for _, s := range f.States {
		if s.Intent == IntentGiveHint {
			hints++
		}
	}
	if hints != 1 {
		t.Errorf("got %d hint states, want 1", hints)
	}
}

func TestBuild_SummaryIsTerminal(t *testing.T) {
	f := Build(&curriculum.Document{FirstProbe: "p", StepProbes: probes("a")})
	if !f.IsTerminal(SummaryID) {
		t.Error("summary should have no outgoing transitions")
	}
	summary, _ := f.State(SummaryID)
	if summary.Prompt != SummaryPrompt {
		t.Errorf("default summary prompt = %q", summary.Prompt)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	doc := &curriculum.Document{FirstProbe: "p", StepProbes: probes("a", "", "c")}
	a, _ := json.Marshal(Build(doc))
	b, _ := json.Marshal(Build(doc))
	if string(a) != string(b) {
		t.Error("two builds of the same document differ")
	}
}

func TestFlow_JSONFieldNames(t *testing.T) {
	f := Build(&curriculum.Document{})
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string][]map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var cp map[string]any
	for _, s := range generic["states"] {
		if s["id"] == "checkpoint" {
			cp = s
		}
	}
	if cp["checkpointRef"] != "checkpoint_1" {
		t.Errorf("checkpoint JSON = %v", cp)
	}
	if generic["transitions"][0]["on"] != "answered" {
		t.Errorf("first transition JSON = %v", generic["transitions"][0])
	}
}
