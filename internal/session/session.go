// Package session walks a student through a conversation flow, one turn
// at a time, screening every tutor message before it is shown.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/logger"
	"github.com/abhisek/socratiz/internal/safety"
	"github.com/abhisek/socratiz/internal/store"
)

var (
	// ErrFinished is returned by Respond once the summary has been shown.
	ErrFinished = errors.New("session finished")

	// ErrNotStarted is returned by Respond before Start.
	ErrNotStarted = errors.New("session not started")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("session already started")
)

// checkpointPrompt is asked when the checkpoint has no authored question.
const checkpointPrompt = "Can you show me how you would solve one like this on your own?"

// Options configures a Session. Flow and Document are required.
type Options struct {
	Flow     *flow.Flow
	Document *curriculum.Document

	// Filter screens tutor messages. Nil uses the default battery.
	Filter *safety.Filter

	// Fallback replaces messages the filter rejects without a rewrite.
	// Nil picks templates with math/rand/v2.
	Fallback *safety.FallbackGenerator

	// Turns records the transcript when set.
	Turns store.TurnRepo

	Log *logger.Logger

	// ID names the session. Empty generates a UUID.
	ID          string
	StudentID   string
	ContentPath string

	Now func() time.Time
}

// Reply is one tutor turn.
type Reply struct {
	Text    string
	StateID string
	Intent  flow.Intent

	// Event is the transition taken to reach StateID, empty for the
	// opening message and for replies that stay in place.
	Event flow.Event

	Safety       safety.Result
	UsedRewrite  bool
	UsedFallback bool

	// Frustrated is set when the student's message signalled distress.
	Frustrated bool

	// Redirected is set when the student's message was off limits and the
	// tutor steered back without moving.
	Redirected bool

	Done bool
}

// Session is one conversation. It is safe for concurrent use, though
// turns are naturally sequential.
type Session struct {
	mu sync.Mutex

	id       string
	flow     *flow.Flow
	doc      *curriculum.Document
	filter   *safety.Filter
	fallback *safety.FallbackGenerator
	turns    store.TurnRepo
	log      *logger.Logger
	now      func() time.Time

	studentID   string
	contentPath string

	started bool
	done    bool
	current string
	origin  string // state that sent the student to the hint
}

// New validates the flow and creates a session positioned at start.
func New(opts Options) (*Session, error) {
	if opts.Flow == nil {
		return nil, fmt.Errorf("session: flow is required")
	}
	if opts.Document == nil {
		return nil, fmt.Errorf("session: document is required")
	}
	if err := flow.Validate(opts.Flow); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		id:          opts.ID,
		flow:        opts.Flow,
		doc:         opts.Document,
		filter:      opts.Filter,
		fallback:    opts.Fallback,
		turns:       opts.Turns,
		log:         opts.Log,
		now:         opts.Now,
		studentID:   opts.StudentID,
		contentPath: opts.ContentPath,
		current:     flow.StartID,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.filter == nil {
		s.filter = safety.NewFilter()
	}
	if s.fallback == nil {
		s.fallback = safety.NewFallbackGenerator(nil)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.contentPath == "" {
		s.contentPath = opts.Document.ContentPath()
	}
	s.log = s.log.With("session_id", s.id, "student_id", s.studentID, "content_path", s.contentPath)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Current returns the ID of the state the session is in.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Done reports whether the summary has been delivered.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Start delivers the opening message.
func (s *Session) Start(ctx context.Context) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, ErrAlreadyStarted
	}
	s.started = true

	st, _ := s.flow.State(flow.StartID)
	reply := s.deliver(st, s.openingPrompt(), "")
	s.log.Info("session started", "state", st.ID)
	s.record(ctx, reply)
	return reply, nil
}

// Respond handles one student message and returns the tutor's reply.
func (s *Session) Respond(ctx context.Context, text string) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.started:
		return nil, ErrNotStarted
	case s.done:
		return nil, ErrFinished
	}

	text = safety.Sanitize(text)
	frustrated := safety.DetectFrustration(text)
	cur, _ := s.flow.State(s.current)
	s.recordStudent(ctx, cur, text, frustrated)

	if !safety.IsAppropriate(text) {
		s.log.Info("redirected off-limits message",
			"state", cur.ID,
			"category", safety.NonEducationalCategory(text),
			"student_text", text,
		)
		reply := s.redirect(cur, text)
		reply.Frustrated = frustrated
		s.record(ctx, reply)
		return reply, nil
	}

	stuck := isStuck(text, frustrated)
	var (
		event flow.Event
		next  string
	)
	for _, ev := range candidateEvents(cur, s.doc, text, stuck) {
		if to, ok := s.flow.Resolve(cur.ID, ev, s.origin); ok {
			event, next = ev, to
			break
		}
	}

	var reply *Reply
	switch {
	case next == "" && stuck:
		// No hint edge from here: offer the hint text without moving.
		reply = s.deliver(cur, flow.HintPrompt, "")
	case next == "":
		s.log.Warn("no transition", "state", cur.ID, "intent", cur.Intent)
		reply = s.deliver(cur, s.promptFor(cur), "")
	default:
		nextState, _ := s.flow.State(next)
		if nextState.Intent == flow.IntentGiveHint && cur.Intent != flow.IntentGiveHint {
			s.origin = cur.ID
		} else if cur.Intent == flow.IntentGiveHint {
			s.origin = ""
		}
		s.current = next
		reply = s.deliver(nextState, s.promptFor(nextState), event)
	}
	reply.Frustrated = frustrated

	s.log.Debug("turn",
		"from", cur.ID,
		"event", event,
		"to", reply.StateID,
		"frustrated", frustrated,
		"student_text", text,
	)
	s.record(ctx, reply)
	return reply, nil
}

// promptFor returns the candidate tutor message for a state.
func (s *Session) promptFor(st flow.State) string {
	if st.Intent == flow.IntentCheckpoint {
		if qc, ok := s.doc.QuickCheckFor(st.CheckpointRef); ok {
			return qc.Question
		}
		return checkpointPrompt
	}
	if st.ID == flow.StartID {
		return s.openingPrompt()
	}
	return st.Prompt
}

// openingPrompt introduces the topic and invites a first answer.
func (s *Session) openingPrompt() string {
	topic := s.doc.Topic()
	if obj := strings.TrimSpace(s.doc.Objective); obj != "" {
		return fmt.Sprintf("Today we are exploring %s. %s What do you already know about it?", topic, strings.TrimRight(obj, ".")+".")
	}
	return fmt.Sprintf("Today we are exploring %s. What do you already know about it?", topic)
}

// deliver screens a candidate message and builds the reply for st: the
// message itself if it passes, else the rewrite, else a fallback.
func (s *Session) deliver(st flow.State, candidate string, event flow.Event) *Reply {
	res := s.filter.Check(candidate, string(st.Intent))
	reply := &Reply{
		Text:    candidate,
		StateID: st.ID,
		Intent:  st.Intent,
		Event:   event,
		Safety:  res,
	}
	switch {
	case res.Passed:
	case res.HasRewrite():
		reply.Text = res.FilteredText
		reply.UsedRewrite = true
	default:
		reply.Text = s.fallback.Generate(safety.FallbackInput{Topic: s.doc.Topic()})
		reply.UsedFallback = true
	}
	if !res.Passed {
		s.log.Warn("tutor message filtered",
			"state", st.ID,
			"kinds", res.Kinds,
			"rewrite", reply.UsedRewrite,
		)
	}

	if st.Intent == flow.IntentSummarize || s.flow.IsTerminal(st.ID) {
		reply.Done = true
		s.done = true
	}
	return reply
}

// redirect steers an off-limits message back to the topic without
// changing state.
func (s *Session) redirect(cur flow.State, studentText string) *Reply {
	msg := s.fallback.Generate(safety.FallbackInput{Topic: s.doc.Topic(), StudentMessage: studentText})
	reply := s.deliver(cur, msg, "")
	reply.Redirected = true
	return reply
}

func (s *Session) recordStudent(ctx context.Context, cur flow.State, text string, frustrated bool) {
	if s.turns == nil {
		return
	}
	err := s.turns.AppendTurn(ctx, &store.Turn{
		Timestamp:   s.now(),
		SessionID:   s.id,
		StudentID:   s.studentID,
		ContentPath: s.contentPath,
		Role:        store.RoleStudent,
		StateID:     cur.ID,
		Intent:      string(cur.Intent),
		Text:        text,
		Frustrated:  frustrated,
	})
	if err != nil {
		s.log.Error("record student turn", "error", err)
	}
}

func (s *Session) record(ctx context.Context, r *Reply) {
	if s.turns == nil {
		return
	}
	err := s.turns.AppendTurn(ctx, &store.Turn{
		Timestamp:   s.now(),
		SessionID:   s.id,
		StudentID:   s.studentID,
		ContentPath: s.contentPath,
		Role:        store.RoleTutor,
		StateID:     r.StateID,
		Intent:      string(r.Intent),
		Event:       string(r.Event),
		Text:        r.Text,
		Violations:  r.Safety.Violations,
		Filtered:    r.UsedRewrite,
		Fallback:    r.UsedFallback,
		Frustrated:  r.Frustrated,
	})
	if err != nil {
		s.log.Error("record tutor turn", "error", err)
	}
}
