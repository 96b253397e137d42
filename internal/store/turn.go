package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Role says who authored a turn.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Turn is one message in a tutoring session transcript.
type Turn struct {
	Sequence    int64
	Timestamp   time.Time
	SessionID   string
	StudentID   string
	ContentPath string
	Role        Role
	StateID     string
	Intent      string
	Event       string // flow event that led into StateID, tutor turns only
	Text        string
	Violations  []string
	Filtered    bool // a rewrite replaced the candidate message
	Fallback    bool // a fallback template replaced the candidate message
	Frustrated  bool
}

// QueryOpts configures turn queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionSummary aggregates the turns of one session.
type SessionSummary struct {
	SessionID   string
	StudentID   string
	ContentPath string
	Turns       int
	StartedAt   time.Time
	LastAt      time.Time
}

// TurnRepo provides append and query access to session transcripts.
type TurnRepo interface {
	// AppendTurn records t, assigning its Sequence and, if zero, Timestamp.
	AppendTurn(ctx context.Context, t *Turn) error

	// QueryTurns returns a session's turns in sequence order.
	QueryTurns(ctx context.Context, sessionID string, opts QueryOpts) ([]Turn, error)

	// RecentSessions returns up to limit sessions, most recently active first.
	RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error)
}

type turnRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// turnRow mirrors a turn_events row for scanning.
type turnRow struct {
	Sequence    int64  `sql:"sequence"`
	Timestamp   int64  `sql:"timestamp"`
	SessionID   string `sql:"session_id"`
	StudentID   string `sql:"student_id"`
	ContentPath string `sql:"content_path"`
	Role        string `sql:"role"`
	StateID     string `sql:"state_id"`
	Intent      string `sql:"intent"`
	Event       string `sql:"event"`
	Text        string `sql:"text"`
	Violations  string `sql:"violations"`
	Filtered    bool   `sql:"filtered"`
	Fallback    bool   `sql:"fallback"`
	Frustrated  bool   `sql:"frustrated"`
}

var turnColumns = []string{
	"sequence", "timestamp", "session_id", "student_id", "content_path", "role",
	"state_id", "intent", "event", "text", "violations", "filtered", "fallback", "frustrated",
}

func (r *turnRepo) AppendTurn(ctx context.Context, t *Turn) error {
	if t.SessionID == "" {
		return fmt.Errorf("append turn: missing session id")
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	violations := t.Violations
	if violations == nil {
		violations = []string{}
	}
	vj, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("encode violations: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(turnsTable).
		Columns(turnColumns...).
		Values(seq, t.Timestamp.UnixMilli(), t.SessionID, t.StudentID, t.ContentPath, string(t.Role),
			t.StateID, t.Intent, t.Event, t.Text, string(vj), t.Filtered, t.Fallback, t.Frustrated).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	t.Sequence = seq
	return nil
}

func (r *turnRepo) QueryTurns(ctx context.Context, sessionID string, opts QueryOpts) ([]Turn, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(turnsTable)

	preds := []*entsql.Predicate{entsql.EQ(t.C("session_id"), sessionID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), opts.To.UnixMilli()))
	}

	sel := b.Select(t.Columns(turnColumns...)...).
		From(t).
		Where(entsql.And(preds...)).
		OrderBy(t.C("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var scanned []turnRow
	if err := entsql.ScanSlice(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scan turns: %w", err)
	}

	turns := make([]Turn, 0, len(scanned))
	for _, row := range scanned {
		var violations []string
		if err := json.Unmarshal([]byte(row.Violations), &violations); err != nil {
			return nil, fmt.Errorf("decode violations for turn %d: %w", row.Sequence, err)
		}
		turns = append(turns, Turn{
			Sequence:    row.Sequence,
			Timestamp:   time.UnixMilli(row.Timestamp),
			SessionID:   row.SessionID,
			StudentID:   row.StudentID,
			ContentPath: row.ContentPath,
			Role:        Role(row.Role),
			StateID:     row.StateID,
			Intent:      row.Intent,
			Event:       row.Event,
			Text:        row.Text,
			Violations:  violations,
			Filtered:    row.Filtered,
			Fallback:    row.Fallback,
			Frustrated:  row.Frustrated,
		})
	}
	return turns, nil
}

// sessionRow mirrors the RecentSessions aggregate.
type sessionRow struct {
	SessionID   string `sql:"session_id"`
	StudentID   string `sql:"student_id"`
	ContentPath string `sql:"content_path"`
	Turns       int    `sql:"turns"`
	StartedAt   int64  `sql:"started_at"`
	LastAt      int64  `sql:"last_at"`
	LastSeq     int64  `sql:"last_seq"`
}

func (r *turnRepo) RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(turnsTable)

	sel := b.Select(
		t.C("session_id"),
		entsql.As(entsql.Max(t.C("student_id")), "student_id"),
		entsql.As(entsql.Max(t.C("content_path")), "content_path"),
		entsql.As(entsql.Count("*"), "turns"),
		entsql.As(entsql.Min(t.C("timestamp")), "started_at"),
		entsql.As(entsql.Max(t.C("timestamp")), "last_at"),
		entsql.As(entsql.Max(t.C("sequence")), "last_seq"),
	).
		From(t).
		GroupBy(t.C("session_id")).
		OrderBy(entsql.Desc("last_seq"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var scanned []sessionRow
	if err := entsql.ScanSlice(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	out := make([]SessionSummary, 0, len(scanned))
	for _, row := range scanned {
		out = append(out, SessionSummary{
			SessionID:   row.SessionID,
			StudentID:   row.StudentID,
			ContentPath: row.ContentPath,
			Turns:       row.Turns,
			StartedAt:   time.UnixMilli(row.StartedAt),
			LastAt:      time.UnixMilli(row.LastAt),
		})
	}
	return out, nil
}
