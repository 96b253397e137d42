package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/socratiz/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestOpen_FileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "socratiz.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	s.Close()

	// Reopening runs the migration again against existing tables.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s.Close()
}

func TestSequenceCounter_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= prev {
			t.Fatalf("sequence %d not greater than %d", n, prev)
		}
		prev = n
	}
}

type sampleDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDocuments_WriteRead(t *testing.T) {
	docs := openTestStore(t).Documents()
	ctx := context.Background()

	if err := docs.Write(ctx, "/3/math/mult/arrays/", sampleDoc{Name: "a", Count: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got sampleDoc
	if err := docs.Read(ctx, "3/math/mult/arrays", &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != (sampleDoc{Name: "a", Count: 1}) {
		t.Errorf("read = %+v", got)
	}
}

func TestDocuments_Upsert(t *testing.T) {
	docs := openTestStore(t).Documents()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := docs.Write(ctx, "p", sampleDoc{Count: i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	var got sampleDoc
	if err := docs.Read(ctx, "p", &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Count != 3 {
		t.Errorf("count = %d, want 3", got.Count)
	}

	paths, err := docs.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("paths = %v, want one row after upserts", paths)
	}
}

func TestDocuments_NotFound(t *testing.T) {
	docs := openTestStore(t).Documents()

	var got sampleDoc
	err := docs.Read(context.Background(), "missing/doc", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDocuments_EmptyPath(t *testing.T) {
	docs := openTestStore(t).Documents()
	if err := docs.Write(context.Background(), " / ", sampleDoc{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDocuments_List(t *testing.T) {
	docs := openTestStore(t).Documents()
	ctx := context.Background()

	for _, p := range []string{"3/math/b", "3/math/a", "4/math/a", "3/math/a/flows/main"} {
		if err := docs.Write(ctx, p, sampleDoc{Name: p}); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	got, err := docs.List(ctx, "3/math/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"3/math/a", "3/math/a/flows/main", "3/math/b"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("list = %v, want %v", got, want)
	}
}

func TestTurns_AppendAndQuery(t *testing.T) {
	turns := openTestStore(t).Turns()
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	input := []Turn{
		{SessionID: "s1", Role: RoleTutor, StateID: "start", Intent: "start", Text: "hi?", Timestamp: base},
		{SessionID: "s2", Role: RoleTutor, StateID: "start", Intent: "start", Text: "other", Timestamp: base},
		{SessionID: "s1", Role: RoleStudent, StateID: "start", Text: "idk", Frustrated: true, Timestamp: base.Add(time.Second)},
		{SessionID: "s1", Role: RoleTutor, StateID: "hint1", Intent: "give_hint", Event: "stuck",
			Text: "rewritten?", Violations: []string{"v1"}, Filtered: true, Timestamp: base.Add(2 * time.Second)},
	}
	for i := range input {
		if err := turns.AppendTurn(ctx, &input[i]); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if input[i].Sequence == 0 {
			t.Fatalf("append %d: sequence not assigned", i)
		}
	}

	got, err := turns.QueryTurns(ctx, "s1", QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d turns, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Sequence <= got[i-1].Sequence {
			t.Errorf("turns out of order at %d", i)
		}
	}

	last := got[2]
	if last.Role != RoleTutor || last.Event != "stuck" || !last.Filtered || last.Fallback {
		t.Errorf("last turn = %+v", last)
	}
	if len(last.Violations) != 1 || last.Violations[0] != "v1" {
		t.Errorf("violations = %v", last.Violations)
	}
	if !got[1].Frustrated {
		t.Error("student turn should be frustrated")
	}
	if got[0].Violations == nil {
		t.Error("violations should decode to an empty slice")
	}
	if !got[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("timestamp = %v, want %v", got[1].Timestamp, base.Add(time.Second))
	}
}

func TestTurns_QueryOpts(t *testing.T) {
	turns := openTestStore(t).Turns()
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	var seqs []int64
	for i := 0; i < 5; i++ {
		turn := Turn{SessionID: "s", Role: RoleStudent, Text: fmt.Sprint(i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := turns.AppendTurn(ctx, &turn); err != nil {
			t.Fatalf("append: %v", err)
		}
		seqs = append(seqs, turn.Sequence)
	}

	tests := []struct {
		name string
		opts QueryOpts
		want int
	}{
		{"limit", QueryOpts{Limit: 2}, 2},
		{"after", QueryOpts{After: seqs[2]}, 2},
		{"before", QueryOpts{Before: seqs[1]}, 1},
		{"from", QueryOpts{From: base.Add(3 * time.Minute)}, 2},
		{"to", QueryOpts{To: base.Add(time.Minute)}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := turns.QueryTurns(ctx, "s", tc.opts)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d turns, want %d", len(got), tc.want)
			}
		})
	}
}

func TestTurns_MissingSession(t *testing.T) {
	turns := openTestStore(t).Turns()
	if err := turns.AppendTurn(context.Background(), &Turn{Role: RoleStudent}); err == nil {
		t.Fatal("expected error without session id")
	}
}

func TestTurns_RecentSessions(t *testing.T) {
	turns := openTestStore(t).Turns()
	ctx := context.Background()

	add := func(session string, n int) {
		for i := 0; i < n; i++ {
			err := turns.AppendTurn(ctx, &Turn{SessionID: session, StudentID: "kid", ContentPath: "3/m/t/s", Role: RoleStudent, Text: "x"})
			if err != nil {
				t.Fatalf("append: %v", err)
			}
		}
	}
	add("old", 2)
	add("new", 3)

	got, err := turns.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].SessionID != "new" || got[0].Turns != 3 {
		t.Errorf("first = %+v, want new with 3 turns", got[0])
	}
	if got[1].SessionID != "old" || got[1].ContentPath != "3/m/t/s" {
		t.Errorf("second = %+v", got[1])
	}

	got, err = turns.RecentSessions(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limit ignored: %d sessions", len(got))
	}
}

func TestOpenBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socratiz.db")
	b, err := OpenBackend(context.Background(), config.Default(), path)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	if _, ok := b.Docs.(*sqliteDocs); !ok {
		t.Errorf("docs = %T, want sqlite", b.Docs)
	}
}

func TestOpenBackend_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "mongo"
	if _, err := OpenBackend(context.Background(), cfg, filepath.Join(t.TempDir(), "x.db")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("SOCRATIZ_DB", filepath.Join(dir, "env", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("env path: %v", err)
	}
	if p != filepath.Join(dir, "env", "x.db") {
		t.Errorf("path = %q", p)
	}
	if _, err := os.Stat(filepath.Join(dir, "env")); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}

	t.Setenv("SOCRATIZ_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("xdg path: %v", err)
	}
	if p != filepath.Join(dir, "socratiz", "socratiz.db") {
		t.Errorf("path = %q", p)
	}
}
