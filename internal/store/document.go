package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrNotFound is returned when no document exists at a path.
var ErrNotFound = errors.New("document not found")

// DocumentWriter persists JSON documents under slash-separated paths.
type DocumentWriter interface {
	// Write stores doc at path, replacing any previous document.
	Write(ctx context.Context, path string, doc any) error
}

// DocumentReader loads documents written by a DocumentWriter.
type DocumentReader interface {
	// Read decodes the document at path into v. Returns ErrNotFound if
	// nothing is stored there.
	Read(ctx context.Context, path string, v any) error

	// List returns every stored path starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// DocumentStore is both sides of the document capability.
type DocumentStore interface {
	DocumentWriter
	DocumentReader
}

// CleanPath trims surrounding slashes and whitespace from a document path.
func CleanPath(path string) (string, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	if p == "" {
		return "", fmt.Errorf("empty document path")
	}
	return p, nil
}

// sqliteDocs stores documents in the "documents" table, one row per path.
type sqliteDocs struct {
	drv *entsql.Driver
}

func (d *sqliteDocs) Write(ctx context.Context, path string, doc any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", p, err)
	}

	now := time.Now().UnixMilli()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(documentsTable).
		Columns("path", "body", "created_at", "updated_at").
		Values(p, string(body), now, now).
		OnConflict(
			entsql.ConflictColumns("path"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("body")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if err := d.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("write document %s: %w", p, err)
	}
	return nil
}

func (d *sqliteDocs) Read(ctx context.Context, path string, v any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(documentsTable)
	query, args := b.Select(t.C("body")).
		From(t).
		Where(entsql.EQ(t.C("path"), p)).
		Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("read document %s: %w", p, err)
	}
	defer rows.Close()

	var bodies []string
	if err := entsql.ScanSlice(rows, &bodies); err != nil {
		return fmt.Errorf("scan document %s: %w", p, err)
	}
	if len(bodies) == 0 {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err := json.Unmarshal([]byte(bodies[0]), v); err != nil {
		return fmt.Errorf("decode document %s: %w", p, err)
	}
	return nil
}

func (d *sqliteDocs) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")

	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(documentsTable)
	sel := b.Select(t.C("path")).From(t).OrderBy(t.C("path"))
	if prefix != "" {
		sel.Where(entsql.HasPrefix(t.C("path"), prefix))
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var paths []string
	if err := entsql.ScanSlice(rows, &paths); err != nil {
		return nil, fmt.Errorf("scan document paths: %w", err)
	}
	return paths, nil
}
