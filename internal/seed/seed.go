// Package seed validates authored curriculum, builds its conversation flow
// and writes both to the document store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/logger"
	"github.com/abhisek/socratiz/internal/store"
)

// ErrStaleVersion is returned when the stored content carries a newer
// metadata.version than the document being seeded.
var ErrStaleVersion = errors.New("stored content is newer")

// Seeder writes curriculum documents and their flows.
type Seeder struct {
	Docs store.DocumentStore
	Log  *logger.Logger

	// Force skips the version gate.
	Force bool
}

// Result describes one seeded document.
type Result struct {
	ContentPath string
	FlowPath    string
	Version     string
	Flow        *flow.Flow
}

// Seed validates raw (YAML or JSON), builds its flow and writes the content
// and flow documents.
func (s *Seeder) Seed(ctx context.Context, raw []byte) (*Result, error) {
	if err := curriculum.Validate(raw); err != nil {
		return nil, err
	}
	doc, err := curriculum.Parse(raw)
	if err != nil {
		return nil, err
	}
	return s.SeedDocument(ctx, doc)
}

// SeedFile reads and seeds the document at path.
func (s *Seeder) SeedFile(ctx context.Context, path string) (*Result, error) {
	doc, _, err := curriculum.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.SeedDocument(ctx, doc)
}

// SeedDocument seeds an already validated document.
func (s *Seeder) SeedDocument(ctx context.Context, doc *curriculum.Document) (*Result, error) {
	log := s.logger()
	res := &Result{
		ContentPath: doc.ContentPath(),
		FlowPath:    doc.FlowPath(),
		Version:     doc.Version(),
	}

	f := flow.Build(doc)
	if err := flow.Validate(f); err != nil {
		return nil, fmt.Errorf("flow for %s: %w", res.ContentPath, err)
	}
	res.Flow = f

	if !s.Force {
		if err := s.checkVersion(ctx, res.ContentPath, res.Version); err != nil {
			return nil, err
		}
	}

	if err := s.Docs.Write(ctx, res.ContentPath, doc); err != nil {
		return nil, err
	}
	if err := s.Docs.Write(ctx, res.FlowPath, f); err != nil {
		return nil, err
	}

	log.Info("seeded curriculum",
		"content_path", res.ContentPath,
		"version", res.Version,
		"states", len(f.States),
		"transitions", len(f.Transitions),
	)
	return res, nil
}

func (s *Seeder) checkVersion(ctx context.Context, path, version string) error {
	var existing curriculum.Document
	err := s.Docs.Read(ctx, path, &existing)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if stored := existing.Version(); semver.Compare(stored, version) > 0 {
		return fmt.Errorf("%s: stored %s, seeding %s: %w", path, stored, version, ErrStaleVersion)
	}
	return nil
}

func (s *Seeder) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

// LoadFlow reads the content document at contentPath and its flow. A
// missing flow document is rebuilt from the content.
func LoadFlow(ctx context.Context, r store.DocumentReader, contentPath string) (*curriculum.Document, *flow.Flow, error) {
	var doc curriculum.Document
	if err := r.Read(ctx, contentPath, &doc); err != nil {
		return nil, nil, err
	}

	var f flow.Flow
	err := r.Read(ctx, curriculum.FlowPathFor(contentPath), &f)
	switch {
	case errors.Is(err, store.ErrNotFound):
		f = *flow.Build(&doc)
	case err != nil:
		return nil, nil, err
	}

	if err := flow.Validate(&f); err != nil {
		return nil, nil, fmt.Errorf("flow for %s: %w", contentPath, err)
	}
	return &doc, &f, nil
}

// ContentPaths lists every seeded content document, skipping the flow
// documents stored beside them.
func ContentPaths(ctx context.Context, r store.DocumentReader) ([]string, error) {
	all, err := r.List(ctx, "")
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(all)/2)
	for _, p := range all {
		if strings.HasSuffix(p, curriculum.FlowSuffix) {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}
