package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/store"
)

const arraysYAML = `
path:
  grade: 3
  subject: math
  topic: multiplication
  subtopic: arrays
objective: Use arrays to model multiplication.
first_probe: What do you notice about the rows of dots?
step_probes:
  - probe: How many dots are in each row?
  - probe: How could you count them all without counting one by one?
quick_checks:
  - question: How many dots are in 3 rows of 4?
    answer: 12
metadata:
  version: %s
`

func arrays(version string) []byte {
	return []byte(fmt.Sprintf(arraysYAML, version))
}

func openDocs(t *testing.T) store.DocumentStore {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.Documents()
}

func TestSeed_WritesContentAndFlow(t *testing.T) {
	docs := openDocs(t)
	s := &Seeder{Docs: docs}
	ctx := context.Background()

	res, err := s.Seed(ctx, arrays("1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, "3/math/multiplication/arrays", res.ContentPath)
	assert.Equal(t, "3/math/multiplication/arrays/flows/main", res.FlowPath)
	assert.Equal(t, "v1.0.0", res.Version)

	var stored flow.Flow
	require.NoError(t, docs.Read(ctx, res.FlowPath, &stored))
	assert.Equal(t, *res.Flow, stored)

	var content curriculum.Document
	require.NoError(t, docs.Read(ctx, res.ContentPath, &content))
	assert.Equal(t, "Use arrays to model multiplication.", content.Objective)
	assert.Equal(t, curriculum.Scalar("12"), content.QuickChecks[0].Answer)
}

func TestSeed_RejectsInvalid(t *testing.T) {
	s := &Seeder{Docs: openDocs(t)}

	_, err := s.Seed(context.Background(), []byte("path:\n  grade: 3\n"))
	var invalid *curriculum.ErrInvalidDocument
	assert.True(t, errors.As(err, &invalid), "err = %v", err)
}

func TestSeed_VersionGate(t *testing.T) {
	s := &Seeder{Docs: openDocs(t)}
	ctx := context.Background()

	_, err := s.Seed(ctx, arrays("2.0.0"))
	require.NoError(t, err)

	_, err = s.Seed(ctx, arrays("1.5.0"))
	assert.ErrorIs(t, err, ErrStaleVersion)

	// Same version re-seeds.
	_, err = s.Seed(ctx, arrays("2.0.0"))
	assert.NoError(t, err)

	_, err = s.Seed(ctx, arrays("2.1.0"))
	assert.NoError(t, err)

	s.Force = true
	_, err = s.Seed(ctx, arrays("0.1.0"))
	assert.NoError(t, err)
}

func TestSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrays.yaml")
	require.NoError(t, os.WriteFile(path, arrays("1"), 0o644))

	res, err := (&Seeder{Docs: openDocs(t)}).SeedFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", res.Version)
}

func TestLoadFlow(t *testing.T) {
	docs := openDocs(t)
	ctx := context.Background()

	res, err := (&Seeder{Docs: docs}).Seed(ctx, arrays("1.0.0"))
	require.NoError(t, err)

	doc, f, err := LoadFlow(ctx, docs, res.ContentPath)
	require.NoError(t, err)
	assert.Equal(t, "arrays", doc.Path.Subtopic.String())
	assert.Equal(t, res.Flow, f)
}

func TestLoadFlow_RebuildsMissingFlow(t *testing.T) {
	docs := openDocs(t)
	ctx := context.Background()

	doc, err := curriculum.Parse(arrays("1.0.0"))
	require.NoError(t, err)
	require.NoError(t, docs.Write(ctx, doc.ContentPath(), doc))

	_, f, err := LoadFlow(ctx, docs, doc.ContentPath())
	require.NoError(t, err)
	assert.Equal(t, flow.Build(doc), f)
}

func TestLoadFlow_MissingContent(t *testing.T) {
	_, _, err := LoadFlow(context.Background(), openDocs(t), "9/none/here/x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContentPaths(t *testing.T) {
	docs := openDocs(t)
	s := &Seeder{Docs: docs}
	ctx := context.Background()

	paths, err := ContentPaths(ctx, docs)
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = s.Seed(ctx, arrays("1.0.0"))
	require.NoError(t, err)

	paths, err = ContentPaths(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"3/math/multiplication/arrays"}, paths)
}
