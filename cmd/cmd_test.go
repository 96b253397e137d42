package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/socratiz/internal/config"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/safety"
)

const decimalsYAML = `
path:
  grade: 5
  subject: math
  topic: decimals
  subtopic: comparing_decimals
objective: Compare decimals using place value.
first_probe: Which digit would you look at first?
step_probes:
  - probe: What does the digit in the tenths place tell you?
quick_checks:
  - question: Which is bigger, 0.5 or 0.45?
    answer: 0.5
    answer_type: decimal
metadata:
  version: 1.0.0
`

// run executes the root command. Commands are package globals, so every
// test passes the flags it depends on explicitly.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvDB, config.EnvBackend, config.EnvLog, config.EnvLogFile} {
		t.Setenv(k, "")
	}
	return filepath.Join(t.TempDir(), "socratiz.db")
}

func TestCheck_TutorMessage(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, "check", "The answer is 12.", "--intent", "ask_probe", "--student=false", "--json=true")
	require.NoError(t, err)

	var res safety.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Passed)
	assert.Contains(t, res.Kinds, safety.KindDirectAnswer)
	assert.True(t, res.HasRewrite())
}

func TestCheck_UnknownIntent(t *testing.T) {
	cleanEnv(t)

	_, err := run(t, "check", "What do you notice?", "--intent", "lecture", "--student=false", "--json=false")
	assert.ErrorContains(t, err, "unknown intent")
}

func TestCheck_Student(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, "check", "  idk <b>this</b> ", "--student=true", "--json=true")
	require.NoError(t, err)

	var sc studentCheck
	require.NoError(t, json.Unmarshal([]byte(out), &sc))
	assert.Equal(t, "idk bthis/b", sc.Sanitized)
	assert.True(t, sc.Frustrated)
	assert.True(t, sc.Appropriate)
}

func TestFlowBuild(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "decimals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(decimalsYAML), 0o644))

	out, err := run(t, "flow", "build", path)
	require.NoError(t, err)

	var f flow.Flow
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	require.NoError(t, flow.Validate(&f))
	st, ok := f.State("probe2")
	require.True(t, ok)
	assert.Equal(t, "What does the digit in the tenths place tell you?", st.Prompt)
}

func TestSeedShowHistory(t *testing.T) {
	db := cleanEnv(t)
	path := filepath.Join(t.TempDir(), "decimals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(decimalsYAML), 0o644))

	out, err := run(t, "seed", path, "--db", db, "--backend", "sqlite", "--force=false")
	require.NoError(t, err)
	assert.Contains(t, out, "5/math/decimals/comparing_decimals")
	assert.Contains(t, out, "v1.0.0")

	out, err = run(t, "flow", "show", "5/math/decimals/comparing_decimals", "--db", db, "--backend", "sqlite", "--json=true")
	require.NoError(t, err)
	var f flow.Flow
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.True(t, f.HasEdge("probe1", flow.EventGoodAnswer))

	out, err = run(t, "history", "--db", db, "--backend", "sqlite", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestSeed_MissingFile(t *testing.T) {
	db := cleanEnv(t)

	_, err := run(t, "seed", filepath.Join(t.TempDir(), "nope.yaml"), "--db", db, "--backend", "sqlite", "--force=false")
	assert.ErrorContains(t, err, "1 of 1 documents failed")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "socratiz (devel)\n", out)
}
