package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenariosDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join("..", "..", "testdata", "scenarios")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("testdata/scenarios directory not found")
	}
	return dir
}

func TestTestCommandAllPass(t *testing.T) {
	dir := scenariosDir(t)
	cmd := NewTestCommand(textOptions(nil))

	out, _, err := execute(cmd, dir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ where_and")
	assert.Contains(t, out, "✓ unknown_statement")
	assert.Contains(t, out, "0 failed")
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenariosDir(t)
	cmd := NewTestCommand(textOptions(nil))

	out, _, err := execute(cmd, dir, "--filter", "where_*")
	require.NoError(t, err)
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
	assert.NotContains(t, out, "insert_artist")
}

func TestTestCommandJSON(t *testing.T) {
	dir := scenariosDir(t)
	cmd := NewTestCommand(jsonOptions(nil))

	out, _, err := execute(cmd, dir, "--filter", "insert_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "insert_artist", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].SQL, "INSERT INTO Artist")
}

func TestTestCommandFailure(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/s/wrong.yaml": `name: wrong_sql
description: "expects the wrong SQL"
query:
  Select: Name
  From: Artist
expect_sql: SELECT * FROM "Artist"
`,
		"/s/right.yaml": `name: right_rows
description: "three artists"
query:
  Select: Name
  From: Artist
assertions:
  - type: row_count
    count: 3
`,
	})

	out, _, err := execute(NewTestCommand(textOptions(fs)), "/s")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_sql")
	assert.Contains(t, out, "SQL mismatch")
	assert.Contains(t, out, "✓ right_rows")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")

	out, _, err = execute(NewTestCommand(jsonOptions(fs)), "/s")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestTestCommandErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/bad/s.yaml": "name: x\nunknown_key: 1\n",
	})

	t.Run("malformed scenario", func(t *testing.T) {
		out, _, err := execute(NewTestCommand(textOptions(fs)), "/bad")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E009]")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := execute(NewTestCommand(textOptions(fs)), "/nope")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("bad filter", func(t *testing.T) {
		dir := scenariosDir(t)
		out, _, err := execute(NewTestCommand(textOptions(nil)), dir, "--filter", "[")
		require.Error(t, err)
		assert.Contains(t, out, "invalid filter pattern")
	})
}
