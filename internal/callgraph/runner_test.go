package callgraph

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the call-graph runner:
// - A tool that writes valid JSON to the -o path produces a fact table
// - A missing executable is a fatal error
// - A non-zero tool exit is a fatal error carrying stderr
// - Malformed JSON output is a fatal error
//
// The tool is faked with a small shell script, so these tests are skipped
// on Windows.

// writeFakeTool installs an executable script that scans its arguments for
// -o and writes the given payload to that path, exiting with the given code.
func writeFakeTool(t *testing.T, payload string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool requires a POSIX shell")
	}

	script := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
if [ -n "$out" ]; then printf '%s' '` + payload + `' > "$out"; fi
`
	if exitCode != 0 {
		script += "echo 'tool exploded' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	}

	path := filepath.Join(t.TempDir(), "fake-callgraph")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRun_ParsesToolOutput(t *testing.T) {
	t.Parallel()

	tool := writeFakeTool(t, `{"pkg/app.py.main": ["pkg/util.py.helper", "requests.get"]}`, 0)
	runner := NewRunner(tool, nil)

	facts, err := runner.Run(context.Background(), "pkg", []string{"a.py", "b.py"})
	require.NoError(t, err)
	assert.Equal(t, Facts{
		"pkg/app.py.main": {"pkg/util.py.helper", "requests.get"},
	}, facts)
}

func TestRun_MissingExecutable(t *testing.T) {
	t.Parallel()

	runner := NewRunner("definitely-not-a-real-tool-7c1f", nil)

	_, err := runner.Run(context.Background(), "pkg", []string{"a.py"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRun_ToolFailure(t *testing.T) {
	t.Parallel()

	tool := writeFakeTool(t, `{}`, 3)
	runner := NewRunner(tool, nil)

	_, err := runner.Run(context.Background(), "pkg", []string{"a.py"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool exploded")
}

func TestRun_MalformedJSON(t *testing.T) {
	t.Parallel()

	tool := writeFakeTool(t, `this is not json`, 0)
	runner := NewRunner(tool, nil)

	_, err := runner.Run(context.Background(), "pkg", []string{"a.py"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
