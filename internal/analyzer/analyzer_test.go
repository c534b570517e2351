package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyatlas/pyatlas/internal/callgraph"
)

// Test Plan for the analyzer pipeline:
// - A full run produces a catalog, a dependency-respecting queue and a
//   score distribution from call facts plus structure
// - Unparseable files are skipped, not fatal
// - A call-graph tool failure aborts the run
// - Context cancellation aborts the run
// - Progress callbacks fire once per file plus start and completion

// stubRunner satisfies callgraph.Runner with canned facts.
type stubRunner struct {
	facts       callgraph.Facts
	err         error
	rootPackage string
	fileCount   int
}

func (s *stubRunner) Run(_ context.Context, rootPackage string, files []string) (callgraph.Facts, error) {
	s.rootPackage = rootPackage
	s.fileCount = len(files)
	if s.err != nil {
		return nil, s.err
	}
	return s.facts, nil
}

// countingReporter records progress callbacks.
type countingReporter struct {
	starts    int
	files     int
	completes int
}

func (r *countingReporter) OnExtractionStart(int)                      { r.starts++ }
func (r *countingReporter) OnFileExtracted(int, int, string)           { r.files++ }
func (r *countingReporter) OnAnalysisComplete(int, int, time.Duration) { r.completes++ }

func fixtureRepo(t *testing.T) (string, []string) {
	t.Helper()
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/base.py":     "class Base:\n    def greet(self):\n        pass\n",
		"pkg/child.py":    "from pkg.base import Base\n\nclass Child(Base):\n    def run(self):\n        helper()\n",
		"pkg/util.py":     "def helper():\n    pass\n",
	})

	fd, err := NewFileDiscovery(root, []string{"**/*.py"}, nil)
	require.NoError(t, err)
	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	return root, files
}

func TestAnalyze_FullRun(t *testing.T) {
	t.Parallel()

	root, files := fixtureRepo(t)
	runner := &stubRunner{facts: callgraph.Facts{
		"pkg/child.py.Child.run": {"pkg/util.py.helper", "external.thing"},
	}}

	res, err := New(root, runner).Analyze(context.Background(), files)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "pkg", res.RootPackage)
	assert.Equal(t, "pkg", runner.rootPackage)
	assert.Equal(t, len(files), runner.fileCount)

	// Call edge plus structure: containment and inheritance.
	run, ok := res.Catalog.Get("pkg.child.Child.run")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.util.helper"}, run.DependsOnIDs())

	child, ok := res.Catalog.Get("pkg.child.Child")
	require.True(t, ok)
	assert.Contains(t, child.DependsOn, "pkg.base.Base")
	assert.Contains(t, child.DependsOn, "pkg.child.Child.run")

	// The queue covers the catalog and respects dependencies.
	assert.Len(t, res.Queue, res.Catalog.Len())
	pos := make(map[string]int, len(res.Queue))
	for i, id := range res.Queue {
		pos[id] = i
	}
	assert.Less(t, pos["pkg.util.helper"], pos["pkg.child.Child.run"])
	assert.Less(t, pos["pkg.child.Child.run"], pos["pkg.child.Child"])

	// Scores form a probability distribution over the catalog.
	assert.Len(t, res.Scores, res.Catalog.Len())
	sum := 0.0
	for _, s := range res.Scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestAnalyze_SkipsUnparseableFiles(t *testing.T) {
	t.Parallel()

	root, files := fixtureRepo(t)
	// A path that no longer exists fails extraction but not the run.
	files = append(files, root+"/pkg/ghost.py")

	res, err := New(root, &stubRunner{facts: callgraph.Facts{}}).Analyze(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, res.Catalog.Has("pkg.util.helper"))
}

func TestAnalyze_ToolFailureIsFatal(t *testing.T) {
	t.Parallel()

	root, files := fixtureRepo(t)
	runner := &stubRunner{err: errors.New("tool exploded")}

	_, err := New(root, runner).Analyze(context.Background(), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call-graph collection failed")
}

func TestAnalyze_ContextCancellation(t *testing.T) {
	t.Parallel()

	root, files := fixtureRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root, &stubRunner{facts: callgraph.Facts{}}).Analyze(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_ProgressCallbacks(t *testing.T) {
	t.Parallel()

	root, files := fixtureRepo(t)
	reporter := &countingReporter{}

	_, err := New(root, &stubRunner{facts: callgraph.Facts{}},
		WithProgress(reporter)).Analyze(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 1, reporter.starts)
	assert.Equal(t, len(files), reporter.files)
	assert.Equal(t, 1, reporter.completes)
}
