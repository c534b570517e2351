package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyatlas/pyatlas/internal/extractor"
	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/pyast"
	"github.com/pyatlas/pyatlas/internal/resolver"
)

// Test Plan for reconciliation strategies:
// - Separator normalization handles slash/dot-mixed callee strings
// - Root-package prefix is stripped or added as needed
// - Caller-prefix walk tries every truncation of the enclosing module
// - Suffix-index disambiguation scores by module-prefix overlap, ties by
//   shortest id
// - A callee matching nothing survives no strategy

func syntheticComponent(id string) *extractor.Component {
	return &extractor.Component{
		ID:        id,
		Kind:      extractor.KindFunction,
		DependsOn: map[string]bool{},
		UsedBy:    map[string]bool{},
	}
}

func syntheticContext(t *testing.T, ids []string, rootPackages []string) *strategyContext {
	t.Helper()
	cat := extractor.NewCatalog()
	for _, id := range ids {
		cat.Add(syntheticComponent(id))
	}

	root := t.TempDir()
	index, err := modindex.New(root, nil)
	require.NoError(t, err)
	cache, err := pyast.NewCache()
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	sc := newStrategyContext(cat, index, resolver.New(root, cache, index))
	sc.rootPackages = rootPackages
	return sc
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg.mod.foo", normalizeCallee("pkg/mod.py.foo"))
	assert.Equal(t, "pkg.mod.foo", normalizeCallee("pkg/mod.foo"))
	assert.Equal(t, "pkg.mod", normalizeCallee("pkg/mod.py"))
	assert.Equal(t, "pkg.mod.foo", normalizeCallee("pkg/mod::foo"))
	assert.Equal(t, "a.b", normalizeCallee("a..b"))
}

func TestMatchNormalized(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"pkg.mod.foo"}, nil)

	id, ok := matchNormalized("pkg/mod.py.foo", callerContext{}, sc)
	require.True(t, ok)
	assert.Equal(t, "pkg.mod.foo", id)

	_, ok = matchNormalized("pkg/other.foo", callerContext{}, sc)
	assert.False(t, ok)
}

func TestMatchRootPrefix_StripAndAdd(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"pkg.mod.foo", "repo_root.util.bar"}, []string{"repo_root"})

	// Stripping the detected root prefix produces a match.
	id, ok := matchRootPrefix("repo_root.pkg.mod.foo", callerContext{}, sc)
	require.True(t, ok)
	assert.Equal(t, "pkg.mod.foo", id)

	// Adding the prefix also produces a match.
	id, ok = matchRootPrefix("util.bar", callerContext{}, sc)
	require.True(t, ok)
	assert.Equal(t, "repo_root.util.bar", id)
}

func TestMatchCallerPrefix(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"pkg.sub.helpers.fmt"}, nil)
	caller := callerContext{moduleSegments: []string{"pkg", "sub", "deep"}}

	// "helpers.fmt" resolves relative to the caller's package: the walk
	// tries pkg.sub.deep, then pkg.sub, which matches.
	id, ok := matchCallerPrefix("helpers.fmt", caller, sc)
	require.True(t, ok)
	assert.Equal(t, "pkg.sub.helpers.fmt", id)
}

func TestMatchSuffixIndex_PrefersCallerOverlap(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"pkg.billing.tax.compute", "pkg.reports.tax.compute"}, nil)
	caller := callerContext{moduleSegments: []string{"pkg", "billing", "invoices"}}

	id, ok := matchSuffixIndex("something/odd/tax.py.compute", caller, sc)
	require.True(t, ok)
	assert.Equal(t, "pkg.billing.tax.compute", id)
}

func TestMatchSuffixIndex_TieBreaksShortestID(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"a.very.long.prefix.run", "b.x.run"}, nil)
	caller := callerContext{moduleSegments: []string{"unrelated"}}

	id, ok := matchSuffixIndex("run", caller, sc)
	require.True(t, ok)
	assert.Equal(t, "b.x.run", id)
}

func TestReconcile_UnmatchableCallee(t *testing.T) {
	t.Parallel()

	sc := syntheticContext(t, []string{"pkg.mod.foo"}, []string{"repo_root"})

	_, ok := reconcile("nothing/matches.this", callerContext{}, sc)
	assert.False(t, ok)
}

func TestLCSLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, lcsLength([]string{"pkg", "billing", "tax"}, []string{"pkg", "billing", "invoices"}))
	assert.Equal(t, 0, lcsLength([]string{"a"}, []string{"b"}))
	assert.Equal(t, 1, lcsLength([]string{"x", "pkg"}, []string{"pkg", "y"}))
}
