package depgraph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pyatlas/pyatlas/internal/extractor"
	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/resolver"
)

// The call-graph tool emits callee strings in its own normalization:
// slash/dot mixed, .py suffixes, root-package prefix sometimes present and
// sometimes not. Reconciliation is an ordered chain of pure strategies,
// each independently testable, tried until one produces a cataloged id.

// callerContext is what a strategy may know about the call site.
type callerContext struct {
	id             string   // caller component id, empty while resolving the caller itself
	moduleSegments []string // caller's enclosing dotted module prefix
}

// strategyContext carries the shared lookup structures.
type strategyContext struct {
	catalog      *extractor.Catalog
	index        *modindex.Index
	resolver     *resolver.Resolver
	rootPackages []string            // detected repository root-package prefixes
	suffixIndex  map[string][]string // last 1-2 dotted segments -> candidate ids
}

type strategy struct {
	name string
	fn   func(raw string, caller callerContext, sc *strategyContext) (string, bool)
}

// reconcileStrategies is the fallback chain, in priority order.
var reconcileStrategies = []strategy{
	{"normalize", matchNormalized},
	{"root-prefix", matchRootPrefix},
	{"caller-prefix", matchCallerPrefix},
	{"suffix-index", matchSuffixIndex},
}

// newStrategyContext builds the shared lookup structures once per run.
func newStrategyContext(cat *extractor.Catalog, index *modindex.Index, res *resolver.Resolver) *strategyContext {
	sc := &strategyContext{
		catalog:     cat,
		index:       index,
		resolver:    res,
		suffixIndex: make(map[string][]string),
	}

	// The tool's root-package prefix may be the repository directory name
	// or the dominant top-level package; both are candidates.
	seen := make(map[string]bool)
	for _, p := range []string{filepath.Base(index.RootDir()), index.RootPackage()} {
		if p != "" && p != "." && !seen[p] {
			seen[p] = true
			sc.rootPackages = append(sc.rootPackages, p)
		}
	}

	for _, id := range cat.IDs() {
		segments := strings.Split(id, ".")
		last1 := segments[len(segments)-1]
		sc.suffixIndex[last1] = append(sc.suffixIndex[last1], id)
		if len(segments) >= 2 {
			last2 := strings.Join(segments[len(segments)-2:], ".")
			sc.suffixIndex[last2] = append(sc.suffixIndex[last2], id)
		}
	}

	return sc
}

// reconcile runs the strategy chain and returns the matched component id.
func reconcile(raw string, caller callerContext, sc *strategyContext) (string, bool) {
	for _, s := range reconcileStrategies {
		if id, ok := s.fn(raw, caller, sc); ok {
			return id, true
		}
	}
	return "", false
}

// normalizeCallee rewrites a raw callee string into dotted form: slashes
// become dots, .py suffixes disappear, empty segments collapse.
func normalizeCallee(raw string) string {
	s := strings.ReplaceAll(raw, "/", ".")
	s = strings.ReplaceAll(s, "::", ".")
	s = strings.ReplaceAll(s, ".py.", ".")
	s = strings.TrimSuffix(s, ".py")

	parts := strings.Split(s, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// matchNormalized is the cheapest strategy: normalize separators and look
// the result up directly.
func matchNormalized(raw string, _ callerContext, sc *strategyContext) (string, bool) {
	norm := normalizeCallee(raw)
	if norm != "" && sc.catalog.Has(norm) {
		return norm, true
	}
	return "", false
}

// matchRootPrefix strips or adds the detected repository root package,
// covering tools that qualify relative to the directory above the root.
func matchRootPrefix(raw string, _ callerContext, sc *strategyContext) (string, bool) {
	norm := normalizeCallee(raw)
	if norm == "" {
		return "", false
	}

	for _, root := range sc.rootPackages {
		if stripped, ok := strings.CutPrefix(norm, root+"."); ok && sc.catalog.Has(stripped) {
			return stripped, true
		}
		if added := root + "." + norm; sc.catalog.Has(added) {
			return added, true
		}
	}
	return "", false
}

// matchCallerPrefix walks up the caller's own enclosing-module prefix,
// trying every truncation concatenated with the callee string. This
// emulates "resolve relative to the caller's package".
func matchCallerPrefix(raw string, caller callerContext, sc *strategyContext) (string, bool) {
	norm := normalizeCallee(raw)
	if norm == "" {
		return "", false
	}

	for i := len(caller.moduleSegments); i > 0; i-- {
		prefix := strings.Join(caller.moduleSegments[:i], ".")
		if candidate := prefix + "." + norm; sc.catalog.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// matchSuffixIndex is the last resort: index components by their trailing
// 1-2 dotted segments, seed the resolver from each candidate's defining
// file, and prefer the candidate whose resolved module path best overlaps
// the caller's enclosing-module prefix. Ties break toward the shortest id,
// then lexicographically.
func matchSuffixIndex(raw string, caller callerContext, sc *strategyContext) (string, bool) {
	norm := normalizeCallee(raw)
	segments := strings.Split(norm, ".")
	if norm == "" {
		return "", false
	}

	seen := make(map[string]bool)
	var candidates []string
	if len(segments) >= 2 {
		last2 := strings.Join(segments[len(segments)-2:], ".")
		for _, id := range sc.suffixIndex[last2] {
			if !seen[id] {
				seen[id] = true
				candidates = append(candidates, id)
			}
		}
	}
	for _, id := range sc.suffixIndex[segments[len(segments)-1]] {
		if !seen[id] {
			seen[id] = true
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)

	best := ""
	bestScore := -1
	for _, id := range candidates {
		score := lcsLength(sc.resolvedSegments(id, segments[len(segments)-1]), caller.moduleSegments)
		switch {
		case score > bestScore:
			best, bestScore = id, score
		case score == bestScore && len(id) < len(best):
			best = id
		}
	}
	return best, best != ""
}

// resolvedSegments seeds the resolver at a candidate's defining file to
// find where the callee name is truly defined, and returns that location's
// dotted segments. When resolution fails the candidate's own id stands in.
func (sc *strategyContext) resolvedSegments(candidateID, callee string) []string {
	comp, ok := sc.catalog.Get(candidateID)
	if !ok {
		return nil
	}

	if origin, err := sc.resolver.FindTrueOrigin(comp.FilePath, callee); err == nil {
		if m, ok := sc.index.ModuleForFile(origin.File); ok {
			resolved := m.DottedPath
			if origin.Symbol != "" {
				resolved += "." + origin.Symbol
			}
			return strings.Split(resolved, ".")
		}
	}
	return strings.Split(candidateID, ".")
}

// lcsLength computes the longest-common-subsequence length over dotted
// segments, the overlap score used for suffix-index disambiguation.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
