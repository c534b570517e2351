// Package modindex maps repository file paths to dotted Python module
// paths and back. It is the navigation aid used by symbol resolution and
// call-graph reconciliation; nothing here inspects file contents.
package modindex

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Module is one repository source file viewed as a Python module.
type Module struct {
	DottedPath string // e.g. "pkg.sub.mod"; packages use their directory path
	FilePath   string // absolute path
	IsPackage  bool   // true for __init__.py files
}

// Index maps dotted module paths to files for one analyzed repository.
type Index struct {
	rootDir  string
	byModule map[string]*Module
	byFile   map[string]*Module
	roots    map[string]bool // first dotted segments owned by the repository
}

// New builds an index from the repository root and the candidate file list.
func New(rootDir string, files []string) (*Index, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
	}

	ix := &Index{
		rootDir:  absRoot,
		byModule: make(map[string]*Module),
		byFile:   make(map[string]*Module),
		roots:    make(map[string]bool),
	}

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("file %s is outside repository root %s", file, rootDir)
		}

		dotted, isPackage := dottedPath(rel)
		if dotted == "" {
			continue
		}

		m := &Module{DottedPath: dotted, FilePath: abs, IsPackage: isPackage}
		ix.byModule[dotted] = m
		ix.byFile[abs] = m
		ix.roots[firstSegment(dotted)] = true
	}

	return ix, nil
}

// dottedPath converts a repo-relative file path into a dotted module path.
// "pkg/sub/__init__.py" becomes "pkg.sub"; "pkg/mod.py" becomes "pkg.mod".
func dottedPath(rel string) (string, bool) {
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, ".py") {
		return "", false
	}
	rel = strings.TrimSuffix(rel, ".py")

	isPackage := false
	if strings.HasSuffix(rel, "/__init__") {
		rel = strings.TrimSuffix(rel, "/__init__")
		isPackage = true
	} else if rel == "__init__" {
		// A bare __init__.py at the repository root has no dotted name.
		return "", true
	}

	return strings.ReplaceAll(rel, "/", "."), isPackage
}

// ModuleForFile returns the module record for an absolute file path.
func (ix *Index) ModuleForFile(path string) (*Module, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	m, ok := ix.byFile[abs]
	return m, ok
}

// FileForModule returns the absolute file path defining a dotted module.
func (ix *Index) FileForModule(dotted string) (string, bool) {
	m, ok := ix.byModule[dotted]
	if !ok {
		return "", false
	}
	return m.FilePath, true
}

// IsLocalPrefix reports whether a dotted prefix belongs to the repository
// under analysis.
func (ix *Index) IsLocalPrefix(segment string) bool {
	return ix.roots[segment]
}

// RootPackage returns the dotted prefix owning the most modules, used as
// the repository's root package when reconciling call-graph output. Ties
// break lexicographically for determinism.
func (ix *Index) RootPackage() string {
	counts := make(map[string]int)
	for dotted := range ix.byModule {
		counts[firstSegment(dotted)]++
	}

	segments := make([]string, 0, len(counts))
	for seg := range counts {
		segments = append(segments, seg)
	}
	sort.Strings(segments)

	best := ""
	bestCount := 0
	for _, seg := range segments {
		if counts[seg] > bestCount {
			best = seg
			bestCount = counts[seg]
		}
	}
	return best
}

// Modules returns all indexed modules sorted by dotted path.
func (ix *Index) Modules() []*Module {
	mods := make([]*Module, 0, len(ix.byModule))
	for _, m := range ix.byModule {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].DottedPath < mods[j].DottedPath })
	return mods
}

// RootDir returns the absolute repository root.
func (ix *Index) RootDir() string {
	return ix.rootDir
}

func firstSegment(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}
