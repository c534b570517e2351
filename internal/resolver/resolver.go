// Package resolver statically determines where a referenced name is truly
// defined, following imports, re-exports, wildcard imports, and class
// inheritance without executing code. Python name resolution is dynamic;
// this is a conservative "most specific import wins" approximation that
// returns ErrNotFound rather than guessing.
package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/pyast"
)

// ErrNotFound indicates that no defining file could be determined for a
// symbol. Callers drop the reference instead of treating this as fatal.
var ErrNotFound = errors.New("symbol origin not found")

// maxDepth caps recursion as a second safety net behind the visited set.
const maxDepth = 64

// Kind classifies a resolved definition.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindVariable Kind = "variable"
	KindModule   Kind = "module"
)

// Origin is the true definition site of a resolved symbol.
type Origin struct {
	File   string // absolute path of the defining file
	Symbol string // defining symbol name inside that file; empty for modules
	Kind   Kind
}

// Resolver resolves symbol references across the files of one repository.
type Resolver struct {
	rootDir string
	cache   *pyast.Cache
	index   *modindex.Index
}

// New creates a resolver over the given repository.
func New(rootDir string, cache *pyast.Cache, index *modindex.Index) *Resolver {
	return &Resolver{
		rootDir: rootDir,
		cache:   cache,
		index:   index,
	}
}

// visitKey guards against import cycles: one attempt per (file, symbol path).
type visitKey struct {
	file   string
	symbol string
}

// Resolve determines the defining file, symbol, and kind for a dotted
// symbol path referenced from the given file.
func (r *Resolver) Resolve(symbolPath, fromFile string) (*Origin, error) {
	abs, err := filepath.Abs(fromFile)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.resolve(symbolPath, abs, make(map[visitKey]bool), 0)
}

// FindTrueOrigin resolves a name referenced from an entry file. Explicit
// imports are preferred by longest alias-prefix match, wildcard imports are
// tried in declaration order, and only then does resolution fail.
func (r *Resolver) FindTrueOrigin(entryFile, name string) (*Origin, error) {
	return r.Resolve(name, entryFile)
}

func (r *Resolver) resolve(symbolPath, file string, visited map[visitKey]bool, depth int) (*Origin, error) {
	if symbolPath == "" || depth > maxDepth {
		return nil, ErrNotFound
	}
	key := visitKey{file: file, symbol: symbolPath}
	if visited[key] {
		return nil, ErrNotFound
	}
	visited[key] = true

	mod, err := r.cache.Load(file)
	if err != nil {
		return nil, ErrNotFound
	}

	head, rest := splitHead(symbolPath)

	// Base case: a top-level definition literally named head.
	if rest == "" {
		if def := mod.Def(head); def != nil {
			return &Origin{File: mod.Path, Symbol: head, Kind: kindOf(def)}, nil
		}
	} else if class := mod.Class(head); class != nil {
		// A local class: its own methods win over inherited ones.
		restHead, restRest := splitHead(rest)
		if restRest == "" {
			if class.Method(restHead) != nil {
				return &Origin{File: mod.Path, Symbol: restHead, Kind: KindMethod}, nil
			}
		}
		// Walk base classes, emulating method-resolution-order search.
		for _, base := range class.Bases {
			if origin, err := r.resolveViaBase(mod, base, rest, visited, depth); err == nil {
				return origin, nil
			}
		}
	}

	// Explicit import whose alias prefixes the symbol path.
	if imp := bestImportMatch(mod.Imports, symbolPath); imp != nil {
		if origin, err := r.resolveViaImport(mod, imp, symbolPath, visited, depth); err == nil {
			return origin, nil
		}
	}

	// Wildcard fallback: the same full path may live in any star-imported
	// module. Tried only after every explicit branch failed.
	for _, w := range mod.Wildcards {
		target, ok := r.moduleFile(mod, w.Module, w.Level)
		if !ok {
			continue
		}
		if origin, err := r.resolve(symbolPath, target, visited, depth+1); err == nil {
			return origin, nil
		}
	}

	// Filesystem fallback: head as a sibling package or module.
	dir := filepath.Dir(mod.Path)
	for _, candidate := range []string{
		filepath.Join(dir, head, "__init__.py"),
		filepath.Join(dir, head+".py"),
	} {
		if candidate == mod.Path || !fileExists(candidate) {
			continue
		}
		if rest == "" {
			return &Origin{File: candidate, Kind: KindModule}, nil
		}
		if origin, err := r.resolve(rest, candidate, visited, depth+1); err == nil {
			return origin, nil
		}
	}

	return nil, ErrNotFound
}

// resolveViaBase searches for <base>.<rest> when rest was not defined on a
// local class itself. The base expression is located by explicit import
// first, then wildcard-import files, then the defining file itself.
func (r *Resolver) resolveViaBase(mod *pyast.Module, baseExpr, rest string, visited map[visitKey]bool, depth int) (*Origin, error) {
	base := stripSubscript(baseExpr)
	if base == "" {
		return nil, ErrNotFound
	}
	full := base + "." + rest

	if imp := bestImportMatch(mod.Imports, base); imp != nil {
		if origin, err := r.resolveViaImport(mod, imp, full, visited, depth); err == nil {
			return origin, nil
		}
	}

	for _, w := range mod.Wildcards {
		target, ok := r.moduleFile(mod, w.Module, w.Level)
		if !ok {
			continue
		}
		if origin, err := r.resolve(full, target, visited, depth+1); err == nil {
			return origin, nil
		}
	}

	if mod.Class(firstSegment(base)) != nil {
		return r.resolve(full, mod.Path, visited, depth+1)
	}

	return nil, ErrNotFound
}

// resolveViaImport rewrites a symbol path through one import binding and
// recurses into the resolved target file.
func (r *Resolver) resolveViaImport(mod *pyast.Module, imp *pyast.Import, symbolPath string, visited map[visitKey]bool, depth int) (*Origin, error) {
	remainder := strings.TrimPrefix(symbolPath, imp.Alias)
	remainder = strings.TrimPrefix(remainder, ".")

	// A bare "from . import X" binds a sibling module: X itself becomes the
	// module to resolve, and the remaining path is searched inside it.
	if imp.Module == "" && imp.Name != "" {
		target, ok := r.moduleFile(mod, imp.Name, imp.Level)
		if !ok {
			return nil, ErrNotFound
		}
		if remainder == "" {
			return &Origin{File: target, Kind: KindModule}, nil
		}
		return r.resolve(remainder, target, visited, depth+1)
	}

	target, ok := r.moduleFile(mod, imp.Module, imp.Level)
	if !ok {
		return nil, ErrNotFound
	}

	rewritten := remainder
	if imp.Name != "" {
		rewritten = imp.Name
		if remainder != "" {
			rewritten = imp.Name + "." + remainder
		}
	}
	if rewritten == "" {
		return &Origin{File: target, Kind: KindModule}, nil
	}
	return r.resolve(rewritten, target, visited, depth+1)
}

// moduleFile resolves a dotted module reference, absolute or relative, to a
// repository file. External modules are unresolvable by design.
func (r *Resolver) moduleFile(mod *pyast.Module, dotted string, level int) (string, bool) {
	if level == 0 {
		if file, ok := r.index.FileForModule(dotted); ok {
			return file, true
		}
		return "", false
	}

	// Relative import: one level is the current package, each further
	// level walks one directory up.
	dir := filepath.Dir(mod.Path)
	for i := 1; i < level; i++ {
		dir = filepath.Dir(dir)
	}

	if dotted == "" {
		candidate := filepath.Join(dir, "__init__.py")
		if fileExists(candidate) {
			return candidate, true
		}
		return "", false
	}

	parts := strings.Split(dotted, ".")
	base := filepath.Join(append([]string{dir}, parts...)...)
	if candidate := filepath.Join(base, "__init__.py"); fileExists(candidate) {
		return candidate, true
	}
	if candidate := base + ".py"; fileExists(candidate) {
		return candidate, true
	}
	return "", false
}

// bestImportMatch returns the import whose alias matches the longest
// dotted-segment prefix of the symbol path, or nil when none match.
func bestImportMatch(imports []pyast.Import, symbolPath string) *pyast.Import {
	segments := strings.Split(symbolPath, ".")

	var best *pyast.Import
	bestLen := 0
	for i := range imports {
		imp := &imports[i]
		aliasSegments := strings.Split(imp.Alias, ".")
		if len(aliasSegments) > len(segments) || len(aliasSegments) <= bestLen {
			continue
		}
		match := true
		for j, seg := range aliasSegments {
			if segments[j] != seg {
				match = false
				break
			}
		}
		if match {
			best = imp
			bestLen = len(aliasSegments)
		}
	}
	return best
}

// kindOf maps a parsed definition to a resolution kind.
func kindOf(def *pyast.Def) Kind {
	switch def.Kind {
	case pyast.DefClass:
		return KindClass
	case pyast.DefFunction:
		return KindFunction
	default:
		return KindVariable
	}
}

// stripSubscript reduces base expressions like "Generic[T]" to "Generic".
func stripSubscript(expr string) string {
	if i := strings.IndexByte(expr, '['); i >= 0 {
		expr = expr[:i]
	}
	if i := strings.IndexByte(expr, '('); i >= 0 {
		expr = expr[:i]
	}
	return strings.TrimSpace(expr)
}

func splitHead(symbolPath string) (head, rest string) {
	if i := strings.IndexByte(symbolPath, '.'); i >= 0 {
		return symbolPath[:i], symbolPath[i+1:]
	}
	return symbolPath, ""
}

func firstSegment(dotted string) string {
	head, _ := splitHead(dotted)
	return head
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
