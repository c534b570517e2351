// Package extractor walks parsed Python files and emits the flat component
// catalog: classes, top-level functions, and methods with identity,
// location, signature, and docstring. Nested functions are deliberately
// invisible; the dependency graph operates on top-level structure only.
package extractor

import (
	"fmt"
	"path/filepath"

	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/pyast"
)

// Extractor extracts components from Python source files.
type Extractor interface {
	// ExtractFile parses one file and returns its components.
	ExtractFile(path string) ([]*Component, error)
}

// extractor implements Extractor on top of the shared parse cache.
type extractor struct {
	rootDir string
	cache   *pyast.Cache
	index   *modindex.Index
}

// NewExtractor creates an extractor rooted at the repository under analysis.
func NewExtractor(rootDir string, cache *pyast.Cache, index *modindex.Index) Extractor {
	return &extractor{
		rootDir: rootDir,
		cache:   cache,
		index:   index,
	}
}

// ExtractFile parses one file and converts its top-level definitions into
// components. A class contributes one class component plus one method
// component per direct method.
func (e *extractor) ExtractFile(path string) ([]*Component, error) {
	mod, err := e.cache.Load(path)
	if err != nil {
		return nil, err
	}

	im, ok := e.index.ModuleForFile(path)
	if !ok {
		return nil, fmt.Errorf("file %s is not in the module index", path)
	}

	relPath, err := filepath.Rel(e.rootDir, mod.Path)
	if err != nil {
		relPath = mod.Path
	}
	relPath = filepath.ToSlash(relPath)

	var components []*Component
	for i := range mod.Defs {
		def := &mod.Defs[i]
		switch def.Kind {
		case pyast.DefFunction:
			components = append(components, e.newComponent(def, im.DottedPath+"."+def.Name, KindFunction, mod.Path, relPath, def.SigEndLine))
		case pyast.DefClass:
			classID := im.DottedPath + "." + def.Name
			components = append(components, e.newComponent(def, classID, KindClass, mod.Path, relPath, classHeaderEnd(def)))
			for j := range def.Methods {
				m := &def.Methods[j]
				components = append(components, e.newComponent(m, classID+"."+m.Name, KindMethod, mod.Path, relPath, m.SigEndLine))
			}
		}
	}

	return components, nil
}

// newComponent builds a component from a parsed definition.
func (e *extractor) newComponent(def *pyast.Def, id string, kind Kind, absPath, relPath string, headerEnd int) *Component {
	return &Component{
		ID:            id,
		Kind:          kind,
		FilePath:      absPath,
		RelPath:       relPath,
		StartLine:     def.StartLine,
		EndLine:       def.EndLine,
		HeaderEndLine: headerEnd,
		Signature:     def.Signature,
		HasDocstring:  def.HasDocstring,
		Docstring:     def.Docstring,
		Source:        def.Source,

		DependsOn: make(map[string]bool),
		UsedBy:    make(map[string]bool),
	}
}

// classHeaderEnd returns the furthest line needed to show class-skeleton
// context: the end of the constructor when one exists, otherwise the start
// line of the last method, otherwise the class header itself.
func classHeaderEnd(class *pyast.Def) int {
	if init := class.Method("__init__"); init != nil {
		return init.EndLine
	}
	if n := len(class.Methods); n > 0 {
		return class.Methods[n-1].StartLine
	}
	return class.SigEndLine
}
