package depgraph

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/pyatlas/pyatlas/internal/callgraph"
	"github.com/pyatlas/pyatlas/internal/extractor"
	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/pyast"
	"github.com/pyatlas/pyatlas/internal/resolver"
)

// Builder populates component dependency sets from the external call facts
// and from local structure (containment, inheritance, decorators).
type Builder struct {
	catalog *extractor.Catalog
	cache   *pyast.Cache
	index   *modindex.Index
	res     *resolver.Resolver
}

// NewBuilder creates a graph builder over an extracted catalog.
func NewBuilder(catalog *extractor.Catalog, cache *pyast.Cache, index *modindex.Index, res *resolver.Resolver) *Builder {
	return &Builder{
		catalog: catalog,
		cache:   cache,
		index:   index,
		res:     res,
	}
}

// Build runs every graph-building pass. The used_by inverse is rebuilt and
// the graph invariants re-verified after each pass.
func (b *Builder) Build(facts callgraph.Facts) error {
	sc := newStrategyContext(b.catalog, b.index, b.res)

	passes := []struct {
		name string
		fn   func()
	}{
		{"call facts", func() { b.addCallEdges(facts, sc) }},
		{"containment", b.addContainmentEdges},
		{"inheritance", b.addInheritanceEdges},
		{"decorators", b.addDecoratorEdges},
	}

	for _, pass := range passes {
		pass.fn()
		RebuildUsedBy(b.catalog)
		if err := Verify(b.catalog); err != nil {
			return fmt.Errorf("graph invariant violated after %s pass: %w", pass.name, err)
		}
	}

	return nil
}

// addCallEdges reconciles the raw fact table against the catalog. Call
// sites and callees that survive no reconciliation strategy are dropped
// and logged, never fatal.
func (b *Builder) addCallEdges(facts callgraph.Facts, sc *strategyContext) {
	keys := make([]string, 0, len(facts))
	for key := range facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dropped := 0
	for _, key := range keys {
		callerID, ok := reconcile(key, keyContext(key), sc)
		if !ok {
			log.Printf("Warning: call-site key %q matches no component, dropping %d callees", key, len(facts[key]))
			continue
		}
		caller, _ := b.catalog.Get(callerID)
		ctx := callerContext{id: callerID, moduleSegments: b.moduleSegments(caller)}

		for _, raw := range facts[key] {
			calleeID, ok := reconcile(raw, ctx, sc)
			if !ok || calleeID == callerID {
				if !ok {
					dropped++
					log.Printf("Warning: unresolved callee %q from %s, dropping edge", raw, callerID)
				}
				continue
			}
			caller.AddDependency(calleeID)
		}
	}

	if dropped > 0 {
		log.Printf("Dropped %d unresolved callees from call-graph facts", dropped)
	}
}

// keyContext derives a caller context from the call-site key itself, used
// while the caller component is still unknown.
func keyContext(key string) callerContext {
	segments := strings.Split(normalizeCallee(key), ".")
	if len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}
	return callerContext{moduleSegments: segments}
}

// addContainmentEdges adds class -> method edges for every method except
// the constructor; construction detail is not behavior worth pulling in.
func (b *Builder) addContainmentEdges() {
	for _, comp := range b.catalog.Components() {
		if comp.Kind != extractor.KindClass {
			continue
		}
		class := b.classDef(comp)
		if class == nil {
			continue
		}
		for i := range class.Methods {
			name := class.Methods[i].Name
			if name == "__init__" {
				continue
			}
			if methodID := comp.ID + "." + name; b.catalog.Has(methodID) {
				comp.AddDependency(methodID)
			}
		}
	}
}

// addInheritanceEdges adds class -> parent-class edges for parents that
// resolve to repository-local components.
func (b *Builder) addInheritanceEdges() {
	for _, comp := range b.catalog.Components() {
		if comp.Kind != extractor.KindClass {
			continue
		}
		class := b.classDef(comp)
		if class == nil {
			continue
		}
		for _, base := range class.Bases {
			origin, err := b.res.Resolve(baseName(base), comp.FilePath)
			if err != nil {
				continue
			}
			if parentID, ok := b.componentIDForOrigin(origin); ok {
				comp.AddDependency(parentID)
			}
		}
	}
}

// addDecoratorEdges resolves each component's decorator expressions and
// adds an edge when the decorator is itself a repository-local component.
func (b *Builder) addDecoratorEdges() {
	for _, comp := range b.catalog.Components() {
		def := b.defForComponent(comp)
		if def == nil {
			continue
		}
		for _, deco := range def.Decorators {
			origin, err := b.res.Resolve(baseName(deco), comp.FilePath)
			if err != nil {
				continue
			}
			if targetID, ok := b.componentIDForOrigin(origin); ok {
				comp.AddDependency(targetID)
			}
		}
	}
}

// componentIDForOrigin maps a resolver origin back to a catalog id. Origins
// outside the module index, module origins, and symbols with no component
// all come back false.
func (b *Builder) componentIDForOrigin(origin *resolver.Origin) (string, bool) {
	if origin.Symbol == "" {
		return "", false
	}
	m, ok := b.index.ModuleForFile(origin.File)
	if !ok {
		return "", false
	}

	if origin.Kind == resolver.KindMethod {
		// Method origins carry only the method name; recover the class by
		// scanning the defining file for a class that owns it.
		mod, err := b.cache.Load(origin.File)
		if err != nil {
			return "", false
		}
		for i := range mod.Defs {
			class := &mod.Defs[i]
			if class.Kind == pyast.DefClass && class.Method(origin.Symbol) != nil {
				id := m.DottedPath + "." + class.Name + "." + origin.Symbol
				if b.catalog.Has(id) {
					return id, true
				}
			}
		}
		return "", false
	}

	id := m.DottedPath + "." + origin.Symbol
	if b.catalog.Has(id) {
		return id, true
	}
	return "", false
}

// classDef loads the parsed class definition backing a class component.
func (b *Builder) classDef(comp *extractor.Component) *pyast.Def {
	mod, err := b.cache.Load(comp.FilePath)
	if err != nil {
		return nil
	}
	return mod.Class(lastSegment(comp.ID))
}

// defForComponent loads the parsed definition backing any component.
func (b *Builder) defForComponent(comp *extractor.Component) *pyast.Def {
	mod, err := b.cache.Load(comp.FilePath)
	if err != nil {
		return nil
	}
	switch comp.Kind {
	case extractor.KindMethod:
		segments := strings.Split(comp.ID, ".")
		if len(segments) < 2 {
			return nil
		}
		class := mod.Class(segments[len(segments)-2])
		if class == nil {
			return nil
		}
		return class.Method(segments[len(segments)-1])
	default:
		return mod.Def(lastSegment(comp.ID))
	}
}

// moduleSegments returns the dotted segments of a component's enclosing
// module.
func (b *Builder) moduleSegments(comp *extractor.Component) []string {
	m, ok := b.index.ModuleForFile(comp.FilePath)
	if !ok {
		return nil
	}
	return strings.Split(m.DottedPath, ".")
}

// baseName reduces a base-class or decorator expression to its dotted name:
// subscripts and call arguments are stripped.
func baseName(expr string) string {
	if i := strings.IndexByte(expr, '['); i >= 0 {
		expr = expr[:i]
	}
	if i := strings.IndexByte(expr, '('); i >= 0 {
		expr = expr[:i]
	}
	return strings.TrimSpace(expr)
}

func lastSegment(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
