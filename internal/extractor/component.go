package extractor

import (
	"log"
	"sort"
)

// Kind represents the type of an extracted component.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
)

// Component is one class, function, or method extracted from analyzed
// source, identified by its dotted path. Position and signature are fixed
// at extraction time; only the dependency sets are mutated afterwards, by
// the graph-building passes.
type Component struct {
	ID            string // dotted path, e.g. "pkg.mod.Class.method"
	Kind          Kind
	FilePath      string // absolute path
	RelPath       string // repository-relative path
	StartLine     int    // 1-indexed, decorators included
	EndLine       int
	HeaderEndLine int // furthest line needed to show skeleton context
	Signature     string
	HasDocstring  bool
	Docstring     string
	Source        string

	DependsOn map[string]bool // component ids this component depends on
	UsedBy    map[string]bool // exact inverse of DependsOn, rebuilt by the graph builder
}

// AddDependency records that the component depends on the given id.
// Self-edges are never recorded.
func (c *Component) AddDependency(id string) {
	if id == c.ID {
		return
	}
	c.DependsOn[id] = true
}

// DependsOnIDs returns the dependency ids in sorted order.
func (c *Component) DependsOnIDs() []string {
	return sortedKeys(c.DependsOn)
}

// UsedByIDs returns the dependent ids in sorted order.
func (c *Component) UsedByIDs() []string {
	return sortedKeys(c.UsedBy)
}

// Catalog is the flat set of components extracted in one run, keyed by id.
type Catalog struct {
	byID map[string]*Component
}

// NewCatalog creates an empty component catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Component)}
}

// Add inserts a component. Duplicate ids keep the first occurrence and log
// a warning, mirroring how duplicate definitions shadow in Python.
func (cat *Catalog) Add(c *Component) {
	if existing, ok := cat.byID[c.ID]; ok {
		log.Printf("Warning: duplicate component id '%s' found in %s and %s, keeping first",
			c.ID, existing.RelPath, c.RelPath)
		return
	}
	cat.byID[c.ID] = c
}

// Get returns the component with the given id.
func (cat *Catalog) Get(id string) (*Component, bool) {
	c, ok := cat.byID[id]
	return c, ok
}

// Has reports whether the catalog contains the given id.
func (cat *Catalog) Has(id string) bool {
	_, ok := cat.byID[id]
	return ok
}

// Len returns the number of components.
func (cat *Catalog) Len() int {
	return len(cat.byID)
}

// IDs returns all component ids in sorted order.
func (cat *Catalog) IDs() []string {
	ids := make([]string, 0, len(cat.byID))
	for id := range cat.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Components returns all components sorted by id.
func (cat *Catalog) Components() []*Component {
	comps := make([]*Component, 0, len(cat.byID))
	for _, id := range cat.IDs() {
		comps = append(comps, cat.byID[id])
	}
	return comps
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
