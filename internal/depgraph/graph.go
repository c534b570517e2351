// Package depgraph assembles the component dependency graph: call facts
// from the external tool are reconciled against the catalog, structural
// edges are added through the resolver, and the finished graph feeds the
// condenser/topological sorter and the PageRank importance ranker.
package depgraph

import (
	"fmt"

	"github.com/pyatlas/pyatlas/internal/extractor"
)

// RebuildUsedBy recomputes every component's used_by set as the exact
// inverse of depends_on. It runs after every graph-building pass; used_by
// is never authored independently.
func RebuildUsedBy(cat *extractor.Catalog) {
	for _, c := range cat.Components() {
		c.UsedBy = make(map[string]bool)
	}
	for _, c := range cat.Components() {
		for dep := range c.DependsOn {
			if target, ok := cat.Get(dep); ok {
				target.UsedBy[c.ID] = true
			}
		}
	}
}

// Verify checks the graph invariants: every edge connects two cataloged
// components, no component depends on itself, and used_by is the exact
// inverse of depends_on. A violation is an internal error, not a property
// of the analyzed repository.
func Verify(cat *extractor.Catalog) error {
	for _, c := range cat.Components() {
		for dep := range c.DependsOn {
			if dep == c.ID {
				return fmt.Errorf("internal: component %s depends on itself", c.ID)
			}
			target, ok := cat.Get(dep)
			if !ok {
				return fmt.Errorf("internal: component %s depends on unknown id %s", c.ID, dep)
			}
			if !target.UsedBy[c.ID] {
				return fmt.Errorf("internal: edge %s -> %s missing from used_by inverse", c.ID, dep)
			}
		}
		for user := range c.UsedBy {
			source, ok := cat.Get(user)
			if !ok {
				return fmt.Errorf("internal: component %s used by unknown id %s", c.ID, user)
			}
			if !source.DependsOn[c.ID] {
				return fmt.Errorf("internal: used_by entry %s -> %s has no depends_on edge", user, c.ID)
			}
		}
	}
	return nil
}

// EdgeCount returns the number of depends_on edges in the graph.
func EdgeCount(cat *extractor.Catalog) int {
	count := 0
	for _, c := range cat.Components() {
		count += len(c.DependsOn)
	}
	return count
}
