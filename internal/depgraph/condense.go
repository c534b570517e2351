package depgraph

import (
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/pyatlas/pyatlas/internal/extractor"
)

// Condensation partitions component ids into strongly connected groups and
// totally orders the groups so that every dependency group precedes its
// dependents. Groups are singletons unless their members are mutually
// reachable.
type Condensation struct {
	Groups [][]string // members sorted by id; groups in processing order
}

// Queue flattens the condensation into one linear processing order. Cycle
// members are emitted contiguously.
func (c *Condensation) Queue() []string {
	var queue []string
	for _, group := range c.Groups {
		queue = append(queue, group...)
	}
	return queue
}

// Condense computes strongly connected components over the dependency
// graph and topologically sorts the resulting condensation. Because the
// condensation of any graph is acyclic by construction, a sort failure
// here is an internal error, never a property of the analyzed repository.
func Condense(cat *extractor.Catalog) (*Condensation, error) {
	// Edges run dependency -> dependent so the sort emits dependencies
	// first: for A depends_on B, B must come no later than A.
	g := graph.New(graph.StringHash, graph.Directed())
	for _, id := range cat.IDs() {
		if err := g.AddVertex(id); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", id, err)
		}
	}
	for _, comp := range cat.Components() {
		for dep := range comp.DependsOn {
			if err := g.AddEdge(dep, comp.ID); err != nil && err != graph.ErrEdgeAlreadyExists {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", dep, comp.ID, err)
			}
		}
	}

	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute strongly connected components: %w", err)
	}

	// Each group is keyed by its lexicographically smallest member.
	groupOf := make(map[string]string)
	members := make(map[string][]string)
	for _, scc := range sccs {
		sort.Strings(scc)
		key := scc[0]
		for _, id := range scc {
			groupOf[id] = key
		}
		members[key] = scc
	}

	cond := graph.New(graph.StringHash, graph.Directed())
	for key := range members {
		if err := cond.AddVertex(key); err != nil {
			return nil, fmt.Errorf("failed to add condensation vertex %s: %w", key, err)
		}
	}
	for _, comp := range cat.Components() {
		for dep := range comp.DependsOn {
			from, to := groupOf[dep], groupOf[comp.ID]
			if from == to {
				continue
			}
			if err := cond.AddEdge(from, to); err != nil && err != graph.ErrEdgeAlreadyExists {
				return nil, fmt.Errorf("internal: condensation is not acyclic: %w", err)
			}
		}
	}

	order, err := graph.StableTopologicalSort(cond, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("internal: condensation is not acyclic: %w", err)
	}

	c := &Condensation{Groups: make([][]string, 0, len(order))}
	for _, key := range order {
		c.Groups = append(c.Groups, members[key])
	}
	return c, nil
}

// Order returns the deterministic dependency-respecting processing queue
// for the whole catalog.
func Order(cat *extractor.Catalog) ([]string, error) {
	cond, err := Condense(cat)
	if err != nil {
		return nil, err
	}
	return cond.Queue(), nil
}
