package depgraph

import (
	"math"

	"github.com/pyatlas/pyatlas/internal/extractor"
)

// PageRank configuration defaults, per the original paper.
const (
	DefaultDampingFactor = 0.85
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-6
)

// PageRankOptions configures the importance ranker.
type PageRankOptions struct {
	DampingFactor float64 // probability of following an edge vs random jump
	MaxIterations int     // iteration cap; non-convergence is not an error
	Tolerance     float64 // L1 score-delta convergence threshold
}

// Validate applies defaults for out-of-range values.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor <= 0 || o.DampingFactor >= 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
}

// DefaultPageRankOptions returns the standard configuration.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// PageRank computes importance scores over the dependency graph. An edge
// A -> B ("A depends on B") moves rank mass toward B, so frequently
// depended-upon components score higher. Scores sum to approximately 1.
// If the iteration cap is reached before convergence, the last computed
// scores are returned.
func PageRank(cat *extractor.Catalog, opts PageRankOptions) map[string]float64 {
	opts.Validate()

	ids := cat.IDs()
	n := len(ids)
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	initial := 1.0 / float64(n)
	for _, id := range ids {
		scores[id] = initial
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		next := make(map[string]float64, n)

		// Rank mass of components with no dependencies is redistributed
		// uniformly, keeping the total at 1.
		dangling := 0.0
		for _, id := range ids {
			comp, _ := cat.Get(id)
			if len(comp.DependsOn) == 0 {
				dangling += scores[id]
			}
		}

		base := (1.0-opts.DampingFactor)/float64(n) + opts.DampingFactor*dangling/float64(n)
		for _, id := range ids {
			next[id] = base
		}

		for _, id := range ids {
			comp, _ := cat.Get(id)
			outDegree := len(comp.DependsOn)
			if outDegree == 0 {
				continue
			}
			share := opts.DampingFactor * scores[id] / float64(outDegree)
			for dep := range comp.DependsOn {
				next[dep] += share
			}
		}

		delta := 0.0
		for _, id := range ids {
			delta += math.Abs(next[id] - scores[id])
		}
		scores = next
		if delta < opts.Tolerance {
			break
		}
	}

	return scores
}
