// Package analyzer orchestrates one analysis run: component extraction,
// module indexing, the external call-graph tool, dependency graph
// assembly, topological ordering, and importance ranking. The populated
// catalog, processing queue, and score map are handed to downstream
// consumers in memory.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pyatlas/pyatlas/internal/callgraph"
	"github.com/pyatlas/pyatlas/internal/depgraph"
	"github.com/pyatlas/pyatlas/internal/extractor"
	"github.com/pyatlas/pyatlas/internal/modindex"
	"github.com/pyatlas/pyatlas/internal/pyast"
	"github.com/pyatlas/pyatlas/internal/resolver"
)

// ProgressReporter reports progress during an analysis run.
type ProgressReporter interface {
	OnExtractionStart(totalFiles int)
	OnFileExtracted(processedFiles, totalFiles int, fileName string)
	OnAnalysisComplete(componentCount, edgeCount int, duration time.Duration)
}

// Result is the in-memory hand-off to downstream consumers.
type Result struct {
	RunID       string
	RootDir     string
	RootPackage string
	Catalog     *extractor.Catalog
	Queue       []string           // dependency-respecting processing order
	Scores      map[string]float64 // PageRank importance per component id
	GeneratedAt time.Time
}

// Analyzer runs the full dependency analysis over one repository snapshot.
type Analyzer struct {
	rootDir  string
	runner   callgraph.Runner
	progress ProgressReporter
	rankOpts depgraph.PageRankOptions
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(a *Analyzer) {
		a.progress = progress
	}
}

// WithPageRankOptions overrides the importance ranker configuration.
func WithPageRankOptions(opts depgraph.PageRankOptions) Option {
	return func(a *Analyzer) {
		a.rankOpts = opts
	}
}

// New creates an analyzer for the repository at rootDir.
func New(rootDir string, runner callgraph.Runner, opts ...Option) *Analyzer {
	a := &Analyzer{
		rootDir:  rootDir,
		runner:   runner,
		rankOpts: depgraph.DefaultPageRankOptions(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the pipeline over an already-filtered candidate file list.
// Per-file parse failures are logged and skipped; a call-graph tool failure
// aborts the run.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Result, error) {
	startTime := time.Now()

	index, err := modindex.New(a.rootDir, files)
	if err != nil {
		return nil, fmt.Errorf("failed to build module index: %w", err)
	}

	cache, err := pyast.NewCache()
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	ext := extractor.NewExtractor(a.rootDir, cache, index)
	catalog := extractor.NewCatalog()

	if a.progress != nil {
		a.progress.OnExtractionStart(len(files))
	}

	processed := 0
	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		components, err := ext.ExtractFile(file)
		if err != nil {
			log.Printf("Warning: failed to extract components from %s: %v", file, err)
			processed++
			if a.progress != nil {
				a.progress.OnFileExtracted(processed, len(files), filepath.Base(file))
			}
			continue
		}

		for _, c := range components {
			catalog.Add(c)
		}

		processed++
		if a.progress != nil {
			a.progress.OnFileExtracted(processed, len(files), filepath.Base(file))
		}
	}

	rootPackage := index.RootPackage()

	// Call facts are a primary dependency source; a tool failure here is
	// fatal for the run rather than a silently incomplete graph.
	facts, err := a.runner.Run(ctx, rootPackage, files)
	if err != nil {
		return nil, fmt.Errorf("call-graph collection failed: %w", err)
	}

	res := resolver.New(a.rootDir, cache, index)
	builder := depgraph.NewBuilder(catalog, cache, index, res)
	if err := builder.Build(facts); err != nil {
		return nil, err
	}

	queue, err := depgraph.Order(catalog)
	if err != nil {
		return nil, err
	}

	scores := depgraph.PageRank(catalog, a.rankOpts)

	if a.progress != nil {
		a.progress.OnAnalysisComplete(catalog.Len(), depgraph.EdgeCount(catalog), time.Since(startTime))
	}

	return &Result{
		RunID:       uuid.NewString(),
		RootDir:     a.rootDir,
		RootPackage: rootPackage,
		Catalog:     catalog,
		Queue:       queue,
		Scores:      scores,
		GeneratedAt: time.Now(),
	}, nil
}
