package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pyatlas/pyatlas/internal/analyzer"
	"github.com/pyatlas/pyatlas/internal/callgraph"
	"github.com/pyatlas/pyatlas/internal/config"
	"github.com/pyatlas/pyatlas/internal/depgraph"
)

var quietFlag bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repository]",
	Short: "Analyze a Python repository's dependency structure",
	Long: `Analyze parses every candidate Python source file in the repository,
reconciles the external call-graph tool's output against the extracted
components, adds structural edges (containment, inheritance, decorators),
and writes the resulting catalog, processing queue and importance scores
to .pyatlas/analysis.json.

Examples:
  # Analyze the current directory
  pyatlas analyze

  # Analyze a specific repository
  pyatlas analyze /path/to/repo

  # Analyze without progress bars
  pyatlas analyze --quiet
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if len(args) == 1 {
		rootDir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve repository path: %w", err)
		}
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	progress := NewCLIProgressReporter(quietFlag)

	progress.OnDiscoveryStart()
	discovery, err := analyzer.NewFileDiscovery(rootDir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("failed to compile discovery patterns: %w", err)
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}
	progress.OnDiscoveryComplete(len(files))

	runner := callgraph.NewRunner(cfg.CallGraph.Command, cfg.CallGraph.Args)
	a := analyzer.New(rootDir, runner,
		analyzer.WithProgress(progress),
		analyzer.WithPageRankOptions(depgraph.PageRankOptions{
			DampingFactor: cfg.Rank.DampingFactor,
			Tolerance:     cfg.Rank.Tolerance,
			MaxIterations: cfg.Rank.MaxIterations,
		}),
	)

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return err
	}

	outPath, err := analyzer.WriteResult(filepath.Join(rootDir, ".pyatlas"), result)
	if err != nil {
		return err
	}

	if !quietFlag {
		fmt.Printf("Analysis written to %s\n", outPath)
	}
	return nil
}
