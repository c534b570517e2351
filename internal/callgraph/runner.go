// Package callgraph invokes the external call-graph tool and loads its raw
// output. The tool is a black box: it receives the candidate file list and
// the repository's root package, and produces a JSON object mapping
// call-site keys to raw callee identifier strings. Reconciling those
// strings against the component catalog happens in depgraph, not here.
package callgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Facts is the raw fact table produced by the call-graph tool: call-site
// key to callee identifier strings, both in the tool's own mixed slash/dot
// normalization.
type Facts map[string][]string

// Runner invokes the call-graph tool over a repository snapshot.
type Runner interface {
	// Run executes the tool once, synchronously. Any failure (missing
	// executable, non-zero exit, malformed JSON) is fatal for the whole
	// analysis, since call facts are a primary dependency source.
	Run(ctx context.Context, rootPackage string, files []string) (Facts, error)
}

// runner shells out to a configurable executable, pycg-style:
//
//	<command> [extra args...] --package <root> -o <out.json> <files...>
type runner struct {
	command   string
	extraArgs []string
}

// NewRunner creates a runner for the given tool command.
func NewRunner(command string, extraArgs []string) Runner {
	return &runner{
		command:   command,
		extraArgs: extraArgs,
	}
}

// Run invokes the tool and parses its JSON output file.
func (r *runner) Run(ctx context.Context, rootPackage string, files []string) (Facts, error) {
	if _, err := exec.LookPath(r.command); err != nil {
		return nil, fmt.Errorf("call-graph tool %q not found: %w", r.command, err)
	}

	tmpDir, err := os.MkdirTemp("", "pyatlas-callgraph-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	outPath := filepath.Join(tmpDir, "callgraph.json")

	args := append([]string{}, r.extraArgs...)
	if rootPackage != "" {
		args = append(args, "--package", rootPackage)
	}
	args = append(args, "-o", outPath)
	args = append(args, files...)

	cmd := exec.CommandContext(ctx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("call-graph tool failed: %w (stderr: %s)", err, stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read call-graph output: %w", err)
	}

	var facts Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("failed to parse call-graph JSON: %w", err)
	}

	return facts, nil
}
