package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ExportFileName is the name of the analysis hand-off document.
	ExportFileName = "analysis.json"
	// ExportVersion is the current version of the export format.
	ExportVersion = "1.0"
)

// Export is the serialized form of a Result, written for downstream
// consumers (documentation pipeline, visualization) that run out of
// process.
type Export struct {
	Metadata   ExportMetadata     `json:"_metadata"`
	Components []ComponentRecord  `json:"components"`
	Queue      []string           `json:"queue"`
	Scores     map[string]float64 `json:"scores"`
}

// ExportMetadata identifies the run that produced the document.
type ExportMetadata struct {
	Version        string    `json:"version"`
	RunID          string    `json:"run_id"`
	RootPackage    string    `json:"root_package"`
	GeneratedAt    time.Time `json:"generated_at"`
	ComponentCount int       `json:"component_count"`
	EdgeCount      int       `json:"edge_count"`
}

// ComponentRecord is the serialized form of one component.
type ComponentRecord struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	File          string   `json:"file"` // repository-relative
	StartLine     int      `json:"start_line"`
	EndLine       int      `json:"end_line"`
	HeaderEndLine int      `json:"header_end_line"`
	Signature     string   `json:"signature"`
	HasDocstring  bool     `json:"has_docstring"`
	Docstring     string   `json:"docstring,omitempty"`
	DependsOn     []string `json:"depends_on"`
	UsedBy        []string `json:"used_by"`
}

// BuildExport converts a Result into its serialized form, with edge sets
// in sorted order for stable output.
func BuildExport(res *Result) *Export {
	components := make([]ComponentRecord, 0, res.Catalog.Len())
	edgeCount := 0
	for _, c := range res.Catalog.Components() {
		deps := c.DependsOnIDs()
		edgeCount += len(deps)
		components = append(components, ComponentRecord{
			ID:            c.ID,
			Kind:          string(c.Kind),
			File:          c.RelPath,
			StartLine:     c.StartLine,
			EndLine:       c.EndLine,
			HeaderEndLine: c.HeaderEndLine,
			Signature:     c.Signature,
			HasDocstring:  c.HasDocstring,
			Docstring:     c.Docstring,
			DependsOn:     deps,
			UsedBy:        c.UsedByIDs(),
		})
	}

	return &Export{
		Metadata: ExportMetadata{
			Version:        ExportVersion,
			RunID:          res.RunID,
			RootPackage:    res.RootPackage,
			GeneratedAt:    res.GeneratedAt,
			ComponentCount: res.Catalog.Len(),
			EdgeCount:      edgeCount,
		},
		Components: components,
		Queue:      res.Queue,
		Scores:     res.Scores,
	}
}

// WriteResult saves the analysis document using an atomic write pattern:
// the JSON is written to a temp file in the target directory and renamed
// into place, so readers never observe a partial document.
func WriteResult(outDir string, res *Result) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(BuildExport(res), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}

	finalPath := filepath.Join(outDir, ExportFileName)
	tmp, err := os.CreateTemp(outDir, ExportFileName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write analysis: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move analysis into place: %w", err)
	}

	return finalPath, nil
}
