package analyzer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery walks the repository and produces the candidate source
// file list, excluding tests, virtualenvs and vendored code via glob
// ignore patterns. The analyzer core accepts an explicit file list;
// discovery is how the CLI produces one.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	for _, pattern := range includePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.includePatterns = append(fd.includePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return fd, nil
}

// DiscoverFiles walks the directory tree and returns candidate files in
// sorted order.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}

		// Normalize path separators for glob matching.
		relPath = filepath.ToSlash(relPath)

		if fd.shouldIgnore(relPath) {
			return nil
		}

		if fd.matchesAnyPattern(relPath, fd.includePatterns) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore the tool's own output directory.
	if strings.HasPrefix(relPath, ".pyatlas/") || relPath == ".pyatlas" {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// A directory pattern like "venv/**" should also suppress the
	// directory path itself.
	pathWithSuffix := relPath + "/**"
	for _, cp := range fd.ignorePatterns {
		if cp.pattern == pathWithSuffix {
			return true
		}
	}

	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(relPath string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}
