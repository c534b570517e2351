package pyast

import (
	"fmt"
	"path/filepath"

	"github.com/maypok86/otter"
)

// maxCachedModules bounds the shared summary cache. Resolution revisits the
// same files constantly, so the hot set is small relative to the repository.
const maxCachedModules = 8192

// Cache is a read-mostly cache of parse summaries keyed by absolute file
// path. Entries are immutable once inserted, so concurrent readers need no
// coordination beyond the cache itself.
type Cache struct {
	modules otter.Cache[string, *Module]
}

// NewCache creates a module summary cache.
func NewCache() (*Cache, error) {
	modules, err := otter.MustBuilder[string, *Module](maxCachedModules).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build module cache: %w", err)
	}
	return &Cache{modules: modules}, nil
}

// Load returns the parse summary for the given file, parsing it on first
// use. The path is normalized to its absolute form before lookup.
func (c *Cache) Load(path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	if mod, ok := c.modules.Get(abs); ok {
		return mod, nil
	}

	mod, err := ParseFile(abs)
	if err != nil {
		return nil, err
	}

	c.modules.Set(abs, mod)
	return mod, nil
}

// Close releases cache resources.
func (c *Cache) Close() {
	c.modules.Close()
}
