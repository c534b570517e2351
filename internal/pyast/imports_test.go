package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for import tables:
// - Plain imports bind the dotted module path
// - Aliased imports bind the alias
// - from-imports bind each name, with relative levels counted from dots
// - "from . import X" keeps an empty module and carries the name
// - Wildcard imports land in the wildcard list, not the alias table

func TestParse_ImportForms(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
import os
import pkg.sub as ps
from pkg.util import helper, Formatter as Fmt
from . import sibling
from ..core import engine
`)

	require.Len(t, mod.Imports, 6)

	assert.Equal(t, Import{Alias: "os", Module: "os"}, mod.Imports[0])
	assert.Equal(t, Import{Alias: "ps", Module: "pkg.sub"}, mod.Imports[1])
	assert.Equal(t, Import{Alias: "helper", Module: "pkg.util", Name: "helper"}, mod.Imports[2])
	assert.Equal(t, Import{Alias: "Fmt", Module: "pkg.util", Name: "Formatter"}, mod.Imports[3])
	assert.Equal(t, Import{Alias: "sibling", Module: "", Name: "sibling", Level: 1}, mod.Imports[4])
	assert.Equal(t, Import{Alias: "engine", Module: "core", Name: "engine", Level: 2}, mod.Imports[5])
}

func TestParse_WildcardImports(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
from pkg.util import *
from .local import *
`)

	assert.Empty(t, mod.Imports)
	require.Len(t, mod.Wildcards, 2)
	assert.Equal(t, Wildcard{Module: "pkg.util"}, mod.Wildcards[0])
	assert.Equal(t, Wildcard{Module: "local", Level: 1}, mod.Wildcards[1])
}

func TestParse_MultiModuleImport(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, "import json, re\n")

	require.Len(t, mod.Imports, 2)
	assert.Equal(t, "json", mod.Imports[0].Alias)
	assert.Equal(t, "re", mod.Imports[1].Alias)
}
