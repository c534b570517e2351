package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Python parser:
// - Top-level functions, classes and methods are summarized with positions
// - Nested functions stay invisible
// - Docstring detection requires a leading bare string literal
// - Signatures are rebuilt independent of the original formatting
// - Decorated definitions include decorator lines in their span
// - Module-level assignments become variable definitions
// - Base class expressions survive, keyword arguments do not

func parseSource(t *testing.T, source string) *Module {
	t.Helper()
	mod, err := Parse("test.py", []byte(source))
	require.NoError(t, err)
	return mod
}

func TestParse_TopLevelDefs(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
def helper():
    pass

class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return self.name

MAX_RETRIES = 3
`)

	fn := mod.Def("helper")
	require.NotNil(t, fn)
	assert.Equal(t, DefFunction, fn.Kind)
	assert.Equal(t, 2, fn.StartLine)
	assert.Equal(t, 3, fn.EndLine)

	cls := mod.Class("Greeter")
	require.NotNil(t, cls)
	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "__init__", cls.Methods[0].Name)
	assert.Equal(t, "greet", cls.Methods[1].Name)

	v := mod.Def("MAX_RETRIES")
	require.NotNil(t, v)
	assert.Equal(t, DefVariable, v.Kind)
}

func TestParse_NestedFunctionsInvisible(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
def outer():
    def inner():
        pass
    return inner
`)

	require.NotNil(t, mod.Def("outer"))
	assert.Nil(t, mod.Def("inner"))
}

func TestParse_Docstrings(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
def documented():
    """Does the thing."""
    return 1

def undocumented():
    x = "not a docstring"
    return x

class Documented:
    """A class docstring."""
`)

	doc := mod.Def("documented")
	require.NotNil(t, doc)
	assert.True(t, doc.HasDocstring)
	assert.Equal(t, "Does the thing.", doc.Docstring)

	undoc := mod.Def("undocumented")
	require.NotNil(t, undoc)
	assert.False(t, undoc.HasDocstring)

	cls := mod.Class("Documented")
	require.NotNil(t, cls)
	assert.True(t, cls.HasDocstring)
	assert.Equal(t, "A class docstring.", cls.Docstring)
}

func TestParse_SignatureReconstruction(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
def fetch(url,
          timeout: int = 30,
          *args,
          retries=3,
          **kwargs) -> dict:
    pass

async def stream(chunk_size: int):
    pass

class Worker(Base, mixins.Loggable):
    pass
`)

	fetch := mod.Def("fetch")
	require.NotNil(t, fetch)
	assert.Equal(t, "def fetch(url, timeout: int = 30, *args, retries=3, **kwargs) -> dict", fetch.Signature)
	assert.Equal(t, 6, fetch.SigEndLine)

	stream := mod.Def("stream")
	require.NotNil(t, stream)
	assert.Equal(t, "async def stream(chunk_size: int)", stream.Signature)

	worker := mod.Class("Worker")
	require.NotNil(t, worker)
	assert.Equal(t, "class Worker(Base, mixins.Loggable)", worker.Signature)
	assert.Equal(t, []string{"Base", "mixins.Loggable"}, worker.Bases)
}

func TestParse_DecoratedDefinitions(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
@app.route("/health")
@cached
def health():
    pass
`)

	health := mod.Def("health")
	require.NotNil(t, health)
	assert.Equal(t, []string{`app.route("/health")`, "cached"}, health.Decorators)
	// Span starts at the first decorator line.
	assert.Equal(t, 2, health.StartLine)
	assert.Equal(t, 5, health.EndLine)
}

func TestParse_MetaclassKeywordIsNotABase(t *testing.T) {
	t.Parallel()

	mod := parseSource(t, `
class Model(Base, metaclass=ABCMeta):
    pass
`)

	model := mod.Class("Model")
	require.NotNil(t, model)
	assert.Equal(t, []string{"Base"}, model.Bases)
}

func TestParse_InvalidSourceStillSummarizes(t *testing.T) {
	t.Parallel()

	// tree-sitter produces a best-effort tree for broken input; the parser
	// must not panic and keeps whatever defs are recognizable.
	mod, err := Parse("broken.py", []byte("def good():\n    pass\n\ndef broken(:\n"))
	require.NoError(t, err)
	assert.NotNil(t, mod.Def("good"))
}
