// Package pyast parses Python source files with tree-sitter and exposes
// immutable per-file summaries: top-level definitions, class bodies,
// import tables and wildcard imports. Summaries are the unit shared
// between the component extractor and the symbol origin resolver.
package pyast

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// DefKind classifies a top-level or class-body definition.
type DefKind string

const (
	DefClass    DefKind = "class"
	DefFunction DefKind = "function"
	DefVariable DefKind = "variable"
)

// Def is one definition found in a module or class body.
// Line numbers are 1-indexed and include decorators.
type Def struct {
	Kind         DefKind
	Name         string
	StartLine    int
	EndLine      int
	SigEndLine   int // last line of the def/class header
	Signature    string
	HasDocstring bool
	Docstring    string
	Decorators   []string // decorator expression text, one per @-line
	Bases        []string // class only: superclass expressions
	Methods      []Def    // class only: function definitions in the body
	Source       string   // raw source text, decorators included
}

// Module is the immutable parse summary of one Python source file.
type Module struct {
	Path      string // absolute path
	Lines     []string
	Defs      []Def
	Imports   []Import
	Wildcards []Wildcard
}

// Def returns the top-level definition with the given name, or nil.
func (m *Module) Def(name string) *Def {
	for i := range m.Defs {
		if m.Defs[i].Name == name {
			return &m.Defs[i]
		}
	}
	return nil
}

// Class returns the top-level class definition with the given name, or nil.
func (m *Module) Class(name string) *Def {
	d := m.Def(name)
	if d != nil && d.Kind == DefClass {
		return d
	}
	return nil
}

// Method returns the method with the given name on a class definition, or nil.
func (d *Def) Method(name string) *Def {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i]
		}
	}
	return nil
}

var pythonLanguage = sitter.NewLanguage(python.Language())

// ParseFile parses a Python source file into a Module summary.
func ParseFile(path string) (*Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, source)
}

// Parse parses Python source into a Module summary.
func Parse(path string, source []byte) (*Module, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(pythonLanguage)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python file: %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	lines := strings.Split(string(source), "\n")

	mod := &Module{
		Path:  path,
		Lines: lines,
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Kind() {
		case "import_statement":
			mod.Imports = append(mod.Imports, parseImport(stmt, source)...)
		case "import_from_statement":
			imports, wildcard := parseImportFrom(stmt, source)
			mod.Imports = append(mod.Imports, imports...)
			if wildcard != nil {
				mod.Wildcards = append(mod.Wildcards, *wildcard)
			}
		case "class_definition":
			mod.Defs = append(mod.Defs, parseClass(stmt, source, lines, nil))
		case "function_definition":
			mod.Defs = append(mod.Defs, parseFunction(stmt, source, lines, nil))
		case "decorated_definition":
			if def := parseDecorated(stmt, source, lines); def != nil {
				mod.Defs = append(mod.Defs, *def)
			}
		case "expression_statement":
			if def := parseModuleVariable(stmt, source, lines); def != nil {
				mod.Defs = append(mod.Defs, *def)
			}
		}
	}

	return mod, nil
}

// parseDecorated unwraps a decorated_definition into its class or function,
// attributing the decorator lines to the inner definition.
func parseDecorated(node *sitter.Node, source []byte, lines []string) *Def {
	var decorators []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "decorator" {
			// The decorator expression follows the "@" token.
			if expr := child.NamedChild(0); expr != nil {
				decorators = append(decorators, collapseWhitespace(extractNodeText(expr, source)))
			}
		}
	}

	inner := node.ChildByFieldName("definition")
	if inner == nil {
		return nil
	}

	var def Def
	switch inner.Kind() {
	case "class_definition":
		def = parseClass(inner, source, lines, node)
	case "function_definition":
		def = parseFunction(inner, source, lines, node)
	default:
		return nil
	}
	def.Decorators = decorators
	return &def
}

// parseClass extracts a class definition and its direct methods.
// outer is the enclosing decorated_definition when one exists; its start
// line wins so decorators count into the component span.
func parseClass(node *sitter.Node, source []byte, lines []string, outer *sitter.Node) Def {
	def := Def{
		Kind:       DefClass,
		Name:       childText(node, "name", source),
		StartLine:  startLine(node, outer),
		EndLine:    int(node.EndPosition().Row) + 1,
		SigEndLine: classHeaderEnd(node),
		Signature:  buildClassSignature(node, source),
	}
	def.Source = extractLines(lines, def.StartLine, def.EndLine)

	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := uint(0); i < superclasses.NamedChildCount(); i++ {
			arg := superclasses.NamedChild(i)
			// Keyword arguments like metaclass=... are not inheritance.
			if arg.Kind() == "keyword_argument" {
				continue
			}
			def.Bases = append(def.Bases, collapseWhitespace(extractNodeText(arg, source)))
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		def.HasDocstring, def.Docstring = extractDocstring(body, source)
		for i := uint(0); i < body.NamedChildCount(); i++ {
			stmt := body.NamedChild(i)
			switch stmt.Kind() {
			case "function_definition":
				def.Methods = append(def.Methods, parseFunction(stmt, source, lines, nil))
			case "decorated_definition":
				if m := parseDecorated(stmt, source, lines); m != nil && m.Kind == DefFunction {
					def.Methods = append(def.Methods, *m)
				}
			}
		}
	}

	return def
}

// parseFunction extracts a function or method definition.
func parseFunction(node *sitter.Node, source []byte, lines []string, outer *sitter.Node) Def {
	def := Def{
		Kind:       DefFunction,
		Name:       childText(node, "name", source),
		StartLine:  startLine(node, outer),
		EndLine:    int(node.EndPosition().Row) + 1,
		SigEndLine: functionHeaderEnd(node),
		Signature:  buildFunctionSignature(node, source),
	}
	def.Source = extractLines(lines, def.StartLine, def.EndLine)

	if body := node.ChildByFieldName("body"); body != nil {
		def.HasDocstring, def.Docstring = extractDocstring(body, source)
	}

	return def
}

// parseModuleVariable extracts a module-level assignment target. Only plain
// identifier targets become definitions; tuple unpacking and attribute
// targets are skipped.
func parseModuleVariable(stmt *sitter.Node, source []byte, lines []string) *Def {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}

	name := extractNodeText(left, source)
	start := int(stmt.StartPosition().Row) + 1
	end := int(stmt.EndPosition().Row) + 1
	return &Def{
		Kind:       DefVariable,
		Name:       name,
		StartLine:  start,
		EndLine:    end,
		SigEndLine: start,
		Signature:  name,
		Source:     extractLines(lines, start, end),
	}
}

// extractDocstring reports whether the first body statement is a bare
// string literal, and returns its unquoted text.
func extractDocstring(body *sitter.Node, source []byte) (bool, string) {
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return false, ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return false, ""
	}
	return true, stripStringQuotes(extractNodeText(str, source))
}

// startLine returns the 1-indexed start line, preferring the enclosing
// decorated_definition so decorators are part of the span.
func startLine(node, outer *sitter.Node) int {
	if outer != nil {
		return int(outer.StartPosition().Row) + 1
	}
	return int(node.StartPosition().Row) + 1
}

// classHeaderEnd returns the last line of the "class Name(...):" header.
func classHeaderEnd(node *sitter.Node) int {
	end := node.StartPosition().Row
	if name := node.ChildByFieldName("name"); name != nil {
		end = name.EndPosition().Row
	}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		end = superclasses.EndPosition().Row
	}
	return int(end) + 1
}

// functionHeaderEnd returns the last line of the def header, i.e. the
// parameter list or the return annotation when one is present.
func functionHeaderEnd(node *sitter.Node) int {
	end := node.StartPosition().Row
	if params := node.ChildByFieldName("parameters"); params != nil {
		end = params.EndPosition().Row
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		end = ret.EndPosition().Row
	}
	return int(end) + 1
}

// childText returns the text of a named field child, or "".
func childText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return extractNodeText(child, source)
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// extractLines extracts source code lines from startLine to endLine (1-indexed).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}

	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

// collapseWhitespace normalizes any run of whitespace to a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripStringQuotes removes string prefixes and surrounding quotes from a
// Python string literal, handling both single and triple quoting.
func stripStringQuotes(s string) string {
	// Drop prefixes like r, b, f, u in any casing.
	for len(s) > 0 && s[0] != '"' && s[0] != '\'' {
		s = s[1:]
	}
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
