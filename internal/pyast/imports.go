package pyast

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Import is one alias binding produced by an import statement.
//
//	import a.b            -> {Alias: "a.b", Module: "a.b"}
//	import a.b as x       -> {Alias: "x", Module: "a.b"}
//	from m import X       -> {Alias: "X", Module: "m", Name: "X"}
//	from m import X as Y  -> {Alias: "Y", Module: "m", Name: "X"}
//	from . import X       -> {Alias: "X", Name: "X", Level: 1}
//	from ..m import X     -> {Alias: "X", Module: "m", Name: "X", Level: 2}
type Import struct {
	Alias  string // name bound in the importing module (dotted for plain imports)
	Module string // source module; empty for "from . import X"
	Name   string // original name; empty when the alias binds the module itself
	Level  int    // relative import level (number of leading dots)
}

// Wildcard is a "from module import *" statement.
type Wildcard struct {
	Module string
	Level  int
}

// parseImport handles plain import statements, which may bind several
// modules at once.
func parseImport(node *sitter.Node, source []byte) []Import {
	var imports []Import
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			dotted := extractNodeText(child, source)
			imports = append(imports, Import{Alias: dotted, Module: dotted})
		case "aliased_import":
			dotted := childText(child, "name", source)
			alias := childText(child, "alias", source)
			imports = append(imports, Import{Alias: alias, Module: dotted})
		}
	}
	return imports
}

// parseImportFrom handles "from ... import ..." statements, returning the
// explicit alias bindings and the wildcard source when the statement is a
// star import.
func parseImportFrom(node *sitter.Node, source []byte) ([]Import, *Wildcard) {
	moduleNode := node.ChildByFieldName("module_name")
	module, level := parseModuleRef(moduleNode, source)

	if wc := findChildByKind(node, "wildcard_import"); wc != nil {
		return nil, &Wildcard{Module: module, Level: level}
	}

	// Imported names follow the "import" keyword token; the module_name
	// field precedes it, so walking past the keyword skips it naturally.
	var imports []Import
	seenImportKeyword := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			seenImportKeyword = true
			continue
		}
		if !seenImportKeyword {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := extractNodeText(child, source)
			imports = append(imports, Import{Alias: name, Module: module, Name: name, Level: level})
		case "aliased_import":
			name := childText(child, "name", source)
			alias := childText(child, "alias", source)
			imports = append(imports, Import{Alias: alias, Module: module, Name: name, Level: level})
		}
	}
	return imports, nil
}

// parseModuleRef decodes the module reference of a from-import, which is
// either a dotted_name or a relative_import carrying leading dots.
func parseModuleRef(node *sitter.Node, source []byte) (module string, level int) {
	if node == nil {
		return "", 0
	}
	if node.Kind() == "dotted_name" {
		return extractNodeText(node, source), 0
	}
	if node.Kind() == "relative_import" {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch child.Kind() {
			case "import_prefix":
				level = strings.Count(extractNodeText(child, source), ".")
			case "dotted_name":
				module = extractNodeText(child, source)
			}
		}
		return module, level
	}
	return extractNodeText(node, source), 0
}

// findChildByKind finds the first child node with the given kind.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}
