package pyast

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// buildFunctionSignature rebuilds the def header independent of the
// original formatting: name, generic type parameters, the full parameter
// list with defaults and splats, and the return annotation.
func buildFunctionSignature(node *sitter.Node, source []byte) string {
	var sb strings.Builder

	if isAsync(node) {
		sb.WriteString("async ")
	}
	sb.WriteString("def ")
	sb.WriteString(childText(node, "name", source))

	if typeParams := node.ChildByFieldName("type_parameters"); typeParams != nil {
		sb.WriteString(collapseWhitespace(extractNodeText(typeParams, source)))
	}

	sb.WriteString(buildParameterList(node.ChildByFieldName("parameters"), source))

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sb.WriteString(" -> ")
		sb.WriteString(collapseWhitespace(extractNodeText(ret, source)))
	}

	return sb.String()
}

// buildClassSignature rebuilds the class header, keeping the superclass
// list when one exists.
func buildClassSignature(node *sitter.Node, source []byte) string {
	var sb strings.Builder

	sb.WriteString("class ")
	sb.WriteString(childText(node, "name", source))

	if typeParams := node.ChildByFieldName("type_parameters"); typeParams != nil {
		sb.WriteString(collapseWhitespace(extractNodeText(typeParams, source)))
	}

	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		args := make([]string, 0, superclasses.NamedChildCount())
		for i := uint(0); i < superclasses.NamedChildCount(); i++ {
			args = append(args, collapseWhitespace(extractNodeText(superclasses.NamedChild(i), source)))
		}
		sb.WriteString("(")
		sb.WriteString(strings.Join(args, ", "))
		sb.WriteString(")")
	}

	return sb.String()
}

// buildParameterList renders each parameter node normalized and joined by
// ", ", so multi-line headers come out on one line.
func buildParameterList(params *sitter.Node, source []byte) string {
	if params == nil {
		return "()"
	}

	rendered := make([]string, 0, params.NamedChildCount())
	for i := uint(0); i < params.NamedChildCount(); i++ {
		rendered = append(rendered, renderParameter(params.NamedChild(i), source))
	}

	return "(" + strings.Join(rendered, ", ") + ")"
}

// renderParameter renders one parameter in canonical spacing: "x", "x=1",
// "x: int", "x: int = 1", "*args", "**kwargs".
func renderParameter(p *sitter.Node, source []byte) string {
	switch p.Kind() {
	case "default_parameter":
		name := collapseWhitespace(childText(p, "name", source))
		value := collapseWhitespace(childText(p, "value", source))
		return name + "=" + value
	case "typed_default_parameter":
		name := collapseWhitespace(childText(p, "name", source))
		typ := collapseWhitespace(childText(p, "type", source))
		value := collapseWhitespace(childText(p, "value", source))
		return name + ": " + typ + " = " + value
	case "typed_parameter":
		// The parameter itself is the first named child; the annotation is
		// the "type" field.
		var name string
		if inner := p.NamedChild(0); inner != nil {
			name = collapseWhitespace(extractNodeText(inner, source))
		}
		typ := collapseWhitespace(childText(p, "type", source))
		return name + ": " + typ
	default:
		// identifier, list_splat_pattern, dictionary_splat_pattern,
		// keyword_separator, positional_separator
		return collapseWhitespace(extractNodeText(p, source))
	}
}

// isAsync reports whether the function definition carries the async keyword.
func isAsync(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "async" {
			return true
		}
		if child.Kind() == "def" {
			break
		}
	}
	return false
}
