package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codeqa/internal/syntax"
	"github.com/standardbeagle/codeqa/internal/types"
)

// builder converts a tree-sitter CST into a syntax arena.
// Only modules, definitions and identifiers in expression position become nodes.
type builder struct {
	content []byte
	tree    *syntax.Tree
}

func newBuilder(content []byte) *builder {
	return &builder{content: content, tree: syntax.NewTree(content)}
}

func (b *builder) build(root *tree_sitter.Node) {
	b.tree.SetModuleBody(b.statements(root), b.docstring(root))
	b.visitChildren(root, b.tree.Root())
}

// skippedStatements carry names that are not identifier uses
// (import aliases, global declarations).
var skippedStatements = map[string]bool{
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
	"global_statement":        true,
	"nonlocal_statement":      true,
	"comment":                 true,
}

// parameterContainers hold parameter declarations whose bare identifiers are names, not uses
var parameterContainers = map[string]bool{
	"parameters":        true,
	"lambda_parameters": true,
	"typed_parameter":   true,
}

func (b *builder) visit(node *tree_sitter.Node, parent syntax.NodeID) {
	if node == nil {
		return
	}

	kind := node.Kind()
	switch {
	case skippedStatements[kind]:
		return
	case kind == "function_definition":
		b.visitDefinition(node, parent, b.functionKind(node), nil)
	case kind == "class_definition":
		b.visitDefinition(node, parent, syntax.KindClassDef, nil)
	case kind == "decorated_definition":
		b.visitDecorated(node, parent)
	case kind == "dotted_name":
		b.visitDottedName(node, parent)
	case kind == "identifier":
		b.tree.Add(parent, syntax.Node{
			Kind:     syntax.KindName,
			Name:     b.text(node),
			NameSpan: span(node),
			Pos:      position(node),
		})
	default:
		b.visitChildren(node, parent)
	}
}

// visitDecorated attaches decorators to the definition they decorate
func (b *builder) visitDecorated(node *tree_sitter.Node, parent syntax.NodeID) {
	definition := node.ChildByFieldName("definition")
	var decorators []*tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == "decorator" {
			decorators = append(decorators, child)
		}
	}

	switch {
	case definition == nil:
		b.visitChildren(node, parent)
	case definition.Kind() == "function_definition":
		b.visitDefinition(definition, parent, b.functionKind(definition), decorators)
	case definition.Kind() == "class_definition":
		b.visitDefinition(definition, parent, syntax.KindClassDef, decorators)
	default:
		b.visitChildren(node, parent)
	}
}

func (b *builder) visitDefinition(node *tree_sitter.Node, parent syntax.NodeID, kind syntax.Kind, decorators []*tree_sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")

	def := syntax.Node{
		Kind: kind,
		Pos:  position(node),
	}
	if nameNode != nil {
		def.Name = b.text(nameNode)
		def.NameSpan = span(nameNode)
	}
	if body != nil {
		def.Body = b.statements(body)
		def.Docstring = b.docstring(body)
	}

	id := b.tree.Add(parent, def)
	for _, d := range decorators {
		b.visitChildren(d, id)
	}
	b.visitChildren(node, id)
}

// visitChildren descends into children, dropping identifiers that are
// declarations or member names rather than uses
func (b *builder) visitChildren(node *tree_sitter.Node, parent syntax.NodeID) {
	kind := node.Kind()
	var excluded *tree_sitter.Node
	switch kind {
	case "function_definition", "class_definition", "keyword_argument",
		"default_parameter", "typed_default_parameter":
		excluded = node.ChildByFieldName("name")
	case "attribute":
		excluded = node.ChildByFieldName("attribute")
	case "except_clause", "except_group_clause":
		excluded = node.ChildByFieldName("alias")
	case "as_pattern":
		excluded = boundAlias(node)
	case "keyword_pattern", "splat_pattern":
		// case Point(x=X), case [*REST]: the keyword and the capture are not uses
		excluded = node.NamedChild(0)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if excluded != nil && sameNode(child, excluded) {
			continue
		}
		if parameterContainers[kind] {
			switch child.Kind() {
			case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
				continue
			}
		}
		b.visit(child, parent)
	}
}

// boundAlias returns the alias of an as-pattern when it binds a plain name
// rather than an assignment target: "except E as err" and "case P() as p".
// "with open(f) as fh" keeps fh as a use.
func boundAlias(node *tree_sitter.Node) *tree_sitter.Node {
	if alias := node.ChildByFieldName("alias"); alias != nil {
		if p := node.Parent(); p != nil && (p.Kind() == "except_clause" || p.Kind() == "except_group_clause") {
			return alias
		}
		return nil
	}
	// match form: case_pattern "as" identifier
	if n := node.NamedChildCount(); n > 0 {
		if last := node.NamedChild(n - 1); last != nil && last.Kind() == "identifier" {
			return last
		}
	}
	return nil
}

// visitDottedName handles dotted names in match patterns (imports are skipped
// before reaching here). A lone name is a capture target unless it names the
// class of a class pattern; in "Color.RED" only the leading name is a use.
func (b *builder) visitDottedName(node *tree_sitter.Node, parent syntax.NodeID) {
	if node.NamedChildCount() == 0 {
		return
	}
	if node.NamedChildCount() == 1 {
		if p := node.Parent(); p == nil || p.Kind() != "class_pattern" {
			return
		}
	}
	b.visit(node.NamedChild(0), parent)
}

// functionKind separates "async def" from plain "def"
func (b *builder) functionKind(node *tree_sitter.Node) syntax.Kind {
	if first := node.Child(0); first != nil && first.Kind() == "async" {
		return syntax.KindAsyncFunctionDef
	}
	return syntax.KindFunctionDef
}

// statements lists the immediate statements of a module or block, ignoring comments
func (b *builder) statements(block *tree_sitter.Node) []syntax.Statement {
	var out []syntax.Statement
	for i := uint(0); i < block.NamedChildCount(); i++ {
		child := block.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, syntax.Statement{Kind: child.Kind(), Pos: position(child)})
	}
	return out
}

// docstring returns the cleaned docstring of a module or block, or ""
func (b *builder) docstring(block *tree_sitter.Node) string {
	var first *tree_sitter.Node
	for i := uint(0); i < block.NamedChildCount(); i++ {
		child := block.NamedChild(i)
		if child != nil && child.Kind() != "comment" {
			first = child
			break
		}
	}
	if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() != 1 {
		return ""
	}

	expr := first.NamedChild(0)
	if expr == nil {
		return ""
	}
	switch expr.Kind() {
	case "string":
		text, ok := b.stringContent(expr)
		if !ok {
			return ""
		}
		return cleanDoc(text)
	case "concatenated_string":
		var sb strings.Builder
		for i := uint(0); i < expr.NamedChildCount(); i++ {
			part := expr.NamedChild(i)
			if part == nil || part.Kind() != "string" {
				continue
			}
			text, ok := b.stringContent(part)
			if !ok {
				return ""
			}
			sb.WriteString(text)
		}
		return cleanDoc(sb.String())
	}
	return ""
}

// stringContent returns the literal body of a plain string.
// f-strings and bytes literals are not docstrings.
func (b *builder) stringContent(str *tree_sitter.Node) (string, bool) {
	var startEnd, endStart uint
	startEnd, endStart = str.StartByte(), str.EndByte()
	for i := uint(0); i < str.ChildCount(); i++ {
		child := str.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_start":
			prefix := strings.ToLower(strings.TrimRight(b.text(child), `"'`))
			if strings.ContainsAny(prefix, "fb") {
				return "", false
			}
			startEnd = child.EndByte()
		case "string_end":
			endStart = child.StartByte()
		case "interpolation":
			return "", false
		}
	}
	if endStart < startEnd {
		return "", true
	}
	return string(b.content[startEnd:endStart]), true
}

// cleanDoc trims docstring whitespace; a blank docstring counts as absent
func cleanDoc(s string) string {
	return strings.TrimSpace(s)
}

func (b *builder) text(node *tree_sitter.Node) string {
	return string(b.content[node.StartByte():node.EndByte()])
}

func span(node *tree_sitter.Node) syntax.Span {
	return syntax.Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}

func position(node *tree_sitter.Node) types.Position {
	p := node.StartPosition()
	return types.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func sameNode(a, b *tree_sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}
