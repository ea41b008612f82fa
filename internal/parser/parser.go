package parser

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/codeqa/internal/debug"
	qaerrors "github.com/standardbeagle/codeqa/internal/errors"
	"github.com/standardbeagle/codeqa/internal/syntax"
)

// Parser turns Python source text into syntax trees.
// A Parser is safe for concurrent use; calls are serialized because the
// underlying tree-sitter parser is not.
type Parser struct {
	mu sync.Mutex
	ts *tree_sitter.Parser
}

// New creates a parser for Python
func New() (*Parser, error) {
	ts := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := ts.SetLanguage(language); err != nil {
		ts.Close()
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}
	return &Parser{ts: ts}, nil
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Parse builds a fresh syntax tree for source.
// It returns a *errors.SyntaxError when source is not valid Python.
func (p *Parser) Parse(source string) (tree *syntax.Tree, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ts == nil {
		return nil, fmt.Errorf("parser is closed")
	}

	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("TREE-SITTER PANIC: %v\n", r)
			tree = nil
			err = fmt.Errorf("tree-sitter panic: %v", r)
		}
	}()

	// Tree-sitter may touch the input buffer through CGO, so parse a private copy
	content := []byte(source)

	start := time.Now()
	tsTree := p.ts.Parse(content, nil)
	if tsTree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	serr := findSyntaxError(root, content)
	if serr == nil {
		serr = findInvalidConstruct(root, content)
	}
	if serr != nil {
		debug.LogParse("syntax error at %d:%d: %s\n", serr.Line, serr.Column, serr.Message)
		return nil, serr
	}

	b := newBuilder(content)
	b.build(root)
	debug.LogParse("parsed %d bytes into %d nodes in %v\n", len(content), b.tree.Len(), time.Since(start))
	return b.tree, nil
}

// legacyStatements are accepted by the grammar for Python 2 compatibility but
// are not valid Python 3.
var legacyStatements = map[string]string{
	"print_statement": "Missing parentheses in call to 'print'. Did you mean print(...)?",
	"exec_statement":  "Missing parentheses in call to 'exec'. Did you mean exec(...)?",
}

// findSyntaxError returns the first error, missing or legacy node in pre-order
func findSyntaxError(node *tree_sitter.Node, content []byte) *qaerrors.SyntaxError {
	if node == nil {
		return nil
	}

	if msg, ok := legacyStatements[node.Kind()]; ok {
		return newSyntaxError(msg, node, content)
	}
	if node.IsMissing() {
		return newSyntaxError(fmt.Sprintf("expected '%s'", node.Kind()), node, content)
	}
	if node.IsError() {
		return newSyntaxError("invalid syntax", node, content)
	}
	if !node.HasError() && !containsLegacy(node) {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if serr := findSyntaxError(node.Child(i), content); serr != nil {
			return serr
		}
	}

	// HasError was set but no child carried it
	if node.HasError() {
		return newSyntaxError("invalid syntax", node, content)
	}
	return nil
}

// containsLegacy reports whether a legacy statement appears in the subtree.
// Legacy statements are always statements, so only statement containers are searched.
func containsLegacy(node *tree_sitter.Node) bool {
	switch node.Kind() {
	case "module", "block", "function_definition", "class_definition", "decorated_definition",
		"if_statement", "elif_clause", "else_clause", "for_statement", "while_statement",
		"try_statement", "except_clause", "except_group_clause", "finally_clause",
		"with_statement", "match_statement", "case_clause":
	default:
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if _, ok := legacyStatements[child.Kind()]; ok {
			return true
		}
		if containsLegacy(child) {
			return true
		}
	}
	return false
}

func newSyntaxError(msg string, node *tree_sitter.Node, content []byte) *qaerrors.SyntaxError {
	pos := node.StartPosition()
	line := int(pos.Row) + 1
	return qaerrors.NewSyntaxError(msg, line, int(pos.Column)+1, sourceLine(content, line))
}

// sourceLine returns the 1-based line of content, without its line break
func sourceLine(content []byte, line int) string {
	lines := strings.Split(string(content), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
