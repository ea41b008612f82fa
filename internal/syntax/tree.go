// Package syntax holds the parsed form of a Python module as an owned arena of nodes.
//
// Nodes are addressed by stable NodeID indices. The only mutation is Rename, which
// replaces a node's name and bumps the tree version; Build turns the tree at its
// current version into an Artifact. Consumers that must not observe renames take a
// Clone before handing the tree to anything that renames.
package syntax

import (
	"sort"

	"github.com/standardbeagle/codeqa/internal/types"
)

// NodeID indexes a node in its tree's arena
type NodeID int32

// NoNode marks the absent parent of the root
const NoNode NodeID = -1

// Kind is the category of a syntax node
type Kind uint8

const (
	KindModule Kind = iota
	KindFunctionDef
	KindAsyncFunctionDef
	KindClassDef
	KindName // identifier in expression position
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindFunctionDef:
		return "FunctionDef"
	case KindAsyncFunctionDef:
		return "AsyncFunctionDef"
	case KindClassDef:
		return "ClassDef"
	case KindName:
		return "Name"
	default:
		return "Unknown"
	}
}

// Span is a half-open byte range in the original source
type Span struct {
	Start int
	End   int
}

// Statement is an immediate body statement of a module, function or class
type Statement struct {
	Kind string // grammar kind, e.g. "return_statement"
	Pos  types.Position
}

// Node is one entry in the arena.
// Name and NameSpan are empty for modules.
type Node struct {
	Kind     Kind
	Name     string
	NameSpan Span
	Pos      types.Position
	Parent   NodeID
	Children []NodeID

	Body      []Statement
	Docstring string // cleaned docstring text, empty when absent

	RenamedAt uint32 // tree version of the last rename, 0 if never renamed
}

// HasDocstring reports whether the node carries a non-blank docstring
func (n Node) HasDocstring() bool {
	return n.Docstring != ""
}

// Tree is a versioned node arena built from one source text.
// Node 0 is always the module.
type Tree struct {
	source  []byte
	nodes   []Node
	version uint32
}

// NewTree creates a tree containing only a module node
func NewTree(source []byte) *Tree {
	src := make([]byte, len(source))
	copy(src, source)
	return &Tree{
		source: src,
		nodes: []Node{{
			Kind:   KindModule,
			Pos:    types.Position{Line: 1, Column: 1},
			Parent: NoNode,
		}},
	}
}

// Add appends a node under parent and returns its id.
// Only the parser calls Add; once built, trees change only through Rename.
func (t *Tree) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	n.RenamedAt = 0
	t.nodes = append(t.nodes, n)
	if parent != NoNode {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id
}

// SetModuleBody records the module's top-level statements and docstring
func (t *Tree) SetModuleBody(body []Statement, docstring string) {
	t.nodes[0].Body = body
	t.nodes[0].Docstring = docstring
}

// Root returns the module node id
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given id.
// Children and Body alias the tree's storage and must not be modified.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Version returns the number of renames applied so far
func (t *Tree) Version() uint32 {
	return t.version
}

// Source returns the original source text the tree was parsed from
func (t *Tree) Source() string {
	return string(t.source)
}

// Rename replaces a node's name and returns the new tree version
func (t *Tree) Rename(id NodeID, name string) uint32 {
	t.version++
	t.nodes[id].Name = name
	t.nodes[id].RenamedAt = t.version
	return t.version
}

// Clone returns an independent copy; renames on either tree are invisible to the other
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		n.Children = append([]NodeID(nil), n.Children...)
		n.Body = append([]Statement(nil), n.Body...)
		nodes[i] = n
	}
	return &Tree{source: t.source, nodes: nodes, version: t.version}
}

// Walk visits nodes in pre-order (parent before children, children in source order).
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(id NodeID, n Node) bool) {
	t.walk(t.Root(), fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID, Node) bool) {
	if !fn(id, t.nodes[id]) {
		return
	}
	for _, child := range t.nodes[id].Children {
		t.walk(child, fn)
	}
}

// Render returns the source text with every renamed node's name substituted
func (t *Tree) Render() []byte {
	var renamed []Node
	for _, n := range t.nodes {
		if n.RenamedAt > 0 {
			renamed = append(renamed, n)
		}
	}
	if len(renamed) == 0 {
		out := make([]byte, len(t.source))
		copy(out, t.source)
		return out
	}

	sort.Slice(renamed, func(i, j int) bool {
		return renamed[i].NameSpan.Start < renamed[j].NameSpan.Start
	})

	out := make([]byte, 0, len(t.source))
	prev := 0
	for _, n := range renamed {
		out = append(out, t.source[prev:n.NameSpan.Start]...)
		out = append(out, n.Name...)
		prev = n.NameSpan.End
	}
	return append(out, t.source[prev:]...)
}
