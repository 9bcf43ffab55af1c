// Package cst defines the concrete parse tree produced by the grammar.
//
// A tree is grammar-shaped: every interior node is named after the
// production that matched it, and its children are ordered exactly as the
// production lists them. Optional parts that did not match are kept as
// nil children so that a production always has the same arity.
package cst

import (
	"fmt"
	"strings"

	"github.com/sqlc-dev/sqlcommon/token"
)

// Node is either a *Tree or a *Leaf.
type Node interface {
	Pos() token.Position
	node()
}

// Tree is an interior node: one matched production.
type Tree struct {
	Rule     string
	Children []Node
	Position token.Position
}

func (t *Tree) Pos() token.Position { return t.Position }
func (t *Tree) node()               {}

// Leaf is a kept terminal.
type Leaf struct {
	Type     string // terminal name, e.g. NAME, INT, STRING_LITERAL
	Value    string // source text as written
	Position token.Position
}

func (l *Leaf) Pos() token.Position { return l.Position }
func (l *Leaf) node()               {}

// NewTree builds a tree positioned at pos.
func NewTree(rule string, pos token.Position, children ...Node) *Tree {
	return &Tree{Rule: rule, Children: children, Position: pos}
}

// NewLeaf builds a leaf positioned at pos.
func NewLeaf(typ, value string, pos token.Position) *Leaf {
	return &Leaf{Type: typ, Value: value, Position: pos}
}

// Pretty returns an indented, human-readable dump of the tree.
func Pretty(n Node) string {
	var sb strings.Builder
	pretty(&sb, n, 0)
	return sb.String()
}

func pretty(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case nil:
		fmt.Fprintf(sb, "%s<none>\n", indent)
	case *Leaf:
		fmt.Fprintf(sb, "%s%s %q\n", indent, n.Type, n.Value)
	case *Tree:
		fmt.Fprintf(sb, "%s%s\n", indent, n.Rule)
		for _, c := range n.Children {
			pretty(sb, c, depth+1)
		}
	}
}
