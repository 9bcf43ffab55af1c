package parser

import (
	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/internal/explain"
)

// Explain returns an indented dump of the tree under n.
func Explain(n ast.Node) string {
	return explain.Explain(n)
}
