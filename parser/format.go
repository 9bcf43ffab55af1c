package parser

import (
	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/internal/format"
)

// Format returns the SQL text of the statements, one per line.
func Format(stmts ...*ast.SelectStatement) string {
	return format.Format(stmts...)
}
