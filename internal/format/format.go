// Package format provides the text helpers behind every AST node's render
// contract: joining token streams and quoting names and literals.
package format

import (
	"iter"
	"strings"
)

// Renderer is anything that renders itself to SQL text.
type Renderer interface {
	Render() string
}

// Join concatenates the fragments of seq separated by sep. Empty
// fragments are skipped so optional parts never leave double separators.
func Join(seq iter.Seq[string], sep string) string {
	var sb strings.Builder
	first := true
	for frag := range seq {
		if frag == "" {
			continue
		}
		if !first {
			sb.WriteString(sep)
		}
		sb.WriteString(frag)
		first = false
	}
	return sb.String()
}

// QuoteName wraps s in double quotes, doubling any embedded double quote.
func QuoteName(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteString wraps s in single quotes. Embedded single quotes are written
// as-is; the result does not always re-parse.
func QuoteString(s string) string {
	return "'" + s + "'"
}

// Qualify prefixes name with parent and a dot when parent is not empty.
func Qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Format returns the SQL text of the statements, one per line, each
// terminated by a semicolon.
func Format[T Renderer](stmts ...T) string {
	var sb strings.Builder
	for i, stmt := range stmts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(stmt.Render())
		sb.WriteString(";")
	}
	return sb.String()
}
