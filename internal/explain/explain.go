// Package explain renders an AST as an indented tree, one node per line.
// It is a debugging view of the tree's shape, not a SQL serializer.
package explain

import (
	"fmt"
	"strings"

	"github.com/sqlc-dev/sqlcommon/ast"
)

// Explain returns the tree dump of n.
func Explain(n ast.Node) string {
	var sb strings.Builder
	Node(&sb, n, 0)
	return sb.String()
}

// Node writes the dump of node at the given depth.
func Node(sb *strings.Builder, node ast.Node, depth int) {
	indent := strings.Repeat(" ", depth)
	if node == nil {
		fmt.Fprintf(sb, "%s<nil>\n", indent)
		return
	}

	switch n := node.(type) {
	case *ast.SelectStatement:
		explainSelect(sb, n, indent, depth)
	case *ast.UnionStatement:
		fmt.Fprintf(sb, "%sSetOperation %s (children %d)\n", indent, n.Kind, len(n.Select))
		children(sb, n.Select, depth+1)
	case *ast.SetOperand:
		if n.All {
			fmt.Fprintf(sb, "%sSetOperand ALL (children 1)\n", indent)
		} else {
			fmt.Fprintf(sb, "%sSetOperand (children 1)\n", indent)
		}
		Node(sb, n.Select, depth+1)
	case *ast.JoinStatement:
		explainJoin(sb, n, indent, depth)
	case *ast.WindowDef:
		explainWindow(sb, n, indent, depth)
	case *ast.OrderItem:
		dir := ""
		if n.Order != ast.SortUnspecified {
			dir = " " + n.Order.String()
		}
		fmt.Fprintf(sb, "%sOrderByElement%s (children 1)\n", indent, dir)
		Node(sb, n.Expr, depth+1)

	case *ast.Identifier:
		fmt.Fprintf(sb, "%sIdentifier %s%s\n", indent, qualified(n.Parent, n.Name), alias(n.Alias))
	case *ast.Star:
		if n.Parent != nil {
			fmt.Fprintf(sb, "%sQualifiedAsterisk %s\n", indent, n.Parent.Render())
		} else {
			fmt.Fprintf(sb, "%sAsterisk\n", indent)
		}
	case *ast.Func:
		fmt.Fprintf(sb, "%sFunction %s%s (children %d)\n", indent, qualified(n.Parent, n.Name), alias(n.Alias), len(n.Args))
		children(sb, n.Args, depth+1)
	case *ast.Value:
		fmt.Fprintf(sb, "%sLiteral %s %s%s\n", indent, n.Kind, literal(n), alias(n.Alias))
	case *ast.Prefix:
		operator(sb, "Prefix", n.Op, n.Alias, n.Expr, indent, depth)
	case *ast.Postfix:
		operator(sb, "Postfix", n.Op, n.Alias, n.Expr, indent, depth)
	case *ast.BinaryOperator:
		operator(sb, "Operator", n.Op, n.Alias, n.Expr, indent, depth)
	case *ast.Bracket:
		fmt.Fprintf(sb, "%sBracket%s (children %d)\n", indent, alias(n.Alias), len(n.Expr))
		children(sb, n.Expr, depth+1)
	case ast.Expressions:
		list(sb, "ExpressionList", n, depth)
	case *ast.Name:
		fmt.Fprintf(sb, "%sName %s\n", indent, n.Render())
	default:
		fmt.Fprintf(sb, "%s%T\n", indent, n)
	}
}

func explainSelect(sb *strings.Builder, s *ast.SelectStatement, indent string, depth int) {
	clauses := []struct {
		label string
		exprs ast.Expressions
	}{
		{"Returning", s.Returning},
		{"From", s.From},
		{"Joins", s.Joins},
		{"Where", s.Where},
		{"GroupBy", s.GroupBy},
		{"Having", s.Having},
		{"Window", s.Window},
		{"SetOperations", s.Unions},
		{"OrderBy", s.OrderBy},
		{"Limit", s.Limit},
		{"Offset", s.Offset},
	}
	count := 0
	for _, c := range clauses {
		if len(c.exprs) > 0 {
			count++
		}
	}
	fmt.Fprintf(sb, "%sSelectStatement (children %d)\n", indent, count)
	for _, c := range clauses {
		if len(c.exprs) > 0 {
			list(sb, c.label, c.exprs, depth+1)
		}
	}
}

func explainJoin(sb *strings.Builder, j *ast.JoinStatement, indent string, depth int) {
	fmt.Fprintf(sb, "%sJoin %s (children 2)\n", indent, j.Type)
	list(sb, "Source", j.Source, depth+1)
	if len(j.On) > 0 {
		list(sb, "On", j.On, depth+1)
	} else {
		list(sb, "Using", j.Using, depth+1)
	}
}

func explainWindow(sb *strings.Builder, w *ast.WindowDef, indent string, depth int) {
	count := 0
	if len(w.PartitionBy) > 0 {
		count++
	}
	if len(w.OrderBy) > 0 {
		count++
	}
	fmt.Fprintf(sb, "%sWindowDefinition %s (children %d)\n", indent, w.Name.Render(), count)
	if len(w.PartitionBy) > 0 {
		list(sb, "PartitionBy", w.PartitionBy, depth+1)
	}
	if len(w.OrderBy) > 0 {
		list(sb, "OrderBy", w.OrderBy, depth+1)
	}
}

func operator(sb *strings.Builder, kind, op string, as *ast.Name, operands ast.Expressions, indent string, depth int) {
	fmt.Fprintf(sb, "%s%s %s%s (children %d)\n", indent, kind, op, alias(as), len(operands))
	children(sb, operands, depth+1)
}

func list(sb *strings.Builder, label string, exprs ast.Expressions, depth int) {
	fmt.Fprintf(sb, "%s%s (children %d)\n", strings.Repeat(" ", depth), label, len(exprs))
	children(sb, exprs, depth+1)
}

func children(sb *strings.Builder, exprs ast.Expressions, depth int) {
	for _, e := range exprs {
		Node(sb, e, depth)
	}
}

func qualified(parent, name *ast.Name) string {
	if parent == nil {
		return name.Render()
	}
	return parent.Render() + "." + name.Render()
}

func alias(n *ast.Name) string {
	if n == nil {
		return ""
	}
	return " (alias " + n.Render() + ")"
}

// literal renders a Value without its alias.
func literal(v *ast.Value) string {
	plain := *v
	plain.Alias = nil
	return plain.Render()
}
