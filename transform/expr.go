package transform

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// unquote strips the delimiters around s and undoes doubled delimiters
// inside it. Text without delimiters is returned unchanged.
func unquote(s string, quote byte) (string, bool) {
	if len(s) < 2 || s[0] != quote || s[len(s)-1] != quote {
		return s, false
	}
	q := string(quote)
	return strings.ReplaceAll(s[1:len(s)-1], q+q, q), true
}

func reduceName(_ *Transformer, leaf *cst.Leaf) (any, error) {
	if text, ok := unquote(leaf.Value, '"'); ok {
		return ast.NewQuotedName(text), nil
	}
	return ast.NewName(leaf.Value), nil
}

func reduceReservedWord(_ *Transformer, leaf *cst.Leaf) (any, error) {
	return nil, sqlerr.NewReservedWordError(leaf.Value, leaf.Position)
}

// reduceInt keeps integers beyond int64 as decimals.
func reduceInt(_ *Transformer, leaf *cst.Leaf) (any, error) {
	n, err := strconv.ParseInt(leaf.Value, 10, 64)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, strconv.ErrRange) {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "malformed integer literal %s", leaf.Value).WithCause(err)
	}
	d, err := decimal.NewFromString(leaf.Value)
	if err != nil {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "malformed integer literal %s", leaf.Value).WithCause(err)
	}
	return ast.NewNumber(ast.ValueInt, d)
}

// reduceFloat keeps floats that overflow or underflow float64 as
// decimals.
func reduceFloat(_ *Transformer, leaf *cst.Leaf) (any, error) {
	f, err := strconv.ParseFloat(leaf.Value, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "malformed float literal %s", leaf.Value).WithCause(err)
	}
	if err == nil && (f != 0 || !hasNonZeroDigit(leaf.Value)) {
		return f, nil
	}
	d, derr := decimal.NewFromString(leaf.Value)
	if derr != nil {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "malformed float literal %s", leaf.Value).WithCause(derr)
	}
	return ast.NewNumber(ast.ValueFloat, d)
}

// hasNonZeroDigit reports whether the mantissa of a float literal has a
// digit other than zero.
func hasNonZeroDigit(lit string) bool {
	mantissa, _, _ := strings.Cut(strings.ToLower(lit), "e")
	return strings.ContainsAny(mantissa, "123456789")
}

func reduceStringLiteral(_ *Transformer, leaf *cst.Leaf) (any, error) {
	s, ok := unquote(leaf.Value, '\'')
	if !ok {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "string literal %s is not quoted", leaf.Value)
	}
	return s, nil
}

// reduceKeyword normalizes operator and keyword terminals to upper case.
// Symbolic operators pass through unchanged.
func reduceKeyword(t *Transformer, leaf *cst.Leaf) (any, error) {
	return t.upper.String(leaf.Value), nil
}

func reduceStr(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	var sb strings.Builder
	for _, c := range children {
		s, err := expect[string](tree, c)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func reduceNull(_ *Transformer, _ *cst.Tree, _ []any) (any, error) {
	return ast.NewValue(nil)
}

func reduceIdentifier(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	parent, err := optional[*ast.Name](tree, children[0])
	if err != nil {
		return nil, err
	}
	name, err := expect[*ast.Name](tree, children[1])
	if err != nil {
		return nil, err
	}
	return ast.NewIdentifier(name, parent), nil
}

func reduceStar(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 1); err != nil {
		return nil, err
	}
	parent, err := optional[*ast.Name](tree, children[0])
	if err != nil {
		return nil, err
	}
	return &ast.Star{Parent: parent}, nil
}

func reduceFunc(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if len(children) < 2 {
		return nil, arity(tree, children, 2)
	}
	parent, err := optional[*ast.Name](tree, children[0])
	if err != nil {
		return nil, err
	}
	name, err := expect[*ast.Name](tree, children[1])
	if err != nil {
		return nil, err
	}
	args, err := ast.NewExpressions(children[2:]...)
	if err != nil {
		return nil, err
	}
	return ast.NewFunc(name, parent, args), nil
}

func reduceBracket(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 1); err != nil {
		return nil, err
	}
	return ast.NewBracket(children[0])
}

func reduceBinary(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 3); err != nil {
		return nil, err
	}
	op, err := expect[string](tree, children[1])
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOperator(op, children[0], children[2])
}

// reducePrefix serves both prefix_expr (NOT) and sign_expr.
func reducePrefix(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	op, err := expect[string](tree, children[0])
	if err != nil {
		return nil, err
	}
	return ast.NewPrefix(op, children[1])
}

func reducePostfix(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	op, err := expect[string](tree, children[1])
	if err != nil {
		return nil, err
	}
	return ast.NewPostfix(op, children[0])
}

func reduceItem(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	alias, err := optional[*ast.Name](tree, children[1])
	if err != nil {
		return nil, err
	}
	return ast.Itemize(children[0], alias)
}

func reduceOrderItem(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	expr, err := ast.Lift(children[0])
	if err != nil {
		return nil, err
	}
	dir, err := optional[string](tree, children[1])
	if err != nil {
		return nil, err
	}
	item := &ast.OrderItem{Expr: expr}
	switch dir {
	case "":
	case "ASC":
		item.Order = ast.SortAsc
	case "DESC":
		item.Order = ast.SortDesc
	default:
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "unknown sort direction %q", dir)
	}
	return item, nil
}

func reduceWindowDef(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 3); err != nil {
		return nil, err
	}
	name, err := expect[*ast.Name](tree, children[0])
	if err != nil {
		return nil, err
	}
	partition, err := optional[ast.Expressions](tree, children[1])
	if err != nil {
		return nil, err
	}
	order, err := optional[ast.Expressions](tree, children[2])
	if err != nil {
		return nil, err
	}
	return &ast.WindowDef{Name: name, PartitionBy: partition, OrderBy: order}, nil
}
