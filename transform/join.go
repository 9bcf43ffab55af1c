package transform

import (
	"strings"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// joinConstraint is a reduced ON or USING branch of a join.
type joinConstraint struct {
	on    ast.Expressions
	using ast.Expressions
}

// reduceJoinStmts gathers consecutive joins into one JOIN clause.
func reduceJoinStmts(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	joins := make(ast.Expressions, 0, len(children))
	for _, c := range children {
		j, err := expect[*ast.JoinStatement](tree, c)
		if err != nil {
			return nil, err
		}
		joins = append(joins, j)
	}
	return clause{kind: clauseJoin, payload: joins, pos: tree}, nil
}

// reduceJoinType upper-cases and space-joins the join keywords.
func reduceJoinType(t *Transformer, tree *cst.Tree, children []any) (any, error) {
	words := make([]string, 0, len(children))
	for _, c := range children {
		w, err := expect[string](tree, c)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return t.upper.String(strings.Join(words, " ")), nil
}

func reduceJoinOn(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 1); err != nil {
		return nil, err
	}
	on, err := ast.NewExpressions(children[0])
	if err != nil {
		return nil, err
	}
	return joinConstraint{on: on}, nil
}

func reduceJoinUsing(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 1); err != nil {
		return nil, err
	}
	using, err := expect[ast.Expressions](tree, children[0])
	if err != nil {
		return nil, err
	}
	return joinConstraint{using: using}, nil
}

// reduceJoinUsingItems turns the USING names into unqualified column
// items.
func reduceJoinUsingItems(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	cols := make(ast.Expressions, 0, len(children))
	for _, c := range children {
		name, err := expect[*ast.Name](tree, c)
		if err != nil {
			return nil, err
		}
		col, err := ast.Itemize(ast.NewIdentifier(name, nil), nil)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// reduceJoinStmt builds a join from join_type? join_source constraint
// constraint?. The second constraint is only ever present when the
// source text carried both ON and USING (or one of them twice), which
// NewJoinStatement rejects.
func reduceJoinStmt(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 4); err != nil {
		return nil, err
	}
	joinType, err := optional[string](tree, children[0])
	if err != nil {
		return nil, err
	}
	source, err := expect[ast.Expressions](tree, children[1])
	if err != nil {
		return nil, err
	}

	var on, using ast.Expressions
	for _, c := range children[2:] {
		jc, err := optional[joinConstraint](tree, c)
		if err != nil {
			return nil, err
		}
		switch {
		case jc.on != nil && on != nil:
			return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeJoinConstraint, "join on %s has two ON clauses", source.RenderList())
		case jc.using != nil && using != nil:
			return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeJoinConstraint, "join on %s has two USING clauses", source.RenderList())
		case jc.on != nil:
			on = jc.on
		case jc.using != nil:
			using = jc.using
		}
	}
	return ast.NewJoinStatement(joinType, source, on, using)
}
