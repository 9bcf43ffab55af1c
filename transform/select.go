package transform

import (
	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// clauseKind is the bucket a clause fragment is assembled into.
type clauseKind int

const (
	clauseReturning clauseKind = iota
	clauseFrom
	clauseJoin
	clauseWhere
	clauseGroupBy
	clauseHaving
	clauseWindow
	clauseOrderBy
	clauseLimit
	clauseOffset
	clauseUnion
	clauseIntersect
	clauseExcept

	numClauseKinds
)

var clauseNames = [numClauseKinds]string{
	clauseReturning: "SELECT",
	clauseFrom:      "FROM",
	clauseJoin:      "JOIN",
	clauseWhere:     "WHERE",
	clauseGroupBy:   "GROUP BY",
	clauseHaving:    "HAVING",
	clauseWindow:    "WINDOW",
	clauseOrderBy:   "ORDER BY",
	clauseLimit:     "LIMIT",
	clauseOffset:    "OFFSET",
	clauseUnion:     "UNION",
	clauseIntersect: "INTERSECT",
	clauseExcept:    "EXCEPT",
}

func (k clauseKind) String() string {
	if k < 0 || k >= numClauseKinds {
		return "UNKNOWN"
	}
	return clauseNames[k]
}

// setOps maps each set-operation bucket to its statement kind. Folding walks
// the buckets in this order.
var setOps = []struct {
	kind clauseKind
	op   ast.SetOp
}{
	{clauseUnion, ast.SetUnion},
	{clauseIntersect, ast.SetIntersect},
	{clauseExcept, ast.SetExcept},
}

func (k clauseKind) isSetOp() bool {
	return k == clauseUnion || k == clauseIntersect || k == clauseExcept
}

// clause is one reduced clause fragment waiting to be assembled. Payload
// is an Expressions for the query and order clauses and a SetOperand for
// set operations.
type clause struct {
	kind    clauseKind
	payload ast.Node
	pos     cst.Node
}

// listClause reduces a clause whose single child is already a list.
func listClause(kind clauseKind) treeRule {
	return func(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
		if err := arity(tree, children, 1); err != nil {
			return nil, err
		}
		list, err := expect[ast.Expressions](tree, children[0])
		if err != nil {
			return nil, err
		}
		return clause{kind: kind, payload: list, pos: tree}, nil
	}
}

// exprClause reduces a clause whose single child is one expression.
func exprClause(kind clauseKind) treeRule {
	return func(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
		if err := arity(tree, children, 1); err != nil {
			return nil, err
		}
		expr, err := ast.NewExpressions(children[0])
		if err != nil {
			return nil, err
		}
		return clause{kind: kind, payload: expr, pos: tree}, nil
	}
}

// setClause reduces UNION/INTERSECT/EXCEPT [quantifier] subselect.
func setClause(kind clauseKind) treeRule {
	return func(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
		if err := arity(tree, children, 2); err != nil {
			return nil, err
		}
		quantifier, err := optional[string](tree, children[0])
		if err != nil {
			return nil, err
		}
		sel, err := expect[*ast.SelectStatement](tree, children[1])
		if err != nil {
			return nil, err
		}
		operand := &ast.SetOperand{All: quantifier == "ALL", Select: sel}
		return clause{kind: kind, payload: operand, pos: tree}, nil
	}
}

// collectClauses flattens a clause sequence (query_stmt, set_stmts,
// order_stmts) into a slice of fragments.
func collectClauses(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	clauses := make([]clause, 0, len(children))
	for _, c := range children {
		cl, err := expect[clause](tree, c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, cl)
	}
	return clauses, nil
}

// reduceSelect assembles select: returning_stmt query_stmt? set_stmts?
// order_stmts?.
func reduceSelect(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 4); err != nil {
		return nil, err
	}
	return assemble(tree, children[0], children[1:]...)
}

// reduceSubselect assembles the right-hand side of a set operation.
func reduceSubselect(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 2); err != nil {
		return nil, err
	}
	return assemble(tree, children[0], children[1])
}

// assemble distributes the returning clause and every clause sequence
// into one bucket per kind, enforces that only set operations repeat,
// folds set operations in UNION, INTERSECT, EXCEPT order and builds the
// statement.
func assemble(tree *cst.Tree, returning any, sequences ...any) (*ast.SelectStatement, error) {
	var buckets [numClauseKinds][]clause

	ret, err := expect[clause](tree, returning)
	if err != nil {
		return nil, err
	}
	buckets[ret.kind] = append(buckets[ret.kind], ret)
	for _, seq := range sequences {
		clauses, err := optional[[]clause](tree, seq)
		if err != nil {
			return nil, err
		}
		for _, cl := range clauses {
			buckets[cl.kind] = append(buckets[cl.kind], cl)
		}
	}

	for kind, bucket := range buckets {
		k := clauseKind(kind)
		if k.isSetOp() || len(bucket) <= 1 {
			continue
		}
		dup := bucket[1]
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeDuplicateClause, "duplicate %s clause", k).WithPos(dup.pos.Pos())
	}

	list := func(k clauseKind) (ast.Expressions, error) {
		if len(buckets[k]) == 0 {
			return nil, nil
		}
		return expect[ast.Expressions](tree, buckets[k][0].payload)
	}

	if len(buckets[clauseReturning]) == 0 {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "%s: no SELECT list", tree.Rule)
	}
	returningList, err := list(clauseReturning)
	if err != nil {
		return nil, err
	}
	stmt, err := ast.NewSelectStatement(returningList)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		kind clauseKind
		dst  *ast.Expressions
	}{
		{clauseFrom, &stmt.From},
		{clauseJoin, &stmt.Joins},
		{clauseWhere, &stmt.Where},
		{clauseGroupBy, &stmt.GroupBy},
		{clauseHaving, &stmt.Having},
		{clauseWindow, &stmt.Window},
		{clauseOrderBy, &stmt.OrderBy},
		{clauseLimit, &stmt.Limit},
		{clauseOffset, &stmt.Offset},
	}
	for _, f := range fields {
		if *f.dst, err = list(f.kind); err != nil {
			return nil, err
		}
	}

	for _, s := range setOps {
		bucket := buckets[s.kind]
		if len(bucket) == 0 {
			continue
		}
		union := &ast.UnionStatement{Kind: s.op}
		for _, cl := range bucket {
			union.Select = append(union.Select, cl.payload)
		}
		stmt.Unions = append(stmt.Unions, union)
	}
	return stmt, nil
}
