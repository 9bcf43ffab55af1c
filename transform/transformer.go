// Package transform reduces a concrete parse tree into AST nodes.
//
// The reduction is a single bottom-up pass. Every production and every
// kept terminal of the grammar has exactly one rule in the table; the
// children of a tree are reduced before the rule of the tree itself runs,
// so a rule only ever sees already-reduced values. Absent optional
// children stay nil.
package transform

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/grammar"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// treeRule reduces a production given its already-reduced children.
type treeRule func(t *Transformer, tree *cst.Tree, children []any) (any, error)

// leafRule reduces a kept terminal.
type leafRule func(t *Transformer, leaf *cst.Leaf) (any, error)

// Transformer holds the rule tables and the per-instance keyword caser.
// A Transformer is cheap to build and must not be shared between
// goroutines.
type Transformer struct {
	upper  cases.Caser
	trees  map[string]treeRule
	leaves map[string]leafRule
}

// New returns a Transformer with the full rule table.
func New() *Transformer {
	return &Transformer{
		upper:  cases.Upper(language.Und),
		trees:  treeRules,
		leaves: leafRules,
	}
}

var treeRules = map[string]treeRule{
	grammar.RuleStart: passthrough,
	grammar.RuleStmt:  passthrough,

	grammar.RuleSelect:    reduceSelect,
	grammar.RuleSubselect: reduceSubselect,

	grammar.RuleReturningStmt: listClause(clauseReturning),
	grammar.RuleQueryStmt:     collectClauses,
	grammar.RuleFromStmt:      listClause(clauseFrom),
	grammar.RuleWhereStmt:     exprClause(clauseWhere),
	grammar.RuleGroupByStmt:   listClause(clauseGroupBy),
	grammar.RuleHavingStmt:    exprClause(clauseHaving),
	grammar.RuleWindowStmt:    listClause(clauseWindow),
	grammar.RuleWindowDefs:    reduceList,
	grammar.RuleWindowDef:     reduceWindowDef,

	grammar.RuleJoinStmts:      reduceJoinStmts,
	grammar.RuleJoinStmt:       reduceJoinStmt,
	grammar.RuleJoinType:       reduceJoinType,
	grammar.RuleJoinSource:     reduceList,
	grammar.RuleJoinOnStmt:     reduceJoinOn,
	grammar.RuleJoinUsingStmt:  reduceJoinUsing,
	grammar.RuleJoinUsingItems: reduceJoinUsingItems,

	grammar.RuleSetStmts:      collectClauses,
	grammar.RuleUnionStmt:     setClause(clauseUnion),
	grammar.RuleIntersectStmt: setClause(clauseIntersect),
	grammar.RuleExceptStmt:    setClause(clauseExcept),

	grammar.RuleOrderStmts:  collectClauses,
	grammar.RuleOrderByStmt: listClause(clauseOrderBy),
	grammar.RuleLimitStmt:   exprClause(clauseLimit),
	grammar.RuleOffsetStmt:  exprClause(clauseOffset),
	grammar.RuleOrderItems:  reduceList,
	grammar.RuleOrderItem:   reduceOrderItem,

	grammar.RuleItems: reduceList,
	grammar.RuleItem:  reduceItem,

	grammar.RuleBoExpr:      reduceBinary,
	grammar.RulePrefixExpr:  reducePrefix,
	grammar.RulePostfixExpr: reducePostfix,
	grammar.RuleSignExpr:    reducePrefix,

	grammar.RuleFunc:       reduceFunc,
	grammar.RuleIdentifier: reduceIdentifier,
	grammar.RuleStar:       reduceStar,
	grammar.RuleBracket:    reduceBracket,
	grammar.RuleStr:        reduceStr,
	grammar.RuleTrue:       constant(true),
	grammar.RuleFalse:      constant(false),
	grammar.RuleNull:       reduceNull,
}

var leafRules = map[string]leafRule{
	grammar.TermName:          reduceName,
	grammar.TermReservedWords: reduceReservedWord,
	grammar.TermInt:           reduceInt,
	grammar.TermFloat:         reduceFloat,
	grammar.TermStringLiteral: reduceStringLiteral,
	grammar.TermBops:          reduceKeyword,
	grammar.TermPrefixOp:      reduceKeyword,
	grammar.TermPostfixOp:     reduceKeyword,
	grammar.TermSign:          reduceKeyword,
	grammar.TermAscOrDesc:     reduceKeyword,
	grammar.TermJoinType:      reduceKeyword,
	grammar.TermSetQuantifier: reduceKeyword,
}

// Transform reduces a parse tree produced from any start symbol. The
// result is an ast.Node for statements and expressions; a literal start
// symbol yields a Value.
func (t *Transformer) Transform(n cst.Node) (ast.Node, error) {
	v, err := t.reduce(n)
	if err != nil {
		return nil, err
	}
	node, err := ast.Lift(v)
	if err != nil {
		return nil, withPos(err, n)
	}
	return node, nil
}

// Select reduces a parse tree that must hold one SELECT statement.
func (t *Transformer) Select(n cst.Node) (*ast.SelectStatement, error) {
	node, err := t.Transform(n)
	if err != nil {
		return nil, err
	}
	sel, ok := node.(*ast.SelectStatement)
	if !ok {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "expected a SELECT statement, got %s", node.Tag())
	}
	return sel, nil
}

func (t *Transformer) reduce(n cst.Node) (any, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case *cst.Leaf:
		rule, ok := t.leaves[n.Type]
		if !ok {
			return nil, sqlerr.NewInternalError(sqlerr.ErrCodeMissingRule, "no rule for terminal %s", n.Type).WithPos(n.Position)
		}
		v, err := rule(t, n)
		if err != nil {
			return nil, withPos(err, n)
		}
		return v, nil
	case *cst.Tree:
		rule, ok := t.trees[n.Rule]
		if !ok {
			return nil, sqlerr.NewInternalError(sqlerr.ErrCodeMissingRule, "no rule for production %s", n.Rule).WithPos(n.Position)
		}
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			v, err := t.reduce(c)
			if err != nil {
				return nil, err
			}
			children[i] = v
		}
		v, err := rule(t, n, children)
		if err != nil {
			return nil, withPos(err, n)
		}
		return v, nil
	default:
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "unknown parse tree node %T", n)
	}
}

func withPos(err error, n cst.Node) error {
	var serr *sqlerr.Error
	if errors.As(err, &serr) {
		serr.WithPos(n.Pos())
	}
	return err
}

// expect asserts that a reduced child has type T.
func expect[T any](tree *cst.Tree, v any) (T, error) {
	got, ok := v.(T)
	if !ok {
		var zero T
		return zero, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode,
			"%s: unexpected child %s, want %s", tree.Rule, describe(v), reflect.TypeFor[T]())
	}
	return got, nil
}

// optional is expect for children that may be absent.
func optional[T any](tree *cst.Tree, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	return expect[T](tree, v)
}

func arity(tree *cst.Tree, children []any, n int) error {
	if len(children) != n {
		return sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "%s: got %d children, want %d", tree.Rule, len(children), n)
	}
	return nil
}

func describe(v any) string {
	if v == nil {
		return "<none>"
	}
	return fmt.Sprintf("%T", v)
}

func passthrough(_ *Transformer, tree *cst.Tree, children []any) (any, error) {
	if err := arity(tree, children, 1); err != nil {
		return nil, err
	}
	return children[0], nil
}

func constant(v any) treeRule {
	return func(_ *Transformer, _ *cst.Tree, _ []any) (any, error) {
		return v, nil
	}
}

// reduceList collects reduced children into an Expressions, lifting
// scalars.
func reduceList(_ *Transformer, _ *cst.Tree, children []any) (any, error) {
	exprs, err := ast.NewExpressions(children...)
	if err != nil {
		return nil, err
	}
	return exprs, nil
}
