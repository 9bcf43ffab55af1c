/*
Package grammar turns SQL text into a concrete parse tree.

The accepted language, in lark-style notation (quoted strings are
anonymous keywords and are dropped from the tree; UPPERCASE names are
terminals kept as leaves; absent optional parts become nil children):

	start           : stmt ";"?
	stmt            : select
	select          : returning_stmt query_stmt? set_stmts? order_stmts?
	subselect       : returning_stmt query_stmt?
	returning_stmt  : "SELECT" items
	query_stmt      : (from_stmt | join_stmts | where_stmt | groupby_stmt
	                  | having_stmt | window_stmt)+
	from_stmt       : "FROM" items
	join_stmts      : join_stmt+
	join_stmt       : join_type? "JOIN" join_source join_constraint join_constraint?
	join_type       : JOIN_TYPE+
	join_source     : item
	join_on_stmt    : "ON" expr
	join_using_stmt : "USING" "(" join_using_items ")"
	join_using_items: NAME ("," NAME)*
	where_stmt      : "WHERE" expr
	groupby_stmt    : "GROUP" "BY" items
	having_stmt     : "HAVING" expr
	window_stmt     : "WINDOW" window_defs
	window_defs     : window_def ("," window_def)*
	window_def      : NAME "AS" "(" ("PARTITION" "BY" items)? ("ORDER" "BY" order_items)? ")"
	set_stmts       : (union_stmt | intersect_stmt | except_stmt)+
	union_stmt      : "UNION" SET_QUANTIFIER? subselect
	order_stmts     : (orderby_stmt | limit_stmt | offset_stmt)+
	orderby_stmt    : "ORDER" "BY" order_items
	limit_stmt      : "LIMIT" expr
	offset_stmt     : "OFFSET" expr
	order_items     : order_item ("," order_item)*
	order_item      : expr ASC_OR_DESC?
	items           : item ("," item)*
	item            : expr alias?
	bo_expr         : expr BOPS expr
	prefix_expr     : PREFIX_OP expr
	postfix_expr    : expr POSTFIX_OP
	sign_expr       : SIGN expr
	func            : (NAME ".")? NAME "(" (expr ("," expr)*)? ")"
	identifier      : (NAME ".")? NAME
	star            : (NAME ".")? "*"
	bracket         : "(" (select | expr) ")"
	str             : STRING_LITERAL+

The query_stmt and order_stmts sequences accept their clauses in any
order and any number of times, and a join may carry both ON and USING.
Rejecting those shapes is left to the transformer. A reserved keyword in
an identifier position is kept as a RESERVED_WORDS leaf for the same
reason.
*/
package grammar

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
	"github.com/sqlc-dev/sqlcommon/token"
)

// Production names.
const (
	RuleStart          = "start"
	RuleStmt           = "stmt"
	RuleSelect         = "select"
	RuleSubselect      = "subselect"
	RuleReturningStmt  = "returning_stmt"
	RuleQueryStmt      = "query_stmt"
	RuleFromStmt       = "from_stmt"
	RuleJoinStmts      = "join_stmts"
	RuleJoinStmt       = "join_stmt"
	RuleJoinType       = "join_type"
	RuleJoinSource     = "join_source"
	RuleJoinOnStmt     = "join_on_stmt"
	RuleJoinUsingStmt  = "join_using_stmt"
	RuleJoinUsingItems = "join_using_items"
	RuleWhereStmt      = "where_stmt"
	RuleGroupByStmt    = "groupby_stmt"
	RuleHavingStmt     = "having_stmt"
	RuleWindowStmt     = "window_stmt"
	RuleWindowDefs     = "window_defs"
	RuleWindowDef      = "window_def"
	RuleSetStmts       = "set_stmts"
	RuleUnionStmt      = "union_stmt"
	RuleIntersectStmt  = "intersect_stmt"
	RuleExceptStmt     = "except_stmt"
	RuleOrderStmts     = "order_stmts"
	RuleOrderByStmt    = "orderby_stmt"
	RuleLimitStmt      = "limit_stmt"
	RuleOffsetStmt     = "offset_stmt"
	RuleOrderItems     = "order_items"
	RuleOrderItem      = "order_item"
	RuleItems          = "items"
	RuleItem           = "item"
	RuleBoExpr         = "bo_expr"
	RulePrefixExpr     = "prefix_expr"
	RulePostfixExpr    = "postfix_expr"
	RuleSignExpr       = "sign_expr"
	RuleFunc           = "func"
	RuleIdentifier     = "identifier"
	RuleStar           = "star"
	RuleBracket        = "bracket"
	RuleStr            = "str"
	RuleTrue           = "true"
	RuleFalse          = "false"
	RuleNull           = "null"
)

// Terminal (leaf) names.
const (
	TermName          = "NAME"
	TermReservedWords = "RESERVED_WORDS"
	TermInt           = "INT"
	TermFloat         = "FLOAT"
	TermStringLiteral = "STRING_LITERAL"
	TermBops          = "BOPS"
	TermPrefixOp      = "PREFIX_OP"
	TermPostfixOp     = "POSTFIX_OP"
	TermSign          = "SIGN"
	TermAscOrDesc     = "ASC_OR_DESC"
	TermJoinType      = "JOIN_TYPE"
	TermSetQuantifier = "SET_QUANTIFIER"
)

// Start selects the production a parse begins from. It changes which
// subset of the language is accepted, not how it is reduced.
type Start string

const (
	StartStatement Start = "start" // a whole statement, optional trailing ";"
	StartStmt      Start = "stmt"  // a statement without terminator
	StartExpr      Start = "expr"  // a bare expression
	StartValue     Start = "value" // a bare literal
)

// ParseStart converts a start symbol name into a Start.
func ParseStart(s string) (Start, error) {
	switch st := Start(strings.ToLower(s)); st {
	case StartStatement, StartStmt, StartExpr, StartValue:
		return st, nil
	case "":
		return StartStatement, nil
	default:
		return "", fmt.Errorf("unknown start symbol %q (want start, stmt, expr or value)", s)
	}
}

// Grammar is the compiled, read-only operator and keyword tables the
// productions consult. One Grammar serves any number of concurrent parses.
type Grammar struct {
	compare        map[token.Token]bool
	additive       map[token.Token]bool
	multiplicative map[token.Token]bool
	joinTypes      map[token.Token]bool
	setOps         map[token.Token]string
}

var (
	defaultGrammar *Grammar
	compileOnce    sync.Once
)

// Default returns the shared compiled grammar, building it on first use.
func Default() *Grammar {
	compileOnce.Do(func() {
		defaultGrammar = compile()
	})
	return defaultGrammar
}

func compile() *Grammar {
	return &Grammar{
		compare: map[token.Token]bool{
			token.EQ: true, token.NEQ: true, token.LT: true, token.GT: true,
			token.LTE: true, token.GTE: true, token.LIKE: true,
		},
		additive: map[token.Token]bool{
			token.PLUS: true, token.MINUS: true, token.CONCAT: true,
		},
		multiplicative: map[token.Token]bool{
			token.ASTERISK: true, token.SLASH: true, token.PERCENT: true,
		},
		joinTypes: map[token.Token]bool{
			token.INNER: true, token.LEFT: true, token.RIGHT: true, token.FULL: true,
		},
		setOps: map[token.Token]string{
			token.UNION:     RuleUnionStmt,
			token.INTERSECT: RuleIntersectStmt,
			token.EXCEPT:    RuleExceptStmt,
		},
	}
}

// Parse reads r and returns the concrete parse tree rooted at start.
// Any mismatch is returned as a syntax error carrying its position.
func (g *Grammar) Parse(start Start, r io.Reader) (cst.Node, error) {
	p := newParser(g, r)

	var (
		root cst.Node
		err  error
	)
	switch start {
	case StartStatement, "":
		root, err = p.parseStart()
	case StartStmt:
		root, err = p.parseStmt()
	case StartExpr:
		root, err = p.parseExpr()
	case StartValue:
		root, err = p.parseValue()
	default:
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeInternal, "unknown start symbol %q", start)
	}
	if err != nil {
		return nil, err
	}
	if !p.currentIs(token.EOF) {
		return nil, p.unexpected("end of input")
	}
	return root, nil
}

// Parse parses r with the default grammar.
func Parse(start Start, r io.Reader) (cst.Node, error) {
	return Default().Parse(start, r)
}

// ParseScript reads statements separated by semicolons and returns one
// stmt tree per statement. Empty statements are skipped.
func (g *Grammar) ParseScript(r io.Reader) ([]cst.Node, error) {
	p := newParser(g, r)
	var stmts []cst.Node
	for {
		for p.currentIs(token.SEMICOLON) {
			p.nextToken()
		}
		if p.currentIs(token.EOF) {
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if !p.currentIs(token.SEMICOLON) && !p.currentIs(token.EOF) {
			return nil, p.unexpected(`";" or end of input`)
		}
	}
}
