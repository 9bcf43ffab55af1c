package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/lexer"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
	"github.com/sqlc-dev/sqlcommon/token"
)

// parser holds the state of a single parse. It is not reused.
type parser struct {
	g       *Grammar
	lexer   *lexer.Lexer
	current lexer.Item
	peek    lexer.Item
}

func newParser(g *Grammar, r io.Reader) *parser {
	p := &parser{
		g:     g,
		lexer: lexer.New(r),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.current = p.peek
	for {
		p.peek = p.lexer.NextToken()
		// Skip comments and whitespace
		if p.peek.Token != token.COMMENT && p.peek.Token != token.WHITESPACE {
			break
		}
	}
}

func (p *parser) currentIs(t token.Token) bool {
	return p.current.Token == t
}

func (p *parser) peekIs(t token.Token) bool {
	return p.peek.Token == t
}

func (p *parser) expect(t token.Token) error {
	if p.currentIs(t) {
		p.nextToken()
		return nil
	}
	return p.unexpected(t.String())
}

// unexpected reports the current token as a syntax error.
func (p *parser) unexpected(want string) error {
	cur := p.current
	if cur.Token == token.ILLEGAL {
		switch {
		case strings.HasPrefix(cur.Value, "'"):
			return sqlerr.NewSyntaxError(sqlerr.ErrCodeUnclosedString, cur.Pos, "unterminated string literal")
		case strings.HasPrefix(cur.Value, `"`):
			return sqlerr.NewSyntaxError(sqlerr.ErrCodeUnclosedString, cur.Pos, "unterminated quoted identifier")
		case strings.HasPrefix(cur.Value, "/*"):
			return sqlerr.NewSyntaxError(sqlerr.ErrCodeUnclosedString, cur.Pos, "unterminated comment")
		default:
			return sqlerr.NewSyntaxError(sqlerr.ErrCodeUnexpectedToken, cur.Pos, "illegal character %q", cur.Value)
		}
	}
	return sqlerr.NewSyntaxError(sqlerr.ErrCodeUnexpectedToken, cur.Pos, "expected %s, got %s", want, describe(cur))
}

func describe(item lexer.Item) string {
	if item.Token == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", item.Value)
}

// leaf consumes the current token as a leaf of the given terminal type.
func (p *parser) leaf(typ string) *cst.Leaf {
	l := cst.NewLeaf(typ, p.current.Value, p.current.Pos)
	p.nextToken()
	return l
}

// parseName consumes an identifier. A keyword in its place is kept as a
// RESERVED_WORDS leaf so the transformer can reject it by name.
func (p *parser) parseName() (cst.Node, error) {
	switch {
	case p.currentIs(token.IDENT):
		return p.leaf(TermName), nil
	case p.current.Token.IsKeyword():
		return p.leaf(TermReservedWords), nil
	default:
		return nil, p.unexpected("identifier")
	}
}

func (p *parser) parseStart() (cst.Node, error) {
	pos := p.current.Pos
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	for p.currentIs(token.SEMICOLON) {
		p.nextToken()
	}
	return cst.NewTree(RuleStart, pos, stmt), nil
}

func (p *parser) parseStmt() (cst.Node, error) {
	pos := p.current.Pos
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RuleStmt, pos, sel), nil
}

func (p *parser) parseSelect() (cst.Node, error) {
	pos := p.current.Pos
	returning, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	query, err := p.parseQueryStmt()
	if err != nil {
		return nil, err
	}
	sets, err := p.parseSetStmts()
	if err != nil {
		return nil, err
	}
	orders, err := p.parseOrderStmts()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RuleSelect, pos, returning, query, sets, orders), nil
}

func (p *parser) parseSubselect() (cst.Node, error) {
	pos := p.current.Pos
	returning, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	query, err := p.parseQueryStmt()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RuleSubselect, pos, returning, query), nil
}

func (p *parser) parseReturning() (cst.Node, error) {
	pos := p.current.Pos
	if err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RuleReturningStmt, pos, items), nil
}

// parseQueryStmt collects FROM/JOIN/WHERE/GROUP BY/HAVING/WINDOW clauses
// in whatever order they appear. It returns nil if there are none.
func (p *parser) parseQueryStmt() (cst.Node, error) {
	pos := p.current.Pos
	var clauses []cst.Node
	for {
		var (
			clause cst.Node
			err    error
		)
		switch {
		case p.currentIs(token.FROM):
			clause, err = p.parseKeywordItems(RuleFromStmt, token.FROM)
		case p.isJoinStart():
			clause, err = p.parseJoinStmts()
		case p.currentIs(token.WHERE):
			clause, err = p.parseKeywordExpr(RuleWhereStmt, token.WHERE)
		case p.currentIs(token.GROUP):
			clause, err = p.parseKeywordItems(RuleGroupByStmt, token.GROUP, token.BY)
		case p.currentIs(token.HAVING):
			clause, err = p.parseKeywordExpr(RuleHavingStmt, token.HAVING)
		case p.currentIs(token.WINDOW):
			clause, err = p.parseWindowStmt()
		default:
			if len(clauses) == 0 {
				return nil, nil
			}
			return cst.NewTree(RuleQueryStmt, pos, clauses...), nil
		}
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
}

// parseKeywordItems parses `KEYWORD... items` into a one-child tree.
func (p *parser) parseKeywordItems(rule string, keywords ...token.Token) (cst.Node, error) {
	pos := p.current.Pos
	for _, kw := range keywords {
		if err := p.expect(kw); err != nil {
			return nil, err
		}
	}
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(rule, pos, items), nil
}

// parseKeywordExpr parses `KEYWORD expr` into a one-child tree.
func (p *parser) parseKeywordExpr(rule string, keyword token.Token) (cst.Node, error) {
	pos := p.current.Pos
	if err := p.expect(keyword); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(rule, pos, expr), nil
}

func (p *parser) isJoinStart() bool {
	return p.currentIs(token.JOIN) || p.g.joinTypes[p.current.Token]
}

func (p *parser) parseJoinStmts() (cst.Node, error) {
	pos := p.current.Pos
	var joins []cst.Node
	for p.isJoinStart() {
		join, err := p.parseJoinStmt()
		if err != nil {
			return nil, err
		}
		joins = append(joins, join)
	}
	return cst.NewTree(RuleJoinStmts, pos, joins...), nil
}

func (p *parser) parseJoinStmt() (cst.Node, error) {
	pos := p.current.Pos

	var joinType cst.Node
	if p.g.joinTypes[p.current.Token] {
		typePos := p.current.Pos
		var words []cst.Node
		outerable := !p.currentIs(token.INNER)
		words = append(words, p.leaf(TermJoinType))
		if outerable && p.currentIs(token.OUTER) {
			words = append(words, p.leaf(TermJoinType))
		}
		joinType = cst.NewTree(RuleJoinType, typePos, words...)
	}

	if err := p.expect(token.JOIN); err != nil {
		return nil, err
	}

	sourcePos := p.current.Pos
	item, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	source := cst.NewTree(RuleJoinSource, sourcePos, item)

	if !p.currentIs(token.ON) && !p.currentIs(token.USING) {
		return nil, p.unexpected("ON or USING")
	}
	first, err := p.parseJoinConstraint()
	if err != nil {
		return nil, err
	}
	var second cst.Node
	if p.currentIs(token.ON) || p.currentIs(token.USING) {
		second, err = p.parseJoinConstraint()
		if err != nil {
			return nil, err
		}
	}
	return cst.NewTree(RuleJoinStmt, pos, joinType, source, first, second), nil
}

func (p *parser) parseJoinConstraint() (cst.Node, error) {
	if p.currentIs(token.ON) {
		return p.parseKeywordExpr(RuleJoinOnStmt, token.ON)
	}

	pos := p.current.Pos
	if err := p.expect(token.USING); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	itemsPos := p.current.Pos
	var names []cst.Node
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.currentIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cst.NewTree(RuleJoinUsingStmt, pos, cst.NewTree(RuleJoinUsingItems, itemsPos, names...)), nil
}

func (p *parser) parseWindowStmt() (cst.Node, error) {
	pos := p.current.Pos
	if err := p.expect(token.WINDOW); err != nil {
		return nil, err
	}
	defsPos := p.current.Pos
	var defs []cst.Node
	for {
		def, err := p.parseWindowDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		if !p.currentIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return cst.NewTree(RuleWindowStmt, pos, cst.NewTree(RuleWindowDefs, defsPos, defs...)), nil
}

func (p *parser) parseWindowDef() (cst.Node, error) {
	pos := p.current.Pos
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var partition, order cst.Node
	if p.currentIs(token.PARTITION) {
		p.nextToken()
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		if partition, err = p.parseItems(); err != nil {
			return nil, err
		}
	}
	if p.currentIs(token.ORDER) {
		p.nextToken()
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		if order, err = p.parseOrderItems(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cst.NewTree(RuleWindowDef, pos, name, partition, order), nil
}

// parseSetStmts collects UNION/INTERSECT/EXCEPT branches. It returns nil
// if there are none.
func (p *parser) parseSetStmts() (cst.Node, error) {
	pos := p.current.Pos
	var stmts []cst.Node
	for {
		rule, ok := p.g.setOps[p.current.Token]
		if !ok {
			break
		}
		opPos := p.current.Pos
		p.nextToken()

		var quantifier cst.Node
		if p.currentIs(token.ALL) {
			quantifier = p.leaf(TermSetQuantifier)
		}
		sub, err := p.parseSubselect()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, cst.NewTree(rule, opPos, quantifier, sub))
	}
	if len(stmts) == 0 {
		return nil, nil
	}
	return cst.NewTree(RuleSetStmts, pos, stmts...), nil
}

// parseOrderStmts collects ORDER BY/LIMIT/OFFSET clauses in any order. It
// returns nil if there are none.
func (p *parser) parseOrderStmts() (cst.Node, error) {
	pos := p.current.Pos
	var stmts []cst.Node
	for {
		var (
			stmt cst.Node
			err  error
		)
		switch {
		case p.currentIs(token.ORDER):
			stmtPos := p.current.Pos
			p.nextToken()
			if err := p.expect(token.BY); err != nil {
				return nil, err
			}
			var items cst.Node
			if items, err = p.parseOrderItems(); err == nil {
				stmt = cst.NewTree(RuleOrderByStmt, stmtPos, items)
			}
		case p.currentIs(token.LIMIT):
			stmt, err = p.parseKeywordExpr(RuleLimitStmt, token.LIMIT)
		case p.currentIs(token.OFFSET):
			stmt, err = p.parseKeywordExpr(RuleOffsetStmt, token.OFFSET)
		default:
			if len(stmts) == 0 {
				return nil, nil
			}
			return cst.NewTree(RuleOrderStmts, pos, stmts...), nil
		}
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *parser) parseOrderItems() (cst.Node, error) {
	pos := p.current.Pos
	var items []cst.Node
	for {
		itemPos := p.current.Pos
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var dir cst.Node
		if p.currentIs(token.ASC) || p.currentIs(token.DESC) {
			dir = p.leaf(TermAscOrDesc)
		}
		items = append(items, cst.NewTree(RuleOrderItem, itemPos, expr, dir))
		if !p.currentIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return cst.NewTree(RuleOrderItems, pos, items...), nil
}

func (p *parser) parseItems() (cst.Node, error) {
	pos := p.current.Pos
	var items []cst.Node
	for {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.currentIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return cst.NewTree(RuleItems, pos, items...), nil
}

// parseItem parses an expression with an optional alias. The alias may
// follow AS, or stand alone when it is a plain identifier.
func (p *parser) parseItem() (cst.Node, error) {
	pos := p.current.Pos
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var alias cst.Node
	switch {
	case p.currentIs(token.AS):
		p.nextToken()
		if alias, err = p.parseName(); err != nil {
			return nil, err
		}
	case p.currentIs(token.IDENT):
		alias = p.leaf(TermName)
	}
	return cst.NewTree(RuleItem, pos, expr, alias), nil
}
