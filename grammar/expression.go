package grammar

import (
	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/token"
)

// Expression levels, lowest binding first:
//
//	OR
//	AND
//	NOT x
//	= != <> < > <= >= LIKE, NOT LIKE, x IS [NOT] NULL
//	+ - ||
//	* / %
//	+x -x
//	primary
//
// Binary operators associate to the left.

func (p *parser) parseExpr() (cst.Node, error) {
	return p.parseOr()
}

// binaryLevel parses `next (op next)*` where op is accepted by match,
// folding to the left.
func (p *parser) binaryLevel(match func(token.Token) bool, next func() (cst.Node, error)) (cst.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for match(p.current.Token) {
		op := p.leaf(TermBops)
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = cst.NewTree(RuleBoExpr, left.Pos(), left, op, right)
	}
	return left, nil
}

func (p *parser) parseOr() (cst.Node, error) {
	return p.binaryLevel(func(t token.Token) bool { return t == token.OR }, p.parseAnd)
}

func (p *parser) parseAnd() (cst.Node, error) {
	return p.binaryLevel(func(t token.Token) bool { return t == token.AND }, p.parseNot)
}

func (p *parser) parseNot() (cst.Node, error) {
	if !p.currentIs(token.NOT) {
		return p.parseComparison()
	}
	pos := p.current.Pos
	op := p.leaf(TermPrefixOp)
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RulePrefixExpr, pos, op, operand), nil
}

func (p *parser) parseComparison() (cst.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.g.compare[p.current.Token]:
			op := p.leaf(TermBops)
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = cst.NewTree(RuleBoExpr, left.Pos(), left, op, right)

		case p.currentIs(token.NOT) && p.peekIs(token.LIKE):
			op := cst.NewLeaf(TermBops, p.current.Value+" "+p.peek.Value, p.current.Pos)
			p.nextToken()
			p.nextToken()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = cst.NewTree(RuleBoExpr, left.Pos(), left, op, right)

		case p.currentIs(token.IS):
			opPos := p.current.Pos
			text := p.current.Value
			p.nextToken()
			if p.currentIs(token.NOT) {
				text += " " + p.current.Value
				p.nextToken()
			}
			if !p.currentIs(token.NULL) {
				return nil, p.unexpected("NULL")
			}
			text += " " + p.current.Value
			p.nextToken()
			op := cst.NewLeaf(TermPostfixOp, text, opPos)
			left = cst.NewTree(RulePostfixExpr, left.Pos(), left, op)

		default:
			return left, nil
		}
	}
}

func (p *parser) parseAdditive() (cst.Node, error) {
	return p.binaryLevel(func(t token.Token) bool { return p.g.additive[t] }, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (cst.Node, error) {
	return p.binaryLevel(func(t token.Token) bool { return p.g.multiplicative[t] }, p.parseUnary)
}

func (p *parser) parseUnary() (cst.Node, error) {
	if !p.currentIs(token.PLUS) && !p.currentIs(token.MINUS) {
		return p.parsePrimary()
	}
	pos := p.current.Pos
	sign := p.leaf(TermSign)
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return cst.NewTree(RuleSignExpr, pos, sign, operand), nil
}

func (p *parser) parsePrimary() (cst.Node, error) {
	pos := p.current.Pos
	switch p.current.Token {
	case token.INTEGER, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		return p.parseValue()

	case token.ASTERISK:
		p.nextToken()
		return cst.NewTree(RuleStar, pos, nil), nil

	case token.LPAREN:
		p.nextToken()
		var (
			inner cst.Node
			err   error
		)
		if p.currentIs(token.SELECT) {
			inner, err = p.parseSelect()
		} else {
			inner, err = p.parseExpr()
		}
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return cst.NewTree(RuleBracket, pos, inner), nil

	case token.IDENT:
		return p.parseReference()

	default:
		if p.current.Token.IsKeyword() {
			// A keyword where an identifier belongs.
			return cst.NewTree(RuleIdentifier, pos, nil, p.leaf(TermReservedWords)), nil
		}
		return nil, p.unexpected("expression")
	}
}

// parseReference parses an identifier, a qualified identifier, a
// qualified star or a function call.
func (p *parser) parseReference() (cst.Node, error) {
	pos := p.current.Pos
	var parent cst.Node
	name := cst.Node(p.leaf(TermName))

	if p.currentIs(token.DOT) {
		p.nextToken()
		if p.currentIs(token.ASTERISK) {
			p.nextToken()
			return cst.NewTree(RuleStar, pos, name), nil
		}
		qualified, err := p.parseName()
		if err != nil {
			return nil, err
		}
		parent, name = name, qualified
	}

	if !p.currentIs(token.LPAREN) {
		return cst.NewTree(RuleIdentifier, pos, parent, name), nil
	}

	p.nextToken()
	children := []cst.Node{parent, name}
	if !p.currentIs(token.RPAREN) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			children = append(children, arg)
			if !p.currentIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return cst.NewTree(RuleFunc, pos, children...), nil
}

// parseValue parses a bare literal.
func (p *parser) parseValue() (cst.Node, error) {
	pos := p.current.Pos
	switch p.current.Token {
	case token.INTEGER:
		return p.leaf(TermInt), nil
	case token.FLOAT:
		return p.leaf(TermFloat), nil
	case token.STRING:
		var parts []cst.Node
		for p.currentIs(token.STRING) {
			parts = append(parts, p.leaf(TermStringLiteral))
		}
		return cst.NewTree(RuleStr, pos, parts...), nil
	case token.TRUE:
		p.nextToken()
		return cst.NewTree(RuleTrue, pos), nil
	case token.FALSE:
		p.nextToken()
		return cst.NewTree(RuleFalse, pos), nil
	case token.NULL:
		p.nextToken()
		return cst.NewTree(RuleNull, pos), nil
	default:
		return nil, p.unexpected("literal value")
	}
}
