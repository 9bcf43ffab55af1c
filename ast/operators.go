package ast

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sqlc-dev/sqlcommon/internal/format"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// Expressions is an ordered sequence of nodes. Render joins the elements
// with spaces (clause sequencing); RenderList joins them with commas
// (argument and column lists).
type Expressions []Node

// NewExpressions collects items into an Expressions, lifting Go scalars
// into Values.
func NewExpressions(items ...any) (Expressions, error) {
	exprs := make(Expressions, 0, len(items))
	for _, item := range items {
		n, err := Lift(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	return exprs, nil
}

func (e Expressions) Tag() Tag { return TagExpressions }

func (e Expressions) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range e {
			if !yield(n.Render()) {
				return
			}
		}
	}
}

func (e Expressions) Render() string { return format.Join(e.Tokens(), " ") }

func (e Expressions) RenderList() string { return format.Join(e.Tokens(), ", ") }

func isWordOp(op string) bool {
	r, _ := utf8.DecodeRuneInString(op)
	return unicode.IsLetter(r)
}

func checkArity(op string, want int, got Expressions) error {
	if len(got) != want {
		return sqlerr.NewStructuralError(sqlerr.ErrCodeArity, "operator %s takes %d operand(s), got %d", op, want, len(got))
	}
	for _, n := range got {
		if n == nil {
			return sqlerr.NewStructuralError(sqlerr.ErrCodeArity, "operator %s has a nil operand", op)
		}
	}
	return nil
}

// Prefix is a unary operator written before its operand: NOT, or a sign.
type Prefix struct {
	Op    string      `json:"op"`
	Expr  Expressions `json:"expr"`
	Alias *Name       `json:"alias,omitempty"`
	Item  bool        `json:"is_item,omitempty"`
}

// NewPrefix returns op applied to exactly one operand.
func NewPrefix(op string, operands ...any) (*Prefix, error) {
	exprs, err := NewExpressions(operands...)
	if err != nil {
		return nil, err
	}
	if err := checkArity(op, 1, exprs); err != nil {
		return nil, err
	}
	return &Prefix{Op: op, Expr: exprs}, nil
}

func (p *Prefix) Tag() Tag         { return TagPrefix }
func (p *Prefix) AliasName() *Name { return p.Alias }
func (p *Prefix) IsItem() bool     { return p.Item }
func (p *Prefix) Render() string   { return render(p) }

func (p *Prefix) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		operand := p.Expr.Render()
		switch {
		case isWordOp(p.Op):
			if !yield(p.Op) || !yield(operand) {
				return
			}
		case strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+"):
			// "--" would start a comment.
			if !yield(p.Op) || !yield(operand) {
				return
			}
		default:
			if !yield(p.Op + operand) {
				return
			}
		}
		yieldAlias(yield, p.Alias)
	}
}

func (p *Prefix) itemized(alias *Name) (Node, error) {
	c := *p
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (p *Prefix) MarshalJSON() ([]byte, error) {
	type plain Prefix
	return marshalTagged(p.Tag(), (*plain)(p))
}

// Postfix is a unary operator written after its operand, such as IS NULL.
type Postfix struct {
	Op    string      `json:"op"`
	Expr  Expressions `json:"expr"`
	Alias *Name       `json:"alias,omitempty"`
	Item  bool        `json:"is_item,omitempty"`
}

// NewPostfix returns op applied to exactly one operand.
func NewPostfix(op string, operands ...any) (*Postfix, error) {
	exprs, err := NewExpressions(operands...)
	if err != nil {
		return nil, err
	}
	if err := checkArity(op, 1, exprs); err != nil {
		return nil, err
	}
	return &Postfix{Op: op, Expr: exprs}, nil
}

func (p *Postfix) Tag() Tag         { return TagPostfix }
func (p *Postfix) AliasName() *Name { return p.Alias }
func (p *Postfix) IsItem() bool     { return p.Item }
func (p *Postfix) Render() string   { return render(p) }

func (p *Postfix) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(p.Expr.Render()) || !yield(p.Op) {
			return
		}
		yieldAlias(yield, p.Alias)
	}
}

func (p *Postfix) itemized(alias *Name) (Node, error) {
	c := *p
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (p *Postfix) MarshalJSON() ([]byte, error) {
	type plain Postfix
	return marshalTagged(p.Tag(), (*plain)(p))
}

// BinaryOperator is an infix operator over exactly two operands.
type BinaryOperator struct {
	Op    string      `json:"op"`
	Expr  Expressions `json:"expr"`
	Alias *Name       `json:"alias,omitempty"`
	Item  bool        `json:"is_item,omitempty"`
}

// NewBinaryOperator returns op applied to exactly two operands.
func NewBinaryOperator(op string, operands ...any) (*BinaryOperator, error) {
	exprs, err := NewExpressions(operands...)
	if err != nil {
		return nil, err
	}
	if err := checkArity(op, 2, exprs); err != nil {
		return nil, err
	}
	return &BinaryOperator{Op: op, Expr: exprs}, nil
}

// Left returns the left operand.
func (b *BinaryOperator) Left() Node { return b.Expr[0] }

// Right returns the right operand.
func (b *BinaryOperator) Right() Node { return b.Expr[1] }

func (b *BinaryOperator) Tag() Tag         { return TagBinaryOperator }
func (b *BinaryOperator) AliasName() *Name { return b.Alias }
func (b *BinaryOperator) IsItem() bool     { return b.Item }
func (b *BinaryOperator) Render() string   { return render(b) }

func (b *BinaryOperator) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(b.Left().Render()) || !yield(b.Op) || !yield(b.Right().Render()) {
			return
		}
		yieldAlias(yield, b.Alias)
	}
}

func (b *BinaryOperator) itemized(alias *Name) (Node, error) {
	c := *b
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (b *BinaryOperator) MarshalJSON() ([]byte, error) {
	type plain BinaryOperator
	return marshalTagged(b.Tag(), (*plain)(b))
}

// Bracket wraps an expression or a subquery in parentheses.
type Bracket struct {
	Expr  Expressions `json:"expr"`
	Alias *Name       `json:"alias,omitempty"`
	Item  bool        `json:"is_item,omitempty"`
}

// NewBracket returns exprs wrapped in parentheses.
func NewBracket(exprs ...any) (*Bracket, error) {
	e, err := NewExpressions(exprs...)
	if err != nil {
		return nil, err
	}
	return &Bracket{Expr: e}, nil
}

func (b *Bracket) Tag() Tag         { return TagBracket }
func (b *Bracket) AliasName() *Name { return b.Alias }
func (b *Bracket) IsItem() bool     { return b.Item }
func (b *Bracket) Render() string   { return render(b) }

func (b *Bracket) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield("(" + b.Expr.Render() + ")") {
			return
		}
		yieldAlias(yield, b.Alias)
	}
}

func (b *Bracket) itemized(alias *Name) (Node, error) {
	c := *b
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (b *Bracket) MarshalJSON() ([]byte, error) {
	type plain Bracket
	return marshalTagged(b.Tag(), (*plain)(b))
}
