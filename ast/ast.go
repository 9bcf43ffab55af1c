// Package ast defines the abstract syntax tree for SELECT statements.
//
// Every node renders itself: Tokens yields the SQL fragments of the node
// lazily (the sequence may be ranged over any number of times) and Render
// joins them. Composite nodes render their children through the same
// contract, so there is no separate printer.
//
// Nodes are built by the transformer or by the New* functions in this
// package and are not modified afterwards. Aliases are attached with
// Itemize, which returns a copy.
package ast

import (
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sqlc-dev/sqlcommon/internal/format"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// Tag identifies the kind of a node.
type Tag string

const (
	TagName           Tag = "NAME"
	TagIdentifier     Tag = "IDENTIFIER"
	TagStar           Tag = "STAR"
	TagFunc           Tag = "FUNC"
	TagValue          Tag = "VALUE"
	TagPrefix         Tag = "PREFIX"
	TagPostfix        Tag = "POSTFIX"
	TagBinaryOperator Tag = "BO"
	TagBracket        Tag = "BRACKET"
	TagExpressions    Tag = "EXPRESSIONS"
	TagOrderItem      Tag = "ORDER_ITEM"
	TagWindowDef      Tag = "WINDOW_DEF"
	TagJoin           Tag = "JOIN"
	TagSetOperand     Tag = "SET_OPERAND"
	TagUnion          Tag = "UNION"
	TagSelect         Tag = "SELECT"
)

// Node is the interface implemented by all AST nodes.
type Node interface {
	Tag() Tag
	Tokens() iter.Seq[string]
	Render() string
}

// Item is implemented by nodes that may stand directly in a select or
// from list and carry an alias there.
type Item interface {
	Node
	AliasName() *Name
	IsItem() bool
	itemized(alias *Name) (Node, error)
}

func render(n Node) string {
	return format.Join(n.Tokens(), " ")
}

func yieldAlias(yield func(string) bool, alias *Name) {
	if alias == nil {
		return
	}
	if yield("AS") {
		yield(alias.Render())
	}
}

func nameText(n *Name) string {
	if n == nil {
		return ""
	}
	return n.Render()
}

// marshalTagged encodes v as a JSON object whose first field is "type".
func marshalTagged(tag Tag, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := fmt.Sprintf(`{"type":%q`, tag)
	if len(body) < 2 || body[0] != '{' {
		return body, nil
	}
	if string(body) == "{}" {
		return []byte(head + "}"), nil
	}
	return append([]byte(head+","), body[1:]...), nil
}

// -----------------------------------------------------------------------------
// Terminals

// Name is a possibly-quoted identifier text.
type Name struct {
	Text   string `json:"text"`
	Quoted bool   `json:"quoted,omitempty"`
}

// NewName returns an unquoted name.
func NewName(text string) *Name {
	return &Name{Text: text}
}

// NewQuotedName returns a name that always renders inside double quotes.
func NewQuotedName(text string) *Name {
	return &Name{Text: text, Quoted: true}
}

// Copy returns a copy of n with the same quoting.
func (n *Name) Copy() *Name {
	c := *n
	return &c
}

// WithQuoted returns a copy of n with quoting set to quoted.
func (n *Name) WithQuoted(quoted bool) *Name {
	return &Name{Text: n.Text, Quoted: quoted}
}

func (n *Name) Tag() Tag { return TagName }

func (n *Name) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if n.Quoted {
			yield(format.QuoteName(n.Text))
			return
		}
		yield(n.Text)
	}
}

func (n *Name) Render() string { return render(n) }

func (n *Name) MarshalJSON() ([]byte, error) {
	type plain Name
	return marshalTagged(n.Tag(), (*plain)(n))
}

// Identifier is a possibly qualified reference: column, table, or
// schema-qualified table.
type Identifier struct {
	Name   *Name `json:"name"`
	Parent *Name `json:"parent,omitempty"`
	Alias  *Name `json:"alias,omitempty"`
	Item   bool  `json:"is_item,omitempty"`
}

// Table and Column are Identifiers by another name.
type (
	Table  = Identifier
	Column = Identifier
)

// NewIdentifier returns name, qualified by parent when parent is not nil.
func NewIdentifier(name, parent *Name) *Identifier {
	return &Identifier{Name: name, Parent: parent}
}

func (i *Identifier) Tag() Tag         { return TagIdentifier }
func (i *Identifier) AliasName() *Name { return i.Alias }
func (i *Identifier) IsItem() bool     { return i.Item }
func (i *Identifier) Render() string   { return render(i) }

func (i *Identifier) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(format.Qualify(nameText(i.Parent), i.Name.Render())) {
			return
		}
		yieldAlias(yield, i.Alias)
	}
}

func (i *Identifier) itemized(alias *Name) (Node, error) {
	c := *i
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (i *Identifier) MarshalJSON() ([]byte, error) {
	type plain Identifier
	return marshalTagged(i.Tag(), (*plain)(i))
}

// Star is `*` or `parent.*`.
type Star struct {
	Parent *Name `json:"parent,omitempty"`
	Item   bool  `json:"is_item,omitempty"`
}

func (s *Star) Tag() Tag         { return TagStar }
func (s *Star) AliasName() *Name { return nil }
func (s *Star) IsItem() bool     { return s.Item }
func (s *Star) Render() string   { return render(s) }

func (s *Star) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(format.Qualify(nameText(s.Parent), "*"))
	}
}

func (s *Star) itemized(alias *Name) (Node, error) {
	if alias != nil {
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeInvalidAlias, "%s cannot be aliased", s.Render())
	}
	c := *s
	c.Item = true
	return &c, nil
}

func (s *Star) MarshalJSON() ([]byte, error) {
	type plain Star
	return marshalTagged(s.Tag(), (*plain)(s))
}

// Func is a function call.
type Func struct {
	Name   *Name       `json:"name"`
	Parent *Name       `json:"parent,omitempty"`
	Args   Expressions `json:"args"`
	Alias  *Name       `json:"alias,omitempty"`
	Item   bool        `json:"is_item,omitempty"`
}

// NewFunc returns a call of name with args, qualified by parent when
// parent is not nil.
func NewFunc(name, parent *Name, args Expressions) *Func {
	return &Func{Name: name, Parent: parent, Args: args}
}

func (f *Func) Tag() Tag         { return TagFunc }
func (f *Func) AliasName() *Name { return f.Alias }
func (f *Func) IsItem() bool     { return f.Item }
func (f *Func) Render() string   { return render(f) }

func (f *Func) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		call := format.Qualify(nameText(f.Parent), f.Name.Render()) + "(" + f.Args.RenderList() + ")"
		if !yield(call) {
			return
		}
		yieldAlias(yield, f.Alias)
	}
}

func (f *Func) itemized(alias *Name) (Node, error) {
	c := *f
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (f *Func) MarshalJSON() ([]byte, error) {
	type plain Func
	return marshalTagged(f.Tag(), (*plain)(f))
}

// ValueKind is the kind of a literal.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	default:
		return "null"
	}
}

func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Value is a literal. Value holds an int64, float64, string, bool or nil
// according to Kind. Numbers that do not fit int64 or float64 hold a
// decimal.Decimal instead.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Value any       `json:"value"`
	Alias *Name     `json:"alias,omitempty"`
	Item  bool      `json:"is_item,omitempty"`
}

// NewValue wraps a Go scalar as a literal. Integers of any width become
// ValueInt and both float widths become ValueFloat, so 1 and 1.0 stay
// distinct. A decimal.Decimal is a ValueInt when it has no fractional
// digits; use NewNumber to choose the kind.
func NewValue(v any) (*Value, error) {
	switch x := v.(type) {
	case nil:
		return &Value{Kind: ValueNull}, nil
	case int:
		return &Value{Kind: ValueInt, Value: int64(x)}, nil
	case int32:
		return &Value{Kind: ValueInt, Value: int64(x)}, nil
	case int64:
		return &Value{Kind: ValueInt, Value: x}, nil
	case float32:
		return &Value{Kind: ValueFloat, Value: float64(x)}, nil
	case float64:
		return &Value{Kind: ValueFloat, Value: x}, nil
	case decimal.Decimal:
		if x.Exponent() < 0 {
			return NewNumber(ValueFloat, x)
		}
		return NewNumber(ValueInt, x)
	case string:
		return &Value{Kind: ValueString, Value: x}, nil
	case bool:
		return &Value{Kind: ValueBool, Value: x}, nil
	default:
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeInvalidLiteral, "unsupported literal type %T", v)
	}
}

// NewNumber builds an int or float literal of arbitrary size.
func NewNumber(kind ValueKind, d decimal.Decimal) (*Value, error) {
	switch kind {
	case ValueInt:
		if d.Exponent() < 0 {
			return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeInvalidLiteral, "integer literal %s has a fraction", d)
		}
	case ValueFloat:
	default:
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeInvalidLiteral, "%s is not a numeric kind", kind)
	}
	return &Value{Kind: kind, Value: d}, nil
}

func (v *Value) Tag() Tag         { return TagValue }
func (v *Value) AliasName() *Name { return v.Alias }
func (v *Value) IsItem() bool     { return v.Item }
func (v *Value) Render() string   { return render(v) }

func (v *Value) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(v.literal()) {
			return
		}
		yieldAlias(yield, v.Alias)
	}
}

func (v *Value) literal() string {
	switch x := v.Value.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case decimal.Decimal:
		if v.Kind == ValueFloat {
			return formatDecimalFloat(x)
		}
		return x.String()
	case string:
		return format.QuoteString(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat writes f so that it reads back as a float: a decimal point
// or an exponent is always present.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	var s string
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// formatDecimalFloat is formatFloat for decimals. Positive exponents are
// kept as exponents so a huge literal stays short.
func formatDecimalFloat(d decimal.Decimal) string {
	if d.Exponent() > 0 {
		return d.Coefficient().String() + "e" + strconv.Itoa(int(d.Exponent()))
	}
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (v *Value) itemized(alias *Name) (Node, error) {
	c := *v
	c.Alias, c.Item = alias, true
	return &c, nil
}

func (v *Value) MarshalJSON() ([]byte, error) {
	type plain Value
	return marshalTagged(v.Tag(), (*plain)(v))
}
