package ast

import (
	"iter"
	"strings"

	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// SortOrder is the direction of an ORDER BY entry. SortUnspecified is
// kept apart from SortAsc so that a missing keyword stays missing.
type SortOrder int

const (
	SortUnspecified SortOrder = iota
	SortAsc
	SortDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "ASC"
	case SortDesc:
		return "DESC"
	default:
		return ""
	}
}

func (o SortOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// OrderItem is one entry of an ORDER BY list.
type OrderItem struct {
	Expr  Node      `json:"expr"`
	Order SortOrder `json:"order,omitempty"`
}

func (o *OrderItem) Tag() Tag       { return TagOrderItem }
func (o *OrderItem) Render() string { return render(o) }

func (o *OrderItem) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(o.Expr.Render()) {
			return
		}
		if o.Order != SortUnspecified {
			yield(o.Order.String())
		}
	}
}

func (o *OrderItem) MarshalJSON() ([]byte, error) {
	type plain OrderItem
	return marshalTagged(o.Tag(), (*plain)(o))
}

// WindowDef is one named window of a WINDOW clause.
type WindowDef struct {
	Name        *Name       `json:"name"`
	PartitionBy Expressions `json:"partition_by,omitempty"`
	OrderBy     Expressions `json:"order_by,omitempty"`
}

func (w *WindowDef) Tag() Tag       { return TagWindowDef }
func (w *WindowDef) Render() string { return render(w) }

func (w *WindowDef) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		var parts []string
		if len(w.PartitionBy) > 0 {
			parts = append(parts, "PARTITION BY "+w.PartitionBy.RenderList())
		}
		if len(w.OrderBy) > 0 {
			parts = append(parts, "ORDER BY "+w.OrderBy.RenderList())
		}
		if !yield(w.Name.Render()) || !yield("AS") {
			return
		}
		yield("(" + strings.Join(parts, " ") + ")")
	}
}

func (w *WindowDef) MarshalJSON() ([]byte, error) {
	type plain WindowDef
	return marshalTagged(w.Tag(), (*plain)(w))
}

// DefaultJoinType is the join type of a bare JOIN.
const DefaultJoinType = "INNER"

// JoinStatement is one JOIN clause. Exactly one of On and Using is set.
type JoinStatement struct {
	Type   string      `json:"join_type"`
	Source Expressions `json:"source"`
	On     Expressions `json:"on,omitempty"`
	Using  Expressions `json:"using,omitempty"`
}

// NewJoinStatement builds a join of source. An empty joinType means
// INNER. Exactly one of on and using must be non-empty.
func NewJoinStatement(joinType string, source, on, using Expressions) (*JoinStatement, error) {
	switch {
	case len(on) > 0 && len(using) > 0:
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeJoinConstraint, "join on %s has both ON and USING", source.RenderList())
	case len(on) == 0 && len(using) == 0:
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeJoinConstraint, "join on %s needs ON or USING", source.RenderList())
	case len(source) == 0:
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeMissingClause, "join has no source")
	}
	if joinType == "" {
		joinType = DefaultJoinType
	}
	j := &JoinStatement{Type: joinType, Source: source}
	if len(on) > 0 {
		j.On = on
	} else {
		j.Using = using
	}
	return j, nil
}

func (j *JoinStatement) Tag() Tag       { return TagJoin }
func (j *JoinStatement) Render() string { return render(j) }

func (j *JoinStatement) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(j.Type) || !yield("JOIN") || !yield(j.Source.RenderList()) {
			return
		}
		if len(j.On) > 0 {
			if yield("ON") {
				yield(j.On.Render())
			}
			return
		}
		yield("USING(" + j.Using.RenderList() + ")")
	}
}

func (j *JoinStatement) MarshalJSON() ([]byte, error) {
	type plain JoinStatement
	return marshalTagged(j.Tag(), (*plain)(j))
}

// SetOp is the kind of a set operation.
type SetOp string

const (
	SetUnion     SetOp = "UNION"
	SetIntersect SetOp = "INTERSECT"
	SetExcept    SetOp = "EXCEPT"
)

// SetOperand is the right-hand side of one set operation.
type SetOperand struct {
	All    bool             `json:"all,omitempty"`
	Select *SelectStatement `json:"select"`
}

func (s *SetOperand) Tag() Tag       { return TagSetOperand }
func (s *SetOperand) Render() string { return render(s) }

func (s *SetOperand) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.All && !yield("ALL") {
			return
		}
		yield(s.Select.Render())
	}
}

func (s *SetOperand) MarshalJSON() ([]byte, error) {
	type plain SetOperand
	return marshalTagged(s.Tag(), (*plain)(s))
}

// UnionStatement holds every operand of one kind of set operation, in
// source order.
type UnionStatement struct {
	Kind   SetOp       `json:"kind"`
	Select Expressions `json:"select"`
}

func (u *UnionStatement) Tag() Tag       { return TagUnion }
func (u *UnionStatement) Render() string { return render(u) }

func (u *UnionStatement) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, operand := range u.Select {
			if !yield(string(u.Kind)) || !yield(operand.Render()) {
				return
			}
		}
	}
}

func (u *UnionStatement) MarshalJSON() ([]byte, error) {
	type plain UnionStatement
	return marshalTagged(u.Tag(), (*plain)(u))
}

// SelectStatement is a whole SELECT. Returning is always present; every
// other clause is nil when absent.
type SelectStatement struct {
	Returning Expressions `json:"returning"`
	From      Expressions `json:"from,omitempty"`
	Joins     Expressions `json:"joins,omitempty"`
	Where     Expressions `json:"where,omitempty"`
	GroupBy   Expressions `json:"groupby,omitempty"`
	Having    Expressions `json:"having,omitempty"`
	Window    Expressions `json:"window,omitempty"`
	Unions    Expressions `json:"unions,omitempty"`
	OrderBy   Expressions `json:"orderby,omitempty"`
	Limit     Expressions `json:"limit,omitempty"`
	Offset    Expressions `json:"offset,omitempty"`
}

// NewSelectStatement returns a statement selecting returning. The other
// clauses are filled in by the caller before the statement is shared.
func NewSelectStatement(returning Expressions) (*SelectStatement, error) {
	if len(returning) == 0 {
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeMissingClause, "SELECT needs at least one item")
	}
	return &SelectStatement{Returning: returning}, nil
}

func (s *SelectStatement) Tag() Tag       { return TagSelect }
func (s *SelectStatement) Render() string { return render(s) }

func (s *SelectStatement) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		clause := func(keyword, body string) bool {
			return yield(keyword) && yield(body)
		}
		if !clause("SELECT", s.Returning.RenderList()) {
			return
		}
		if len(s.From) > 0 && !clause("FROM", s.From.RenderList()) {
			return
		}
		for _, j := range s.Joins {
			if !yield(j.Render()) {
				return
			}
		}
		if len(s.Where) > 0 && !clause("WHERE", s.Where.Render()) {
			return
		}
		if len(s.GroupBy) > 0 && !clause("GROUP BY", s.GroupBy.RenderList()) {
			return
		}
		if len(s.Having) > 0 && !clause("HAVING", s.Having.Render()) {
			return
		}
		if len(s.Window) > 0 && !clause("WINDOW", s.Window.RenderList()) {
			return
		}
		for _, u := range s.Unions {
			if !yield(u.Render()) {
				return
			}
		}
		if len(s.OrderBy) > 0 && !clause("ORDER BY", s.OrderBy.RenderList()) {
			return
		}
		if len(s.Limit) > 0 && !clause("LIMIT", s.Limit.Render()) {
			return
		}
		if len(s.Offset) > 0 {
			clause("OFFSET", s.Offset.Render())
		}
	}
}

func (s *SelectStatement) MarshalJSON() ([]byte, error) {
	type plain SelectStatement
	return marshalTagged(s.Tag(), (*plain)(s))
}
