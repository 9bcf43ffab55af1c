package ast

import (
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

// Lift returns v as a Node, wrapping Go scalars in a Value.
func Lift(v any) (Node, error) {
	if n, ok := v.(Node); ok {
		return n, nil
	}
	return NewValue(v)
}

// Itemize returns a copy of n marked as a list item, with alias attached
// when alias is not nil. Scalars are lifted into Values first. The
// original node is left untouched.
func Itemize(n any, alias *Name) (Node, error) {
	node, err := Lift(n)
	if err != nil {
		return nil, err
	}
	item, ok := node.(Item)
	if !ok {
		return nil, sqlerr.NewStructuralError(sqlerr.ErrCodeInvalidAlias, "%s node cannot be a list item", node.Tag())
	}
	return item.itemized(alias)
}
