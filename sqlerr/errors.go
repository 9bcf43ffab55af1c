/*
Package sqlerr defines the errors surfaced by parsing and transforming SQL.

Every failure is an *Error carrying a Kind:

  - KindSyntax: the text does not match the grammar. Carries a position.
  - KindReservedWord: a reserved keyword sits where an identifier was
    expected. Carries the offending token.
  - KindStructural: a statement violates an invariant of the tree
    (duplicate clause, ON and USING on one join, wrong operator arity).
  - KindInternal: the grammar and the transformer disagree about the
    shape of a parse tree. Never expected in correct operation; callers
    must not retry.

Kinds are matched with errors.Is against the sentinels ErrSyntax,
ErrReservedWord, ErrStructural and ErrInternal; details are reached with
errors.As.
*/
package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sqlc-dev/sqlcommon/token"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindSyntax
	KindReservedWord
	KindStructural
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SYNTAX"
	case KindReservedWord:
		return "RESERVED_WORD"
	case KindStructural:
		return "STRUCTURAL"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode represents a unique error identifier.
type ErrorCode int

const (
	// Syntax errors (1000-1999)
	ErrCodeSyntax          ErrorCode = 1000
	ErrCodeUnexpectedToken ErrorCode = 1001
	ErrCodeMissingKeyword  ErrorCode = 1002
	ErrCodeUnclosedString  ErrorCode = 1006
	ErrCodeReservedWord    ErrorCode = 1008

	// Structural errors (2000-2999)
	ErrCodeStructural      ErrorCode = 2000
	ErrCodeDuplicateClause ErrorCode = 2001
	ErrCodeJoinConstraint  ErrorCode = 2002
	ErrCodeArity           ErrorCode = 2003
	ErrCodeInvalidLiteral  ErrorCode = 2004
	ErrCodeMissingClause   ErrorCode = 2005
	ErrCodeInvalidAlias    ErrorCode = 2006

	// Internal consistency errors (9000-9999)
	ErrCodeInternal       ErrorCode = 9000
	ErrCodeMissingRule    ErrorCode = 9001
	ErrCodeUnexpectedNode ErrorCode = 9002
)

// Error is the single error type returned by the grammar, the
// transformer and the AST builders.
type Error struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Token   string         // offending token text, when known
	Pos     token.Position // zero when the error has no source position
	Cause   error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrSyntax       = &Error{Kind: KindSyntax}
	ErrReservedWord = &Error{Kind: KindReservedWord}
	ErrStructural   = &Error{Kind: KindStructural}
	ErrInternal     = &Error{Kind: KindInternal}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	switch e.Kind {
	case KindReservedWord:
		sb.WriteString(e.Message)
	case KindSyntax:
		sb.WriteString("syntax error: ")
		sb.WriteString(e.Message)
	case KindStructural:
		sb.WriteString("structural error: ")
		sb.WriteString(e.Message)
	case KindInternal:
		sb.WriteString("internal error: ")
		sb.WriteString(e.Message)
	default:
		sb.WriteString(e.Message)
	}
	if e.Pos.IsValid() {
		fmt.Fprintf(&sb, " at line %d, column %d", e.Pos.Line, e.Pos.Column)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

// WithPos attaches a source position if the error has none yet.
func (e *Error) WithPos(pos token.Position) *Error {
	if !e.Pos.IsValid() {
		e.Pos = pos
	}
	return e
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// NewSyntaxError creates a syntax error at pos.
func NewSyntaxError(code ErrorCode, pos token.Position, format string, args ...any) *Error {
	return &Error{
		Kind:    KindSyntax,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// NewReservedWordError reports a keyword used where a free identifier
// was expected.
func NewReservedWordError(tok string, pos token.Position) *Error {
	return &Error{
		Kind:    KindReservedWord,
		Code:    ErrCodeReservedWord,
		Message: "Invalid syntax: " + tok,
		Token:   tok,
		Pos:     pos,
	}
}

// NewStructuralError creates an error for a violated tree invariant.
func NewStructuralError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Kind:    KindStructural,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewInternalError creates a grammar/transformer mismatch error.
func NewInternalError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
