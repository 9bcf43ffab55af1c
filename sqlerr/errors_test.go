package sqlerr

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/sqlc-dev/sqlcommon/token"
)

func TestErrorMessages(t *testing.T) {
	pos := token.Position{Line: 2, Column: 5}
	tests := []struct {
		err  *Error
		want string
	}{
		{NewSyntaxError(ErrCodeUnexpectedToken, pos, "expected %s", "FROM"), "syntax error: expected FROM at line 2, column 5"},
		{NewReservedWordError("limit", token.Position{}), "Invalid syntax: limit"},
		{NewStructuralError(ErrCodeDuplicateClause, "duplicate %s clause", "WHERE"), "structural error: duplicate WHERE clause"},
		{NewInternalError(ErrCodeMissingRule, "no rule for %s", "x").WithPos(pos), "internal error: no rule for x at line 2, column 5"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewStructuralError(ErrCodeArity, "bad"))
	if !errors.Is(err, ErrStructural) {
		t.Error("wrapped structural error does not match ErrStructural")
	}
	if errors.Is(err, ErrSyntax) {
		t.Error("structural error matches ErrSyntax")
	}
	if errors.Is(NewSyntaxError(ErrCodeSyntax, token.Position{}, "a"), NewSyntaxError(ErrCodeSyntax, token.Position{}, "a")) {
		t.Error("non-sentinel errors must not match each other")
	}
	if KindOf(err) != KindStructural {
		t.Errorf("KindOf() = %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error has a kind")
	}
}

func TestWithPosKeepsFirst(t *testing.T) {
	first := token.Position{Line: 1, Column: 1}
	err := NewStructuralError(ErrCodeStructural, "x").WithPos(first).WithPos(token.Position{Line: 9, Column: 9})
	if err.Pos != first {
		t.Errorf("Pos = %+v, want %+v", err.Pos, first)
	}
}

func TestUnwrap(t *testing.T) {
	_, cause := strconv.ParseInt("99999999999999999999", 10, 64)
	err := NewStructuralError(ErrCodeInvalidLiteral, "out of range").WithCause(cause)
	if !errors.Is(err, strconv.ErrRange) {
		t.Error("cause is not reachable through Unwrap")
	}
}
