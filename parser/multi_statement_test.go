package parser_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sqlc-dev/sqlcommon/parser"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

func TestMultiStatementParsing(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected int
	}{
		{
			name:     "two selects with semicolon",
			sql:      "SELECT 1; SELECT 2;",
			expected: 2,
		},
		{
			name:     "three selects",
			sql:      "SELECT 1; SELECT 2; SELECT 3;",
			expected: 3,
		},
		{
			name:     "no trailing semicolon",
			sql:      "SELECT 1; SELECT 2",
			expected: 2,
		},
		{
			name:     "multiple semicolons between statements",
			sql:      "SELECT 1;; SELECT 2;;; SELECT 3",
			expected: 3,
		},
		{
			name:     "newlines between statements",
			sql:      "SELECT 1;\nSELECT 2;\nSELECT 3;",
			expected: 3,
		},
		{
			name:     "single statement",
			sql:      "SELECT 1;",
			expected: 1,
		},
		{
			name:     "empty input",
			sql:      "  ;; -- nothing here\n",
			expected: 0,
		},
		{
			name:     "complex multi-statement",
			sql:      "SELECT a, b FROM t1 WHERE x > 10; SELECT * FROM t3 ORDER BY id;",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := parser.ParseStatements(context.Background(), strings.NewReader(tt.sql))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if len(stmts) != tt.expected {
				t.Errorf("Expected %d statements, got %d", tt.expected, len(stmts))
			}
		})
	}
}

func TestMultiStatementFormat(t *testing.T) {
	stmts, err := parser.ParseStatements(context.Background(),
		strings.NewReader("select a from t;\nselect b from u order by b desc"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	got := parser.Format(stmts...)
	want := "SELECT a FROM t;\nSELECT b FROM u ORDER BY b DESC;"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestMultiStatementErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want error
	}{
		{"missing separator", "SELECT 1 SELECT 2", sqlerr.ErrSyntax},
		{"second statement invalid", "SELECT 1; SELECT a FROM", sqlerr.ErrSyntax},
		{"reserved word in second statement", "SELECT 1; SELECT offset", sqlerr.ErrReservedWord},
		{"duplicate clause", "SELECT 1; SELECT a FROM t FROM u", sqlerr.ErrStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := parser.ParseStatements(context.Background(), strings.NewReader(tt.sql))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if stmts != nil {
				t.Errorf("expected no statements on error, got %d", len(stmts))
			}
		})
	}
}
