package grammar_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/sqlcommon/cst"
	"github.com/sqlc-dev/sqlcommon/grammar"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

func parse(t *testing.T, start grammar.Start, sql string) cst.Node {
	t.Helper()
	n, err := grammar.Parse(start, strings.NewReader(sql))
	require.NoError(t, err, sql)
	return n
}

func TestSelectShape(t *testing.T) {
	got := cst.Pretty(parse(t, grammar.StartStatement, "select a x from t;"))
	want := `start
  stmt
    select
      returning_stmt
        items
          item
            identifier
              <none>
              NAME "a"
            NAME "x"
      query_stmt
        from_stmt
          items
            item
              identifier
                <none>
                NAME "t"
              <none>
      <none>
      <none>
`
	assert.Equal(t, want, got)
}

func TestJoinShape(t *testing.T) {
	got := cst.Pretty(parse(t, grammar.StartStmt, "select * from a left outer join b using (id)"))
	assert.Contains(t, got, "join_type\n")
	assert.Contains(t, got, `JOIN_TYPE "left"`)
	assert.Contains(t, got, `JOIN_TYPE "outer"`)
	assert.Contains(t, got, "join_using_stmt\n")
	assert.Contains(t, got, `NAME "id"`)
}

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"1 + 2 * 3", `bo_expr
  INT "1"
  BOPS "+"
  bo_expr
    INT "2"
    BOPS "*"
    INT "3"
`},
		{"not a", `prefix_expr
  PREFIX_OP "not"
  identifier
    <none>
    NAME "a"
`},
		{"a is not null", `postfix_expr
  identifier
    <none>
    NAME "a"
  POSTFIX_OP "is not null"
`},
		{"-1", `sign_expr
  SIGN "-"
  INT "1"
`},
		{"a not like 'x'", `bo_expr
  identifier
    <none>
    NAME "a"
  BOPS "not like"
  str
    STRING_LITERAL "'x'"
`},
		{"t.*", `star
  NAME "t"
`},
		{"s.f(1)", `func
  NAME "s"
  NAME "f"
  INT "1"
`},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, cst.Pretty(parse(t, grammar.StartExpr, tt.sql)))
		})
	}
}

func TestPermissiveShapes(t *testing.T) {
	// Left for the transformer to reject.
	for _, sql := range []string{
		"select a from t from u",
		"select a where b from t where c",
		"select * from a join b on x using (y)",
		"select limit",
		"select a as from",
	} {
		_, err := grammar.Parse(grammar.StartStatement, strings.NewReader(sql))
		assert.NoError(t, err, sql)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		sql  string
		code sqlerr.ErrorCode
	}{
		{"select", sqlerr.ErrCodeUnexpectedToken},
		{"select 1 2", sqlerr.ErrCodeUnexpectedToken},
		{"select * from a join b", sqlerr.ErrCodeUnexpectedToken},
		{"select (1", sqlerr.ErrCodeUnexpectedToken},
		{"select a is 1", sqlerr.ErrCodeUnexpectedToken},
		{"select 'x", sqlerr.ErrCodeUnclosedString},
		{`select "x`, sqlerr.ErrCodeUnclosedString},
		{"select 1 /* x", sqlerr.ErrCodeUnclosedString},
		{"from t", sqlerr.ErrCodeUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			_, err := grammar.Parse(grammar.StartStatement, strings.NewReader(tt.sql))
			require.Error(t, err)
			var serr *sqlerr.Error
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, sqlerr.KindSyntax, serr.Kind)
			assert.Equal(t, tt.code, serr.Code)
			assert.True(t, serr.Pos.IsValid())
		})
	}
}

func TestStartSymbols(t *testing.T) {
	_, err := grammar.Parse(grammar.StartStmt, strings.NewReader("select 1;"))
	assert.Error(t, err, "stmt takes no terminator")

	_, err = grammar.Parse(grammar.StartValue, strings.NewReader("a"))
	assert.Error(t, err)

	_, err = grammar.Parse(grammar.Start("bogus"), strings.NewReader("1"))
	assert.True(t, errors.Is(err, sqlerr.ErrInternal))

	for in, want := range map[string]grammar.Start{
		"":      grammar.StartStatement,
		"start": grammar.StartStatement,
		"STMT":  grammar.StartStmt,
		"expr":  grammar.StartExpr,
		"value": grammar.StartValue,
	} {
		got, err := grammar.ParseStart(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = grammar.ParseStart("nope")
	assert.Error(t, err)
}

func TestParseScript(t *testing.T) {
	trees, err := grammar.Default().ParseScript(strings.NewReader("select 1;; select 2"))
	require.NoError(t, err)
	require.Len(t, trees, 2)
	for _, tree := range trees {
		assert.Equal(t, grammar.RuleStmt, tree.(*cst.Tree).Rule)
	}
}

func TestDefaultIsShared(t *testing.T) {
	var wg sync.WaitGroup
	grammars := make([]*grammar.Grammar, 8)
	for i := range grammars {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grammars[i] = grammar.Default()
		}()
	}
	wg.Wait()
	for _, g := range grammars {
		assert.Same(t, grammars[0], g)
	}
}
