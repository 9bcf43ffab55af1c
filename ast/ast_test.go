package ast_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
)

func mustValue(t *testing.T, v any) *ast.Value {
	t.Helper()
	val, err := ast.NewValue(v)
	require.NoError(t, err)
	return val
}

func TestNameRender(t *testing.T) {
	tests := []struct {
		name *ast.Name
		want string
	}{
		{ast.NewName("users"), "users"},
		{ast.NewQuotedName("users"), `"users"`},
		{ast.NewQuotedName(`we"ird`), `"we""ird"`},
		{ast.NewQuotedName("x").WithQuoted(false), "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.name.Render())
	}

	orig := ast.NewQuotedName("a")
	c := orig.Copy()
	assert.True(t, c.Quoted)
	assert.NotSame(t, orig, c)
}

func TestIdentifierRender(t *testing.T) {
	assert.Equal(t, "name", ast.NewIdentifier(ast.NewName("name"), nil).Render())
	assert.Equal(t, "public.users",
		ast.NewIdentifier(ast.NewName("users"), ast.NewName("public")).Render())
	assert.Equal(t, `"My Schema".t`,
		ast.NewIdentifier(ast.NewName("t"), ast.NewQuotedName("My Schema")).Render())

	n, err := ast.Itemize(ast.NewIdentifier(ast.NewName("users"), nil), ast.NewName("u"))
	require.NoError(t, err)
	assert.Equal(t, "users AS u", n.Render())
}

func TestFuncRender(t *testing.T) {
	noArgs := ast.NewFunc(ast.NewName("now"), nil, nil)
	assert.Equal(t, "now()", noArgs.Render())

	args, err := ast.NewExpressions(ast.NewIdentifier(ast.NewName("name"), nil), 1)
	require.NoError(t, err)
	f := ast.NewFunc(ast.NewName("coalesce"), ast.NewName("pg"), args)
	assert.Equal(t, "pg.coalesce(name, 1)", f.Render())
}

func TestValueRender(t *testing.T) {
	tests := []struct {
		in   any
		kind ast.ValueKind
		want string
	}{
		{1, ast.ValueInt, "1"},
		{int64(-42), ast.ValueInt, "-42"},
		{1.0, ast.ValueFloat, "1.0"},
		{2.5, ast.ValueFloat, "2.5"},
		{1e21, ast.ValueFloat, "1e+21"},
		{1e-7, ast.ValueFloat, "1e-07"},
		{"abc", ast.ValueString, "'abc'"},
		{true, ast.ValueBool, "TRUE"},
		{false, ast.ValueBool, "FALSE"},
		{nil, ast.ValueNull, "NULL"},
	}
	for _, tt := range tests {
		v := mustValue(t, tt.in)
		assert.Equal(t, tt.kind, v.Kind, "%v", tt.in)
		assert.Equal(t, tt.want, v.Render(), "%v", tt.in)
	}
}

func TestValueUnsupported(t *testing.T) {
	_, err := ast.NewValue(struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))
}

// Embedded quotes are not escaped again, so the output does not re-parse.
func TestNumberRender(t *testing.T) {
	tests := []struct {
		kind ast.ValueKind
		text string
		want string
	}{
		{ast.ValueInt, "18446744073709551616", "18446744073709551616"},
		{ast.ValueFloat, "1e400", "1e400"},
		{ast.ValueFloat, "1.5e400", "15e399"},
		{ast.ValueFloat, "2.50", "2.5"},
		{ast.ValueFloat, "3.0", "3.0"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.text)
		require.NoError(t, err)
		v, err := ast.NewNumber(tt.kind, d)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, v.Render(), tt.text)
	}
}

func TestNumberKinds(t *testing.T) {
	_, err := ast.NewNumber(ast.ValueInt, decimal.RequireFromString("1.5"))
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.NewNumber(ast.ValueString, decimal.RequireFromString("1"))
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	v, err := ast.NewValue(decimal.RequireFromString("12"))
	require.NoError(t, err)
	assert.Equal(t, ast.ValueInt, v.Kind)

	v, err = ast.NewValue(decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	assert.Equal(t, ast.ValueFloat, v.Kind)
	assert.Equal(t, "1.25", v.Render())
}

func TestValueStringNotEscaped(t *testing.T) {
	assert.Equal(t, "'it's'", mustValue(t, "it's").Render())
}

func TestOperators(t *testing.T) {
	bo, err := ast.NewBinaryOperator("+", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "1 + 1", bo.Render())
	assert.Equal(t, "1", bo.Left().Render())

	not, err := ast.NewPrefix("NOT", ast.NewIdentifier(ast.NewName("done"), nil))
	require.NoError(t, err)
	assert.Equal(t, "NOT done", not.Render())

	neg, err := ast.NewPrefix("-", ast.NewIdentifier(ast.NewName("x"), nil))
	require.NoError(t, err)
	assert.Equal(t, "-x", neg.Render())

	negneg, err := ast.NewPrefix("-", -1)
	require.NoError(t, err)
	assert.Equal(t, "- -1", negneg.Render())

	isNull, err := ast.NewPostfix("IS NULL", ast.NewIdentifier(ast.NewName("x"), nil))
	require.NoError(t, err)
	assert.Equal(t, "x IS NULL", isNull.Render())

	br, err := ast.NewBracket(bo)
	require.NoError(t, err)
	mul, err := ast.NewBinaryOperator("*", br, 2)
	require.NoError(t, err)
	assert.Equal(t, "(1 + 1) * 2", mul.Render())
}

func TestOperatorArity(t *testing.T) {
	_, err := ast.NewBinaryOperator("+", 1)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.NewBinaryOperator("+", 1, 2, 3)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.NewPrefix("NOT")
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.NewPostfix("IS NULL", 1, 2)
	var serr *sqlerr.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, sqlerr.ErrCodeArity, serr.Code)
}

func TestExpressionsRenderModes(t *testing.T) {
	e, err := ast.NewExpressions(ast.NewIdentifier(ast.NewName("a"), nil), ast.NewIdentifier(ast.NewName("b"), nil))
	require.NoError(t, err)
	assert.Equal(t, "a b", e.Render())
	assert.Equal(t, "a, b", e.RenderList())
}

func TestTokensRestartable(t *testing.T) {
	n, err := ast.Itemize(mustValue(t, 1), ast.NewName("one"))
	require.NoError(t, err)
	seq := n.Tokens()

	var first, second []string
	for tok := range seq {
		first = append(first, tok)
	}
	for tok := range seq {
		second = append(second, tok)
	}
	assert.Equal(t, []string{"1", "AS", "one"}, first)
	assert.Equal(t, first, second)

	// Stopping early is allowed.
	for range seq {
		break
	}
}

func TestItemize(t *testing.T) {
	id := ast.NewIdentifier(ast.NewName("users"), nil)
	n, err := ast.Itemize(id, nil)
	require.NoError(t, err)
	item := n.(ast.Item)
	assert.True(t, item.IsItem())
	assert.Nil(t, item.AliasName())
	assert.False(t, id.Item, "original must not change")

	lifted, err := ast.Itemize(7, ast.NewName("seven"))
	require.NoError(t, err)
	assert.Equal(t, ast.TagValue, lifted.Tag())
	assert.Equal(t, "7 AS seven", lifted.Render())

	star, err := ast.Itemize(&ast.Star{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "*", star.Render())

	_, err = ast.Itemize(&ast.Star{Parent: ast.NewName("t")}, ast.NewName("x"))
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.Itemize(&ast.OrderItem{Expr: id}, nil)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))
}

func TestOrderItem(t *testing.T) {
	id := ast.NewIdentifier(ast.NewName("name"), nil)
	assert.Equal(t, "name", (&ast.OrderItem{Expr: id}).Render())
	assert.Equal(t, "name ASC", (&ast.OrderItem{Expr: id, Order: ast.SortAsc}).Render())
	assert.Equal(t, "name DESC", (&ast.OrderItem{Expr: id, Order: ast.SortDesc}).Render())
}

func TestJoinStatement(t *testing.T) {
	source := ast.Expressions{ast.NewIdentifier(ast.NewName("users2"), nil)}
	using := ast.Expressions{ast.NewIdentifier(ast.NewName("id"), nil)}
	on, err := ast.NewBinaryOperator("=", ast.NewIdentifier(ast.NewName("a"), nil), ast.NewIdentifier(ast.NewName("b"), nil))
	require.NoError(t, err)

	j, err := ast.NewJoinStatement("LEFT OUTER", source, nil, using)
	require.NoError(t, err)
	assert.Equal(t, "LEFT OUTER JOIN users2 USING(id)", j.Render())
	assert.Nil(t, j.On)

	j, err = ast.NewJoinStatement("", source, ast.Expressions{on}, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.DefaultJoinType, j.Type)
	assert.Equal(t, "INNER JOIN users2 ON a = b", j.Render())

	_, err = ast.NewJoinStatement("", source, ast.Expressions{on}, using)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))

	_, err = ast.NewJoinStatement("", source, nil, nil)
	assert.True(t, errors.Is(err, sqlerr.ErrStructural))
}

func TestSelectStatementRender(t *testing.T) {
	_, err := ast.NewSelectStatement(nil)
	require.Error(t, err)

	star, err := ast.Itemize(&ast.Star{}, nil)
	require.NoError(t, err)
	s, err := ast.NewSelectStatement(ast.Expressions{star})
	require.NoError(t, err)
	users, err := ast.Itemize(ast.NewIdentifier(ast.NewName("users"), nil), nil)
	require.NoError(t, err)
	s.From = ast.Expressions{users}
	s.Where = ast.Expressions{mustValue(t, 1)}
	s.OrderBy = ast.Expressions{&ast.OrderItem{Expr: ast.NewIdentifier(ast.NewName("name"), nil), Order: ast.SortDesc}}
	s.Limit = ast.Expressions{mustValue(t, 10)}

	right, err := ast.NewSelectStatement(ast.Expressions{star})
	require.NoError(t, err)
	right.From = ast.Expressions{users}
	s.Unions = ast.Expressions{&ast.UnionStatement{
		Kind:   ast.SetUnion,
		Select: ast.Expressions{&ast.SetOperand{All: true, Select: right}},
	}}

	assert.Equal(t,
		"SELECT * FROM users WHERE 1 UNION ALL SELECT * FROM users ORDER BY name DESC LIMIT 10",
		s.Render())
}

func TestWindowDef(t *testing.T) {
	w := &ast.WindowDef{
		Name:        ast.NewName("w"),
		PartitionBy: ast.Expressions{ast.NewIdentifier(ast.NewName("dept"), nil)},
		OrderBy:     ast.Expressions{&ast.OrderItem{Expr: ast.NewIdentifier(ast.NewName("salary"), nil), Order: ast.SortDesc}},
	}
	assert.Equal(t, "w AS (PARTITION BY dept ORDER BY salary DESC)", w.Render())
}

func TestMarshalJSON(t *testing.T) {
	bo, err := ast.NewBinaryOperator("+", 1, 1.5)
	require.NoError(t, err)
	data, err := json.Marshal(bo)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "BO", got["type"])
	assert.Equal(t, "+", got["op"])

	exprs := got["expr"].([]any)
	require.Len(t, exprs, 2)
	assert.Equal(t, "VALUE", exprs[0].(map[string]any)["type"])
	assert.Equal(t, "int", exprs[0].(map[string]any)["kind"])
	assert.Equal(t, "float", exprs[1].(map[string]any)["kind"])

	data, err = json.Marshal(&ast.Star{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"STAR"}`, string(data))
}
