package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/sqlcommon/lexer"
	"github.com/sqlc-dev/sqlcommon/token"
)

type tok struct {
	typ   token.Token
	value string
}

func tokenize(sql string) []tok {
	var out []tok
	for _, item := range lexer.Tokenize(strings.NewReader(sql)) {
		out = append(out, tok{item.Token, item.Value})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []tok
	}{
		{
			name: "keywords are case-insensitive",
			sql:  "select Name FROM users",
			want: []tok{
				{token.SELECT, "select"}, {token.IDENT, "Name"}, {token.FROM, "FROM"},
				{token.IDENT, "users"}, {token.EOF, ""},
			},
		},
		{
			name: "numbers",
			sql:  "1 1.0 .5 1e3 2E-2",
			want: []tok{
				{token.INTEGER, "1"}, {token.FLOAT, "1.0"}, {token.FLOAT, ".5"},
				{token.FLOAT, "1e3"}, {token.FLOAT, "2E-2"}, {token.EOF, ""},
			},
		},
		{
			name: "quoted text keeps delimiters",
			sql:  `'it''s' "a ""b"""`,
			want: []tok{
				{token.STRING, "'it''s'"}, {token.IDENT, `"a ""b"""`}, {token.EOF, ""},
			},
		},
		{
			name: "operators",
			sql:  "= != <> < > <= >= || + - * / % ( ) , . ;",
			want: []tok{
				{token.EQ, "="}, {token.NEQ, "!="}, {token.NEQ, "<>"}, {token.LT, "<"},
				{token.GT, ">"}, {token.LTE, "<="}, {token.GTE, ">="}, {token.CONCAT, "||"},
				{token.PLUS, "+"}, {token.MINUS, "-"}, {token.ASTERISK, "*"}, {token.SLASH, "/"},
				{token.PERCENT, "%"}, {token.LPAREN, "("}, {token.RPAREN, ")"}, {token.COMMA, ","},
				{token.DOT, "."}, {token.SEMICOLON, ";"}, {token.EOF, ""},
			},
		},
		{
			name: "comments are skipped",
			sql:  "a -- line\n/* block /* nested */ still */ b",
			want: []tok{{token.IDENT, "a"}, {token.IDENT, "b"}, {token.EOF, ""}},
		},
		{
			name: "identifier characters",
			sql:  "_x1 col$2",
			want: []tok{{token.IDENT, "_x1"}, {token.IDENT, "col$2"}, {token.EOF, ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.sql))
		})
	}
}

func TestIllegal(t *testing.T) {
	for _, sql := range []string{"'open", `"open`, "/* open", "!", "|", "#"} {
		items := lexer.Tokenize(strings.NewReader(sql))
		require.NotEmpty(t, items)
		assert.Equal(t, token.ILLEGAL, items[0].Token, sql)
	}
}

func TestQuotedFlag(t *testing.T) {
	items := lexer.Tokenize(strings.NewReader(`"x" y`))
	assert.True(t, items[0].Quoted)
	assert.False(t, items[1].Quoted)
}

func TestPositions(t *testing.T) {
	items := lexer.Tokenize(strings.NewReader("select a\n  from t"))
	require.Len(t, items, 5)
	assert.Equal(t, 1, items[0].Pos.Line)
	assert.Equal(t, 1, items[0].Pos.Column)
	assert.Equal(t, 8, items[1].Pos.Column)
	assert.Equal(t, 2, items[2].Pos.Line)
	assert.Equal(t, 3, items[2].Pos.Column)
}

func TestByteOrderMark(t *testing.T) {
	items := lexer.Tokenize(strings.NewReader("\uFEFFselect 1"))
	assert.Equal(t, token.SELECT, items[0].Token)
}
