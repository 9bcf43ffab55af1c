// Package token defines constants representing the lexical tokens of the
// SELECT dialect.
package token

import "strings"

// Token represents a lexical token.
type Token int

const (
	// Special tokens
	ILLEGAL Token = iota
	EOF
	WHITESPACE
	COMMENT

	// Literals
	IDENT   // identifiers, possibly double-quoted
	INTEGER // 123
	FLOAT   // 1.5, .5, 1e10
	STRING  // 'text'

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	EQ       // =
	NEQ      // != or <>
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	CONCAT   // ||

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;

	// Keywords
	keyword_beg
	ALL
	AND
	AS
	ASC
	BY
	DESC
	EXCEPT
	FALSE
	FROM
	FULL
	GROUP
	HAVING
	INNER
	INTERSECT
	IS
	JOIN
	LEFT
	LIKE
	LIMIT
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	PARTITION
	RIGHT
	SELECT
	TRUE
	UNION
	USING
	WHERE
	WINDOW
	keyword_end
)

var tokens = [...]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",

	IDENT:   "IDENT",
	INTEGER: "INTEGER",
	FLOAT:   "FLOAT",
	STRING:  "STRING",

	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	PERCENT:  "%",
	EQ:       "=",
	NEQ:      "!=",
	LT:       "<",
	GT:       ">",
	LTE:      "<=",
	GTE:      ">=",
	CONCAT:   "||",

	LPAREN:    "(",
	RPAREN:    ")",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",

	ALL:       "ALL",
	AND:       "AND",
	AS:        "AS",
	ASC:       "ASC",
	BY:        "BY",
	DESC:      "DESC",
	EXCEPT:    "EXCEPT",
	FALSE:     "FALSE",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	INNER:     "INNER",
	INTERSECT: "INTERSECT",
	IS:        "IS",
	JOIN:      "JOIN",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	NOT:       "NOT",
	NULL:      "NULL",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	PARTITION: "PARTITION",
	RIGHT:     "RIGHT",
	SELECT:    "SELECT",
	TRUE:      "TRUE",
	UNION:     "UNION",
	USING:     "USING",
	WHERE:     "WHERE",
	WINDOW:    "WINDOW",
}

func (tok Token) String() string {
	if tok >= 0 && int(tok) < len(tokens) {
		return tokens[tok]
	}
	return ""
}

// Keywords maps keyword strings to their token types.
var Keywords map[string]Token

func init() {
	Keywords = make(map[string]Token)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		Keywords[tokens[i]] = i
	}
}

// Lookup returns the token type for an identifier string.
// Keywords are matched case-insensitively; anything else is IDENT.
func Lookup(ident string) Token {
	if tok, ok := Keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token is a keyword.
// Every keyword of the dialect is reserved: none may be used as a bare
// identifier or alias.
func (tok Token) IsKeyword() bool {
	return tok > keyword_beg && tok < keyword_end
}

// Position represents a source position.
type Position struct {
	Offset int // byte offset
	Line   int // line number (1-based)
	Column int // column number (1-based)
}

// IsValid reports whether the position was recorded.
func (p Position) IsValid() bool {
	return p.Line > 0
}
