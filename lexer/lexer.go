// Package lexer implements a lexer for the SELECT dialect.
package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sqlc-dev/sqlcommon/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	reader *bufio.Reader
	ch     rune // current character
	pos    token.Position
	eof    bool
}

// Item represents a lexical token with its value and position.
//
// Value is the token exactly as written in the source: string literals
// and quoted identifiers keep their delimiters and escape sequences.
// Stripping them is the transformer's job.
type Item struct {
	Token  token.Token
	Value  string
	Pos    token.Position
	Quoted bool // true if this identifier was double-quoted
}

// New creates a new Lexer from an io.Reader.
func New(r io.Reader) *Lexer {
	l := &Lexer{
		reader: bufio.NewReader(r),
		pos:    token.Position{Offset: 0, Line: 1, Column: 0},
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.eof {
		l.ch = 0
		return
	}

	r, size, err := l.reader.ReadRune()
	if err != nil {
		l.ch = 0
		l.eof = true
		return
	}

	if l.ch == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	l.pos.Offset += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.eof {
		return 0
	}
	bytes, err := l.reader.Peek(1)
	if err != nil || len(bytes) == 0 {
		return 0
	}
	r, _ := utf8.DecodeRune(bytes)
	return r
}

func (l *Lexer) skipWhitespace() {
	// Skip whitespace and BOM (byte order mark U+FEFF)
	for unicode.IsSpace(l.ch) || l.ch == '\uFEFF' {
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Item {
	l.skipWhitespace()

	pos := l.pos

	if l.eof || l.ch == 0 {
		return Item{Token: token.EOF, Value: "", Pos: pos}
	}

	// Handle comments
	if l.ch == '-' && l.peekChar() == '-' {
		return l.readLineComment()
	}
	if l.ch == '/' && l.peekChar() == '*' {
		return l.readBlockComment()
	}

	if item, ok := l.readOperator(pos); ok {
		return item
	}

	switch l.ch {
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		l.readChar()
		return Item{Token: token.DOT, Value: ".", Pos: pos}
	case '\'':
		return l.readString()
	case '"':
		return l.readQuotedIdentifier()
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isIdentStart(l.ch) {
			return l.readIdentifier()
		}
		ch := l.ch
		l.readChar()
		return Item{Token: token.ILLEGAL, Value: string(ch), Pos: pos}
	}
}

// operators maps operator and delimiter spellings to their tokens. Two
// character spellings are tried before one character ones.
var operators = map[string]token.Token{
	"+": token.PLUS, "-": token.MINUS, "*": token.ASTERISK, "/": token.SLASH,
	"%": token.PERCENT, "=": token.EQ, "<": token.LT, ">": token.GT,
	"(": token.LPAREN, ")": token.RPAREN, ",": token.COMMA, ";": token.SEMICOLON,

	"!=": token.NEQ, "<>": token.NEQ, "<=": token.LTE, ">=": token.GTE, "||": token.CONCAT,
}

// readOperator consumes an operator or delimiter at the current position.
// A lone '!' or '|' is ILLEGAL.
func (l *Lexer) readOperator(pos token.Position) (Item, bool) {
	pair := string([]rune{l.ch, l.peekChar()})
	if tok, ok := operators[pair]; ok {
		l.readChar()
		l.readChar()
		return Item{Token: tok, Value: pair, Pos: pos}, true
	}
	single := string(l.ch)
	if tok, ok := operators[single]; ok {
		l.readChar()
		return Item{Token: tok, Value: single, Pos: pos}, true
	}
	if l.ch == '!' || l.ch == '|' {
		l.readChar()
		return Item{Token: token.ILLEGAL, Value: single, Pos: pos}, true
	}
	return Item{}, false
}

func (l *Lexer) readLineComment() Item {
	pos := l.pos
	var sb strings.Builder
	for l.ch != '\n' && l.ch != 0 && !l.eof {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return Item{Token: token.COMMENT, Value: sb.String(), Pos: pos}
}

func (l *Lexer) readBlockComment() Item {
	pos := l.pos
	var sb strings.Builder
	// Skip /*
	sb.WriteRune(l.ch)
	l.readChar()
	sb.WriteRune(l.ch)
	l.readChar()

	nesting := 1
	for !l.eof && nesting > 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			sb.WriteRune(l.ch)
			l.readChar()
			sb.WriteRune(l.ch)
			l.readChar()
			nesting--
		} else if l.ch == '/' && l.peekChar() == '*' {
			sb.WriteRune(l.ch)
			l.readChar()
			sb.WriteRune(l.ch)
			l.readChar()
			nesting++
		} else {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	if nesting > 0 {
		return Item{Token: token.ILLEGAL, Value: sb.String(), Pos: pos}
	}
	return Item{Token: token.COMMENT, Value: sb.String(), Pos: pos}
}

// readDelimited reads a quote-delimited run, keeping the delimiters and
// any doubled-delimiter escapes verbatim. ok is false if the input ended
// before the closing delimiter.
func (l *Lexer) readDelimited(quote rune) (raw string, ok bool) {
	var sb strings.Builder
	sb.WriteRune(quote)
	l.readChar() // skip opening quote

	for !l.eof {
		if l.ch == quote {
			sb.WriteRune(quote)
			l.readChar()
			if l.ch == quote && !l.eof {
				// Doubled delimiter is an escape, keep going
				sb.WriteRune(quote)
				l.readChar()
				continue
			}
			return sb.String(), true
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return sb.String(), false
}

func (l *Lexer) readString() Item {
	pos := l.pos
	raw, ok := l.readDelimited('\'')
	if !ok {
		return Item{Token: token.ILLEGAL, Value: raw, Pos: pos}
	}
	return Item{Token: token.STRING, Value: raw, Pos: pos}
}

func (l *Lexer) readQuotedIdentifier() Item {
	pos := l.pos
	raw, ok := l.readDelimited('"')
	if !ok {
		return Item{Token: token.ILLEGAL, Value: raw, Pos: pos}
	}
	return Item{Token: token.IDENT, Value: raw, Pos: pos, Quoted: true}
}

// readNumber reads an integer or float literal. A literal is a FLOAT when
// it has a fractional part or an exponent.
func (l *Lexer) readNumber() Item {
	pos := l.pos
	var sb strings.Builder
	tok := token.INTEGER

	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' {
		tok = token.FLOAT
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			tok = token.FLOAT
			sb.WriteRune(l.ch)
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			for isDigit(l.ch) {
				sb.WriteRune(l.ch)
				l.readChar()
			}
		}
	}
	return Item{Token: tok, Value: sb.String(), Pos: pos}
}

func (l *Lexer) readIdentifier() Item {
	pos := l.pos
	var sb strings.Builder
	for isIdentChar(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	ident := sb.String()
	return Item{Token: token.Lookup(ident), Value: ident, Pos: pos}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch) || ch == '$'
}

// Tokenize returns all tokens from the input, excluding whitespace and
// comments, up to and including EOF.
func Tokenize(r io.Reader) []Item {
	l := New(r)
	var items []Item
	for {
		item := l.NextToken()
		if item.Token == token.COMMENT || item.Token == token.WHITESPACE {
			continue
		}
		items = append(items, item)
		if item.Token == token.EOF {
			break
		}
	}
	return items
}
