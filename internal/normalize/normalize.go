// Package normalize rewrites SQL text so that statements differing only in
// spelling (keyword case, spacing, comments, optional keywords) compare
// equal. It works on text and never parses.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sqlc-dev/sqlcommon/token"
)

// Pre-compiled regexes for performance
var (
	whitespaceRegex     = regexp.MustCompile(`\s+`)
	operatorSpaceRegex  = regexp.MustCompile(`\s*(<=|>=|<>|!=|\|\||[=<>])\s*`)
	wordRegex           = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$]*`)
	innerJoinRegex      = regexp.MustCompile(`\bINNER JOIN\b`)
	outerJoinRegex      = regexp.MustCompile(`\b(LEFT|RIGHT|FULL) OUTER JOIN\b`)
	usingSpaceRegex     = regexp.MustCompile(`\bUSING \(`)
	parenSpaceRegex     = regexp.MustCompile(`\(\s+|\s+\)`)
	trailingSemicolonRe = regexp.MustCompile(`[\s;]+$`)
)

// Whitespace collapses whitespace sequences outside quoted text to a
// single space and trims leading/trailing whitespace.
func Whitespace(s string) string {
	return strings.TrimSpace(outsideQuotes(s, func(part string) string {
		return whitespaceRegex.ReplaceAllString(part, " ")
	}))
}

// outsideQuotes applies fn to every part of s that is not inside a
// string literal or a quoted identifier. Quoted parts, including doubled
// delimiters, are copied unchanged.
func outsideQuotes(s string, fn func(string) string) string {
	var result strings.Builder
	result.Grow(len(s))
	start := 0
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch != '\'' && ch != '"' {
			i++
			continue
		}
		result.WriteString(fn(s[start:i]))
		j := i + 1
		for j < len(s) {
			if s[j] == ch {
				if j+1 < len(s) && s[j+1] == ch {
					j += 2
					continue
				}
				break
			}
			j++
		}
		if j < len(s) {
			j++
		}
		result.WriteString(s[i:j])
		start, i = j, j
	}
	result.WriteString(fn(s[start:]))
	return result.String()
}

// Keywords upper-cases every reserved keyword outside quoted text.
// Identifiers and literals are left alone.
func Keywords(s string) string {
	upper := cases.Upper(language.Und)
	return outsideQuotes(s, func(part string) string {
		return wordRegex.ReplaceAllStringFunc(part, func(word string) string {
			if token.Lookup(word).IsKeyword() {
				return upper.String(word)
			}
			return word
		})
	})
}

// CommasOutsideStrings removes spaces after commas that are outside of string literals.
func CommasOutsideStrings(s string) string {
	return outsideQuotes(s, func(part string) string {
		return strings.ReplaceAll(part, ", ", ",")
	})
}

// StripComments removes SQL comments from a query string.
// It handles:
//   - Line comments: -- to end of line
//   - Block comments: /* ... */ with nesting support
func StripComments(s string) string {
	return outsideQuotes(s, func(part string) string {
		var result strings.Builder
		result.Grow(len(part))
		i := 0
		for i < len(part) {
			if i+1 < len(part) && part[i] == '-' && part[i+1] == '-' {
				for i < len(part) && part[i] != '\n' {
					i++
				}
				continue
			}
			if i+1 < len(part) && part[i] == '/' && part[i+1] == '*' {
				depth := 1
				i += 2
				for i < len(part) && depth > 0 {
					switch {
					case i+1 < len(part) && part[i] == '/' && part[i+1] == '*':
						depth++
						i += 2
					case i+1 < len(part) && part[i] == '*' && part[i+1] == '/':
						depth--
						i += 2
					default:
						i++
					}
				}
				result.WriteByte(' ')
				continue
			}
			result.WriteByte(part[i])
			i++
		}
		return result.String()
	})
}

// ForCompare normalizes SQL so that a statement and its canonical
// rendering compare equal. Comments are dropped, keywords upper-cased,
// spacing around operators, commas and parentheses removed, a bare JOIN
// treated as INNER JOIN and OUTER dropped from outer joins.
func ForCompare(s string) string {
	normalized := Whitespace(Keywords(StripComments(s)))
	normalized = outsideQuotes(normalized, func(part string) string {
		part = operatorSpaceRegex.ReplaceAllString(part, "$1")
		part = parenSpaceRegex.ReplaceAllStringFunc(part, strings.TrimSpace)
		part = usingSpaceRegex.ReplaceAllString(part, "USING(")
		part = innerJoinRegex.ReplaceAllString(part, "JOIN")
		part = outerJoinRegex.ReplaceAllString(part, "$1 JOIN")
		return part
	})
	normalized = CommasOutsideStrings(normalized)
	normalized = trailingSemicolonRe.ReplaceAllString(normalized, "")
	return strings.TrimSpace(normalized)
}
