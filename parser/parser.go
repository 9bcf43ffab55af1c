// Package parser parses SELECT statements into ASTs.
//
// It ties the grammar, which turns text into a concrete parse tree, to
// the transformer, which reduces that tree into ast nodes. Every call
// builds its own parser state and transformer; the compiled grammar is
// shared, so the functions here are safe for concurrent use.
package parser

import (
	"context"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/grammar"
	"github.com/sqlc-dev/sqlcommon/sqlerr"
	"github.com/sqlc-dev/sqlcommon/transform"
)

// Options configures ParseWith. The zero value parses one whole
// statement.
type Options struct {
	// Start is the grammar start symbol. Empty means grammar.StartStatement.
	Start grammar.Start
}

// ParseWith parses r from the start symbol in opts. Statement start
// symbols yield an *ast.SelectStatement, StartExpr any expression node
// and StartValue an *ast.Value.
func ParseWith(ctx context.Context, r io.Reader, opts Options) (ast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := grammar.Default().Parse(opts.Start, r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return transform.New().Transform(tree)
}

// Parse parses a single SELECT statement, optionally terminated by a
// semicolon.
func Parse(ctx context.Context, r io.Reader) (*ast.SelectStatement, error) {
	node, err := ParseWith(ctx, r, Options{Start: grammar.StartStatement})
	if err != nil {
		return nil, err
	}
	return asSelect(node)
}

// ParseString is Parse over a string.
func ParseString(ctx context.Context, sql string) (*ast.SelectStatement, error) {
	return Parse(ctx, strings.NewReader(sql))
}

// ParseExpr parses a bare expression such as `a + 1` or `count(*)`.
func ParseExpr(ctx context.Context, sql string) (ast.Node, error) {
	return ParseWith(ctx, strings.NewReader(sql), Options{Start: grammar.StartExpr})
}

// ParseValue parses a bare literal.
func ParseValue(ctx context.Context, sql string) (*ast.Value, error) {
	node, err := ParseWith(ctx, strings.NewReader(sql), Options{Start: grammar.StartValue})
	if err != nil {
		return nil, err
	}
	v, ok := node.(*ast.Value)
	if !ok {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "expected a literal, got %s", node.Tag())
	}
	return v, nil
}

// ParseStatements parses a script of semicolon-separated statements.
func ParseStatements(ctx context.Context, r io.Reader) ([]*ast.SelectStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trees, err := grammar.Default().ParseScript(r)
	if err != nil {
		return nil, err
	}
	t := transform.New()
	stmts := make([]*ast.SelectStatement, 0, len(trees))
	for _, tree := range trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, err := t.Select(tree)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseAll parses independent statements concurrently. Results are in
// input order. The first failure cancels the remaining work and is
// returned.
func ParseAll(ctx context.Context, inputs []string) ([]*ast.SelectStatement, error) {
	return ParseAllLimit(ctx, inputs, runtime.GOMAXPROCS(0))
}

// ParseAllLimit is ParseAll with at most limit parses in flight. A limit
// below one means no limit.
func ParseAllLimit(ctx context.Context, inputs []string, limit int) ([]*ast.SelectStatement, error) {
	results := make([]*ast.SelectStatement, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, sql := range inputs {
		g.Go(func() error {
			stmt, err := ParseString(ctx, sql)
			if err != nil {
				return err
			}
			results[i] = stmt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func asSelect(node ast.Node) (*ast.SelectStatement, error) {
	stmt, ok := node.(*ast.SelectStatement)
	if !ok {
		return nil, sqlerr.NewInternalError(sqlerr.ErrCodeUnexpectedNode, "expected a SELECT statement, got %s", node.Tag())
	}
	return stmt, nil
}
