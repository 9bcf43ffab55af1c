// Command sqlcommon formats, explains or dumps SELECT statements.
//
//	sqlcommon [flags] [sql ...]
//
// Each argument is parsed as one statement. Without arguments the
// statements are read from stdin, separated by semicolons. With -i an
// interactive prompt is started instead. With -l nothing is printed
// except the inputs that would change, and the exit status is 1 if any
// would.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sqlc-dev/sqlcommon/ast"
	"github.com/sqlc-dev/sqlcommon/grammar"
	"github.com/sqlc-dev/sqlcommon/internal/normalize"
	"github.com/sqlc-dev/sqlcommon/parser"
)

// mode selects what is printed for a parsed tree.
type mode int

const (
	modeFormat mode = iota
	modeExplain
	modeJSON
)

type config struct {
	start    grammar.Start
	mode     mode
	parallel int
	list     bool
}

func main() {
	startFlag := flag.String("start", "start", "Grammar start symbol: start, stmt, expr or value")
	explainFlag := flag.Bool("explain", false, "Print the tree dump instead of SQL")
	jsonFlag := flag.Bool("json", false, "Print the tree as JSON instead of SQL")
	interactive := flag.Bool("i", false, "Start an interactive prompt")
	verbose := flag.Bool("v", false, "Log debug output and timings to stderr")
	list := flag.Bool("l", false, "List inputs that are not already in canonical form instead of printing them")
	parallel := flag.Int("parallel", 0, "Parse arguments concurrently with at most N workers (0 = GOMAXPROCS)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	start, err := grammar.ParseStart(*startFlag)
	if err != nil {
		logger.Error("invalid flag", "flag", "start", "err", err)
		os.Exit(2)
	}
	cfg := config{start: start, parallel: *parallel, list: *list}
	switch {
	case *explainFlag && *jsonFlag:
		logger.Error("-explain and -json are exclusive")
		os.Exit(2)
	case *explainFlag:
		cfg.mode = modeExplain
	case *jsonFlag:
		cfg.mode = modeJSON
	}

	ctx := context.Background()
	if *interactive {
		if err := repl(ctx, cfg, logger); err != nil {
			logger.Error("prompt failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var inputs []string
	if flag.NArg() > 0 {
		inputs = flag.Args()
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("reading stdin", "err", err)
			os.Exit(1)
		}
		inputs = []string{string(b)}
	}

	if cfg.list {
		n, err := listNonCanonical(ctx, inputs, os.Stdout)
		if err != nil {
			logger.Error("parse failed", "err", err)
			os.Exit(1)
		}
		if n > 0 {
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, inputs, os.Stdout, logger); err != nil {
		logger.Error("parse failed", "err", err)
		os.Exit(1)
	}
}

// run parses inputs and writes one result per statement to w.
func run(ctx context.Context, cfg config, inputs []string, w io.Writer, logger *slog.Logger) error {
	nodes, err := parseInputs(ctx, cfg, inputs, logger)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		began := time.Now()
		out, err := render(cfg.mode, n)
		if err != nil {
			return err
		}
		logger.Debug("rendered", "statement", i+1, "tag", n.Tag(), "elapsed", time.Since(began))
		fmt.Fprintln(w, out)
	}
	return nil
}

func parseInputs(ctx context.Context, cfg config, inputs []string, logger *slog.Logger) ([]ast.Node, error) {
	began := time.Now()
	defer func() {
		logger.Debug("parsed", "inputs", len(inputs), "elapsed", time.Since(began))
	}()

	if cfg.start != grammar.StartStatement {
		nodes := make([]ast.Node, 0, len(inputs))
		for _, in := range inputs {
			n, err := parser.ParseWith(ctx, strings.NewReader(in), parser.Options{Start: cfg.start})
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	}

	var (
		stmts []*ast.SelectStatement
		err   error
	)
	switch {
	case len(inputs) == 1:
		stmts, err = parser.ParseStatements(ctx, strings.NewReader(inputs[0]))
	case cfg.parallel > 0:
		stmts, err = parser.ParseAllLimit(ctx, inputs, cfg.parallel)
	default:
		stmts, err = parser.ParseAll(ctx, inputs)
	}
	if err != nil {
		return nil, err
	}
	nodes := make([]ast.Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes, nil
}

// listNonCanonical writes every input whose text, ignoring comments and
// spacing, differs from its canonical rendering. It returns how many were
// written.
func listNonCanonical(ctx context.Context, inputs []string, w io.Writer) (int, error) {
	n := 0
	for _, in := range inputs {
		stmts, err := parser.ParseStatements(ctx, strings.NewReader(in))
		if err != nil {
			return n, err
		}
		if canonicalText(in) == canonicalText(parser.Format(stmts...)) {
			continue
		}
		n++
		fmt.Fprintln(w, normalize.Whitespace(in))
	}
	return n, nil
}

func canonicalText(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(normalize.Whitespace(normalize.StripComments(s)), ";"))
}

func render(m mode, n ast.Node) (string, error) {
	switch m {
	case modeExplain:
		return strings.TrimRight(parser.Explain(n), "\n"), nil
	case modeJSON:
		b, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		if s, ok := n.(*ast.SelectStatement); ok {
			return parser.Format(s), nil
		}
		return n.Render(), nil
	}
}
