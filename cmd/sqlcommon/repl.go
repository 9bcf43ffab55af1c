package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sqlc-dev/sqlcommon/grammar"
	"github.com/sqlc-dev/sqlcommon/token"
)

const (
	promptPrimary = "sql> "
	promptMore    = "...> "
)

// repl reads statements interactively. Lines are collected until one ends
// in ";" (for expressions and values every line is complete on its own).
// Lines starting with a backslash are commands:
//
//	\format \explain \json   switch the output
//	\start NAME              switch the start symbol
//	\q                       quit
func repl(ctx context.Context, cfg config, logger *slog.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptPrimary,
		HistoryFile:       historyFile(),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         `\q`,
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(promptPrimary)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 && strings.HasPrefix(trimmed, `\`) {
			quit, err := command(&cfg, trimmed)
			if err != nil {
				fmt.Fprintln(rl.Stderr(), err)
			}
			if quit {
				return nil
			}
			continue
		}
		if trimmed == "" && buf.Len() == 0 {
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if cfg.start == grammar.StartStatement && !strings.HasSuffix(trimmed, ";") {
			rl.SetPrompt(promptMore)
			continue
		}

		input := buf.String()
		buf.Reset()
		rl.SetPrompt(promptPrimary)
		if err := run(ctx, cfg, []string{input}, rl.Stdout(), logger); err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
	}
}

func command(cfg *config, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\q`, `\quit`:
		return true, nil
	case `\format`:
		cfg.mode = modeFormat
	case `\explain`:
		cfg.mode = modeExplain
	case `\json`:
		cfg.mode = modeJSON
	case `\start`:
		if len(fields) != 2 {
			return false, fmt.Errorf(`usage: \start start|stmt|expr|value`)
		}
		start, err := grammar.ParseStart(fields[1])
		if err != nil {
			return false, err
		}
		cfg.start = start
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

// completer offers every keyword of the dialect plus the commands.
func completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(`\q`),
		readline.PcItem(`\format`),
		readline.PcItem(`\explain`),
		readline.PcItem(`\json`),
		readline.PcItem(`\start`,
			readline.PcItem(string(grammar.StartStatement)),
			readline.PcItem(string(grammar.StartStmt)),
			readline.PcItem(string(grammar.StartExpr)),
			readline.PcItem(string(grammar.StartValue)),
		),
	}
	for _, kw := range keywords() {
		items = append(items, readline.PcItem(kw))
	}
	return readline.NewPrefixCompleter(items...)
}

func keywords() []string {
	return slices.Sorted(maps.Keys(token.Keywords))
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sqlcommon_history")
}
