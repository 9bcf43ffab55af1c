// Command regenerate-explain rewrites expected.sql and explain.txt under
// parser/testdata from the current parser output. Cases that expect an
// error, or are marked todo or skip, are left alone.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlc-dev/sqlcommon/internal/normalize"
	"github.com/sqlc-dev/sqlcommon/parser"
)

type testMetadata struct {
	Todo  bool   `json:"todo,omitempty"`
	Skip  bool   `json:"skip,omitempty"`
	Error string `json:"error,omitempty"`
}

func main() {
	testName := flag.String("test", "", "Single test directory name to process (if empty, process all)")
	dryRun := flag.Bool("dry-run", false, "Print what would change without writing")
	create := flag.Bool("create", false, "Also create explain.txt where it does not exist yet")
	flag.Parse()

	testdataDir := "parser/testdata"

	if *testName != "" {
		if _, err := processTest(filepath.Join(testdataDir, *testName), *dryRun, *create); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", *testName, err)
			os.Exit(1)
		}
		return
	}

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading testdata: %v\n", err)
		os.Exit(1)
	}

	var errors []string
	var changed, unchanged, skipped int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, err := processTest(filepath.Join(testdataDir, entry.Name()), *dryRun, *create)
		switch {
		case err == errSkipped:
			skipped++
		case err != nil:
			errors = append(errors, fmt.Sprintf("%s: %v", entry.Name(), err))
		case n > 0:
			changed++
		default:
			unchanged++
		}
	}

	fmt.Printf("\nChanged: %d, Unchanged: %d, Skipped: %d, Errors: %d\n", changed, unchanged, skipped, len(errors))
	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nErrors:\n")
		for _, e := range errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		os.Exit(1)
	}
}

var errSkipped = fmt.Errorf("skipped")

// processTest returns the number of files that differ from the parser
// output.
func processTest(testDir string, dryRun, create bool) (int, error) {
	var metadata testMetadata
	if b, err := os.ReadFile(filepath.Join(testDir, "metadata.json")); err == nil {
		if err := json.Unmarshal(b, &metadata); err != nil {
			return 0, fmt.Errorf("parsing metadata.json: %w", err)
		}
	}
	if metadata.Todo || metadata.Skip || metadata.Error != "" {
		return 0, errSkipped
	}

	queryBytes, err := os.ReadFile(filepath.Join(testDir, "query.sql"))
	if err != nil {
		return 0, fmt.Errorf("reading query.sql: %w", err)
	}
	stmt, err := parser.ParseString(context.Background(), strings.TrimSpace(string(queryBytes)))
	if err != nil {
		return 0, err
	}

	if normalize.ForCompare(string(queryBytes)) != normalize.ForCompare(stmt.Render()) {
		fmt.Printf("  %s: canonical form differs beyond spelling\n", filepath.Base(testDir))
	}

	outputs := []struct {
		name    string
		content string
	}{
		{"expected.sql", stmt.Render() + "\n"},
		{"explain.txt", parser.Explain(stmt)},
	}

	changed := 0
	for _, out := range outputs {
		path := filepath.Join(testDir, out.name)
		current, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			if out.name == "explain.txt" && !create {
				continue
			}
		case err != nil:
			return changed, fmt.Errorf("reading %s: %w", out.name, err)
		case string(current) == out.content:
			continue
		}

		changed++
		if dryRun {
			fmt.Printf("  %s/%s would change\n", filepath.Base(testDir), out.name)
			continue
		}
		if err := os.WriteFile(path, []byte(out.content), 0644); err != nil {
			return changed, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("  %s/%s updated\n", filepath.Base(testDir), out.name)
	}
	return changed, nil
}
