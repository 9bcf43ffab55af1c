package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sqlc-dev/sqlcommon/parser"
)

type testMetadata struct {
	Todo bool `json:"todo,omitempty"`
	Skip bool `json:"skip,omitempty"`
}

type todoTest struct {
	name      string
	querySize int
}

func main() {
	testdataDir := "parser/testdata"
	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading testdata: %v\n", err)
		os.Exit(1)
	}

	var todoTests []todoTest

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		testDir := filepath.Join(testdataDir, entry.Name())
		metadataBytes, err := os.ReadFile(filepath.Join(testDir, "metadata.json"))
		if err != nil {
			continue
		}

		var metadata testMetadata
		if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
			continue
		}
		if !metadata.Todo || metadata.Skip {
			continue
		}

		queryBytes, err := os.ReadFile(filepath.Join(testDir, "query.sql"))
		if err != nil {
			continue
		}

		todoTests = append(todoTests, todoTest{
			name:      entry.Name(),
			querySize: len(queryBytes),
		})
	}

	if len(todoTests) == 0 {
		fmt.Printf("No todo tests found!\n")
		return
	}

	// Shortest first
	sort.Slice(todoTests, func(i, j int) bool {
		return todoTests[i].querySize < todoTests[j].querySize
	})

	next := todoTests[0]
	testDir := filepath.Join(testdataDir, next.name)

	fmt.Printf("Next todo test: %s\n\n", next.name)

	queryBytes, _ := os.ReadFile(filepath.Join(testDir, "query.sql"))
	fmt.Printf("Query (%d bytes):\n%s\n", next.querySize, string(queryBytes))

	if expected, err := os.ReadFile(filepath.Join(testDir, "expected.sql")); err == nil {
		fmt.Printf("\nExpected SQL:\n%s\n", string(expected))
	}

	stmt, err := parser.ParseString(context.Background(), strings.TrimSpace(string(queryBytes)))
	if err != nil {
		fmt.Printf("\nCurrent result: %v\n", err)
	} else {
		fmt.Printf("\nCurrent result:\n%s\n", stmt.Render())
	}

	fmt.Printf("\nRemaining todo tests: %d\n", len(todoTests))
}
