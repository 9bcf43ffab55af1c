package main

import (
	"context"
	"fmt"

	"github.com/sqlc-dev/sqlcommon/parser"
)

func main() {
	query := `SELECT "number", count(*) AS c, t.x || 'suffix'
        FROM numbers AS t
        LEFT OUTER JOIN other USING (number)
        WHERE "number" >= 3 AND NOT x IS NULL
        GROUP BY "number"
        ORDER BY c DESC
        LIMIT 20;`

	stmt, err := parser.ParseString(context.Background(), query)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(parser.Format(stmt))
	fmt.Println(parser.Explain(stmt))
}
