package explain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/sqlcommon/internal/explain"
	"github.com/sqlc-dev/sqlcommon/parser"
)

func TestExplain(t *testing.T) {
	stmt, err := parser.ParseString(context.Background(),
		"select t.*, -x as neg, (a) from s.t join u on t.id = u.id where a is null window w as (order by a)")
	require.NoError(t, err)

	want := `SelectStatement (children 5)
 Returning (children 3)
  QualifiedAsterisk t
  Prefix - (alias neg) (children 1)
   Identifier x
  Bracket (children 1)
   Identifier a
 From (children 1)
  Identifier s.t
 Joins (children 1)
  Join INNER (children 2)
   Source (children 1)
    Identifier u
   On (children 1)
    Operator = (children 2)
     Identifier t.id
     Identifier u.id
 Where (children 1)
  Postfix IS NULL (children 1)
   Identifier a
 Window (children 1)
  WindowDefinition w (children 1)
   OrderBy (children 1)
    OrderByElement (children 1)
     Identifier a
`
	assert.Equal(t, want, explain.Explain(stmt))
}

func TestExplainExpression(t *testing.T) {
	n, err := parser.ParseExpr(context.Background(), "f(1, 'a', null)")
	require.NoError(t, err)
	assert.Equal(t, `Function f (children 3)
 Literal int 1
 Literal string 'a'
 Literal null NULL
`, explain.Explain(n))
}
