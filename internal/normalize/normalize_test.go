package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitespace(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t", Whitespace("  SELECT\n\ta   FROM t \n"))
	assert.Equal(t, "SELECT 'a  b', \"x\ty\" FROM t", Whitespace("SELECT  'a  b',\n \"x\ty\"  FROM t"))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, "SELECT name FROM users WHERE x = 'select from'",
		Keywords("select name from users where x = 'select from'"))
	assert.Equal(t, `SELECT "from" FROM t`, Keywords(`select "from" from t`))
}

func TestStripComments(t *testing.T) {
	got := Whitespace(StripComments("select 1 -- trailing\n/* a /* nested */ b */ from t where x = '--not'"))
	assert.Equal(t, "select 1 from t where x = '--not'", got)
}

func TestCommasOutsideStrings(t *testing.T) {
	assert.Equal(t, "f(a,b, 'x, y')", CommasOutsideStrings("f(a, b, 'x, y')"))
}

func TestForCompare(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"select name from users;", "SELECT name FROM users"},
		{"select * from a join b on a.id=b.id", "SELECT * FROM a INNER JOIN b ON a.id = b.id"},
		{"select * from users1 left outer join users2 using ( id )", "SELECT * FROM users1 LEFT JOIN users2 USING(id)"},
		{"select sum( name ),1+1 from users", "SELECT sum(name), 1+1 FROM users"},
	}
	for _, tt := range tests {
		assert.Equal(t, ForCompare(tt.b), ForCompare(tt.a), tt.a)
	}
	assert.NotEqual(t, ForCompare("select 'a b'"), ForCompare("select 'a  b'"))
}
