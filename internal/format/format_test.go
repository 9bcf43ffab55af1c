package format

import (
	"slices"
	"testing"
)

type sql string

func (s sql) Render() string { return string(s) }

func TestJoin(t *testing.T) {
	seq := slices.Values([]string{"SELECT", "", "a", "", "FROM t"})
	if got := Join(seq, " "); got != "SELECT a FROM t" {
		t.Errorf("Join() = %q", got)
	}
	if got := Join(slices.Values([]string(nil)), ", "); got != "" {
		t.Errorf("Join(empty) = %q", got)
	}
}

func TestQuoting(t *testing.T) {
	if got := QuoteName(`a"b`); got != `"a""b"` {
		t.Errorf("QuoteName() = %s", got)
	}
	if got := QuoteString("it's"); got != "'it's'" {
		t.Errorf("QuoteString() = %s", got)
	}
	if got := Qualify("", "x"); got != "x" {
		t.Errorf("Qualify() = %s", got)
	}
	if got := Qualify("s", "x"); got != "s.x" {
		t.Errorf("Qualify() = %s", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(sql("SELECT 1"), sql("SELECT 2")); got != "SELECT 1;\nSELECT 2;" {
		t.Errorf("Format() = %q", got)
	}
	if got := Format[sql](); got != "" {
		t.Errorf("Format() = %q", got)
	}
}
