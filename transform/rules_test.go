package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlc-dev/sqlcommon/grammar"
)

func TestRuleTablesCoverGrammar(t *testing.T) {
	rules := []string{
		grammar.RuleStart, grammar.RuleStmt, grammar.RuleSelect, grammar.RuleSubselect,
		grammar.RuleReturningStmt, grammar.RuleQueryStmt, grammar.RuleFromStmt,
		grammar.RuleJoinStmts, grammar.RuleJoinStmt, grammar.RuleJoinType, grammar.RuleJoinSource,
		grammar.RuleJoinOnStmt, grammar.RuleJoinUsingStmt, grammar.RuleJoinUsingItems,
		grammar.RuleWhereStmt, grammar.RuleGroupByStmt, grammar.RuleHavingStmt,
		grammar.RuleWindowStmt, grammar.RuleWindowDefs, grammar.RuleWindowDef,
		grammar.RuleSetStmts, grammar.RuleUnionStmt, grammar.RuleIntersectStmt, grammar.RuleExceptStmt,
		grammar.RuleOrderStmts, grammar.RuleOrderByStmt, grammar.RuleLimitStmt, grammar.RuleOffsetStmt,
		grammar.RuleOrderItems, grammar.RuleOrderItem, grammar.RuleItems, grammar.RuleItem,
		grammar.RuleBoExpr, grammar.RulePrefixExpr, grammar.RulePostfixExpr, grammar.RuleSignExpr,
		grammar.RuleFunc, grammar.RuleIdentifier, grammar.RuleStar, grammar.RuleBracket,
		grammar.RuleStr, grammar.RuleTrue, grammar.RuleFalse, grammar.RuleNull,
	}
	for _, r := range rules {
		assert.Contains(t, treeRules, r)
	}

	terms := []string{
		grammar.TermName, grammar.TermReservedWords, grammar.TermInt, grammar.TermFloat,
		grammar.TermStringLiteral, grammar.TermBops, grammar.TermPrefixOp, grammar.TermPostfixOp,
		grammar.TermSign, grammar.TermAscOrDesc, grammar.TermJoinType, grammar.TermSetQuantifier,
	}
	for _, term := range terms {
		assert.Contains(t, leafRules, term)
	}
}
