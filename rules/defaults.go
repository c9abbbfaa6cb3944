package rules

import (
	_ "embed"
)

//go:embed defaults.json
var defaultRulesJSON []byte

// The ruleset shipped with the binary, used when no rules file is
// configured. Panics on a malformed embedded document, which would be a
// build defect, not a runtime condition.
func DefaultRuleSet() *RuleSet {
	rs, err := ParseRuleSet(defaultRulesJSON)
	if err != nil {
		panic(err)
	}
	return rs
}
