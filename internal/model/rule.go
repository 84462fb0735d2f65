package model

import (
	"errors"
	"strings"
)

// RuleType selects how a rule's terms are matched against a bookmark.
type RuleType string

const (
	RuleKeyword RuleType = "keyword" // term contained in title or URL
	RuleDomain  RuleType = "domain"  // term contained in URL
	RuleExact   RuleType = "exact"   // term equals title
)

// ErrEmptyRule is returned when a rule carries neither a target folder nor
// tags; such a rule could never have an effect.
var ErrEmptyRule = errors.New("rule must set a target folder or tags")

// Rule is a user classification rule. Rules are evaluated in list order and
// the first match wins.
type Rule struct {
	ID           string   `json:"id"`
	Type         RuleType `json:"type"`
	Value        string   `json:"value"` // comma-separated match terms
	TargetFolder string   `json:"targetFolder,omitempty"`
	Tags         string   `json:"tags,omitempty"` // comma-separated
}

// NewRuleParams holds parameters for creating a new Rule.
type NewRuleParams struct {
	Type         RuleType
	Value        string
	TargetFolder string
	Tags         string
}

// NewRule creates a Rule with a generated UUID. It rejects rules that set
// neither TargetFolder nor Tags.
func NewRule(params NewRuleParams) (Rule, error) {
	if strings.TrimSpace(params.TargetFolder) == "" && strings.TrimSpace(params.Tags) == "" {
		return Rule{}, ErrEmptyRule
	}
	return Rule{
		ID:           GenerateUUID(),
		Type:         params.Type,
		Value:        params.Value,
		TargetFolder: params.TargetFolder,
		Tags:         params.Tags,
	}, nil
}

// Terms splits the rule value into trimmed lowercase match terms.
// Empty terms are dropped.
func (r Rule) Terms() []string {
	var terms []string
	for _, part := range strings.Split(r.Value, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// RuleTags returns the rule's tags as a normalized set.
func (r Rule) RuleTags() TagSet {
	return NewTagSet(r.Tags)
}
