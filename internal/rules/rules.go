// Package rules evaluates the ordered user rule list against bookmarks.
package rules

import (
	"strings"

	"github.com/linkhoard/linkhoard/internal/model"
)

// Result is the outcome of evaluating the rule list against one bookmark.
// Matched is nil when no rule applied; Folder then falls back to the
// bookmark's effective folder and Tags is empty.
type Result struct {
	Matched *model.Rule
	Folder  string
	Tags    model.TagSet
}

// Evaluate walks the rule list in order and returns the first match.
// A rule matches when any of its comma-separated terms matches per its type:
//
//	keyword — term contained in lowercased "title url"
//	domain  — term contained in lowercased URL
//	exact   — term equals lowercased title
//
// Rules with an empty value are skipped. Evaluation stops at the first
// matching rule; later rules never contribute.
func Evaluate(b model.Bookmark, list []model.Rule) Result {
	content := strings.ToLower(b.Title + " " + b.URL)
	urlLower := strings.ToLower(b.URL)
	titleLower := strings.ToLower(b.Title)

	for i := range list {
		rule := list[i]
		terms := rule.Terms()
		if len(terms) == 0 {
			continue
		}

		for _, term := range terms {
			if !termMatches(rule.Type, term, content, urlLower, titleLower) {
				continue
			}

			folder := b.EffectiveFolder()
			if rule.TargetFolder != "" {
				folder = rule.TargetFolder
			}
			return Result{
				Matched: &list[i],
				Folder:  folder,
				Tags:    rule.RuleTags(),
			}
		}
	}

	return Result{Folder: b.EffectiveFolder()}
}

func termMatches(ruleType model.RuleType, term, content, urlLower, titleLower string) bool {
	switch ruleType {
	case model.RuleKeyword:
		return strings.Contains(content, term)
	case model.RuleDomain:
		return strings.Contains(urlLower, term)
	case model.RuleExact:
		return titleLower == term
	default:
		return false
	}
}
