// Package filter reduces bookmark sets by query strings, attribute
// predicates, and the fixed smart-filter catalog.
package filter

import (
	"regexp"
	"strings"

	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/sahilm/fuzzy"
)

// Mode selects how a search query is interpreted.
type Mode string

const (
	ModeLiteral Mode = "literal"
	ModeFuzzy   Mode = "fuzzy"
	ModeRegex   Mode = "regex"
)

// Search reduces bookmarks by query under the given mode. A blank query is
// the identity. An invalid regex pattern falls back to literal substring
// matching; a malformed pattern must never crash the pipeline.
func Search(bookmarks []model.Bookmark, query string, mode Mode) []model.Bookmark {
	if strings.TrimSpace(query) == "" {
		return bookmarks
	}

	switch mode {
	case ModeFuzzy:
		return searchFuzzy(bookmarks, query)
	case ModeRegex:
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			return searchLiteral(bookmarks, query)
		}
		return searchRegex(bookmarks, re)
	default:
		return searchLiteral(bookmarks, query)
	}
}

func searchLiteral(bookmarks []model.Bookmark, query string) []model.Bookmark {
	q := strings.ToLower(query)
	var out []model.Bookmark
	for _, b := range bookmarks {
		if literalMatch(b, q) {
			out = append(out, b)
		}
	}
	return out
}

func literalMatch(b model.Bookmark, q string) bool {
	if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.URL), q) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func searchRegex(bookmarks []model.Bookmark, re *regexp.Regexp) []model.Bookmark {
	var out []model.Bookmark
	for _, b := range bookmarks {
		if re.MatchString(b.Title) || re.MatchString(b.URL) || re.MatchString(b.Tags.String()) {
			out = append(out, b)
		}
	}
	return out
}

// searchKeys implements fuzzy.Source over the searchable bookmark keys.
type searchKeys []model.Bookmark

func (sk searchKeys) String(i int) string {
	b := sk[i]
	return strings.Join([]string{b.Title, b.URL, b.Tags.String(), b.OriginalFolder}, " ")
}

func (sk searchKeys) Len() int {
	return len(sk)
}

// searchFuzzy keeps the bookmarks the fuzzy engine matches at all, in input
// order. The engine's ranking is discarded: the pipeline applies its own
// deterministic sort afterwards, so only set membership matters here.
func searchFuzzy(bookmarks []model.Bookmark, query string) []model.Bookmark {
	matches := fuzzy.FindFrom(query, searchKeys(bookmarks))

	hit := make(map[int]bool, len(matches))
	for _, m := range matches {
		hit[m.Index] = true
	}

	var out []model.Bookmark
	for i, b := range bookmarks {
		if hit[i] {
			out = append(out, b)
		}
	}
	return out
}
