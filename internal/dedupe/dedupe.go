// Package dedupe builds a URL occurrence index over a bookmark set and
// classifies each occurrence as primary or duplicate.
package dedupe

import "github.com/linkhoard/linkhoard/internal/model"

// Annotate marks duplicate groups in place. Bookmarks are grouped by exact
// URL string (case-sensitive; URL casing can be meaningful). Within a group
// the first occurrence in slice order is the primary (HasDuplicate), all
// later ones get IsDuplicate. OtherLocations lists the original folders of
// the other group members.
func Annotate(bookmarks []model.Bookmark) {
	groups := make(map[string][]int, len(bookmarks))
	for i := range bookmarks {
		bookmarks[i].IsDuplicate = false
		bookmarks[i].HasDuplicate = false
		bookmarks[i].OtherLocations = nil
		groups[bookmarks[i].URL] = append(groups[bookmarks[i].URL], i)
	}

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		for pos, idx := range members {
			if pos == 0 {
				bookmarks[idx].HasDuplicate = true
			} else {
				bookmarks[idx].IsDuplicate = true
			}
			others := make([]string, 0, len(members)-1)
			for _, other := range members {
				if other != idx {
					others = append(others, bookmarks[other].OriginalFolder)
				}
			}
			bookmarks[idx].OtherLocations = others
		}
	}
}

// RemovableIDs returns the ids the destructive dedup action would delete:
// for every URL with multiple occurrences, all but the one with the earliest
// AddDate. Unlike Annotate's display-order primary, this tie-break is by
// date; equal dates fall back to slice order. Bookmarks without an AddDate
// sort after dated ones.
func RemovableIDs(bookmarks []model.Bookmark) []string {
	keep := make(map[string]int, len(bookmarks)) // url -> index of keeper
	multi := make(map[string]bool)

	for i, b := range bookmarks {
		k, seen := keep[b.URL]
		if !seen {
			keep[b.URL] = i
			continue
		}
		multi[b.URL] = true
		if earlier(b, bookmarks[k]) {
			keep[b.URL] = i
		}
	}

	var ids []string
	for i, b := range bookmarks {
		if multi[b.URL] && keep[b.URL] != i {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func earlier(a, b model.Bookmark) bool {
	switch {
	case a.AddDate == 0:
		return false
	case b.AddDate == 0:
		return true
	default:
		return a.AddDate < b.AddDate
	}
}

// OccurrenceCount counts URL occurrences beyond the first, over the whole
// set. This is the raw duplicate metric: it counts occurrences, while
// Annotate's grouping marks members of multi-occurrence groups.
func OccurrenceCount(bookmarks []model.Bookmark) int {
	seen := make(map[string]bool, len(bookmarks))
	count := 0
	for _, b := range bookmarks {
		if seen[b.URL] {
			count++
			continue
		}
		seen[b.URL] = true
	}
	return count
}
