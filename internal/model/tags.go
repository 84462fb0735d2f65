package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// TagSet is the canonical representation of a bookmark's tags: sorted,
// deduplicated, order-irrelevant. Import sources are loosely typed (tags
// arrive either as an array or as one comma-joined string), so every read
// from an external source must pass through NewTagSet.
type TagSet []string

// NewTagSet normalizes raw tag values into a TagSet. Each value may itself
// be a comma-joined list; entries are trimmed and empties dropped.
func NewTagSet(values ...string) TagSet {
	seen := make(map[string]bool)
	var tags TagSet
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Contains reports whether the set holds the exact tag.
func (ts TagSet) Contains(tag string) bool {
	for _, t := range ts {
		if t == tag {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every tag in other is present.
func (ts TagSet) ContainsAll(other TagSet) bool {
	for _, t := range other {
		if !ts.Contains(t) {
			return false
		}
	}
	return true
}

// Union returns a new set holding the tags of both sets.
func (ts TagSet) Union(other TagSet) TagSet {
	return NewTagSet(append(append(TagSet{}, ts...), other...)...)
}

// Clone returns an independent copy of the set.
func (ts TagSet) Clone() TagSet {
	if ts == nil {
		return nil
	}
	return append(TagSet{}, ts...)
}

// String renders the set as a comma-joined list.
func (ts TagSet) String() string {
	return strings.Join(ts, ", ")
}

// UnmarshalJSON accepts both a JSON array of strings and a single
// comma-joined string, normalizing either form.
func (ts *TagSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*ts = NewTagSet(list...)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*ts = NewTagSet(joined)
	return nil
}
