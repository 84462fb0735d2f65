package filter

import (
	"time"

	"github.com/linkhoard/linkhoard/internal/model"
)

// DateRange bounds bookmarks by AddDate. Start and End use "2006-01-02" and
// are inclusive; End extends to the end of its day. Either side may be empty.
type DateRange struct {
	Start string
	End   string
}

// IsZero reports whether the range bounds nothing.
func (dr DateRange) IsZero() bool {
	return dr.Start == "" && dr.End == ""
}

// ByDateRange keeps bookmarks whose AddDate falls inside the range.
// Comparison happens in millisecond space (AddDate*1000) against local-time
// bounds. Bookmarks without an AddDate are excluded while a range is active.
func ByDateRange(bookmarks []model.Bookmark, dr DateRange) []model.Bookmark {
	if dr.IsZero() {
		return bookmarks
	}

	var startMs, endMs int64 = 0, 1<<63 - 1
	if t, err := time.ParseInLocation("2006-01-02", dr.Start, time.Local); err == nil && dr.Start != "" {
		startMs = t.UnixMilli()
	}
	if t, err := time.ParseInLocation("2006-01-02", dr.End, time.Local); err == nil && dr.End != "" {
		endMs = t.AddDate(0, 0, 1).UnixMilli() - 1
	}

	var out []model.Bookmark
	for _, b := range bookmarks {
		if b.AddDate == 0 {
			continue
		}
		ms := b.AddDate * 1000
		if ms >= startMs && ms <= endMs {
			out = append(out, b)
		}
	}
	return out
}

// ByTag keeps bookmarks whose tag set contains the exact tag.
func ByTag(bookmarks []model.Bookmark, tag string) []model.Bookmark {
	if tag == "" {
		return bookmarks
	}
	var out []model.Bookmark
	for _, b := range bookmarks {
		if b.Tags.Contains(tag) {
			out = append(out, b)
		}
	}
	return out
}

// ByFolder keeps bookmarks whose currently effective folder equals folder.
// The effective folder is the one last persisted; a folder a rule would
// newly assign this pass is not visible here.
func ByFolder(bookmarks []model.Bookmark, folder string) []model.Bookmark {
	if folder == "" {
		return bookmarks
	}
	var out []model.Bookmark
	for _, b := range bookmarks {
		if b.EffectiveFolder() == folder {
			out = append(out, b)
		}
	}
	return out
}
