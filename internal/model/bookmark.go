package model

import "strings"

// FolderSeparator joins folder path segments, e.g. "Bookmarks > Dev > Go".
const FolderSeparator = " > "

// Status records whether the last pipeline pass matched a rule.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusMatched   Status = "matched"
)

// Bookmark represents a saved URL with metadata.
//
// Tags holds user-assigned tags unioned with rule tags for display;
// RuleTags tracks which of those were contributed by rule or classifier
// matches, so re-running rules never clobbers manual edits.
type Bookmark struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	Title          string `json:"title"`
	Tags           TagSet `json:"tags"`
	RuleTags       TagSet `json:"ruleTags,omitempty"`
	OriginalFolder string `json:"originalFolder"`
	NewFolder      string `json:"newFolder,omitempty"`
	AddDate        int64  `json:"addDate,omitempty"` // epoch seconds, 0 = unknown
	Status         Status `json:"status,omitempty"`

	// Computed per pipeline pass, never persisted.
	IsDuplicate    bool     `json:"isDuplicate,omitempty"`
	HasDuplicate   bool     `json:"hasDuplicate,omitempty"`
	OtherLocations []string `json:"otherLocations,omitempty"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL            string
	Title          string
	Tags           []string
	OriginalFolder string
	AddDate        int64
}

// NewBookmark creates a Bookmark with a generated UUID.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:             GenerateUUID(),
		URL:            params.URL,
		Title:          params.Title,
		Tags:           NewTagSet(params.Tags...),
		OriginalFolder: params.OriginalFolder,
		AddDate:        params.AddDate,
		Status:         StatusUnchanged,
	}
}

// EffectiveFolder returns the folder the bookmark currently displays under:
// NewFolder if set, else OriginalFolder.
func (b Bookmark) EffectiveFolder() string {
	if b.NewFolder != "" {
		return b.NewFolder
	}
	return b.OriginalFolder
}

// SplitFolderPath splits a folder path into its segments.
func SplitFolderPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, FolderSeparator)
}

// JoinFolderPath joins path segments into a folder path.
func JoinFolderPath(segments []string) string {
	return strings.Join(segments, FolderSeparator)
}
