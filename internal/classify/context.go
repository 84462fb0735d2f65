package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linkhoard/linkhoard/internal/model"
)

const maxSampleTitles = 3

// BuildContext generates a compressed representation of the collection
// suitable as model context: folder paths with sample bookmark titles plus
// the existing tag vocabulary.
func BuildContext(folders []model.Folder, tags []model.Tag, bookmarks []model.Bookmark) string {
	byFolder := make(map[string][]string)
	var order []string
	seen := make(map[string]bool)

	for _, f := range folders {
		if !seen[f.Name] {
			seen[f.Name] = true
			order = append(order, f.Name)
		}
	}
	for _, b := range bookmarks {
		folder := b.EffectiveFolder()
		if folder == "" {
			continue
		}
		if !seen[folder] {
			seen[folder] = true
			order = append(order, folder)
		}
		if len(byFolder[folder]) < maxSampleTitles && b.Title != "" {
			byFolder[folder] = append(byFolder[folder], b.Title)
		}
	}

	var sb strings.Builder
	sb.WriteString("Available folders (with sample bookmarks):\n")
	for _, folder := range order {
		sb.WriteString(folder)
		sb.WriteString("\n")
		if titles := byFolder[folder]; len(titles) > 0 {
			quoted := make([]string, len(titles))
			for i, t := range titles {
				quoted[i] = fmt.Sprintf("%q", t)
			}
			sb.WriteString("  - ")
			sb.WriteString(strings.Join(quoted, ", "))
			sb.WriteString("\n")
		}
	}

	if names := uniqueTags(tags, bookmarks); len(names) > 0 {
		sb.WriteString("\nExisting tags: ")
		sb.WriteString(strings.Join(names, ", "))
	}
	return sb.String()
}

func uniqueTags(tags []model.Tag, bookmarks []model.Bookmark) []string {
	set := make(map[string]bool)
	for _, t := range tags {
		set[t.Name] = true
	}
	for _, b := range bookmarks {
		for _, tag := range b.Tags {
			set[tag] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
