package ops

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/storage"
)

// Suggestion is one externally computed categorization for a bookmark id.
type Suggestion struct {
	Folder string
	Tags   []string
}

// Delta is one effective change a review UI would present. Records whose
// suggestion changes nothing are dropped before reaching the caller.
type Delta struct {
	Bookmark      model.Bookmark
	Folder        string // destination folder (effective folder if unchanged)
	FolderChanged bool
	AddedTags     model.TagSet
}

// PreviewCategorize diffs suggestions against current persisted state and
// returns only true deltas, in stored bookmark order. Folder names compare
// case-insensitively with locale-aware casing; tag sets compare by
// containment.
func (o *Ops) PreviewCategorize(suggestions map[string]Suggestion) ([]Delta, error) {
	var deltas []Delta

	err := o.store.View(func(tx storage.Tx) error {
		all, err := tx.Bookmarks()
		if err != nil {
			return err
		}
		for _, b := range all {
			sug, ok := suggestions[b.ID]
			if !ok {
				continue
			}

			folder := b.EffectiveFolder()
			folderChanged := sug.Folder != "" && !folderEqual(sug.Folder, folder)
			if folderChanged {
				folder = sug.Folder
			}

			var added model.TagSet
			for _, tag := range model.NewTagSet(sug.Tags...) {
				if !b.Tags.Contains(tag) {
					added = append(added, tag)
				}
			}

			if !folderChanged && len(added) == 0 {
				continue
			}
			deltas = append(deltas, Delta{
				Bookmark:      b,
				Folder:        folder,
				FolderChanged: folderChanged,
				AddedTags:     added,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deltas, nil
}

// ApplyCategorize writes the previewed deltas as one bulk mutation with a
// single Command. Suggested tags count as rule tags: a later manual edit is
// never re-clobbered by re-running the classifier. Missing destination
// folders and genuinely new tags get taxonomy entries.
func (o *Ops) ApplyCategorize(deltas []Delta) (int, error) {
	if len(deltas) == 0 {
		return 0, nil
	}

	var before, after []model.Bookmark
	var newFolders []model.Folder
	var newTags []model.Tag

	err := o.store.View(func(tx storage.Tx) error {
		for _, d := range deltas {
			b, ok, err := tx.BookmarkByID(d.Bookmark.ID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			updated := b
			if d.FolderChanged {
				updated.NewFolder = d.Folder
			}
			if len(d.AddedTags) > 0 {
				updated.Tags = updated.Tags.Union(d.AddedTags)
				updated.RuleTags = updated.RuleTags.Union(d.AddedTags)
			}
			before = append(before, b)
			after = append(after, updated)
		}
		if len(after) == 0 {
			return nil
		}

		folders, err := tx.Folders()
		if err != nil {
			return err
		}
		folderBase := nextOrder(len(folders), folderOrders(folders))
		for _, d := range deltas {
			if !d.FolderChanged {
				continue
			}
			if model.FindFolder(folders, d.Folder) == nil && model.FindFolder(newFolders, d.Folder) == nil {
				newFolders = append(newFolders, model.NewFolder(d.Folder, folderBase+len(newFolders)))
			}
		}

		tags, err := tx.Tags()
		if err != nil {
			return err
		}
		tagBase := nextOrder(len(tags), tagOrders(tags))
		for _, d := range deltas {
			for _, name := range d.AddedTags {
				if model.FindTag(tags, name) == nil && model.FindTag(newTags, name) == nil {
					newTags = append(newTags, model.NewTag(name, tagBase+len(newTags)))
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return o.run(fmt.Sprintf("Categorize %d bookmarks", len(after)), change{
		putBefore:    before,
		putAfter:     after,
		foldersAfter: newFolders,
		tagsAfter:    newTags,
	})
}

// folderEqual compares folder names case-insensitively. Beyond ASCII
// folding it lowercases under Turkish rules so dotted/dotless i variants of
// the same name compare equal.
func folderEqual(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	lower := cases.Lower(language.Turkish)
	return lower.String(a) == lower.String(b)
}
