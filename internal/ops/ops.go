// Package ops implements the catalog of state-changing batch operations.
//
// Every operation follows the same protocol: read the current persisted rows
// for the target id set, compute new rows, apply the write as one atomic
// transaction, and record a Command whose invert restores exactly the
// pre-read field values. Rows the operation would not change are excluded
// from both the write set and the Command, so undo never touches unaffected
// records. Operations that affect zero rows are silent no-ops.
package ops

import (
	"fmt"

	"github.com/linkhoard/linkhoard/internal/dedupe"
	"github.com/linkhoard/linkhoard/internal/history"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/storage"
	"github.com/linkhoard/linkhoard/internal/urlclean"
)

// Ops executes mutation operations against a store, recording each on the
// history log. Everything that mutates persisted bookmarks must go through
// here; raw writes bypassing the log desynchronize undo/redo.
type Ops struct {
	store storage.Store
	hist  *history.Log
	log   logger.Logger
}

// New creates an Ops bound to store and hist.
func New(store storage.Store, hist *history.Log, log logger.Logger) *Ops {
	return &Ops{store: store, hist: hist, log: log}
}

// run applies the change and records it. Empty changes are silent no-ops.
func (o *Ops) run(desc string, ch change) (int, error) {
	if ch.empty() {
		return 0, nil
	}

	cmd := &command{store: o.store, desc: desc, ch: ch}
	if err := cmd.Apply(); err != nil {
		return 0, err
	}
	o.hist.Record(cmd)

	affected := len(ch.putAfter) + len(ch.deleteAfter) + len(ch.ignoreAdd) + len(ch.ignoreRemove)
	o.log.Debug("mutation applied", logger.String("op", desc), logger.Int("rows", affected))
	return affected, nil
}

// DeleteBookmarks removes the given bookmarks. Returns the number of rows
// actually deleted; unknown ids are skipped.
func (o *Ops) DeleteBookmarks(ids []string) (int, error) {
	var rows []model.Bookmark
	err := o.store.View(func(tx storage.Tx) error {
		var err error
		rows, err = tx.BookmarksByIDs(ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	existing := make([]string, len(rows))
	for i, b := range rows {
		existing[i] = b.ID
	}

	return o.run(fmt.Sprintf("Delete %d bookmarks", len(rows)), change{
		putBefore:   rows,
		deleteAfter: existing,
	})
}

// DeleteDuplicates removes all duplicate occurrences across the whole set,
// keeping, per URL, the bookmark with the earliest AddDate.
func (o *Ops) DeleteDuplicates() (int, error) {
	var removable []string
	err := o.store.View(func(tx storage.Tx) error {
		all, err := tx.Bookmarks()
		if err != nil {
			return err
		}
		removable = dedupe.RemovableIDs(all)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(removable) == 0 {
		return 0, nil
	}
	return o.DeleteBookmarks(removable)
}

// MoveToFolder sets the effective folder of the given bookmarks, creating
// the destination folder taxonomy entry if absent (ordered at the end).
// Bookmarks already in the folder are left out of the write and the Command.
func (o *Ops) MoveToFolder(ids []string, folder string) (int, error) {
	var before, after []model.Bookmark
	var created []model.Folder

	err := o.store.View(func(tx storage.Tx) error {
		rows, err := tx.BookmarksByIDs(ids)
		if err != nil {
			return err
		}
		for _, b := range rows {
			if b.EffectiveFolder() == folder {
				continue
			}
			before = append(before, b)
			moved := b
			moved.NewFolder = folder
			after = append(after, moved)
		}
		if len(after) == 0 {
			return nil
		}

		folders, err := tx.Folders()
		if err != nil {
			return err
		}
		if model.FindFolder(folders, folder) == nil {
			created = append(created, model.NewFolder(folder, nextOrder(len(folders), folderOrders(folders))))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return o.run(fmt.Sprintf("Move %d bookmarks to %q", len(after), folder), change{
		putBefore:    before,
		putAfter:     after,
		foldersAfter: created,
	})
}

// AddTags unions the given tags into the selected bookmarks, creating
// taxonomy entries for genuinely new tag names. Bookmarks that already carry
// every tag are excluded from the write set.
func (o *Ops) AddTags(ids []string, tags []string) (int, error) {
	toAdd := model.NewTagSet(tags...)
	if len(toAdd) == 0 {
		return 0, nil
	}

	var before, after []model.Bookmark
	var created []model.Tag

	err := o.store.View(func(tx storage.Tx) error {
		rows, err := tx.BookmarksByIDs(ids)
		if err != nil {
			return err
		}
		for _, b := range rows {
			if b.Tags.ContainsAll(toAdd) {
				continue
			}
			before = append(before, b)
			tagged := b
			tagged.Tags = b.Tags.Union(toAdd)
			after = append(after, tagged)
		}
		if len(after) == 0 {
			return nil
		}

		existing, err := tx.Tags()
		if err != nil {
			return err
		}
		base := nextOrder(len(existing), tagOrders(existing))
		for _, name := range toAdd {
			if model.FindTag(existing, name) == nil {
				created = append(created, model.NewTag(name, base+len(created)))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return o.run(fmt.Sprintf("Tag %d bookmarks with %q", len(after), toAdd.String()), change{
		putBefore: before,
		putAfter:  after,
		tagsAfter: created,
	})
}

// CleanURLs strips tracking parameters from the selected bookmarks. Only
// bookmarks whose URL actually changes are written or recorded.
func (o *Ops) CleanURLs(ids []string) (int, error) {
	var before, after []model.Bookmark

	err := o.store.View(func(tx storage.Tx) error {
		rows, err := tx.BookmarksByIDs(ids)
		if err != nil {
			return err
		}
		for _, b := range rows {
			res := urlclean.Clean(b.URL)
			if !res.Changed {
				continue
			}
			before = append(before, b)
			cleaned := b
			cleaned.URL = res.Cleaned
			after = append(after, cleaned)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return o.run(fmt.Sprintf("Clean %d URLs", len(after)), change{
		putBefore: before,
		putAfter:  after,
	})
}

// SetIgnored overrides link-health handling for a URL: ignored URLs are
// excluded from dead-link reporting. Already-satisfied states are silent
// no-ops.
func (o *Ops) SetIgnored(url string, ignored bool) error {
	var current bool
	err := o.store.View(func(tx storage.Tx) error {
		urls, err := tx.IgnoredURLs()
		if err != nil {
			return err
		}
		for _, u := range urls {
			if u == url {
				current = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if current == ignored {
		return nil
	}

	ch := change{}
	desc := ""
	if ignored {
		ch.ignoreAdd = []string{url}
		desc = fmt.Sprintf("Ignore link status of %s", url)
	} else {
		ch.ignoreRemove = []string{url}
		desc = fmt.Sprintf("Track link status of %s", url)
	}
	_, err = o.run(desc, ch)
	return err
}

// History exposes the underlying command log.
func (o *Ops) History() *history.Log {
	return o.hist
}

func folderOrders(folders []model.Folder) []int {
	orders := make([]int, len(folders))
	for i, f := range folders {
		orders[i] = f.Order
	}
	return orders
}

func tagOrders(tags []model.Tag) []int {
	orders := make([]int, len(tags))
	for i, tg := range tags {
		orders[i] = tg.Order
	}
	return orders
}

// nextOrder places new taxonomy entries after every existing one.
func nextOrder(count int, orders []int) int {
	next := count
	for _, o := range orders {
		if o >= next {
			next = o + 1
		}
	}
	return next
}
