package ops

import (
	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/storage"
)

// change is the value snapshot a command carries: the exact pre-image rows
// to restore on invert and the rows to write on apply. Storing rows instead
// of procedures keeps invert exact even when later commands touch
// overlapping records.
type change struct {
	putBefore    []model.Bookmark // rows restored on invert
	putAfter     []model.Bookmark // rows written on apply
	deleteAfter  []string         // bookmark ids removed on apply
	foldersAfter []model.Folder   // taxonomy entries created on apply
	tagsAfter    []model.Tag
	ignoreAdd    []string // ignored-URL entries added on apply
	ignoreRemove []string
}

func (c change) empty() bool {
	return len(c.putAfter) == 0 && len(c.deleteAfter) == 0 &&
		len(c.ignoreAdd) == 0 && len(c.ignoreRemove) == 0
}

// command applies or inverts one change as a single transaction.
type command struct {
	store storage.Store
	desc  string
	ch    change
}

func (c *command) Description() string { return c.desc }

func (c *command) Apply() error {
	return c.store.Update(func(tx storage.Tx) error {
		if len(c.ch.putAfter) > 0 {
			if err := tx.PutBookmarks(c.ch.putAfter...); err != nil {
				return err
			}
		}
		if len(c.ch.deleteAfter) > 0 {
			if err := tx.DeleteBookmarks(c.ch.deleteAfter...); err != nil {
				return err
			}
		}
		if len(c.ch.foldersAfter) > 0 {
			if err := tx.PutFolders(c.ch.foldersAfter...); err != nil {
				return err
			}
		}
		if len(c.ch.tagsAfter) > 0 {
			if err := tx.PutTags(c.ch.tagsAfter...); err != nil {
				return err
			}
		}
		if len(c.ch.ignoreAdd) > 0 {
			if err := tx.AddIgnoredURLs(c.ch.ignoreAdd...); err != nil {
				return err
			}
		}
		if len(c.ch.ignoreRemove) > 0 {
			if err := tx.RemoveIgnoredURLs(c.ch.ignoreRemove...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *command) Invert() error {
	return c.store.Update(func(tx storage.Tx) error {
		if len(c.ch.putBefore) > 0 {
			if err := tx.PutBookmarks(c.ch.putBefore...); err != nil {
				return err
			}
		}
		if len(c.ch.foldersAfter) > 0 {
			ids := make([]string, len(c.ch.foldersAfter))
			for i, f := range c.ch.foldersAfter {
				ids[i] = f.ID
			}
			if err := tx.DeleteFolders(ids...); err != nil {
				return err
			}
		}
		if len(c.ch.tagsAfter) > 0 {
			ids := make([]string, len(c.ch.tagsAfter))
			for i, tg := range c.ch.tagsAfter {
				ids[i] = tg.ID
			}
			if err := tx.DeleteTags(ids...); err != nil {
				return err
			}
		}
		if len(c.ch.ignoreAdd) > 0 {
			if err := tx.RemoveIgnoredURLs(c.ch.ignoreAdd...); err != nil {
				return err
			}
		}
		if len(c.ch.ignoreRemove) > 0 {
			if err := tx.AddIgnoredURLs(c.ch.ignoreRemove...); err != nil {
				return err
			}
		}
		return nil
	})
}
