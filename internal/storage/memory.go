package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/linkhoard/linkhoard/internal/model"
)

// MemoryStore is an in-memory Store. Tests and embedding callers use it in
// place of SQLite; semantics match, including all-or-nothing updates.
type MemoryStore struct {
	mu   sync.Mutex
	data tables
}

type tables struct {
	bookmarks []model.Bookmark
	rules     []model.Rule
	folders   []model.Folder
	tags      []model.Tag
	ignored   map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: tables{ignored: map[string]bool{}}}
}

// View runs fn against a snapshot of the current data.
func (s *MemoryStore) View(fn func(Tx) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()
	return fn(&memTx{t: &snapshot})
}

// Update runs fn against a copy and swaps it in only if fn succeeds.
func (s *MemoryStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&memTx{t: &work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func (t tables) clone() tables {
	out := tables{
		bookmarks: make([]model.Bookmark, len(t.bookmarks)),
		rules:     append([]model.Rule(nil), t.rules...),
		folders:   append([]model.Folder(nil), t.folders...),
		tags:      append([]model.Tag(nil), t.tags...),
		ignored:   make(map[string]bool, len(t.ignored)),
	}
	for i, b := range t.bookmarks {
		b.Tags = b.Tags.Clone()
		b.RuleTags = b.RuleTags.Clone()
		b.OtherLocations = append([]string(nil), b.OtherLocations...)
		out.bookmarks[i] = b
	}
	for url := range t.ignored {
		out.ignored[url] = true
	}
	return out
}

type memTx struct {
	t *tables
}

var errMissingID = errors.New("row has no id")

func (tx *memTx) Bookmarks() ([]model.Bookmark, error) {
	return append([]model.Bookmark(nil), tx.t.bookmarks...), nil
}

func (tx *memTx) BookmarkByID(id string) (model.Bookmark, bool, error) {
	for _, b := range tx.t.bookmarks {
		if b.ID == id {
			return b, true, nil
		}
	}
	return model.Bookmark{}, false, nil
}

func (tx *memTx) BookmarksByIDs(ids []string) ([]model.Bookmark, error) {
	var rows []model.Bookmark
	for _, id := range ids {
		if b, ok, _ := tx.BookmarkByID(id); ok {
			rows = append(rows, b)
		}
	}
	return rows, nil
}

// PutBookmarks upserts rows, keeping the position of existing ids so import
// order survives edits.
func (tx *memTx) PutBookmarks(rows ...model.Bookmark) error {
	for _, row := range rows {
		if row.ID == "" {
			return errMissingID
		}
		replaced := false
		for i := range tx.t.bookmarks {
			if tx.t.bookmarks[i].ID == row.ID {
				tx.t.bookmarks[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			tx.t.bookmarks = append(tx.t.bookmarks, row)
		}
	}
	return nil
}

func (tx *memTx) DeleteBookmarks(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := tx.t.bookmarks[:0]
	for _, b := range tx.t.bookmarks {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	tx.t.bookmarks = kept
	return nil
}

func (tx *memTx) Rules() ([]model.Rule, error) {
	return append([]model.Rule(nil), tx.t.rules...), nil
}

func (tx *memTx) PutRules(rows ...model.Rule) error {
	for _, row := range rows {
		if row.ID == "" {
			return errMissingID
		}
		replaced := false
		for i := range tx.t.rules {
			if tx.t.rules[i].ID == row.ID {
				tx.t.rules[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			tx.t.rules = append(tx.t.rules, row)
		}
	}
	return nil
}

func (tx *memTx) DeleteRules(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := tx.t.rules[:0]
	for _, r := range tx.t.rules {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	tx.t.rules = kept
	return nil
}

func (tx *memTx) Folders() ([]model.Folder, error) {
	rows := append([]model.Folder(nil), tx.t.folders...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	return rows, nil
}

func (tx *memTx) PutFolders(rows ...model.Folder) error {
	for _, row := range rows {
		if row.ID == "" {
			return errMissingID
		}
		replaced := false
		for i := range tx.t.folders {
			if tx.t.folders[i].ID == row.ID {
				tx.t.folders[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			tx.t.folders = append(tx.t.folders, row)
		}
	}
	return nil
}

func (tx *memTx) DeleteFolders(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := tx.t.folders[:0]
	for _, f := range tx.t.folders {
		if !drop[f.ID] {
			kept = append(kept, f)
		}
	}
	tx.t.folders = kept
	return nil
}

func (tx *memTx) Tags() ([]model.Tag, error) {
	rows := append([]model.Tag(nil), tx.t.tags...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	return rows, nil
}

func (tx *memTx) PutTags(rows ...model.Tag) error {
	for _, row := range rows {
		if row.ID == "" {
			return errMissingID
		}
		replaced := false
		for i := range tx.t.tags {
			if tx.t.tags[i].ID == row.ID {
				tx.t.tags[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			tx.t.tags = append(tx.t.tags, row)
		}
	}
	return nil
}

func (tx *memTx) DeleteTags(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := tx.t.tags[:0]
	for _, tg := range tx.t.tags {
		if !drop[tg.ID] {
			kept = append(kept, tg)
		}
	}
	tx.t.tags = kept
	return nil
}

func (tx *memTx) IgnoredURLs() ([]string, error) {
	urls := make([]string, 0, len(tx.t.ignored))
	for url := range tx.t.ignored {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls, nil
}

func (tx *memTx) AddIgnoredURLs(urls ...string) error {
	for _, url := range urls {
		tx.t.ignored[url] = true
	}
	return nil
}

func (tx *memTx) RemoveIgnoredURLs(urls ...string) error {
	for _, url := range urls {
		delete(tx.t.ignored, url)
	}
	return nil
}
