package storage

import "github.com/linkhoard/linkhoard/internal/model"

// Tx provides read/write access to every collection inside one transaction.
// Writes performed through a Tx are applied all-or-nothing.
type Tx interface {
	Bookmarks() ([]model.Bookmark, error)
	BookmarkByID(id string) (model.Bookmark, bool, error)
	BookmarksByIDs(ids []string) ([]model.Bookmark, error)
	PutBookmarks(rows ...model.Bookmark) error
	DeleteBookmarks(ids ...string) error

	Rules() ([]model.Rule, error)
	PutRules(rows ...model.Rule) error
	DeleteRules(ids ...string) error

	Folders() ([]model.Folder, error)
	PutFolders(rows ...model.Folder) error
	DeleteFolders(ids ...string) error

	Tags() ([]model.Tag, error)
	PutTags(rows ...model.Tag) error
	DeleteTags(ids ...string) error

	IgnoredURLs() ([]string, error)
	AddIgnoredURLs(urls ...string) error
	RemoveIgnoredURLs(urls ...string) error
}

// Store is the persistence boundary. The pipeline's callers and the mutation
// operations receive a Store explicitly; nothing in the core reaches for a
// hidden singleton.
type Store interface {
	// View runs fn inside a read-only transaction.
	View(fn func(Tx) error) error
	// Update runs fn inside a writable transaction. If fn returns an error,
	// none of its writes are kept.
	Update(fn func(Tx) error) error
	Close() error
}

// LoadBookmarks reads the full bookmark list.
func LoadBookmarks(s Store) ([]model.Bookmark, error) {
	var rows []model.Bookmark
	err := s.View(func(tx Tx) error {
		var err error
		rows, err = tx.Bookmarks()
		return err
	})
	return rows, err
}

// LoadRules reads the full rule list in user order.
func LoadRules(s Store) ([]model.Rule, error) {
	var rows []model.Rule
	err := s.View(func(tx Tx) error {
		var err error
		rows, err = tx.Rules()
		return err
	})
	return rows, err
}
