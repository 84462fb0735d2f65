package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/linkhoard/linkhoard/internal/model"
	"github.com/linkhoard/linkhoard/internal/storage"
)

// both implementations must behave identically.
func stores(t *testing.T) map[string]storage.Store {
	t.Helper()

	sqlite, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "hoard.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_PutAndGetBookmarks(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rows := []model.Bookmark{
				{ID: "b1", URL: "https://example.com", Title: "Example", Tags: model.NewTagSet("go"), OriginalFolder: "Root", AddDate: 100},
				{ID: "b2", URL: "https://github.com/x", Title: "x", OriginalFolder: "Root"},
			}
			if err := s.Update(func(tx storage.Tx) error {
				return tx.PutBookmarks(rows...)
			}); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, err := storage.LoadBookmarks(s)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 bookmarks, got %d", len(got))
			}
			// Insert order preserved
			if got[0].ID != "b1" || got[1].ID != "b2" {
				t.Errorf("order = %s, %s; want b1, b2", got[0].ID, got[1].ID)
			}
			if !got[0].Tags.Contains("go") {
				t.Errorf("tags not round-tripped: %v", got[0].Tags)
			}
			if got[0].AddDate != 100 {
				t.Errorf("addDate = %d, want 100", got[0].AddDate)
			}
		})
	}
}

func TestStore_UpsertKeepsPosition(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(tx storage.Tx) error {
				return tx.PutBookmarks(
					model.Bookmark{ID: "b1", URL: "https://a.example"},
					model.Bookmark{ID: "b2", URL: "https://b.example"},
				)
			})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}

			// Rewrite b1; it must stay first.
			err = s.Update(func(tx storage.Tx) error {
				return tx.PutBookmarks(model.Bookmark{ID: "b1", URL: "https://a.example", Title: "A"})
			})
			if err != nil {
				t.Fatalf("upsert: %v", err)
			}

			got, _ := storage.LoadBookmarks(s)
			if got[0].ID != "b1" || got[0].Title != "A" {
				t.Errorf("first row = %+v, want updated b1", got[0])
			}
		})
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	boom := errors.New("boom")

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(tx storage.Tx) error {
				if err := tx.PutBookmarks(model.Bookmark{ID: "b1", URL: "https://a.example"}); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}

			got, _ := storage.LoadBookmarks(s)
			if len(got) != 0 {
				t.Errorf("write survived a failed transaction: %v", got)
			}
		})
	}
}

func TestStore_MultiTableTransaction(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(tx storage.Tx) error {
				if err := tx.PutBookmarks(model.Bookmark{ID: "b1", URL: "https://a.example", NewFolder: "Dev"}); err != nil {
					return err
				}
				if err := tx.PutFolders(model.Folder{ID: "f1", Name: "Dev", Order: 1}); err != nil {
					return err
				}
				if err := tx.PutRules(model.Rule{ID: "r1", Type: model.RuleDomain, Value: "a.example", TargetFolder: "Dev"}); err != nil {
					return err
				}
				if err := tx.PutTags(model.Tag{ID: "t1", Name: "go", Order: 1}); err != nil {
					return err
				}
				return tx.AddIgnoredURLs("https://dead.example")
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}

			err = s.View(func(tx storage.Tx) error {
				folders, _ := tx.Folders()
				if len(folders) != 1 || folders[0].Name != "Dev" {
					t.Errorf("folders = %v", folders)
				}
				rules, _ := tx.Rules()
				if len(rules) != 1 || rules[0].Type != model.RuleDomain {
					t.Errorf("rules = %v", rules)
				}
				tags, _ := tx.Tags()
				if len(tags) != 1 || tags[0].Name != "go" {
					t.Errorf("tags = %v", tags)
				}
				ignored, _ := tx.IgnoredURLs()
				if len(ignored) != 1 || ignored[0] != "https://dead.example" {
					t.Errorf("ignored = %v", ignored)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("view: %v", err)
			}
		})
	}
}

func TestStore_DeleteBookmarks(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(func(tx storage.Tx) error {
				return tx.PutBookmarks(
					model.Bookmark{ID: "b1", URL: "https://a.example"},
					model.Bookmark{ID: "b2", URL: "https://b.example"},
					model.Bookmark{ID: "b3", URL: "https://c.example"},
				)
			})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}

			err = s.Update(func(tx storage.Tx) error {
				return tx.DeleteBookmarks("b1", "b3")
			})
			if err != nil {
				t.Fatalf("delete: %v", err)
			}

			got, _ := storage.LoadBookmarks(s)
			if len(got) != 1 || got[0].ID != "b2" {
				t.Errorf("remaining = %v, want only b2", got)
			}
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoard.db")

	s, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = s.Update(func(tx storage.Tx) error {
		return tx.PutBookmarks(model.Bookmark{ID: "b1", URL: "https://a.example", Status: model.StatusMatched})
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	reopened, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := storage.LoadBookmarks(reopened)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Status != model.StatusMatched {
		t.Errorf("got %v", got)
	}
}
