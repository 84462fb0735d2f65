package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/linkhoard/linkhoard/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if necessary) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema. Bookmarks and rules are ordered by
// rowid, i.e. insert order; upserts keep the rowid so import order survives
// edits.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			rule_tags TEXT NOT NULL DEFAULT '[]',
			original_folder TEXT NOT NULL DEFAULT '',
			new_folder TEXT NOT NULL DEFAULT '',
			add_date INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'unchanged'
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY NOT NULL,
			type TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			target_folder TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS ignored_urls (
			url TEXT PRIMARY KEY NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// View runs fn inside a transaction that is always rolled back.
func (s *SQLiteStore) View(fn func(Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(&sqlTx{tx: tx})
}

// Update runs fn inside a transaction committed only on success.
func (s *SQLiteStore) Update(fn func(Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type sqlTx struct {
	tx *sql.Tx
}

const bookmarkColumns = "id, url, title, tags, rule_tags, original_folder, new_folder, add_date, status"

func scanBookmark(rows *sql.Rows) (model.Bookmark, error) {
	var b model.Bookmark
	var tagsJSON, ruleTagsJSON, status string

	if err := rows.Scan(
		&b.ID, &b.URL, &b.Title, &tagsJSON, &ruleTagsJSON,
		&b.OriginalFolder, &b.NewFolder, &b.AddDate, &status,
	); err != nil {
		return b, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		b.Tags = nil
	}
	if err := json.Unmarshal([]byte(ruleTagsJSON), &b.RuleTags); err != nil {
		b.RuleTags = nil
	}
	b.Status = model.Status(status)
	if b.Status == "" {
		b.Status = model.StatusUnchanged
	}

	return b, nil
}

func (t *sqlTx) queryBookmarks(query string, args ...any) ([]model.Bookmark, error) {
	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *sqlTx) Bookmarks() ([]model.Bookmark, error) {
	return t.queryBookmarks("SELECT " + bookmarkColumns + " FROM bookmarks ORDER BY rowid")
}

func (t *sqlTx) BookmarkByID(id string) (model.Bookmark, bool, error) {
	rows, err := t.queryBookmarks("SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return model.Bookmark{}, false, err
	}
	if len(rows) == 0 {
		return model.Bookmark{}, false, nil
	}
	return rows[0], true, nil
}

func (t *sqlTx) BookmarksByIDs(ids []string) ([]model.Bookmark, error) {
	var out []model.Bookmark
	for _, id := range ids {
		b, ok, err := t.BookmarkByID(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *sqlTx) PutBookmarks(rows ...model.Bookmark) error {
	stmt, err := t.tx.Prepare(`
		INSERT INTO bookmarks (id, url, title, tags, rule_tags, original_folder, new_folder, add_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			tags = excluded.tags,
			rule_tags = excluded.rule_tags,
			original_folder = excluded.original_folder,
			new_folder = excluded.new_folder,
			add_date = excluded.add_date,
			status = excluded.status
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range rows {
		tagsJSON := marshalTags(b.Tags)
		ruleTagsJSON := marshalTags(b.RuleTags)
		status := b.Status
		if status == "" {
			status = model.StatusUnchanged
		}
		if _, err := stmt.Exec(
			b.ID, b.URL, b.Title, tagsJSON, ruleTagsJSON,
			b.OriginalFolder, b.NewFolder, b.AddDate, string(status),
		); err != nil {
			return err
		}
	}
	return nil
}

func marshalTags(ts model.TagSet) string {
	if len(ts) == 0 {
		return "[]"
	}
	data, err := json.Marshal(ts)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (t *sqlTx) DeleteBookmarks(ids ...string) error {
	return t.deleteByID("bookmarks", ids)
}

func (t *sqlTx) Rules() ([]model.Rule, error) {
	rows, err := t.tx.Query("SELECT id, type, value, target_folder, tags FROM rules ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rule
	for rows.Next() {
		var r model.Rule
		var ruleType string
		if err := rows.Scan(&r.ID, &ruleType, &r.Value, &r.TargetFolder, &r.Tags); err != nil {
			return nil, err
		}
		r.Type = model.RuleType(ruleType)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *sqlTx) PutRules(rows ...model.Rule) error {
	stmt, err := t.tx.Prepare(`
		INSERT INTO rules (id, type, value, target_folder, tags)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			value = excluded.value,
			target_folder = excluded.target_folder,
			tags = excluded.tags
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, string(r.Type), r.Value, r.TargetFolder, r.Tags); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) DeleteRules(ids ...string) error {
	return t.deleteByID("rules", ids)
}

func (t *sqlTx) Folders() ([]model.Folder, error) {
	rows, err := t.tx.Query("SELECT id, name, color, sort_order FROM folders ORDER BY sort_order, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Folder
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &f.Order); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (t *sqlTx) PutFolders(rows ...model.Folder) error {
	return t.putTaxonomy("folders", func(stmt *sql.Stmt) error {
		for _, f := range rows {
			if _, err := stmt.Exec(f.ID, f.Name, f.Color, f.Order); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *sqlTx) DeleteFolders(ids ...string) error {
	return t.deleteByID("folders", ids)
}

func (t *sqlTx) Tags() ([]model.Tag, error) {
	rows, err := t.tx.Query("SELECT id, name, color, sort_order FROM tags ORDER BY sort_order, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var tg model.Tag
		if err := rows.Scan(&tg.ID, &tg.Name, &tg.Color, &tg.Order); err != nil {
			return nil, err
		}
		out = append(out, tg)
	}
	return out, rows.Err()
}

func (t *sqlTx) PutTags(rows ...model.Tag) error {
	return t.putTaxonomy("tags", func(stmt *sql.Stmt) error {
		for _, tg := range rows {
			if _, err := stmt.Exec(tg.ID, tg.Name, tg.Color, tg.Order); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *sqlTx) DeleteTags(ids ...string) error {
	return t.deleteByID("tags", ids)
}

func (t *sqlTx) putTaxonomy(table string, exec func(*sql.Stmt) error) error {
	stmt, err := t.tx.Prepare(`
		INSERT INTO ` + table + ` (id, name, color, sort_order)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			sort_order = excluded.sort_order
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return exec(stmt)
}

func (t *sqlTx) deleteByID(table string, ids []string) error {
	stmt, err := t.tx.Prepare("DELETE FROM " + table + " WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) IgnoredURLs() ([]string, error) {
	rows, err := t.tx.Query("SELECT url FROM ignored_urls ORDER BY url")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, rows.Err()
}

func (t *sqlTx) AddIgnoredURLs(urls ...string) error {
	stmt, err := t.tx.Prepare("INSERT OR IGNORE INTO ignored_urls (url) VALUES (?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, url := range urls {
		if _, err := stmt.Exec(url); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) RemoveIgnoredURLs(urls ...string) error {
	stmt, err := t.tx.Prepare("DELETE FROM ignored_urls WHERE url = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, url := range urls {
		if _, err := stmt.Exec(url); err != nil {
			return err
		}
	}
	return nil
}
