package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/liliang-cn/lexmem/pkg/corpus"
)

// Counter kinds in the counters table.
const (
	kindDocFreq   = "df"
	kindTokenFreq = "tf"
	kindCooccur   = "co"
)

// SQLiteBackend keeps the same state as FileBackend in a single SQLite
// database file. Snapshot saves run as one transaction that deletes and
// reinserts the statistics and index rows, preserving the whole-snapshot
// overwrite semantics; the log table is insert-only.
type SQLiteBackend struct {
	db     *sql.DB
	window int
	closed bool
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteBackend(path string, window int) (*SQLiteBackend, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapError("open", err)
	}
	// Single writer by design; one connection avoids table lock churn.
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS counters (
		kind TEXT NOT NULL,
		key TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (kind, key)
	);
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		tags TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		text TEXT NOT NULL,
		tags TEXT NOT NULL,
		ts REAL NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, wrapError("open", err)
	}
	return &SQLiteBackend{db: db, window: window}, nil
}

// Load reads the persisted statistics and index. A freshly created
// database reads as empty state.
func (s *SQLiteBackend) Load() (*Snapshot, error) {
	if s.closed {
		return nil, wrapError("load", ErrClosed)
	}
	var docCount int
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'doc_count'`).Scan(&docCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, wrapError("load", err)
	}
	counters := map[string]corpus.Counter{
		kindDocFreq:   make(corpus.Counter),
		kindTokenFreq: make(corpus.Counter),
		kindCooccur:   make(corpus.Counter),
	}
	rows, err := s.db.Query(`SELECT kind, key, value FROM counters`)
	if err != nil {
		return nil, wrapError("load", err)
	}
	for rows.Next() {
		var kind, key string
		var value int
		if err := rows.Scan(&kind, &key, &value); err != nil {
			rows.Close()
			return nil, wrapError("load", err)
		}
		if c, ok := counters[kind]; ok {
			c[key] = value
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, wrapError("load", err)
	}
	rows.Close()

	docs := make(map[string]Doc)
	rows, err = s.db.Query(`SELECT id, text, tags FROM documents`)
	if err != nil {
		return nil, wrapError("load", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, text, tagsJSON string
		if err := rows.Scan(&id, &text, &tagsJSON); err != nil {
			return nil, wrapError("load", err)
		}
		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, wrapError("load", fmt.Errorf("%w: document %s: %v", ErrCorruptSnapshot, id, err))
		}
		docs[id] = Doc{Text: text, Tags: tags}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("load", err)
	}
	return &Snapshot{
		Stats: corpus.Restore(docCount, counters[kindDocFreq], counters[kindTokenFreq], counters[kindCooccur], s.window),
		Docs:  docs,
	}, nil
}

// SaveSnapshot replaces the statistics and index rows in one transaction.
func (s *SQLiteBackend) SaveSnapshot(snap *Snapshot) error {
	if s.closed {
		return wrapError("save_snapshot", ErrClosed)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return wrapError("save_snapshot", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM meta`, `DELETE FROM counters`, `DELETE FROM documents`} {
		if _, err := tx.Exec(stmt); err != nil {
			return wrapError("save_snapshot", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('doc_count', ?)`, snap.Stats.Docs); err != nil {
		return wrapError("save_snapshot", err)
	}
	insertCounter, err := tx.Prepare(`INSERT INTO counters (kind, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return wrapError("save_snapshot", err)
	}
	defer insertCounter.Close()
	for kind, c := range map[string]corpus.Counter{
		kindDocFreq:   snap.Stats.DocFreq,
		kindTokenFreq: snap.Stats.TokenFreq,
		kindCooccur:   snap.Stats.Cooccur,
	} {
		for key, value := range c {
			if _, err := insertCounter.Exec(kind, key, value); err != nil {
				return wrapError("save_snapshot", err)
			}
		}
	}
	insertDoc, err := tx.Prepare(`INSERT INTO documents (id, text, tags) VALUES (?, ?, ?)`)
	if err != nil {
		return wrapError("save_snapshot", err)
	}
	defer insertDoc.Close()
	for id, doc := range snap.Docs {
		tagsJSON, err := json.Marshal(doc.Tags)
		if err != nil {
			return wrapError("save_snapshot", err)
		}
		if _, err := insertDoc.Exec(id, doc.Text, string(tagsJSON)); err != nil {
			return wrapError("save_snapshot", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapError("save_snapshot", err)
	}
	return nil
}

// AppendLog inserts one record into the insert-only log table.
func (s *SQLiteBackend) AppendLog(rec LogRecord) error {
	if s.closed {
		return wrapError("append_log", ErrClosed)
	}
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return wrapError("append_log", err)
	}
	_, err = s.db.Exec(`INSERT INTO log (id, text, tags, ts) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Text, string(tagsJSON), rec.TS)
	if err != nil {
		return wrapError("append_log", err)
	}
	return nil
}

// Clear deletes all persisted rows, the log included.
func (s *SQLiteBackend) Clear() error {
	if s.closed {
		return wrapError("clear", ErrClosed)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return wrapError("clear", err)
	}
	defer tx.Rollback()
	for _, stmt := range []string{`DELETE FROM meta`, `DELETE FROM counters`, `DELETE FROM documents`, `DELETE FROM log`} {
		if _, err := tx.Exec(stmt); err != nil {
			return wrapError("clear", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapError("clear", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
