// Package store persists a learner's corpus statistics, document index and
// append-only ingestion log.
//
// Two backends share one contract: the reference FileBackend keeps three
// artifacts in a directory (meta.json, index.json, memory.jsonl) and the
// SQLiteBackend keeps the same state in a single database file. Both assume
// a single writer for the lifetime of the owning process; there is no file
// locking and no cross-process coordination.
package store

import "github.com/liliang-cn/lexmem/pkg/corpus"

// Doc is one indexed document: its raw text plus its ordered tag list.
// Tags double as the persistence encoding for scaffold relationships
// (label:<l>, question, answer, answer_id:<id>, question_id:<id>).
type Doc struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// LogRecord is one line of the append-only ingestion log. TS is seconds
// since the Unix epoch.
type LogRecord struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags"`
	TS   float64  `json:"ts"`
}

// Snapshot is the full persisted state: the corpus statistics and the
// document index. Both are rewritten wholesale on every mutation.
type Snapshot struct {
	Stats *corpus.Stats
	Docs  map[string]Doc
}

// Backend loads and persists learner state.
//
// Load never fails on absent state: a store that has not been written yet
// yields an empty snapshot. SaveSnapshot replaces the persisted statistics
// and index with the given snapshot. AppendLog appends one record to the
// ingestion log, which is audit-only and never replayed by Load. Clear
// removes all persisted state, tolerating absence.
type Backend interface {
	Load() (*Snapshot, error)
	SaveSnapshot(snap *Snapshot) error
	AppendLog(rec LogRecord) error
	Clear() error
	Close() error
}
