package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liliang-cn/lexmem/pkg/corpus"
)

const (
	metaFile   = "meta.json"
	indexFile  = "index.json"
	memoryFile = "memory.jsonl"
)

// metaSnapshot is the on-disk form of the corpus statistics. Cooccurrence
// keys use corpus.PairKey (tab-joined sorted token pair).
type metaSnapshot struct {
	DocCount  int            `json:"doc_count"`
	DocFreq   corpus.Counter `json:"doc_freq"`
	Cooccur   corpus.Counter `json:"cooccurrence"`
	TokenFreq corpus.Counter `json:"token_freq"`
}

// FileBackend is the reference backend: three artifacts in one directory.
// meta.json and index.json are whole-file snapshots replaced on every
// mutation; memory.jsonl is append-only and never rewritten.
type FileBackend struct {
	dir    string
	window int
	closed bool
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend opens (creating if needed) a store directory. The window
// is used to restore statistics loaded from a snapshot.
func NewFileBackend(dir string, window int) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapError("open", err)
	}
	return &FileBackend{dir: dir, window: window}, nil
}

// Load reads the statistics and index snapshots. Missing files are not an
// error; they read as empty state.
func (f *FileBackend) Load() (*Snapshot, error) {
	if f.closed {
		return nil, wrapError("load", ErrClosed)
	}
	snap := &Snapshot{
		Stats: corpus.NewStats(f.window),
		Docs:  make(map[string]Doc),
	}
	metaRaw, err := os.ReadFile(filepath.Join(f.dir, metaFile))
	switch {
	case err == nil:
		var meta metaSnapshot
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return nil, wrapError("load", fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, metaFile, err))
		}
		snap.Stats = corpus.Restore(meta.DocCount, meta.DocFreq, meta.TokenFreq, meta.Cooccur, f.window)
	case !os.IsNotExist(err):
		return nil, wrapError("load", err)
	}
	indexRaw, err := os.ReadFile(filepath.Join(f.dir, indexFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(indexRaw, &snap.Docs); err != nil {
			return nil, wrapError("load", fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, indexFile, err))
		}
	case !os.IsNotExist(err):
		return nil, wrapError("load", err)
	}
	return snap, nil
}

// SaveSnapshot rewrites both snapshot files. Each file is written to a
// temporary sibling and renamed into place so a crash mid-write never
// leaves a truncated snapshot behind.
func (f *FileBackend) SaveSnapshot(snap *Snapshot) error {
	if f.closed {
		return wrapError("save_snapshot", ErrClosed)
	}
	meta := metaSnapshot{
		DocCount:  snap.Stats.Docs,
		DocFreq:   snap.Stats.DocFreq,
		Cooccur:   snap.Stats.Cooccur,
		TokenFreq: snap.Stats.TokenFreq,
	}
	if err := f.writeJSON(metaFile, meta); err != nil {
		return wrapError("save_snapshot", err)
	}
	if err := f.writeJSON(indexFile, snap.Docs); err != nil {
		return wrapError("save_snapshot", err)
	}
	return nil
}

func (f *FileBackend) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(f.dir, name)
	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// AppendLog appends one JSON record line to memory.jsonl.
func (f *FileBackend) AppendLog(rec LogRecord) error {
	if f.closed {
		return wrapError("append_log", ErrClosed)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return wrapError("append_log", err)
	}
	file, err := os.OpenFile(filepath.Join(f.dir, memoryFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return wrapError("append_log", err)
	}
	w := bufio.NewWriter(file)
	w.Write(data)
	w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		file.Close()
		return wrapError("append_log", err)
	}
	if err := file.Close(); err != nil {
		return wrapError("append_log", err)
	}
	return nil
}

// Clear removes all three artifacts. Files that are already absent are
// ignored.
func (f *FileBackend) Clear() error {
	if f.closed {
		return wrapError("clear", ErrClosed)
	}
	for _, name := range []string{metaFile, indexFile, memoryFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return wrapError("clear", err)
		}
	}
	return nil
}

// Close marks the backend closed. The file backend holds no open handles
// between calls.
func (f *FileBackend) Close() error {
	f.closed = true
	return nil
}
