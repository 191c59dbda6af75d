package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/liliang-cn/lexmem/pkg/corpus"
)

func TestFileBackendArtifacts(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, corpus.DefaultWindow)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	defer b.Close()

	if err := b.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := b.AppendLog(LogRecord{ID: "a", Text: "t", Tags: []string{}, TS: 1}); err != nil {
		t.Fatalf("AppendLog() error = %v", err)
	}

	for _, name := range []string{metaFile, indexFile, memoryFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}
	// No leftover temp files from the rename dance.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("store dir has %d entries, want 3: %v", len(entries), entries)
	}

	if err := b.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, name := range []string{metaFile, indexFile, memoryFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("artifact %s not removed by Clear", name)
		}
	}
}

func TestFileBackendLogIsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, corpus.DefaultWindow)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	defer b.Close()

	records := []LogRecord{
		{ID: "1", Text: "first", Tags: []string{"x"}, TS: 1.5},
		{ID: "2", Text: "second", Tags: []string{}, TS: 2.5},
		{ID: "3", Text: "third", Tags: []string{}, TS: 3.5},
	}
	for _, rec := range records {
		if err := b.AppendLog(rec); err != nil {
			t.Fatalf("AppendLog() error = %v", err)
		}
	}
	// Snapshot writes must not touch the log.
	if err := b.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, memoryFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var got []LogRecord
	for scanner.Scan() {
		var rec LogRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("log line is not valid JSON: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != len(records) {
		t.Fatalf("log has %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i].ID != records[i].ID || got[i].Text != records[i].Text || got[i].TS != records[i].TS {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestFileBackendCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, metaFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := NewFileBackend(dir, corpus.DefaultWindow)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	defer b.Close()

	_, err = b.Load()
	if err == nil {
		t.Fatal("Load() on corrupt meta.json should fail")
	}
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("Load() error = %v, want ErrCorruptSnapshot", err)
	}
}

func TestFileBackendClosed(t *testing.T) {
	b, err := NewFileBackend(t.TempDir(), corpus.DefaultWindow)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := b.Load(); err == nil {
		t.Error("Load() after Close should fail")
	}
	if err := b.SaveSnapshot(sampleSnapshot()); err == nil {
		t.Error("SaveSnapshot() after Close should fail")
	}
}
