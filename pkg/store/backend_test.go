package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/liliang-cn/lexmem/pkg/corpus"
)

// openBackends returns a named constructor per backend so shared contract
// tests run against both implementations.
func openBackends(t *testing.T) map[string]func() Backend {
	t.Helper()
	fileDir := t.TempDir()
	sqliteDir := t.TempDir()
	return map[string]func() Backend{
		"file": func() Backend {
			b, err := NewFileBackend(fileDir, corpus.DefaultWindow)
			if err != nil {
				t.Fatalf("NewFileBackend() error = %v", err)
			}
			return b
		},
		"sqlite": func() Backend {
			b, err := NewSQLiteBackend(filepath.Join(sqliteDir, "test.db"), corpus.DefaultWindow)
			if err != nil {
				t.Fatalf("NewSQLiteBackend() error = %v", err)
			}
			return b
		},
	}
}

func sampleSnapshot() *Snapshot {
	stats := corpus.NewStats(corpus.DefaultWindow)
	stats.Observe([]string{"red", "fruit", "sweet"})
	stats.Observe([]string{"neural", "networks"})
	return &Snapshot{
		Stats: stats,
		Docs: map[string]Doc{
			"doc-1": {Text: "red fruit sweet", Tags: []string{"food"}},
			"doc-2": {Text: "neural networks", Tags: []string{}},
		},
	}
}

func TestBackendLoadEmpty(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			b := open()
			defer b.Close()

			snap, err := b.Load()
			if err != nil {
				t.Fatalf("Load() on empty store error = %v", err)
			}
			if snap.Stats.Docs != 0 {
				t.Errorf("Docs = %d, want 0", snap.Stats.Docs)
			}
			if len(snap.Docs) != 0 {
				t.Errorf("Docs index = %v, want empty", snap.Docs)
			}
		})
	}
}

func TestBackendRoundTrip(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleSnapshot()

			b := open()
			if err := b.SaveSnapshot(want); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}
			if err := b.AppendLog(LogRecord{ID: "doc-1", Text: "red fruit sweet", Tags: []string{"food"}, TS: 1700000000.5}); err != nil {
				t.Fatalf("AppendLog() error = %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			b = open()
			defer b.Close()
			got, err := b.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Stats.Docs != want.Stats.Docs {
				t.Errorf("Docs = %d, want %d", got.Stats.Docs, want.Stats.Docs)
			}
			if !reflect.DeepEqual(got.Stats.DocFreq, want.Stats.DocFreq) {
				t.Errorf("DocFreq = %v, want %v", got.Stats.DocFreq, want.Stats.DocFreq)
			}
			if !reflect.DeepEqual(got.Stats.TokenFreq, want.Stats.TokenFreq) {
				t.Errorf("TokenFreq = %v, want %v", got.Stats.TokenFreq, want.Stats.TokenFreq)
			}
			if !reflect.DeepEqual(got.Stats.Cooccur, want.Stats.Cooccur) {
				t.Errorf("Cooccur = %v, want %v", got.Stats.Cooccur, want.Stats.Cooccur)
			}
			if !reflect.DeepEqual(got.Docs, want.Docs) {
				t.Errorf("Docs index = %v, want %v", got.Docs, want.Docs)
			}
		})
	}
}

func TestBackendSnapshotOverwrite(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			b := open()
			defer b.Close()

			if err := b.SaveSnapshot(sampleSnapshot()); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}
			smaller := &Snapshot{
				Stats: corpus.NewStats(corpus.DefaultWindow),
				Docs:  map[string]Doc{"only": {Text: "x", Tags: []string{}}},
			}
			smaller.Stats.Observe([]string{"x"})
			if err := b.SaveSnapshot(smaller); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}

			got, err := b.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(got.Docs) != 1 {
				t.Errorf("index not overwritten: %v", got.Docs)
			}
			if got.Stats.DocFreq.Get("red") != 0 {
				t.Error("stats from previous snapshot survived the overwrite")
			}
		})
	}
}

func TestBackendClear(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			b := open()
			defer b.Close()

			if err := b.SaveSnapshot(sampleSnapshot()); err != nil {
				t.Fatalf("SaveSnapshot() error = %v", err)
			}
			if err := b.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			// Clearing an already-empty store must not fail.
			if err := b.Clear(); err != nil {
				t.Fatalf("second Clear() error = %v", err)
			}

			snap, err := b.Load()
			if err != nil {
				t.Fatalf("Load() after Clear error = %v", err)
			}
			if snap.Stats.Docs != 0 || len(snap.Docs) != 0 {
				t.Errorf("state survived Clear: %+v", snap)
			}
		})
	}
}
