// Package learner is an incremental text indexing and retrieval engine. It
// maintains corpus-wide statistics over ingested documents, derives sparse
// TF-IDF vectors on demand, scores term associations with positive PMI, and
// answers similarity queries by exhaustive cosine scan over the index.
//
// A Learner is single-threaded and synchronous: every operation runs to
// completion or fails, and the store directory is assumed to be owned by
// exactly one instance for its process lifetime. Classifier and QA extend
// the same core as distinct types; see OpenClassifier and OpenQA.
package learner

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/liliang-cn/lexmem/internal/logging"
	"github.com/liliang-cn/lexmem/pkg/corpus"
	"github.com/liliang-cn/lexmem/pkg/sparse"
	"github.com/liliang-cn/lexmem/pkg/store"
)

// Learner is the base engine with no scaffold.
type Learner struct {
	log      logging.Logger
	backend  store.Backend
	stats    *corpus.Stats
	embedder *corpus.Embedder
	graph    *corpus.Graph
	docs     map[string]store.Doc
}

// Result is one retrieval match.
type Result struct {
	ID    string
	Score float64
	Doc   store.Doc
}

// DocScore is a retrieval match in an Explanation, with the score rounded
// for presentation.
type DocScore struct {
	ID    string   `json:"id"`
	Score float64  `json:"score"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
}

// Explanation relates a query's tokens, their strongest PMI associations,
// and the top retrieval results.
type Explanation struct {
	QueryTokens  []string       `json:"query_tokens"`
	Associations []corpus.Assoc `json:"associations"`
	Docs         []DocScore     `json:"docs"`
}

// Open loads (or starts empty) a learner bound to cfg.Dir.
func Open(cfg Config) (*Learner, error) {
	cfg.applyDefaults()
	backend, err := cfg.openBackend()
	if err != nil {
		return nil, err
	}
	snap, err := backend.Load()
	if err != nil {
		backend.Close()
		return nil, err
	}
	l := &Learner{
		log:     cfg.Logger.With("dir", cfg.Dir),
		backend: backend,
		stats:   snap.Stats,
		docs:    snap.Docs,
	}
	l.embedder = corpus.NewEmbedder(l.stats)
	l.graph = corpus.NewGraph(l.stats)
	l.log.Debug("store loaded", "docs", l.stats.Docs)
	return l, nil
}

// AddDocs ingests texts with optional per-text tag lists and returns the
// assigned document ids in order. A nil tags slice means no tags for any
// text; otherwise it must have one entry per text. Statistics are updated
// and a log record appended per document; the snapshot is rewritten once
// after the batch.
func (l *Learner) AddDocs(texts []string, tags [][]string) ([]string, error) {
	if tags == nil {
		tags = make([][]string, len(texts))
	}
	if len(tags) != len(texts) {
		return nil, ErrTagCount
	}
	ids := make([]string, 0, len(texts))
	for i, text := range texts {
		id := uuid.NewString()
		l.stats.Observe(sparse.Tokenize(text))
		docTags := append([]string(nil), tags[i]...)
		if docTags == nil {
			docTags = []string{}
		}
		rec := store.LogRecord{
			ID:   id,
			Text: text,
			Tags: docTags,
			TS:   float64(time.Now().UnixNano()) / 1e9,
		}
		if err := l.backend.AppendLog(rec); err != nil {
			return nil, err
		}
		l.docs[id] = store.Doc{Text: text, Tags: docTags}
		ids = append(ids, id)
	}
	if err := l.save(); err != nil {
		return nil, err
	}
	l.log.Debug("docs added", "count", len(ids), "total", l.stats.Docs)
	return ids, nil
}

// Retrieve ranks every indexed document against the query by cosine
// similarity over on-the-fly TF-IDF vectors. Matches with similarity <= 0
// are dropped. Order is score descending, ties broken by id ascending, so
// rankings are stable across runs and reloads.
func (l *Learner) Retrieve(query string, topk int) []Result {
	qvec := l.embedder.EmbedText(query)
	var scored []Result
	for id, doc := range l.docs {
		sim := qvec.Cosine(l.embedder.EmbedText(doc.Text))
		if sim > 0 {
			scored = append(scored, Result{ID: id, Score: sim, Doc: doc})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if topk >= 0 && topk < len(scored) {
		scored = scored[:topk]
	}
	return scored
}

// Explain returns the query's tokens, the union of each distinct query
// token's top-k PMI associations (keeping the maximum score per partner),
// and the top-k retrieval results with scores rounded to 4 decimals.
func (l *Learner) Explain(query string, topk int) Explanation {
	tokens := sparse.Tokenize(query)
	best := make(map[string]float64)
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		for _, a := range l.graph.Top(tok, topk) {
			if cur, ok := best[a.Term]; !ok || a.Score > cur {
				best[a.Term] = a.Score
			}
		}
	}
	assoc := make([]corpus.Assoc, 0, len(best))
	for term, score := range best {
		assoc = append(assoc, corpus.Assoc{Term: term, Score: score})
	}
	sort.Slice(assoc, func(i, j int) bool {
		if assoc[i].Score != assoc[j].Score {
			return assoc[i].Score > assoc[j].Score
		}
		return assoc[i].Term < assoc[j].Term
	})
	if topk >= 0 && topk < len(assoc) {
		assoc = assoc[:topk]
	}
	results := l.Retrieve(query, topk)
	docs := make([]DocScore, 0, len(results))
	for _, r := range results {
		docs = append(docs, DocScore{
			ID:    r.ID,
			Score: math.Round(r.Score*1e4) / 1e4,
			Text:  r.Doc.Text,
			Tags:  r.Doc.Tags,
		})
	}
	return Explanation{QueryTokens: tokens, Associations: assoc, Docs: docs}
}

// ConceptEmbed returns the key-wise average of the texts' TF-IDF vectors.
// No texts yields an empty vector.
func (l *Learner) ConceptEmbed(texts []string) sparse.Vector {
	if len(texts) == 0 {
		return sparse.Vector{}
	}
	acc := sparse.Vector{}
	for _, text := range texts {
		acc = acc.Add(l.embedder.EmbedText(text))
	}
	n := float64(len(texts))
	for k := range acc {
		acc[k] /= n
	}
	return acc
}

// Associations returns the top-k PMI neighbors of a single term.
func (l *Learner) Associations(term string, k int) []corpus.Assoc {
	return l.graph.Top(term, k)
}

// GetDoc returns the indexed document for id.
func (l *Learner) GetDoc(id string) (store.Doc, bool) {
	doc, ok := l.docs[id]
	return doc, ok
}

// AllDocs returns a copy of the document index.
func (l *Learner) AllDocs() map[string]store.Doc {
	out := make(map[string]store.Doc, len(l.docs))
	for id, doc := range l.docs {
		out[id] = doc
	}
	return out
}

// Count returns the number of ingested documents.
func (l *Learner) Count() int { return l.stats.Docs }

// Stats exposes the live corpus statistics for read-only use.
func (l *Learner) Stats() *corpus.Stats { return l.stats }

// Clear resets all in-memory state and removes all persisted artifacts.
// Already-absent artifacts are not an error.
func (l *Learner) Clear() error {
	l.stats.Reset()
	l.docs = make(map[string]store.Doc)
	if err := l.backend.Clear(); err != nil {
		return err
	}
	l.log.Info("store cleared")
	return nil
}

// Close releases the backend. The learner must not be used afterwards.
func (l *Learner) Close() error { return l.backend.Close() }

// save rewrites the statistics and index snapshots.
func (l *Learner) save() error {
	return l.backend.SaveSnapshot(&store.Snapshot{Stats: l.stats, Docs: l.docs})
}
