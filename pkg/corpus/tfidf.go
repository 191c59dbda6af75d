package corpus

import (
	"math"

	"github.com/liliang-cn/lexmem/pkg/sparse"
)

// Embedder derives sparse TF-IDF vectors from the current corpus
// statistics. It holds no state of its own: vectors are recomputed on every
// call so they always reflect the statistics at query time. That keeps
// embeddings fresh as the corpus grows, at the cost of re-weighting the
// full token sequence per call.
type Embedder struct {
	stats *Stats
}

// NewEmbedder returns an embedder reading from stats.
func NewEmbedder(stats *Stats) *Embedder {
	return &Embedder{stats: stats}
}

// Embed returns the TF-IDF vector for a token sequence. An empty sequence
// yields an empty vector rather than dividing by zero.
func (e *Embedder) Embed(tokens []string) sparse.Vector {
	if len(tokens) == 0 {
		return sparse.Vector{}
	}
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	vec := make(sparse.Vector, len(tf))
	n := float64(len(tokens))
	for tok, f := range tf {
		// idf with +1 smoothing; strictly positive, so weights are
		// non-negative.
		idf := math.Log(float64(1+e.stats.Docs)/float64(1+e.stats.DocFreq.Get(tok))) + 1
		vec[tok] = float64(f) / n * idf
	}
	return vec
}

// EmbedText tokenizes text and returns its TF-IDF vector.
func (e *Embedder) EmbedText(text string) sparse.Vector {
	return e.Embed(sparse.Tokenize(text))
}
