package corpus

import (
	"math"
	"sort"
)

// pmiEpsilon keeps the log argument strictly positive.
const pmiEpsilon = 1e-12

// Assoc is a term associated with another term, scored by positive PMI.
type Assoc struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Graph answers term-association queries over the cooccurrence counters.
// Like the embedder it reads the live statistics and stores nothing.
type Graph struct {
	stats *Stats
}

// NewGraph returns an association graph reading from stats.
func NewGraph(stats *Stats) *Graph {
	return &Graph{stats: stats}
}

// PMI returns the positive pointwise mutual information between two tokens.
// Pairs that never cooccurred score exactly 0, and negative associations
// are clamped to 0.
func (g *Graph) PMI(a, b string) float64 {
	co := g.stats.Cooccur.Get(PairKey(a, b))
	if co == 0 {
		return 0
	}
	pa := float64(g.stats.TokenFreq.Get(a)) / float64(max(1, g.stats.tokenTotal))
	pb := float64(g.stats.TokenFreq.Get(b)) / float64(max(1, g.stats.tokenTotal))
	pab := float64(co) / float64(max(1, g.stats.coTotal))
	val := math.Log2(pab/(pa*pb+pmiEpsilon) + pmiEpsilon)
	return math.Max(0, val)
}

// Top returns up to k associations for term, scored by PMI. Every
// cooccurrence pair containing term is scanned; partners are deduplicated.
// Results are ordered by score descending, ties broken by term ascending so
// the order is deterministic across runs and reloads.
func (g *Graph) Top(term string, k int) []Assoc {
	seen := make(map[string]struct{})
	var scores []Assoc
	for key := range g.stats.Cooccur {
		a, b := SplitPair(key)
		var partner string
		switch term {
		case a:
			partner = b
		case b:
			partner = a
		default:
			continue
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		scores = append(scores, Assoc{Term: partner, Score: g.PMI(term, partner)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Term < scores[j].Term
	})
	if k >= 0 && k < len(scores) {
		scores = scores[:k]
	}
	return scores
}
