// Package corpus maintains incrementally-updated corpus statistics and
// derives TF-IDF term weights and PMI term associations from them.
package corpus

import "strings"

// DefaultWindow is the sliding-window size used for cooccurrence counting.
const DefaultWindow = 5

// Counter counts occurrences per string key. Looking up an absent key
// returns 0; callers never need to check for presence before reading.
type Counter map[string]int

// Get returns the count for key, 0 if the key has never been added.
func (c Counter) Get(key string) int { return c[key] }

// Add increments the count for key by n.
func (c Counter) Add(key string, n int) { c[key] += n }

// Total returns the sum of all counts.
func (c Counter) Total() int {
	var t int
	for _, n := range c {
		t += n
	}
	return t
}

// PairKey returns the canonical key for an unordered token pair: the two
// tokens sorted lexicographically and joined with a tab. PairKey(a, b) and
// PairKey(b, a) are always equal, so each pair is counted once.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\t" + b
}

// SplitPair is the inverse of PairKey.
func SplitPair(key string) (a, b string) {
	i := strings.IndexByte(key, '\t')
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}

// Stats holds mutable corpus-wide counters, updated incrementally as
// documents are observed.
//
// DocFreq counts documents containing a token (at most once per document),
// so DocFreq[t] <= Docs for every token t. TokenFreq counts raw token
// occurrences and can exceed Docs. Cooccur counts windowed cooccurrences
// keyed by PairKey.
type Stats struct {
	Docs      int
	DocFreq   Counter
	TokenFreq Counter
	Cooccur   Counter

	window     int
	tokenTotal int
	coTotal    int
}

// NewStats returns empty statistics with the given cooccurrence window.
// A window <= 0 selects DefaultWindow.
func NewStats(window int) *Stats {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Stats{
		DocFreq:   make(Counter),
		TokenFreq: make(Counter),
		Cooccur:   make(Counter),
		window:    window,
	}
}

// Restore rebuilds a Stats from previously persisted counters, recomputing
// the running totals that are not part of the snapshot format.
func Restore(docs int, docFreq, tokenFreq, cooccur Counter, window int) *Stats {
	s := NewStats(window)
	s.Docs = docs
	if docFreq != nil {
		s.DocFreq = docFreq
	}
	if tokenFreq != nil {
		s.TokenFreq = tokenFreq
	}
	if cooccur != nil {
		s.Cooccur = cooccur
	}
	s.tokenTotal = s.TokenFreq.Total()
	s.coTotal = s.Cooccur.Total()
	return s
}

// Observe folds one document's token sequence into the statistics:
// increments the document count, the document frequency of each distinct
// token, the raw frequency of every occurrence, and the windowed
// cooccurrence count of every pair within the sliding window.
func (s *Stats) Observe(tokens []string) {
	s.Docs++
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		s.DocFreq.Add(tok, 1)
	}
	for i := range tokens {
		s.TokenFreq.Add(tokens[i], 1)
		s.tokenTotal++
		end := i + 1 + s.window
		if end > len(tokens) {
			end = len(tokens)
		}
		for j := i + 1; j < end; j++ {
			s.Cooccur.Add(PairKey(tokens[i], tokens[j]), 1)
			s.coTotal++
		}
	}
}

// Reset discards all counters.
func (s *Stats) Reset() {
	s.Docs = 0
	s.DocFreq = make(Counter)
	s.TokenFreq = make(Counter)
	s.Cooccur = make(Counter)
	s.tokenTotal = 0
	s.coTotal = 0
}

// Window returns the cooccurrence window size.
func (s *Stats) Window() int { return s.window }
