package learner

import (
	"sort"
	"strings"
)

// labelTagPrefix encodes a document's label in its persisted tag list.
const labelTagPrefix = "label:"

// Classifier layers nearest-neighbor text classification on the base
// learner. Labels are persisted as "label:<l>" tags on documents; the
// in-memory label maps are a projection of those tags, rebuilt at load and
// never stored separately.
type Classifier struct {
	*Learner
	labels   map[string]map[string]struct{}
	docLabel map[string]string
}

// LabelScore is a predicted label with its accumulated similarity score.
type LabelScore struct {
	Label string
	Score float64
}

// Sample is one (text, label) pair for Evaluate.
type Sample struct {
	Text  string
	Label string
}

// OpenClassifier loads a learner with the classifier scaffold, rebuilding
// label state from the tags in the loaded index.
func OpenClassifier(cfg Config) (*Classifier, error) {
	l, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	c := &Classifier{Learner: l}
	c.rebuild()
	return c, nil
}

func (c *Classifier) rebuild() {
	c.labels = make(map[string]map[string]struct{})
	c.docLabel = make(map[string]string)
	for id, doc := range c.docs {
		for _, tag := range doc.Tags {
			if label, ok := strings.CutPrefix(tag, labelTagPrefix); ok {
				c.setLabel(id, label)
			}
		}
	}
}

func (c *Classifier) setLabel(docID, label string) {
	if c.labels[label] == nil {
		c.labels[label] = make(map[string]struct{})
	}
	c.labels[label][docID] = struct{}{}
	c.docLabel[docID] = label
}

// Train labels an existing document. The label tag is appended to the
// document's persisted tag list if not already present, then the snapshot
// is rewritten.
func (c *Classifier) Train(docID, label string) error {
	doc, ok := c.docs[docID]
	if !ok {
		return ErrNotFound
	}
	c.setLabel(docID, label)
	tag := labelTagPrefix + label
	if !hasTag(doc.Tags, tag) {
		doc.Tags = append(doc.Tags, tag)
		c.docs[docID] = doc
	}
	return c.save()
}

// Predict scores the query against every labeled document and accumulates
// positive cosine similarities per label: similarity-weighted voting over
// the full labeled set, not a fixed-k neighborhood. Labels are returned by
// score descending (ties by label ascending), truncated to topk. If no
// labeled document has positive similarity the result is empty.
func (c *Classifier) Predict(text string, topk int) []LabelScore {
	qvec := c.embedder.EmbedText(text)
	totals := make(map[string]float64)
	for docID, label := range c.docLabel {
		doc, ok := c.docs[docID]
		if !ok {
			continue
		}
		sim := qvec.Cosine(c.embedder.EmbedText(doc.Text))
		if sim > 0 {
			totals[label] += sim
		}
	}
	scored := make([]LabelScore, 0, len(totals))
	for label, score := range totals {
		scored = append(scored, LabelScore{Label: label, Score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Label < scored[j].Label
	})
	if topk >= 0 && topk < len(scored) {
		scored = scored[:topk]
	}
	return scored
}

// Evaluate returns the fraction of samples whose top-1 prediction matches
// the true label. An empty sample set scores 0.0.
func (c *Classifier) Evaluate(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	correct := 0
	for _, s := range samples {
		preds := c.Predict(s.Text, 1)
		if len(preds) > 0 && preds[0].Label == s.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

// Labels returns the known labels with their document counts.
func (c *Classifier) Labels() map[string]int {
	out := make(map[string]int, len(c.labels))
	for label, ids := range c.labels {
		out[label] = len(ids)
	}
	return out
}

// Clear resets the scaffold state along with the base learner state.
func (c *Classifier) Clear() error {
	if err := c.Learner.Clear(); err != nil {
		return err
	}
	c.labels = make(map[string]map[string]struct{})
	c.docLabel = make(map[string]string)
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
