package learner

import "testing"

// sentiment training set used across classifier tests.
var sentimentDocs = []struct {
	text  string
	label string
}{
	{"I love this movie, it's fantastic!", "positive"},
	{"What a waste of time, terrible plot.", "negative"},
	{"The acting was superb and the story was gripping.", "positive"},
	{"I would not recommend this to anyone.", "negative"},
	{"A truly heartwarming and beautiful film.", "positive"},
	{"Simply awful, I want my money back.", "negative"},
}

func trainSentiment(t *testing.T, c *Classifier) {
	t.Helper()
	for _, d := range sentimentDocs {
		ids, err := c.AddDocs([]string{d.text}, nil)
		if err != nil {
			t.Fatalf("AddDocs() error = %v", err)
		}
		if err := c.Train(ids[0], d.label); err != nil {
			t.Fatalf("Train() error = %v", err)
		}
	}
}

func TestClassifierPredict(t *testing.T) {
	c, err := OpenClassifier(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenClassifier() error = %v", err)
	}
	defer c.Close()
	trainSentiment(t, c)

	preds := c.Predict("a truly heartwarming film", 1)
	if len(preds) != 1 {
		t.Fatalf("Predict() returned %d labels, want 1", len(preds))
	}
	if preds[0].Label != "positive" {
		t.Errorf("Predict() top label = %s, want positive", preds[0].Label)
	}
	if preds[0].Score <= 0 {
		t.Errorf("Predict() score = %v, want > 0", preds[0].Score)
	}

	// No shared vocabulary at all: empty result, not a zero-scored label.
	if got := c.Predict("zzzqqq", 3); len(got) != 0 {
		t.Errorf("Predict() of disjoint text = %v, want empty", got)
	}
}

func TestClassifierTrainUnknownDoc(t *testing.T) {
	c, err := OpenClassifier(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenClassifier() error = %v", err)
	}
	defer c.Close()

	if err := c.Train("no-such-doc", "positive"); err != ErrNotFound {
		t.Errorf("Train() error = %v, want ErrNotFound", err)
	}
}

func TestClassifierTrainIdempotentTag(t *testing.T) {
	c, err := OpenClassifier(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenClassifier() error = %v", err)
	}
	defer c.Close()

	ids, err := c.AddDocs([]string{"great film"}, nil)
	if err != nil {
		t.Fatalf("AddDocs() error = %v", err)
	}
	if err := c.Train(ids[0], "positive"); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if err := c.Train(ids[0], "positive"); err != nil {
		t.Fatalf("second Train() error = %v", err)
	}
	doc, _ := c.GetDoc(ids[0])
	count := 0
	for _, tag := range doc.Tags {
		if tag == "label:positive" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("label tag appended %d times, want 1", count)
	}
}

func TestClassifierStateRebuiltFromTags(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	c, err := OpenClassifier(cfg)
	if err != nil {
		t.Fatalf("OpenClassifier() error = %v", err)
	}
	trainSentiment(t, c)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenClassifier(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	labels := reopened.Labels()
	if labels["positive"] != 3 || labels["negative"] != 3 {
		t.Errorf("Labels() after reload = %v", labels)
	}
	preds := reopened.Predict("a truly heartwarming film", 1)
	if len(preds) != 1 || preds[0].Label != "positive" {
		t.Errorf("Predict() after reload = %v", preds)
	}
}

func TestClassifierEvaluate(t *testing.T) {
	c, err := OpenClassifier(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenClassifier() error = %v", err)
	}
	defer c.Close()

	// Empty test set is the boundary case: 0.0, no error.
	if got := c.Evaluate(nil); got != 0.0 {
		t.Errorf("Evaluate(nil) = %v, want 0.0", got)
	}

	trainSentiment(t, c)
	acc := c.Evaluate([]Sample{
		{Text: "a truly heartwarming film", Label: "positive"},
		{Text: "what a waste of time", Label: "negative"},
	})
	if acc != 1.0 {
		t.Errorf("Evaluate() = %v, want 1.0", acc)
	}
}
