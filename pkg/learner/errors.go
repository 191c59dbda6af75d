package learner

import "errors"

var (
	// ErrNotFound is returned when a document id is not in the index.
	ErrNotFound = errors.New("document not found")

	// ErrScaffoldMismatch is returned by runtime surfaces (such as the
	// CLI) when a classifier or QA operation is requested against a store
	// configured with a different scaffold. Within this package the
	// scaffolds are distinct types, so the mismatch cannot be expressed.
	ErrScaffoldMismatch = errors.New("scaffold mismatch")

	// ErrTagCount is returned by AddDocs when the tag slice length does
	// not match the text slice length.
	ErrTagCount = errors.New("tags length does not match texts length")
)
