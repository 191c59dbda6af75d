package learner

import (
	"sort"
	"strings"
)

// Tag conventions for linked question/answer documents.
const (
	questionTag      = "question"
	answerTag        = "answer"
	answerIDPrefix   = "answer_id:"
	questionIDPrefix = "question_id:"
)

// QA layers linked question/answer retrieval on the base learner. Questions
// and answers are ordinary documents tagged "question" / "answer"; the link
// between them is persisted as answer_id:<id> / question_id:<id> tags and
// held in memory as a typed map, rebuilt from tags at load.
type QA struct {
	*Learner
	questions map[string]string // question doc id -> question text
	answers   map[string]string // answer doc id -> answer text
	answerOf  map[string]string // question doc id -> answer doc id
}

// Answer is one result of a QA query.
type Answer struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// OpenQA loads a learner with the QA scaffold, rebuilding the question and
// answer maps from the tags in the loaded index.
func OpenQA(cfg Config) (*QA, error) {
	l, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	q := &QA{Learner: l}
	q.rebuild()
	return q, nil
}

func (q *QA) rebuild() {
	q.questions = make(map[string]string)
	q.answers = make(map[string]string)
	q.answerOf = make(map[string]string)
	for id, doc := range q.docs {
		if hasTag(doc.Tags, questionTag) {
			q.questions[id] = doc.Text
			for _, tag := range doc.Tags {
				if aid, ok := strings.CutPrefix(tag, answerIDPrefix); ok {
					q.answerOf[id] = aid
				}
			}
		}
		if hasTag(doc.Tags, answerTag) {
			q.answers[id] = doc.Text
		}
	}
}

// AddQA ingests a question/answer pair as two linked documents and returns
// both ids.
func (q *QA) AddQA(question, answer string) (qID, aID string, err error) {
	qIDs, err := q.AddDocs([]string{question}, [][]string{{questionTag}})
	if err != nil {
		return "", "", err
	}
	aIDs, err := q.AddDocs([]string{answer}, [][]string{{answerTag}})
	if err != nil {
		return "", "", err
	}
	qID, aID = qIDs[0], aIDs[0]

	q.questions[qID] = question
	q.answers[aID] = answer
	q.answerOf[qID] = aID

	qDoc := q.docs[qID]
	qDoc.Tags = append(qDoc.Tags, answerIDPrefix+aID)
	q.docs[qID] = qDoc
	aDoc := q.docs[aID]
	aDoc.Tags = append(aDoc.Tags, questionIDPrefix+qID)
	q.docs[aID] = aDoc

	if err := q.save(); err != nil {
		return "", "", err
	}
	return qID, aID, nil
}

// Answer ranks the query against question documents only, follows each
// matched question's answer link, and returns up to topk answers. Questions
// with positive similarity but no answer link are silently skipped, so
// Answer is total over partially-linked state.
func (q *QA) Answer(query string, topk int) []Answer {
	qvec := q.embedder.EmbedText(query)
	type match struct {
		id    string
		score float64
	}
	var matches []match
	for id, text := range q.questions {
		sim := qvec.Cosine(q.embedder.EmbedText(text))
		if sim > 0 {
			matches = append(matches, match{id: id, score: sim})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].id < matches[j].id
	})
	if topk >= 0 && topk < len(matches) {
		matches = matches[:topk]
	}
	var results []Answer
	for _, m := range matches {
		aID, ok := q.answerOf[m.id]
		if !ok {
			continue
		}
		aDoc, ok := q.docs[aID]
		if !ok {
			continue
		}
		results = append(results, Answer{
			Question: q.questions[m.id],
			Answer:   aDoc.Text,
			Score:    m.score,
		})
	}
	return results
}

// Clear resets the scaffold state along with the base learner state.
func (q *QA) Clear() error {
	if err := q.Learner.Clear(); err != nil {
		return err
	}
	q.questions = make(map[string]string)
	q.answers = make(map[string]string)
	q.answerOf = make(map[string]string)
	return nil
}
