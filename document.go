package reviewserver

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/neurosnap/sentences"
)

type Vector []float32

// Document is one embedded chunk of a review, the unit stored in and
// returned by the vector index. Score is the similarity of the chunk to
// a query vector and is only populated on search results.
type Document struct {
	ReviewID ReviewID `json:"review_id"`
	Chunk    int      `json:"chunk"`
	Content  string   `json:"content"`
	Rating   float64  `json:"rating"`
	Date     string   `json:"date"`
	Score    float64  `json:"score"`
}

func (d Document) Sanitize() Document {
	d.Content = strings.TrimSpace(d.Content)
	d.Content = strings.Join(strings.Fields(d.Content), " ")
	return d
}

var objectIDNamespace = uuid.NewV5(uuid.NamespaceURL, "reviewserver")

// ObjectID is the document's stable vector store object ID, derived from
// the review row index and the chunk ordinal so that saving the same
// chunk again upserts instead of duplicating it.
func (d Document) ObjectID() uuid.UUID {
	return uuid.NewV5(objectIDNamespace, fmt.Sprintf("review/%s/%d", d.ReviewID, d.Chunk))
}

const defaultSentencesPerChunk = 4

// ChunkReview splits a review into sentence chunks of at most
// sentencesPerChunk sentences each. Every chunk carries the review title
// so a chunk remains self-describing when retrieved on its own, plus the
// review's rating and date as metadata.
func ChunkReview(tokenizer *sentences.DefaultSentenceTokenizer, review *Review, sentencesPerChunk int) []Document {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = defaultSentencesPerChunk
	}

	var parts []string
	for _, aSentence := range tokenizer.Tokenize(review.Content) {
		text := strings.TrimSpace(aSentence.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		parts = []string{strings.TrimSpace(review.Content)}
	}

	documents := make([]Document, 0, len(parts)/sentencesPerChunk+1)
	for i := 0; i < len(parts); i += sentencesPerChunk {
		end := min(i+sentencesPerChunk, len(parts))
		aDocument := Document{
			ReviewID: review.ID,
			Chunk:    len(documents),
			Content: fmt.Sprintf(
				"Title: %s\nReview: %s",
				review.Title, strings.Join(parts[i:end], " "),
			),
			Rating: review.Rating,
			Date:   review.Date,
		}
		documents = append(documents, aDocument.Sanitize())
	}

	return documents
}
