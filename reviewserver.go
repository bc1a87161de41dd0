package reviewserver

import (
	"time"

	"github.com/neurosnap/sentences"
)

type clock func() time.Time

type reviewServer struct {
	embedder          Embedder
	retriever         Retriever
	generative        GenerativeModel
	dataset           Dataset
	store             Store
	tokenizer         *sentences.DefaultSentenceTokenizer
	now               clock
	topK              int
	sentencesPerChunk int
}

type Option func(*reviewServer)

// WithTopK sets how many nearest review chunks are retrieved per question.
func WithTopK(k int) Option {
	return func(rs *reviewServer) {
		rs.topK = k
	}
}

func WithSentencesPerChunk(n int) Option {
	return func(rs *reviewServer) {
		rs.sentencesPerChunk = n
	}
}

const defaultTopK = 5

func New(
	embedder Embedder,
	retriever Retriever,
	gm GenerativeModel,
	dataset Dataset,
	storeAdapter Store,
	tokenizer *sentences.DefaultSentenceTokenizer,
	options ...Option,
) *reviewServer {
	rs := &reviewServer{
		embedder:          embedder,
		retriever:         retriever,
		generative:        gm,
		dataset:           dataset,
		store:             storeAdapter,
		tokenizer:         tokenizer,
		now:               func() time.Time { return time.Now().UTC() },
		topK:              defaultTopK,
		sentencesPerChunk: defaultSentencesPerChunk,
	}

	for _, o := range options {
		o(rs)
	}

	return rs
}
