package reviewserver

import (
	"context"
	"database/sql"
)

// Embedder encodes review chunks and questions as vectors.
type Embedder interface {
	Name() string
	EmbedDocuments(ctx context.Context, documents []Document) ([]Vector, error)
	EmbedContent(ctx context.Context, content string) (Vector, error)
}

// Retriever is the vector index: it stores embedded review chunks and
// returns the ones closest to a query vector, most similar first.
type Retriever interface {
	Name() string
	SaveDocuments(ctx context.Context, documents []Document, vectors []Vector) error
	SearchDocuments(ctx context.Context, vector Vector, limit int) ([]Document, error)
	CountDocuments(ctx context.Context) (int64, error)
}

// GenerativeModel fills the answer prompt template with the retrieved
// review chunks and the question and invokes the model.
type GenerativeModel interface {
	Answer(ctx context.Context, question Question, documents []Document) (Answer, error)
}

// Dataset is the durable append-only review dataset. Append assigns the
// review its row index ID; implementations must serialize appends so
// concurrent calls produce unique, strictly increasing IDs.
type Dataset interface {
	Append(ctx context.Context, review *Review) error
	ReadAll(ctx context.Context) ([]*Review, error)
}

// Store keeps per-review ingestion bookkeeping: whether a dataset row has
// made it into the vector index. A non-zero review count doubles as the
// persisted marker that bulk loading already happened.
type Store interface {
	Transactional(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error
	SaveReviews(ctx context.Context, reviews ...*Review) error
	ListReviews(ctx context.Context, filter ReviewFilter, params SortParams) ([]*Review, error)
	FindReview(ctx context.Context, id ReviewID) (*Review, error)
	CountReviews(ctx context.Context) (int64, error)
}
