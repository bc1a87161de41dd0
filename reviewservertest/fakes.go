package reviewservertest

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/tasteboard/reviewserver"
)

// FakeEmbedder produces deterministic vectors from content so unit tests
// can exercise the full embed-store-search path without a model.
type FakeEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (e *FakeEmbedder) Name() string { return "fake embedder" }

func (e *FakeEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *FakeEmbedder) EmbedDocuments(ctx context.Context, documents []reviewserver.Document) ([]reviewserver.Vector, error) {
	e.mu.Lock()
	e.calls += 1
	e.mu.Unlock()

	vectors := make([]reviewserver.Vector, 0, len(documents))
	for _, aDocument := range documents {
		vectors = append(vectors, embedText(aDocument.Content))
	}
	return vectors, nil
}

func (e *FakeEmbedder) EmbedContent(ctx context.Context, content string) (reviewserver.Vector, error) {
	e.mu.Lock()
	e.calls += 1
	e.mu.Unlock()

	return embedText(content), nil
}

// embedText hashes words into a small bag-of-words vector. Texts sharing
// words produce similar vectors, which is all cosine search needs.
func embedText(text string) reviewserver.Vector {
	const dim = 64

	vector := make(reviewserver.Vector, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		vector[h%dim] += 1
	}
	return vector
}

// FakeRetriever is an in-memory vector index with brute force cosine
// search, keyed by object ID like the real adapters so saving the same
// chunk twice upserts.
type FakeRetriever struct {
	mu        sync.Mutex
	documents map[string]reviewserver.Document
	vectors   map[string]reviewserver.Vector
}

func NewFakeRetriever() *FakeRetriever {
	return &FakeRetriever{
		documents: map[string]reviewserver.Document{},
		vectors:   map[string]reviewserver.Vector{},
	}
}

func (r *FakeRetriever) Name() string { return "fake retriever" }

func (r *FakeRetriever) SaveDocuments(ctx context.Context, documents []reviewserver.Document, vectors []reviewserver.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("got %d documents but %d vectors", len(documents), len(vectors))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, aDocument := range documents {
		key := aDocument.ObjectID().String()
		r.documents[key] = aDocument
		r.vectors[key] = vectors[i]
	}
	return nil
}

func (r *FakeRetriever) SearchDocuments(ctx context.Context, vector reviewserver.Vector, limit int) ([]reviewserver.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]reviewserver.Document, 0, len(r.documents))
	for key, aDocument := range r.documents {
		aDocument.Score = cosine(vector, r.vectors[key])
		results = append(results, aDocument)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *FakeRetriever) CountDocuments(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.documents)), nil
}

func cosine(a, b reviewserver.Vector) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// StubGenerativeModel echoes the question and retrieved contents back
// instead of calling a model, so tests can assert what was retrieved.
type StubGenerativeModel struct {
	Err error
}

func (m *StubGenerativeModel) Answer(ctx context.Context, question reviewserver.Question, documents []reviewserver.Document) (reviewserver.Answer, error) {
	if m.Err != nil {
		return reviewserver.Answer{}, m.Err
	}

	contents := make([]string, 0, len(documents))
	for _, aDocument := range documents {
		contents = append(contents, aDocument.Content)
	}

	return reviewserver.Answer{
		Text:      fmt.Sprintf("question: %s context: %s", question, strings.Join(contents, reviewserver.ContextSeparator)),
		Documents: documents,
	}, nil
}

// FakeDataset is an in-memory append-only dataset. Append assigns row
// index IDs under a lock, same contract as the CSV adapter.
type FakeDataset struct {
	mu      sync.Mutex
	reviews []*reviewserver.Review
}

func (d *FakeDataset) Append(ctx context.Context, review *reviewserver.Review) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	review.ID = reviewserver.ReviewID(len(d.reviews))
	d.reviews = append(d.reviews, review)
	return nil
}

func (d *FakeDataset) ReadAll(ctx context.Context) ([]*reviewserver.Review, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reviews := make([]*reviewserver.Review, len(d.reviews))
	copy(reviews, d.reviews)
	return reviews, nil
}

// FakeStore keeps review bookkeeping in a map.
type FakeStore struct {
	mu      sync.Mutex
	reviews map[reviewserver.ReviewID]*reviewserver.Review
}

func NewFakeStore() *FakeStore {
	return &FakeStore{reviews: map[reviewserver.ReviewID]*reviewserver.Review{}}
}

func (s *FakeStore) Transactional(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *FakeStore) SaveReviews(ctx context.Context, reviews ...*reviewserver.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, aReview := range reviews {
		saved := *aReview
		s.reviews[aReview.ID] = &saved
	}
	return nil
}

func (s *FakeStore) ListReviews(ctx context.Context, filter reviewserver.ReviewFilter, params reviewserver.SortParams) ([]*reviewserver.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*reviewserver.Review, 0, len(s.reviews))
	for _, aReview := range s.reviews {
		if filter.Status != "" && aReview.Status != filter.Status {
			continue
		}
		copied := *aReview
		results = append(results, &copied)
	}

	sort.Slice(results, func(i, j int) bool {
		if params.Order == reviewserver.SortOrderDesc {
			return results[i].ID > results[j].ID
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

func (s *FakeStore) FindReview(ctx context.Context, id reviewserver.ReviewID) (*reviewserver.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aReview, ok := s.reviews[id]
	if !ok {
		return nil, reviewserver.ErrNotFound
	}
	copied := *aReview
	return &copied, nil
}

func (s *FakeStore) CountReviews(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.reviews)), nil
}
