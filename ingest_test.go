package reviewserver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasteboard/reviewserver"
	"github.com/tasteboard/reviewserver/reviewservertest"
)

func TestBulkLoad(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	g := reviewservertest.New(123, testNow)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.dataset.Append(ctx, g.Review()))
	}

	require.NoError(t, f.rs.BulkLoad(ctx))

	count, err := f.store.CountReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	indexed, err := f.retriever.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Positive(t, indexed)

	reviews, err := f.rs.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	for _, aReview := range reviews {
		assert.Equal(t, reviewserver.ReviewStatusIndexed, aReview.Status)
	}
}

func TestBulkLoad_IdempotentOnRestart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	g := reviewservertest.New(123, testNow)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.dataset.Append(ctx, g.Review()))
	}

	require.NoError(t, f.rs.BulkLoad(ctx))
	callsAfterFirst := f.embedder.Calls()

	// A second startup must not re-embed anything.
	require.NoError(t, f.rs.BulkLoad(ctx))
	assert.Equal(t, callsAfterFirst, f.embedder.Calls())

	count, err := f.store.CountReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestBulkLoad_EmptyDataset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rs.BulkLoad(ctx))

	count, err := f.store.CountReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	aReview, err := f.rs.AddReview(ctx, reviewserver.ReviewParams{
		Title:   "Amazing Pizza",
		Content: "The margherita was perfect. We will be back.",
		Rating:  5,
		Date:    "2024-05-20",
	})
	require.NoError(t, err)

	assert.Equal(t, reviewserver.ReviewID(0), aReview.ID)
	assert.Equal(t, reviewserver.ReviewStatusIndexed, aReview.Status)

	// The review is queryable as soon as AddReview returns.
	indexed, err := f.retriever.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Positive(t, indexed)

	saved, err := f.store.FindReview(ctx, aReview.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewserver.ReviewStatusIndexed, saved.Status)
}

func TestAddReview_DefaultsDateToToday(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	aReview, err := f.rs.AddReview(context.Background(), reviewserver.ReviewParams{
		Title:   "No date given",
		Content: "Still a perfectly valid review.",
		Rating:  3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, aReview.Date)
}

func TestAddReview_ValidationErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rs.AddReview(ctx, reviewserver.ReviewParams{
		Title:   "",
		Content: "No title on this one.",
		Rating:  3,
	})

	var verr reviewserver.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	// Nothing may be written on validation failure.
	rows, err := f.dataset.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	count, err := f.store.CountReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 0, f.embedder.Calls())
}

func TestAddReview_ConcurrentAddsGetUniqueIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	const n = 20

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[reviewserver.ReviewID]struct{}{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			aReview, err := f.rs.AddReview(ctx, reviewserver.ReviewParams{
				Title:   "Concurrent review",
				Content: "One of many simultaneous submissions.",
				Rating:  4,
				Date:    "2024-05-20",
			})
			assert.NoError(t, err)

			mu.Lock()
			ids[aReview.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
}

type failingEmbedder struct {
	err error
}

func (e failingEmbedder) Name() string { return "failing embedder" }

func (e failingEmbedder) EmbedDocuments(ctx context.Context, documents []reviewserver.Document) ([]reviewserver.Vector, error) {
	return nil, e.err
}

func (e failingEmbedder) EmbedContent(ctx context.Context, content string) (reviewserver.Vector, error) {
	return nil, e.err
}

func TestAddReview_IndexingFailureIsRecorded(t *testing.T) {
	t.Parallel()

	tokenizer := newTokenizer(t)

	var (
		embedErr  = errors.New("embedding service down")
		dataset   = &reviewservertest.FakeDataset{}
		storeFake = reviewservertest.NewFakeStore()
		rs        = reviewserver.New(
			failingEmbedder{err: embedErr},
			reviewservertest.NewFakeRetriever(),
			&reviewservertest.StubGenerativeModel{},
			dataset,
			storeFake,
			tokenizer,
		)
	)

	ctx := context.Background()

	_, err := rs.AddReview(ctx, reviewserver.ReviewParams{
		Title:   "Doomed review",
		Content: "This one will not make it into the index.",
		Rating:  1,
		Date:    "2024-05-20",
	})
	require.Error(t, err)

	var derr reviewserver.DownstreamError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "failing embedder", derr.Component)

	// The review stays in the dataset and is marked failed, never lost.
	reviews, err := dataset.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	saved, err := storeFake.FindReview(ctx, reviews[0].ID)
	require.NoError(t, err)
	assert.Equal(t, reviewserver.ReviewStatusIndexingFailed, saved.Status)
	assert.Contains(t, saved.StatusMessage, "embedding service down")
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	g := reviewservertest.New(123, testNow)
	pending := g.Review(reviewservertest.WithReviewStatus(reviewserver.ReviewStatusPending))
	failed := g.Review(reviewservertest.WithReviewStatus(reviewserver.ReviewStatusIndexingFailed))
	done := g.Review(reviewservertest.WithReviewStatus(reviewserver.ReviewStatusIndexed))

	require.NoError(t, f.dataset.Append(ctx, pending))
	require.NoError(t, f.dataset.Append(ctx, failed))
	require.NoError(t, f.dataset.Append(ctx, done))
	require.NoError(t, f.store.SaveReviews(ctx, pending, failed, done))

	fixed, err := f.rs.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)

	for _, id := range []reviewserver.ReviewID{pending.ID, failed.ID} {
		saved, err := f.store.FindReview(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, reviewserver.ReviewStatusIndexed, saved.Status)
	}

	indexed, err := f.retriever.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Positive(t, indexed)

	// Nothing left to fix on a second run.
	fixed, err = f.rs.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}
