package reviewserver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasteboard/reviewserver"
	"github.com/tasteboard/reviewserver/reviewservertest"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	embedder  *reviewservertest.FakeEmbedder
	retriever *reviewservertest.FakeRetriever
	model     *reviewservertest.StubGenerativeModel
	dataset   *reviewservertest.FakeDataset
	store     *reviewservertest.FakeStore
	rs        interface {
		BulkLoad(ctx context.Context) error
		AddReview(ctx context.Context, params reviewserver.ReviewParams) (*reviewserver.Review, error)
		Answer(ctx context.Context, question reviewserver.Question) (reviewserver.Answer, error)
		Reconcile(ctx context.Context) (int, error)
		ListReviews(ctx context.Context) ([]*reviewserver.Review, error)
	}
}

func newTokenizer(t *testing.T) *sentences.DefaultSentenceTokenizer {
	t.Helper()

	tokenizer, err := english.NewSentenceTokenizer(nil)
	require.NoError(t, err)

	return tokenizer
}

func newFixture(t *testing.T, options ...reviewserver.Option) *fixture {
	t.Helper()

	tokenizer := newTokenizer(t)

	f := &fixture{
		embedder:  &reviewservertest.FakeEmbedder{},
		retriever: reviewservertest.NewFakeRetriever(),
		model:     &reviewservertest.StubGenerativeModel{},
		dataset:   &reviewservertest.FakeDataset{},
		store:     reviewservertest.NewFakeStore(),
	}
	f.rs = reviewserver.New(
		f.embedder, f.retriever, f.model, f.dataset, f.store, tokenizer, options...,
	)

	return f
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.rs.Answer(context.Background(), reviewserver.Question{Content: content})
		require.ErrorIs(t, err, reviewserver.ErrEmptyQuestion)
	}

	// Rejected before any downstream call.
	assert.Equal(t, 0, f.embedder.Calls())
}

func TestAnswer_RetrievesRelevantReviews(t *testing.T) {
	t.Parallel()

	f := newFixture(t, reviewserver.WithTopK(2))
	ctx := context.Background()

	for _, params := range []reviewserver.ReviewParams{
		{
			Title:   "Amazing Pizza",
			Content: "The margherita pizza was amazing. Best pizza crust I have ever had.",
			Rating:  5,
			Date:    "2024-05-20",
		},
		{
			Title:   "Slow Service",
			Content: "We waited an hour for our pasta. The waiter forgot our drinks.",
			Rating:  2,
			Date:    "2024-05-21",
		},
		{
			Title:   "Great Value",
			Content: "Cheap lunch menu with big portions of salad and soup.",
			Rating:  4,
			Date:    "2024-05-22",
		},
	} {
		_, err := f.rs.AddReview(ctx, params)
		require.NoError(t, err)
	}

	anAnswer, err := f.rs.Answer(ctx, reviewserver.Question{Content: "How is the margherita pizza?"})
	require.NoError(t, err)

	require.Len(t, anAnswer.Documents, 2)
	assert.Contains(t, anAnswer.Documents[0].Content, "margherita pizza")
	// The echoing stub proves the retrieved context reached the model.
	assert.Contains(t, anAnswer.Text, "How is the margherita pizza?")
	assert.Contains(t, anAnswer.Text, anAnswer.Documents[0].Content)
}

func TestAnswer_EmptyIndexStillInvokesModel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	anAnswer, err := f.rs.Answer(context.Background(), reviewserver.Question{Content: "Anything good here?"})
	require.NoError(t, err)

	assert.Empty(t, anAnswer.Documents)
	assert.Contains(t, anAnswer.Text, "Anything good here?")
}

func TestAnswer_GenerativeModelFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.model.Err = errors.New("model overloaded")

	_, err := f.rs.Answer(context.Background(), reviewserver.Question{Content: "Is the pizza good?"})
	require.Error(t, err)

	var derr reviewserver.DownstreamError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "generative model", derr.Component)
	assert.ErrorIs(t, err, f.model.Err)
}
