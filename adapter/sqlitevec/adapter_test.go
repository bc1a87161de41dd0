package sqlitevec_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasteboard/reviewserver"
	"github.com/tasteboard/reviewserver/adapter/sqlitevec"
)

func newAdapter(t *testing.T) *sqlitevec.Adapter {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vectors.sqlite")

	adapter, err := sqlitevec.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, adapter.Close())
	})

	return adapter
}

func TestSaveAndSearchDocuments(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t)
	ctx := context.Background()

	documents := []reviewserver.Document{
		{ReviewID: 1, Chunk: 0, Content: "Title: Amazing Pizza Review: Great crust.", Rating: 5, Date: "2024-05-20"},
		{ReviewID: 2, Chunk: 0, Content: "Title: Slow Service Review: Waited an hour.", Rating: 2, Date: "2024-05-21"},
		{ReviewID: 3, Chunk: 0, Content: "Title: Great Value Review: Cheap lunch menu.", Rating: 4, Date: "2024-05-22"},
	}
	vectors := []reviewserver.Vector{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, adapter.SaveDocuments(ctx, documents, vectors))

	results, err := adapter.SearchDocuments(ctx, reviewserver.Vector{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Most similar first.
	assert.Equal(t, reviewserver.ReviewID(1), results[0].ReviewID)
	assert.Equal(t, reviewserver.ReviewID(3), results[1].ReviewID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001)

	assert.Equal(t, documents[0].Content, results[0].Content)
	assert.Equal(t, documents[0].Rating, results[0].Rating)
	assert.Equal(t, documents[0].Date, results[0].Date)
}

func TestSaveDocuments_Upserts(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t)
	ctx := context.Background()

	aDocument := reviewserver.Document{
		ReviewID: 1, Chunk: 0, Content: "Original content.", Rating: 3, Date: "2024-05-20",
	}
	vector := []reviewserver.Vector{{1, 0}}

	require.NoError(t, adapter.SaveDocuments(ctx, []reviewserver.Document{aDocument}, vector))
	aDocument.Content = "Replacement content."
	require.NoError(t, adapter.SaveDocuments(ctx, []reviewserver.Document{aDocument}, vector))

	count, err := adapter.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := adapter.SearchDocuments(ctx, reviewserver.Vector{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Replacement content.", results[0].Content)
}

func TestSaveDocuments_MismatchedLengths(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t)

	err := adapter.SaveDocuments(context.Background(), []reviewserver.Document{{ReviewID: 1}}, nil)
	require.Error(t, err)
}

func TestCountDocuments_Empty(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t)

	count, err := adapter.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchDocuments_RequiresVector(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t)

	_, err := adapter.SearchDocuments(context.Background(), nil, 5)
	require.Error(t, err)
}
