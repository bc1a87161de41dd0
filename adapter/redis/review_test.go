package redis

import (
	"github.com/tasteboard/reviewserver"
)

func (s *RedisTestSuite) TestSaveAndSearchDocuments() {
	ctx, cancel := testContext()
	defer cancel()

	var (
		documents = []reviewserver.Document{
			{
				ReviewID: 1,
				Chunk:    0,
				Content:  "Title: Amazing Pizza Review: Great crust.",
				Rating:   5,
				Date:     "2024-05-20",
			},
			{
				ReviewID: 2,
				Chunk:    0,
				Content:  "Title: Slow Service Review: Waited an hour.",
				Rating:   2,
				Date:     "2024-05-21",
			},
			{
				ReviewID: 3,
				Chunk:    0,
				Content:  "Title: Great Value Review: Cheap lunch menu.",
				Rating:   4,
				Date:     "2024-05-22",
			},
		}
		vectors = []reviewserver.Vector{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0.9, 0.1, 0, 0},
		}
	)

	err := s.adapter.SaveDocuments(ctx, documents, vectors)
	s.Require().NoError(err)

	results, err := s.adapter.SearchDocuments(ctx, reviewserver.Vector{1, 0, 0, 0}, 2)
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	// Most similar first.
	s.Equal(documents[0].Content, results[0].Content)
	s.Equal(documents[2].Content, results[1].Content)
	s.Equal(reviewserver.ReviewID(1), results[0].ReviewID)
	s.Equal(documents[0].Rating, results[0].Rating)
	s.Equal(documents[0].Date, results[0].Date)
	s.Greater(results[0].Score, results[1].Score)
}

func (s *RedisTestSuite) TestSaveDocuments_Upserts() {
	ctx, cancel := testContext()
	defer cancel()

	aDocument := reviewserver.Document{
		ReviewID: 1,
		Chunk:    0,
		Content:  "Original content.",
		Rating:   3,
		Date:     "2024-05-20",
	}
	vectors := []reviewserver.Vector{{1, 0, 0, 0}}

	err := s.adapter.SaveDocuments(ctx, []reviewserver.Document{aDocument}, vectors)
	s.Require().NoError(err)

	aDocument.Content = "Replacement content."
	err = s.adapter.SaveDocuments(ctx, []reviewserver.Document{aDocument}, vectors)
	s.Require().NoError(err)

	count, err := s.adapter.CountDocuments(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	results, err := s.adapter.SearchDocuments(ctx, reviewserver.Vector{1, 0, 0, 0}, 1)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Replacement content.", results[0].Content)
}

func (s *RedisTestSuite) TestCountDocuments_Empty() {
	ctx, cancel := testContext()
	defer cancel()

	count, err := s.adapter.CountDocuments(ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *RedisTestSuite) TestSearchDocuments_RequiresVector() {
	ctx, cancel := testContext()
	defer cancel()

	_, err := s.adapter.SearchDocuments(ctx, nil, 5)
	s.Require().Error(err)
}
