package reviewserver

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// BulkLoad indexes the whole dataset at startup. It is a no-op when the
// store or the vector index already contain entries: presence is the
// idempotence marker, rows are never re-embedded on restart.
func (rs *reviewServer) BulkLoad(ctx context.Context) error {
	count, err := rs.store.CountReviews(ctx)
	if err != nil {
		return fmt.Errorf("counting reviews: %w", err)
	}
	if count > 0 {
		log.Printf("store already has %d reviews, skipping bulk load", count)
		return nil
	}

	indexed, err := rs.retriever.CountDocuments(ctx)
	if err != nil {
		return DownstreamError{Component: rs.retriever.Name(), Err: err}
	}
	if indexed > 0 {
		log.Printf("vector index already has %d documents, skipping bulk load", indexed)
		return nil
	}

	reviews, err := rs.dataset.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}
	if len(reviews) == 0 {
		log.Println("dataset is empty, nothing to load")
		return nil
	}

	documents := make([]Document, 0, len(reviews))
	for _, aReview := range reviews {
		documents = append(documents, ChunkReview(rs.tokenizer, aReview, rs.sentencesPerChunk)...)
	}

	vectors, err := rs.embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		return DownstreamError{Component: rs.embedder.Name(), Err: err}
	}

	if err := rs.retriever.SaveDocuments(ctx, documents, vectors); err != nil {
		return DownstreamError{Component: rs.retriever.Name(), Err: err}
	}

	now := rs.now()
	for _, aReview := range reviews {
		aReview.Status = ReviewStatusIndexed
		aReview.Created = now
		aReview.Updated = now
	}
	if err := rs.store.SaveReviews(ctx, reviews...); err != nil {
		return fmt.Errorf("saving reviews: %w", err)
	}

	log.Printf("bulk loaded %d reviews as %d documents", len(reviews), len(documents))

	return nil
}

// AddReview validates the submitted review, appends it to the durable
// dataset and indexes it synchronously - on success the review is
// queryable as soon as this returns. The dataset append and the index
// write are not transactional: when indexing fails the review stays in
// the dataset marked INDEXING_FAILED and the error is returned to the
// caller, never swallowed.
func (rs *reviewServer) AddReview(ctx context.Context, params ReviewParams) (*Review, error) {
	if strings.TrimSpace(params.Date) == "" {
		params.Date = rs.now().Format(DateLayout)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := rs.now()
	aReview := &Review{
		Title:   strings.TrimSpace(params.Title),
		Content: strings.TrimSpace(params.Content),
		Rating:  params.Rating,
		Date:    params.Date,
		Status:  ReviewStatusPending,
		Created: now,
		Updated: now,
	}

	if err := rs.dataset.Append(ctx, aReview); err != nil {
		return nil, fmt.Errorf("appending review to dataset: %w", err)
	}

	if err := rs.store.SaveReviews(ctx, aReview); err != nil {
		return nil, fmt.Errorf("saving review: %w", err)
	}

	if err := rs.indexReview(ctx, aReview); err != nil {
		if serr := aReview.CompleteWithStatus(ReviewStatusIndexingFailed, err.Error(), rs.now()); serr != nil {
			log.Printf("error completing review %s: %v", aReview.ID, serr)
		}
		if serr := rs.store.SaveReviews(ctx, aReview); serr != nil {
			log.Printf("error saving failed review %s: %v", aReview.ID, serr)
		}
		return nil, err
	}

	if err := aReview.CompleteWithStatus(ReviewStatusIndexed, "", rs.now()); err != nil {
		return nil, err
	}
	if err := rs.store.SaveReviews(ctx, aReview); err != nil {
		return nil, fmt.Errorf("saving review: %w", err)
	}

	return aReview, nil
}

func (rs *reviewServer) indexReview(ctx context.Context, aReview *Review) error {
	documents := ChunkReview(rs.tokenizer, aReview, rs.sentencesPerChunk)

	vectors, err := rs.embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		return DownstreamError{Component: rs.embedder.Name(), Err: err}
	}

	if err := rs.retriever.SaveDocuments(ctx, documents, vectors); err != nil {
		return DownstreamError{Component: rs.retriever.Name(), Err: err}
	}

	return nil
}

// Reconcile re-indexes reviews that made it into the dataset but not
// into the vector index, closing the write-then-index window left by a
// failed AddReview or a crash. Returns how many reviews were fixed.
func (rs *reviewServer) Reconcile(ctx context.Context) (int, error) {
	var stale []*Review
	for _, status := range []ReviewStatus{ReviewStatusPending, ReviewStatusIndexingFailed} {
		reviews, err := rs.store.ListReviews(ctx, ReviewFilter{Status: status}, SortParams{
			By:    `r."id"`,
			Order: SortOrderAsc,
		})
		if err != nil {
			return 0, fmt.Errorf("listing %s reviews: %w", status, err)
		}
		stale = append(stale, reviews...)
	}

	for _, aReview := range stale {
		if err := rs.indexReview(ctx, aReview); err != nil {
			return 0, fmt.Errorf("re-indexing review %s: %w", aReview.ID, err)
		}
		aReview.Status = ReviewStatusIndexed
		aReview.StatusMessage = ""
		aReview.Updated = rs.now()
	}

	if len(stale) == 0 {
		return 0, nil
	}

	if err := rs.store.SaveReviews(ctx, stale...); err != nil {
		return 0, fmt.Errorf("saving reviews: %w", err)
	}

	log.Printf("reconciled %d reviews", len(stale))

	return len(stale), nil
}

// ListReviews returns all known reviews, newest first.
func (rs *reviewServer) ListReviews(ctx context.Context) ([]*Review, error) {
	return rs.store.ListReviews(ctx, ReviewFilter{}, SortParams{
		By:    `r."created"`,
		Order: SortOrderDesc,
	})
}
