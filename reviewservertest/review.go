package reviewservertest

import (
	"time"

	"github.com/tasteboard/reviewserver"
)

type ReviewOption func(*reviewserver.Review)

func WithReviewID(id reviewserver.ReviewID) ReviewOption {
	return func(r *reviewserver.Review) {
		r.ID = id
	}
}

func WithReviewTitle(title string) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Title = title
	}
}

func WithReviewContent(content string) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Content = content
	}
}

func WithReviewRating(rating float64) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Rating = rating
	}
}

func WithReviewDate(date string) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Date = date
	}
}

func WithReviewStatus(status reviewserver.ReviewStatus) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Status = status
	}
}

func WithReviewCreated(created time.Time) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Created = created
	}
}

func WithReviewUpdated(updated time.Time) ReviewOption {
	return func(r *reviewserver.Review) {
		r.Updated = updated
	}
}

var reviewStates = []reviewserver.ReviewStatus{
	reviewserver.ReviewStatusPending,
	reviewserver.ReviewStatusIndexed,
	reviewserver.ReviewStatusIndexingFailed,
}

func (g *DataGen) Review(options ...ReviewOption) *reviewserver.Review {
	g.ShuffleAnySlice(reviewStates)

	aReview := reviewserver.Review{
		ID:      reviewserver.ReviewID(g.Int64()),
		Title:   g.Sentence(3),
		Content: g.Paragraph(1, 4, 8, " "),
		Rating:  float64(g.IntRange(0, 5)),
		Date:    g.DateRange(g.now.AddDate(-2, 0, 0), g.now).Format(reviewserver.DateLayout),
		Status:  reviewStates[0],
		Created: g.now,
		Updated: g.now,
	}

	for _, o := range options {
		o(&aReview)
	}

	return &aReview
}
