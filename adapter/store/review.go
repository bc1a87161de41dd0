package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) SaveReviews(ctx context.Context, reviews ...*reviewserver.Review) error {
	if len(reviews) < 1 {
		return nil
	}

	return a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertReviewsQuery{reviews: reviews}); err != nil {
			return fmt.Errorf("exec insert reviews query failed: %w", err)
		}
		return nil
	})
}

type insertReviewsQuery struct {
	reviews []*reviewserver.Review
}

func (q insertReviewsQuery) SQL() (string, []any) {
	if len(q.reviews) == 0 {
		return "", nil
	}

	query := `
		insert into "review" (
			"id",
			"title",
			"content",
			"rating",
			"date",
			"status",
			"status_message",
			"created",
			"updated"
		)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := make([]any, 0, len(q.reviews)*9)
	args = append(args, reviewArgs(q.reviews[0])...)
	for _, aReview := range q.reviews[1:] {
		query += `, (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		args = append(args, reviewArgs(aReview)...)
	}
	query += `
		on conflict("id") do update set
			"title"=excluded."title",
			"content"=excluded."content",
			"rating"=excluded."rating",
			"date"=excluded."date",
			"status"=excluded."status",
			"status_message"=excluded."status_message",
			"updated"=excluded."updated"
	`

	return query, args
}

func reviewArgs(r *reviewserver.Review) []any {
	return []any{
		int64(r.ID),
		r.Title,
		r.Content,
		r.Rating,
		r.Date,
		string(r.Status),
		r.StatusMessage,
		r.Created,
		r.Updated,
	}
}

const selectReviews = `
	select
		r."id",
		r."title",
		r."content",
		r."rating",
		r."date",
		r."status",
		r."status_message",
		r."created",
		r."updated"
	from "review" r
`

func (a *Adapter) ListReviews(ctx context.Context, filter reviewserver.ReviewFilter, params reviewserver.SortParams) ([]*reviewserver.Review, error) {
	query := selectReviews
	args := make([]any, 0, 1)

	if filter.Status != "" {
		query += ` where r."status" = ?`
		args = append(args, string(filter.Status))
	}

	if params.Empty() {
		params = reviewserver.SortParams{By: `r."id"`, Order: reviewserver.SortOrderAsc}
	}
	query += params.SQL()

	var reviews []*reviewserver.Review
	if err := a.inTxDo(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query context failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			aReview, err := scanReview(rows)
			if err != nil {
				return err
			}
			reviews = append(reviews, aReview)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (a *Adapter) FindReview(ctx context.Context, id reviewserver.ReviewID) (*reviewserver.Review, error) {
	var aReview *reviewserver.Review
	if err := a.inTxDo(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectReviews+` where r."id" = ?`, int64(id))

		var err error
		aReview, err = scanReview(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return reviewserver.ErrNotFound
			}
			return err
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return aReview, nil
}

func (a *Adapter) CountReviews(ctx context.Context) (int64, error) {
	var count int64
	if err := a.inTxDo(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `select count(*) from "review"`).Scan(&count)
	}); err != nil {
		return 0, err
	}

	return count, nil
}

func scanReview(s Scannable) (*reviewserver.Review, error) {
	var (
		aReview = new(reviewserver.Review)
		id      int64
		status  string
	)
	if err := s.Scan(
		&id,
		&aReview.Title,
		&aReview.Content,
		&aReview.Rating,
		&aReview.Date,
		&status,
		&aReview.StatusMessage,
		&aReview.Created,
		&aReview.Updated,
	); err != nil {
		return nil, err
	}

	aReview.ID = reviewserver.ReviewID(id)
	aReview.Status = reviewserver.ReviewStatus(status)
	aReview.Created = aReview.Created.UTC()
	aReview.Updated = aReview.Updated.UTC()

	return aReview, nil
}
