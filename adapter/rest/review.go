package rest

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tasteboard/reviewserver"
)

type addReviewRequest struct {
	Title         string   `json:"title"`
	ReviewContent string   `json:"review_content"`
	Rating        *float64 `json:"rating"`
	Date          string   `json:"date"`
}

type reviewResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ReviewContent string  `json:"review_content"`
	Rating        float64 `json:"rating"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	StatusMessage string  `json:"status_message,omitempty"`
	Created       string  `json:"created"`
	Updated       string  `json:"updated"`
}

func mapReview(aReview *reviewserver.Review) reviewResponse {
	return reviewResponse{
		ID:            aReview.ID.String(),
		Title:         aReview.Title,
		ReviewContent: aReview.Content,
		Rating:        aReview.Rating,
		Date:          aReview.Date,
		Status:        string(aReview.Status),
		StatusMessage: aReview.StatusMessage,
		Created:       aReview.Created.Format(time.RFC3339),
		Updated:       aReview.Updated.Format(time.RFC3339),
	}
}

func (a *Adapter) addReviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), addReviewTimeout)
	defer cancel()

	var req addReviewRequest
	if err := readRequestJSON(r, &req); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	// A pointer distinguishes a missing rating from an explicit zero.
	if req.Rating == nil {
		renderJSONError(w, http.StatusBadRequest, reviewserver.ValidationError{
			Field:  "rating",
			Reason: "is required",
		})
		return
	}

	params := reviewserver.ReviewParams{
		Title:   req.Title,
		Content: req.ReviewContent,
		Rating:  *req.Rating,
		Date:    req.Date,
	}

	aReview, err := a.reviewServer.AddReview(ctx, params)
	if err != nil {
		a.logger.Error("error adding review", zap.Error(err))
		renderJSONError(w, statusFromError(err), err)
		return
	}

	renderJSONStatus(w, http.StatusCreated, mapReview(aReview))
}

type listReviewsResponse struct {
	Reviews []reviewResponse `json:"reviews"`
}

func (a *Adapter) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	reviews, err := a.reviewServer.ListReviews(ctx)
	if err != nil {
		a.logger.Error("error listing reviews", zap.Error(err))
		renderJSONError(w, statusFromError(err), err)
		return
	}

	resp := listReviewsResponse{Reviews: make([]reviewResponse, 0, len(reviews))}
	for _, aReview := range reviews {
		resp.Reviews = append(resp.Reviews, mapReview(aReview))
	}

	renderJSON(w, resp)
}
