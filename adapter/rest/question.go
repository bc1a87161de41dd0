package rest

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tasteboard/reviewserver"
)

type askQuestionRequest struct {
	Question string `json:"question"`
}

type retrievedChunk struct {
	ReviewID string  `json:"review_id"`
	Chunk    int     `json:"chunk"`
	Content  string  `json:"content"`
	Rating   float64 `json:"rating"`
	Date     string  `json:"date"`
	Score    float64 `json:"score"`
}

type askQuestionResponse struct {
	Answer           string           `json:"answer"`
	RetrievedContext []retrievedChunk `json:"retrieved_context"`
}

func (a *Adapter) askQuestionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), askTimeout)
	defer cancel()

	var req askQuestionRequest
	if err := readRequestJSON(r, &req); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	anAnswer, err := a.reviewServer.Answer(ctx, reviewserver.Question{Content: req.Question})
	if err != nil {
		a.logger.Error("error answering question", zap.Error(err))
		renderJSONError(w, statusFromError(err), err)
		return
	}

	resp := askQuestionResponse{
		Answer:           anAnswer.Text,
		RetrievedContext: make([]retrievedChunk, 0, len(anAnswer.Documents)),
	}
	for _, doc := range anAnswer.Documents {
		resp.RetrievedContext = append(resp.RetrievedContext, retrievedChunk{
			ReviewID: doc.ReviewID.String(),
			Chunk:    doc.Chunk,
			Content:  doc.Content,
			Rating:   doc.Rating,
			Date:     doc.Date,
			Score:    doc.Score,
		})
	}

	renderJSON(w, resp)
}

func statusFromError(err error) int {
	var verr reviewserver.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, reviewserver.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, reviewserver.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
