package rest

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tasteboard/reviewserver"
)

type ReviewServer interface {
	AddReview(ctx context.Context, params reviewserver.ReviewParams) (*reviewserver.Review, error)
	Answer(ctx context.Context, question reviewserver.Question) (reviewserver.Answer, error)
	ListReviews(ctx context.Context) ([]*reviewserver.Review, error)
}

type Adapter struct {
	reviewServer ReviewServer
	logger       *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(reviewServer ReviewServer, options ...Option) *Adapter {
	a := &Adapter{
		reviewServer: reviewServer,
		logger:       zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

func (a *Adapter) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/add_review", a.addReviewHandler)
	mux.HandleFunc("POST /api/ask_question", a.askQuestionHandler)
	mux.HandleFunc("GET /api/reviews", a.listReviewsHandler)
	mux.HandleFunc("GET /health", a.healthHandler)
}

const (
	defaultTimeout = 3 * time.Second
	// Adding a review embeds it synchronously, asking a question runs the
	// whole retrieve-and-generate pipeline; both wait on model inference.
	addReviewTimeout = 30 * time.Second
	askTimeout       = 60 * time.Second
)

type healthResponse struct {
	Status string `json:"status"`
}

// Liveness only: no dependency checks, no side effects.
func (a *Adapter) healthHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, healthResponse{Status: "ok"})
}
