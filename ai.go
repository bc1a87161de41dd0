package reviewserver

import (
	"context"
	"log"
	"strings"
)

type Question struct {
	Content string
}

func (q Question) String() string {
	return q.Content
}

// Answer is the model's reply to one question together with the review
// chunks that were retrieved as context. Transient, never persisted.
type Answer struct {
	Text      string
	Documents []Document
}

// Answer embeds the question, retrieves the top-k most similar review
// chunks and asks the generative model for a grounded answer. A blank
// question is rejected before any downstream call is made. If the index
// returns nothing the model is still invoked with an empty context block.
func (rs *reviewServer) Answer(ctx context.Context, question Question) (Answer, error) {
	if strings.TrimSpace(question.Content) == "" {
		return Answer{}, ErrEmptyQuestion
	}

	log.Printf("received question: %s", question)

	vector, err := rs.embedder.EmbedContent(ctx, question.Content)
	if err != nil {
		return Answer{}, DownstreamError{Component: rs.embedder.Name(), Err: err}
	}

	documents, err := rs.retriever.SearchDocuments(ctx, vector, rs.topK)
	if err != nil {
		return Answer{}, DownstreamError{Component: rs.retriever.Name(), Err: err}
	}

	log.Println("found documents:", len(documents))

	anAnswer, err := rs.generative.Answer(ctx, question, documents)
	if err != nil {
		return Answer{}, DownstreamError{Component: "generative model", Err: err}
	}

	return anAnswer, nil
}
