package ollama

import (
	"context"
	"fmt"

	"github.com/tasteboard/reviewserver"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (a *Adapter) EmbedDocuments(ctx context.Context, documents []reviewserver.Document) ([]reviewserver.Vector, error) {
	input := make([]string, 0, len(documents))
	for _, aDocument := range documents {
		input = append(input, aDocument.Content)
	}

	a.logger.Sugar().Infof("invoking embedding model with %d documents", len(documents))

	var resp embedResponse
	if err := a.post(ctx, "/api/embed", embedRequest{
		Model: a.embeddingModel,
		Input: input,
	}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(documents) {
		return nil, fmt.Errorf("embedded batch size mismatch")
	}

	vectors := make([]reviewserver.Vector, 0, len(resp.Embeddings))
	for i := range resp.Embeddings {
		vectors = append(vectors, resp.Embeddings[i])
	}

	return vectors, nil
}

func (a *Adapter) EmbedContent(ctx context.Context, content string) (reviewserver.Vector, error) {
	var resp embedResponse
	if err := a.post(ctx, "/api/embed", embedRequest{
		Model: a.embeddingModel,
		Input: []string{content},
	}, &resp); err != nil {
		return reviewserver.Vector{}, err
	}

	if len(resp.Embeddings) != 1 {
		return reviewserver.Vector{}, fmt.Errorf("expected 1 embedding, got %d", len(resp.Embeddings))
	}

	return resp.Embeddings[0], nil
}
