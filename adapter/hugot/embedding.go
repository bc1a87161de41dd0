package hugot

import (
	"context"
	"fmt"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) EmbedDocuments(ctx context.Context, documents []reviewserver.Document) ([]reviewserver.Vector, error) {
	sentences := make([]string, 0, len(documents))
	for _, aDocument := range documents {
		sentences = append(sentences, aDocument.Content)
	}

	embeddingResult, err := a.pipeline.RunPipeline(sentences)
	if err != nil {
		return nil, err
	}

	embeddings := embeddingResult.Embeddings

	if len(embeddings) != len(documents) {
		return nil, fmt.Errorf("embedded batch size mismatch")
	}

	vectors := make([]reviewserver.Vector, 0, len(embeddings))
	for i := range embeddings {
		vectors = append(vectors, embeddings[i])
	}

	return vectors, nil
}

func (a *Adapter) EmbedContent(ctx context.Context, content string) (reviewserver.Vector, error) {
	embeddingResult, err := a.pipeline.RunPipeline([]string{content})
	if err != nil {
		return reviewserver.Vector{}, err
	}
	return embeddingResult.Embeddings[0], nil
}
