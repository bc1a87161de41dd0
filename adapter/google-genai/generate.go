package googlegenai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) Answer(ctx context.Context, question reviewserver.Question, documents []reviewserver.Document) (reviewserver.Answer, error) {
	template, err := a.answerTemplate()
	if err != nil {
		return reviewserver.Answer{}, err
	}

	contexts := make([]string, 0, len(documents))
	for _, doc := range documents {
		contexts = append(contexts, doc.Content)
	}

	// Create a RAG query for the LLM with the most relevant review chunks
	// as context.
	prompt := fmt.Sprintf(template, strings.Join(contexts, reviewserver.ContextSeparator), question.Content)

	a.logger.Sugar().With("question", question.Content).Info("generating answer")

	resp, err := a.client.Models.GenerateContent(
		ctx,
		a.generativeModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: nil, // Disables thinking
			},
		},
	)
	if err != nil {
		return reviewserver.Answer{}, fmt.Errorf("calling generative model: %v", err)
	}
	if len(resp.Candidates) != 1 {
		return reviewserver.Answer{}, fmt.Errorf("got %v candidates, expected 1", len(resp.Candidates))
	}

	a.logger.Sugar().Infof("genai response: %s", resp.Text())

	return reviewserver.Answer{
		Text:      resp.Text(),
		Documents: documents,
	}, nil
}
