package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasteboard/reviewserver"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (a *Adapter) Answer(ctx context.Context, question reviewserver.Question, documents []reviewserver.Document) (reviewserver.Answer, error) {
	template, err := a.answerTemplate()
	if err != nil {
		return reviewserver.Answer{}, err
	}

	contexts := make([]string, 0, len(documents))
	for _, doc := range documents {
		contexts = append(contexts, doc.Content)
	}

	prompt := fmt.Sprintf(template, strings.Join(contexts, reviewserver.ContextSeparator), question.Content)

	a.logger.Sugar().With("question", question.Content).Info("generating answer")

	var resp generateResponse
	if err := a.post(ctx, "/api/generate", generateRequest{
		Model:  a.generativeModel,
		Prompt: prompt,
		Stream: false,
	}, &resp); err != nil {
		return reviewserver.Answer{}, fmt.Errorf("calling generative model: %w", err)
	}

	a.logger.Sugar().Infof("ollama response: %s", resp.Response)

	return reviewserver.Answer{
		Text:      resp.Response,
		Documents: documents,
	}, nil
}
