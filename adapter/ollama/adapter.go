package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/tasteboard/reviewserver"
)

// Adapter talks to a local Ollama server, which serves both the embedding
// model and the generative model over plain JSON endpoints.
type Adapter struct {
	baseURL         string
	embeddingModel  string
	generativeModel string
	templatesDir    string
	httpClient      *http.Client
	logger          *zap.Logger
}

type Option func(*Adapter)

func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) {
		a.baseURL = baseURL
	}
}

func WithEmbeddingModel(model string) Option {
	return func(a *Adapter) {
		a.embeddingModel = model
	}
}

func WithGenerativeModel(model string) Option {
	return func(a *Adapter) {
		a.generativeModel = model
	}
}

// WithTemplatesDir makes the adapter read answer.tmpl from dir instead of
// using the built-in answer template.
func WithTemplatesDir(dir string) Option {
	return func(a *Adapter) {
		a.templatesDir = dir
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		a.httpClient = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 120 * time.Second
)

func New(options ...Option) *Adapter {
	a := &Adapter{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"base url", a.baseURL,
		"embedding model", a.embeddingModel,
		"generative model", a.generativeModel,
	).Info("init ollama adapter")

	return a
}

const adapterName = "ollama"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) post(ctx context.Context, endpoint string, request, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %s: %s", endpoint, resp.Status, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}

	return nil
}

func (a *Adapter) answerTemplate() (string, error) {
	if a.templatesDir == "" {
		return reviewserver.AnswerTemplate, nil
	}
	templateBytes, err := os.ReadFile(path.Join(a.templatesDir, "answer.tmpl"))
	if err != nil {
		return "", fmt.Errorf("reading answer template: %w", err)
	}
	return string(templateBytes), nil
}
