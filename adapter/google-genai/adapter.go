package googlegenai

import (
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/tasteboard/reviewserver"
)

type Adapter struct {
	client          *genai.Client
	embeddingModel  string
	generativeModel string
	templatesDir    string
	logger          *zap.Logger
}

type Option func(*Adapter)

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

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(client *genai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client: client,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"embedding model", a.embeddingModel,
		"generative model", a.generativeModel,
		"templates dir", a.templatesDir,
	).Info("init google genai adapter")

	return a
}

const adapterName = "google-genai"

func (a *Adapter) Name() string {
	return adapterName
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
