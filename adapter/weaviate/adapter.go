package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"
)

type Adapter struct {
	client    *weaviate.Client
	className string
	logger    *zap.Logger
}

type Option func(*Adapter)

func WithClassName(name string) Option {
	return func(a *Adapter) {
		a.className = name
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const defaultClassName = "ReviewChunk"

func New(ctx context.Context, client *weaviate.Client, options ...Option) (*Adapter, error) {
	a := &Adapter{
		client:    client,
		className: defaultClassName,
		logger:    zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a, a.init(ctx)
}

const adapterName = "weaviate"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) init(ctx context.Context) error {
	// Create the collection in weaviate if it doesn't exist yet. Vectors
	// are always supplied by the embedder, never by weaviate itself.
	cls := &models.Class{
		Class:      a.className,
		Vectorizer: "none",
	}
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(cls.Class).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	if !exists {
		if err := a.client.Schema().ClassCreator().WithClass(cls).Do(ctx); err != nil {
			return fmt.Errorf("weaviate error: %w", err)
		}
	}

	return nil
}
