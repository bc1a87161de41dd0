package hugot

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"
)

// Adapter runs the embedding model in-process through an ONNX pipeline,
// no model server required. The model is downloaded on first use.
type Adapter struct {
	session     *hugot.Session
	pipeline    *pipelines.FeatureExtractionPipeline
	modelName   string
	onxFilePath string
	modelsDir   string
	logger      *zap.Logger
}

type Option func(*Adapter)

func WithModel(name string) Option {
	return func(a *Adapter) {
		a.modelName = name
	}
}

func WithModelOnnxFilePath(path string) Option {
	return func(a *Adapter) {
		a.onxFilePath = path
	}
}

func WithModelsDir(path string) Option {
	return func(a *Adapter) {
		a.modelsDir = path
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultModelsDir   = "/models"
	defaultOnxFilePath = "onnx/model.onnx"
)

func New(ctx context.Context, session *hugot.Session, options ...Option) (*Adapter, error) {
	a := &Adapter{
		session:     session,
		onxFilePath: defaultOnxFilePath,
		modelsDir:   defaultModelsDir,
		logger:      zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"model", a.modelName,
		"models dir", a.modelsDir,
	).Info("init hugot adapter")

	if err := a.init(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

const adapterName = "hugot"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) init(ctx context.Context) error {
	if a.modelName == "" {
		return fmt.Errorf("embedding model must be specified")
	}

	modelPath, err := checkModelExists(a.modelsDir, a.modelName)
	if err != nil {
		return fmt.Errorf("failed to check embedding model: %w", err)
	}

	if modelPath == "" {
		a.logger.Sugar().Infof("start downloading embedding model: %s", a.modelName)

		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = a.onxFilePath
		modelPath, err = hugot.DownloadModel(a.modelName, a.modelsDir, downloadOptions)
		if err != nil {
			return fmt.Errorf("failed to download embedding model: %w", err)
		}

		a.logger.Sugar().Infof("downloaded embedding model: %s", a.modelName)
	} else {
		a.logger.Sugar().Infof("embedding model already exists, skipping download: %s", modelPath)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embeddingPipeline",
	}

	a.pipeline, err = hugot.NewPipeline(a.session, config)
	if err != nil {
		return fmt.Errorf("failed to create embedding pipeline: %w", err)
	}

	return nil
}

func checkModelExists(destination, modelName string) (string, error) {
	modelP := modelName
	if strings.Contains(modelP, ":") {
		modelP = strings.Split(modelName, ":")[0]
	}
	modelPath := path.Join(destination, strings.ReplaceAll(modelP, "/", "_"))

	_, err := os.Stat(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return modelPath, nil
}
