package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/knights-analytics/hugot"
	_ "github.com/mattn/go-sqlite3"
	"github.com/neurosnap/sentences/english"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/tasteboard/reviewserver"
	"github.com/tasteboard/reviewserver/adapter/csvfile"
	googlegenai "github.com/tasteboard/reviewserver/adapter/google-genai"
	hugotAdapter "github.com/tasteboard/reviewserver/adapter/hugot"
	ollamaAdapter "github.com/tasteboard/reviewserver/adapter/ollama"
	redisAdapter "github.com/tasteboard/reviewserver/adapter/redis"
	"github.com/tasteboard/reviewserver/adapter/rest"
	sqlitevecAdapter "github.com/tasteboard/reviewserver/adapter/sqlitevec"
	"github.com/tasteboard/reviewserver/adapter/store"
	weaviateAdapter "github.com/tasteboard/reviewserver/adapter/weaviate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("cmd/main")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal("fatal error config file: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer logger.Sync()

	// Connect to the bookkeeping database
	dbConnOpts := url.Values{}
	dbConnOpts.Set("_fk", "true")
	dbConnOpts.Set("_journal", "WAL")
	dbConnOpts.Set("_timeout", "5000")

	log.Println("connecting to db: ", viper.GetString("db.name"), "opts: ", dbConnOpts.Encode())

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", viper.GetString("db.name"), dbConnOpts.Encode()))
	if err != nil {
		log.Fatal("db open: ", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("db ping: ", err)
	}

	// Run db migrations
	if err := reviewserver.Migrate(db, viper.GetString("db.migrations")); err != nil {
		log.Fatal("db migrate: ", err)
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Fatal("sentence tokenizer: ", err)
	}

	embedder, err := embedderFromConfig(ctx, logger)
	if err != nil {
		log.Fatal("embed adapter: ", err)
	}

	retriever, err := retrieverFromConfig(ctx, logger)
	if err != nil {
		log.Fatal("retrieve adapter: ", err)
	}

	generative, err := generativeFromConfig(ctx, logger)
	if err != nil {
		log.Fatal("generative adapter: ", err)
	}

	dataset, err := csvfile.New(
		viper.GetString("dataset.path"),
		csvfile.WithLogger(logger),
	)
	if err != nil {
		log.Fatal("dataset adapter: ", err)
	}

	var (
		storeAdapter = store.New(db)
		rs           = reviewserver.New(
			embedder,
			retriever,
			generative,
			dataset,
			storeAdapter,
			tokenizer,
			reviewserver.WithTopK(viper.GetInt("ask.top_k")),
			reviewserver.WithSentencesPerChunk(viper.GetInt("ingest.sentences_per_chunk")),
		)
		restAdapter = rest.New(rs, rest.WithLogger(logger))
		mux         = http.NewServeMux()
		address     = ":" + viper.GetString("http.port")
	)

	if err := rs.BulkLoad(ctx); err != nil {
		log.Fatal("bulk load: ", err)
	}

	if viper.GetBool("ingest.reconcile") {
		fixed, err := rs.Reconcile(ctx)
		if err != nil {
			log.Fatal("reconcile: ", err)
		}
		log.Println("reconciled reviews: ", fixed)
	}

	restAdapter.RegisterHandlers(mux)

	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Second,
		Addr:              address,
		Handler:           mux,
	}

	log.Println("listening on", address)

	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
		log.Println("Stopped serving new connections.")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP shutdown error: %v", err)
	}
	log.Println("Graceful shutdown complete.")
}

func embedderFromConfig(ctx context.Context, logger *zap.Logger) (reviewserver.Embedder, error) {
	switch name := viper.GetString("adapter.embed.name"); name {
	case "ollama":
		log.Println("embed adapter: ollama")
		return ollamaAdapter.New(
			ollamaAdapter.WithBaseURL(viper.GetString("ollama.base_url")),
			ollamaAdapter.WithEmbeddingModel(viper.GetString("adapter.embed.model")),
			ollamaAdapter.WithLogger(logger),
		), nil
	case "google-genai":
		log.Println("embed adapter: google-genai")
		// The client gets the API key from the environment variable `GEMINI_API_KEY`.
		genaiClient, err := genai.NewClient(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return googlegenai.New(
			genaiClient,
			googlegenai.WithEmbeddingModel(viper.GetString("adapter.embed.model")),
			googlegenai.WithLogger(logger),
		), nil
	case "hugot":
		log.Println("embed adapter: hugot")
		session, err := hugot.NewGoSession()
		if err != nil {
			return nil, fmt.Errorf("hugot session: %w", err)
		}
		return hugotAdapter.New(
			ctx,
			session,
			hugotAdapter.WithModel(viper.GetString("adapter.embed.model")),
			hugotAdapter.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown embed adapter: %s", name)
	}
}

func retrieverFromConfig(ctx context.Context, logger *zap.Logger) (reviewserver.Retriever, error) {
	switch name := viper.GetString("adapter.retrieve.name"); name {
	case "weaviate":
		log.Println("retrieve adapter: weaviate")
		wvClient, err := weaviate.NewClient(weaviate.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: viper.GetString("weaviate.scheme"),
		})
		if err != nil {
			return nil, fmt.Errorf("weaviate client: %w", err)
		}
		return weaviateAdapter.New(ctx, wvClient, weaviateAdapter.WithLogger(logger))
	case "redis":
		log.Println("retrieve adapter: redis")
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Protocol: viper.GetInt("redis.protocol"),
		})
		return redisAdapter.New(
			ctx,
			rdb,
			redisAdapter.WithIndexName(viper.GetString("redis.index")),
			redisAdapter.WithIndexPrefix(viper.GetString("redis.index_prefix")),
			redisAdapter.WithDialectVersion(viper.GetInt("redis.protocol")),
			redisAdapter.WithVectorDim(viper.GetInt("redis.vector_dim")),
			redisAdapter.WithVectorDistanceMetric(viper.GetString("redis.vector_distance_metric")),
			redisAdapter.WithLogger(logger),
		)
	case "sqlitevec":
		log.Println("retrieve adapter: sqlitevec")
		return sqlitevecAdapter.New(
			ctx,
			viper.GetString("sqlitevec.name"),
			sqlitevecAdapter.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown retrieve adapter: %s", name)
	}
}

func generativeFromConfig(ctx context.Context, logger *zap.Logger) (reviewserver.GenerativeModel, error) {
	switch name := viper.GetString("adapter.generative.name"); name {
	case "ollama":
		log.Println("generative adapter: ollama")
		return ollamaAdapter.New(
			ollamaAdapter.WithBaseURL(viper.GetString("ollama.base_url")),
			ollamaAdapter.WithGenerativeModel(viper.GetString("adapter.generative.model")),
			ollamaAdapter.WithLogger(logger),
		), nil
	case "google-genai":
		log.Println("generative adapter: google-genai")
		genaiClient, err := genai.NewClient(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return googlegenai.New(
			genaiClient,
			googlegenai.WithGenerativeModel(viper.GetString("adapter.generative.model")),
			googlegenai.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown generative adapter: %s", name)
	}
}
