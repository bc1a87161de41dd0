package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Adapter is an embedded vector index: review chunks live in a plain
// sqlite file with their embeddings as float32 blobs, and top-k search is
// a brute-force cosine scan through a registered scalar function. No
// extra service to run, which makes it the default local deployment.
type Adapter struct {
	db     *sql.DB
	logger *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const driverName = "sqlite3_vec"

var registerDriverOnce sync.Once

func registerDriver() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("vec_cosine", vecCosine, true)
		},
	})
}

func New(ctx context.Context, path string, options ...Option) (*Adapter, error) {
	registerDriverOnce.Do(registerDriver)

	db, err := sql.Open(driverName, fmt.Sprintf("file:%s?mode=rwc&cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}

	a := &Adapter{
		db:     db,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With("path", path).Info("init sqlitevec adapter")

	return a, a.init(ctx)
}

const adapterName = "sqlitevec"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) init(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		create table if not exists "review_chunk" (
			"id" text primary key,
			"review_id" integer not null,
			"chunk" integer not null,
			"content" text not null,
			"rating" real not null,
			"date" text not null,
			"embedding" blob not null
		)
	`)
	if err != nil {
		return fmt.Errorf("creating review_chunk table: %w", err)
	}

	return nil
}
