package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey     struct{}
	loggerKey      struct{}
	dbKey          struct{}
	txKey          struct{}
	httpClientKey  struct{}
	httpRequestKey struct{}
	httpWriterKey  struct{}
	startTimeKey   struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.INFO)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the database transaction begun by WithDBTransaction if one is
// active, otherwise the root gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if box, ok := ctx.Value(txKey{}).(*txBox); ok && box.tx != nil {
		return box.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db
}

type txBox struct {
	tx *gorm.DB
}

// WithDBTransaction begins a transaction and makes DB return it until
// CommitDBTransaction or RollbackDBTransaction is called on the same context
// chain.
func WithDBTransaction(ctx context.Context) context.Context {
	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	return context.WithValue(ctx, txKey{}, &txBox{tx: db.Begin()})
}

func CommitDBTransaction(ctx context.Context) error {
	if box, ok := ctx.Value(txKey{}).(*txBox); ok && box.tx != nil {
		tx := box.tx
		box.tx = nil
		return tx.Commit().Error
	}

	return nil
}

func RollbackDBTransaction(ctx context.Context) {
	if box, ok := ctx.Value(txKey{}).(*txBox); ok && box.tx != nil {
		box.tx.Rollback()
		box.tx = nil
	}
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

// HTTPClient returns the outbound HTTP client. The default enforces the hard
// timeout required for calls to Microsoft and Xbox Live endpoints.
func HTTPClient(ctx context.Context) *http.Client {
	client, ok := ctx.Value(httpClientKey{}).(*http.Client)
	if !ok {
		return &http.Client{Timeout: 10 * time.Second}
	}

	return client
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	r, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	if !ok {
		return nil
	}

	return r
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, ok := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	if !ok {
		return nil
	}

	return w
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok {
		return time.Time{}
	}

	return t
}
