package router

import (
	"context"
	"net/http"

	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/logger"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may replace the context by
// returning a non-nil one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written, for logging and
// metrics.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux    *http.ServeMux
	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
}

// Branch returns a router sharing the same mux whose middleware chain can
// diverge from this one.
func (r *Router) Branch() *Router {
	branch := &Router{
		mux:    r.mux,
		cfg:    r.cfg,
		logger: r.logger,
		db:     r.db,
	}
	branch.befores = append(branch.befores, r.befores...)
	branch.afters = append(branch.afters, r.afters...)
	branch.closers = append(branch.closers, r.closers...)
	return branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handle mounts a plain http.Handler, e.g. the prometheus exporter.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}
