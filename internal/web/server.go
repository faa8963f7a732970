// Package web serves a table as an HTML page with a small JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Addr      string
	BlockUUID string
	Query     string
	CellWidth int
	Logger    *slog.Logger
}

func (o Options) normalized() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.CellWidth <= 0 {
		o.CellWidth = 80
	}
	return o
}

// NewRouter registers the table routes.
func NewRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		requestLogger(h.logger),
		middleware.Recoverer,
	)
	r.Get("/", h.TablePage)
	r.Post("/cells", h.EditCell)
	r.Post("/pages", h.CreatePage)
	r.Post("/columns/hidden", h.ToggleHidden)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rows", h.Rows)
	})
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type Server struct {
	handler http.Handler
	addr    string
	logger  *slog.Logger
}

func NewServer(h *Handlers, opts Options) *Server {
	opts = opts.normalized()
	return &Server{handler: NewRouter(h), addr: opts.Addr, logger: opts.Logger}
}

// Serve blocks until ctx is cancelled, then shuts the listener down.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting web server", "addr", "http://"+s.addr)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web: server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
