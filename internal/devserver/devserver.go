// Package devserver fronts the bundler's in-memory asset server during
// development. It owns the public listener on the adjacent port (declared
// application port + 1), adds CORS and configured response headers, and
// reverse-proxies everything else to the bundler, whose event stream drives
// the hot-reload client.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/blitz-web/blitz/internal/factory"
)

// Options configures the public dev server.
type Options struct {
	// Host and Port are the public bind address. Port is the declared
	// application port + 1.
	Host string
	Port int

	// Headers are extra response headers applied to every response.
	Headers map[string]string

	// Upstream is the bundler's internal serve address.
	Upstream *url.URL

	Logger *slog.Logger
}

// Server is the public asset dev server.
type Server struct {
	opts       Options
	httpServer *http.Server
}

// Start begins serving the bundler's build context on an internal loopback
// port and returns the public Server fronting it.
func Start(buildCtx api.BuildContext, cfg *factory.DevServer, logger *slog.Logger) (*Server, error) {
	serveOpts := api.ServeOptions{Host: "127.0.0.1"}
	if cfg.Fallback != "" {
		serveOpts.Fallback = cfg.Fallback
	}

	result, err := buildCtx.Serve(serveOpts)
	if err != nil {
		return nil, fmt.Errorf("starting bundler serve: %w", err)
	}

	upstream := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("127.0.0.1:%d", result.Port),
	}
	return New(Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Headers:  cfg.Headers,
		Upstream: upstream,
		Logger:   logger,
	}), nil
}

// New creates the public server. Split from Start so the router can be
// exercised against any upstream.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.extraHeaders)

	proxy := httputil.NewSingleHostReverseProxy(opts.Upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
		if opts.Logger != nil {
			opts.Logger.Warn("asset proxy error", slog.Any("error", err))
		}
		w.WriteHeader(http.StatusBadGateway)
	}
	r.Handle("/*", proxy)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port)),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// URL returns the public base URL of the dev server.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s:%d", s.opts.Host, s.opts.Port)
}

// Run starts the listener and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.opts.Logger != nil {
			s.opts.Logger.Info("shutting down asset dev server")
		}
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// extraHeaders applies the configured response headers.
func (s *Server) extraHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range s.opts.Headers {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}
