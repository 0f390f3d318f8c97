package http

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
)

const (
	DefaultMaxUploadSize = 32 << 20
	DefaultSessionTTL    = 30 * time.Minute
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	sessionSecret []byte
	sessionTTL    time.Duration
	maxUploadSize int64
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithSessionSecret sets the HMAC key signing session cookies
func WithSessionSecret(secret []byte) Option {
	return func(c *config) {
		c.sessionSecret = secret
	}
}

// WithSessionTTL sets the lifetime of a session cookie, renewed on every request
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.sessionTTL = ttl
	}
}

// WithMaxUploadSize limits the size of one upload request in bytes
func WithMaxUploadSize(size int64) Option {
	return func(c *config) {
		c.maxUploadSize = size
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	mergeUC interfaces.MergeUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:          "localhost:8080",
		sessionTTL:    DefaultSessionTTL,
		maxUploadSize: DefaultMaxUploadSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.sessionSecret) == 0 {
		return nil, goerr.New("session secret is required")
	}
	if cfg.maxUploadSize <= 0 {
		return nil, goerr.New("max upload size must be positive", goerr.V("max_upload_size", cfg.maxUploadSize))
	}

	sessions := newSessionIssuer(cfg.sessionSecret, cfg.sessionTTL)
	pages, err := newPageHandler(mergeUC, cfg.maxUploadSize)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)

	router.Get("/health", handleHealth(mergeUC))

	router.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(sessions))

		r.Get("/", pages.Index)
		r.Post("/files", pages.Upload)
		r.Post("/settings", pages.Settings)
		r.Get("/download", pages.Download)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", handleState(mergeUC))
			r.Put("/settings", handleUpdateSettings(mergeUC))
		})
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
