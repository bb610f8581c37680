package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pricing"
)

// DefaultUpstreamURL is where POST /api is relayed to.
const DefaultUpstreamURL = "https://marketmilk.babypips.com/api"

type PositionCalculator interface {
	Calculate(ctx context.Context, req calculator.PositionRequest) (*calculator.PositionResult, error)
}

type PipCalculator interface {
	Calculate(ctx context.Context, req calculator.PipRequest) (*calculator.PipResult, error)
}

// QuoteStats is the part of *pricing.Client the stats routes use.
type QuoteStats interface {
	Stats() pricing.Stats
	ClearCache()
}

// CalculationLog is satisfied by *journal.SQLite.
type CalculationLog interface {
	GetCalculation(ctx context.Context, id string) (journal.CalculationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]journal.CalculationRecord, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]journal.CalculationRecord, error)
}

// HealthChecker checks the quote API. *pricing.GraphQLTransport
// satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port         int
	UpstreamURL  string
	RelayTimeout time.Duration
	Log          zerolog.Logger

	Catalog  *market.Catalog
	Position PositionCalculator
	Pip      PipCalculator
	Quotes   QuoteStats

	// Optional.
	Journal         CalculationLog
	Upstream        HealthChecker
	AccountCurrency string
}

// Server serves the relay and the calculator API.
type Server struct {
	router *chi.Mux
	server *http.Server
	client *http.Client
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.RelayTimeout <= 0 {
		cfg.RelayTimeout = pricing.DefaultRequestTimeout
	}
	if cfg.AccountCurrency == "" {
		cfg.AccountCurrency = string(market.USD)
	}

	s := &Server{
		router: chi.NewRouter(),
		client: &http.Client{Timeout: cfg.RelayTimeout},
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.RelayTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/health/upstream", s.handleUpstreamHealth)

	s.router.Post("/api", s.handleRelay)

	s.router.Route("/calc", func(r chi.Router) {
		r.Post("/position", s.handlePosition)
		r.Post("/pip", s.handlePip)
		r.Get("/pairs", s.handlePairs)
		r.Get("/stats", s.handleStats)
		r.Delete("/cache", s.handleClearCache)
		r.Get("/log", s.handleLog)
		r.Get("/log/{id}", s.handleLogEntry)
	})
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.log.Info().
		Int("port", s.cfg.Port).
		Str("upstream", s.cfg.UpstreamURL).
		Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
