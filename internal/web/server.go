package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/scanner"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/pkg/model"
)

// Options wires the server to the analysis pipeline
type Options struct {
	Provider    provider.Provider
	Registry    *strategy.Registry
	Scorer      *scoring.Scorer
	Engine      *backtest.Engine
	Scanner     *scanner.Scanner // fetch pool for watchlists
	Watchlist   []model.Stock    // used when a request names no symbols
	HistoryDays int

	MonteCarloRuns int
	MonteCarloSeed uint64

	Logger zerolog.Logger
}

// Server represents the web server
type Server struct {
	opts   Options
	logger zerolog.Logger
	srv    *http.Server
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	if opts.Scanner == nil {
		opts.Scanner = scanner.NewScanner(0, 0)
	}
	return &Server{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "web").Logger(),
	}
}

// Handler returns the API routes wrapped in the CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/strategies", s.handleStrategies)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/ticker/", s.handleTicker)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/backtest", s.handleBacktest)

	return corsMiddleware(s.logRequests(mux))
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info().Int("port", port).Msgf("API listening at http://localhost:%d/api", port)

	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers for local development
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
