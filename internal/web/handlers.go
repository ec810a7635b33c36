package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jevit/stock-analyzer/internal/backtest"
	"github.com/jevit/stock-analyzer/internal/provider"
	"github.com/jevit/stock-analyzer/internal/scoring"
	"github.com/jevit/stock-analyzer/internal/strategy"
	"github.com/jevit/stock-analyzer/internal/symbols"
	"github.com/jevit/stock-analyzer/pkg/model"
)

const requestTimeout = 2 * time.Minute

// HealthResponse reports server readiness
type HealthResponse struct {
	Status     string `json:"status"`
	Provider   string `json:"provider"`
	Strategies int    `json:"strategies"`
	Watchlist  int    `json:"watchlist"`
}

// TickerResponse is one ticker's analysis with its recent bars
type TickerResponse struct {
	Analysis scoring.TickerAnalysis `json:"analysis"`
	Candles  []model.Candle         `json:"candles,omitempty"`
}

// AlertsResponse lists the tickers above the alert threshold
type AlertsResponse struct {
	RunID  string                   `json:"run_id"`
	Alerts []scoring.TickerAnalysis `json:"alerts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// handleHealth reports provider and detector availability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Strategies: len(s.opts.Registry.All()),
		Watchlist:  len(s.opts.Watchlist),
	}
	if s.opts.Provider != nil {
		resp.Provider = s.opts.Provider.Name()
		if !s.opts.Provider.IsAvailable() {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStrategies lists the detectors
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Registry.AllInfo())
}

// handleAnalyze ranks a watchlist: /api/analyze?symbols=A,B&min_score=N
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	minScore, err := intParam(r, "min_score", 0)
	if err != nil || minScore < 0 || minScore > 100 {
		writeError(w, http.StatusBadRequest, "min_score must be an integer in [0, 100]")
		return
	}

	report, ok := s.analyze(w, r, minScore)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAlerts returns the analyses above the alert threshold
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	report, ok := s.analyze(w, r, 0)
	if !ok {
		return
	}

	alerts := s.opts.Scorer.Alerts(report.Results)
	if alerts == nil {
		alerts = []scoring.TickerAnalysis{}
	}
	writeJSON(w, http.StatusOK, AlertsResponse{RunID: report.RunID, Alerts: alerts})
}

// handleTicker analyzes one ticker: /api/ticker/AAPL?candles=120
func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	symbol := symbols.Normalize(strings.TrimPrefix(r.URL.Path, "/api/ticker/"))
	if symbol == "" || strings.Contains(symbol, "/") {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	keep, err := intParam(r, "candles", 0)
	if err != nil || keep < 0 {
		writeError(w, http.StatusBadRequest, "candles must be a non-negative integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	candles, err := s.opts.Provider.GetDailyCandles(ctx, symbol, s.opts.HistoryDays)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, provider.ErrNoData) {
			status = http.StatusNotFound
		}
		writeError(w, status, "failed to get stock data: "+err.Error())
		return
	}

	resp := TickerResponse{
		Analysis: s.opts.Scorer.AnalyzeHistory(model.History{Stock: symbols.Lookup(symbol), Candles: candles}),
	}
	if keep > 0 {
		resp.Candles = candles[max(0, len(candles)-keep):]
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBacktest replays detectors: /api/backtest?symbols=X,Y&strategy=Z
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	list := r.URL.Query().Get("symbols")
	if list == "" {
		list = r.URL.Query().Get("symbol")
	}
	if strings.TrimSpace(list) == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	stocks, err := symbols.Load(symbols.Source{List: list})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strategyName := r.URL.Query().Get("strategy")
	if _, err := s.opts.Registry.Select(strategyName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	loaded := provider.LoadHistories(ctx, s.opts.Provider, s.opts.Scanner, stocks, s.opts.HistoryDays)

	run, err := s.opts.Engine.BacktestAll(ctx, loaded.Histories, strategyName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, strategy.ErrUnknownStrategy) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	run.AddFailures(loaded.Failed)

	writeJSON(w, http.StatusOK, backtest.Summarize(run, s.opts.MonteCarloRuns, s.opts.MonteCarloSeed))
}

// analyze fetches and scores the requested watchlist, writing an error
// response on failure
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, minScore int) (*scoring.WatchlistReport, bool) {
	stocks := s.opts.Watchlist
	if list := r.URL.Query().Get("symbols"); strings.TrimSpace(list) != "" {
		var err error
		stocks, err = symbols.Load(symbols.Source{List: list})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}
	if len(stocks) == 0 {
		writeError(w, http.StatusBadRequest, "no symbols requested")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	loaded := provider.LoadHistories(ctx, s.opts.Provider, s.opts.Scanner, stocks, s.opts.HistoryDays)
	report := s.opts.Scorer.AnalyzeWatchlist(ctx, loaded.Histories, minScore)
	report.AddFailures(loaded.Failed)

	s.logger.Info().
		Str("run_id", report.RunID).
		Int("tickers", report.Total).
		Int("ranked", len(report.Results)).
		Int("failed", len(report.Failed)).
		Msg("analysis served")

	return report, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
