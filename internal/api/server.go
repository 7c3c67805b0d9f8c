// Package api exposes the dashboard backend over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/invest-tracker/internal/backtest"
	"github.com/yourusername/invest-tracker/internal/feed"
	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/portfolio"
	"github.com/yourusername/invest-tracker/internal/repository"
	"github.com/yourusername/invest-tracker/internal/stream"
)

// QuoteBoard is the live quote state shown next to each symbol
type QuoteBoard interface {
	Quotes() []models.Quote
	Prices() map[string]float64
}

// NewsSource serves the latest fetched headlines
type NewsSource interface {
	Latest() ([]models.NewsArticle, time.Time)
}

// Dependencies are the collaborators the handlers call into. News and Hub
// are optional.
type Dependencies struct {
	Engine         *backtest.Engine
	Provider       feed.Provider
	Portfolio      *portfolio.Service
	Quotes         QuoteBoard
	Results        repository.BacktestResultRepository
	News           NewsSource
	Hub            *stream.Hub
	Logger         *logrus.Logger
	MetricsPath    string
	AllowedOrigins []string
}

// Server routes API requests to handlers
type Server struct {
	deps   Dependencies
	logger *logrus.Entry
	router *mux.Router
}

// NewServer validates deps and builds the router
func NewServer(deps Dependencies) (*Server, error) {
	switch {
	case deps.Engine == nil:
		return nil, errors.New("backtest engine is required")
	case deps.Provider == nil:
		return nil, errors.New("price provider is required")
	case deps.Portfolio == nil:
		return nil, errors.New("portfolio service is required")
	case deps.Quotes == nil:
		return nil, errors.New("quote board is required")
	case deps.Results == nil:
		return nil, errors.New("backtest result repository is required")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}

	s := &Server{
		deps:   deps,
		logger: deps.Logger.WithField("component", "api"),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware, s.instrumentMiddleware)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/symbols", s.handleSymbols).Methods(http.MethodGet)
	v1.HandleFunc("/series/{symbol}", s.handleSeries).Methods(http.MethodGet)
	v1.HandleFunc("/rules/parse", s.handleParseRules).Methods(http.MethodPost)
	v1.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost)
	v1.HandleFunc("/backtests", s.handleListBacktests).Methods(http.MethodGet)
	v1.HandleFunc("/backtests/{id}", s.handleGetBacktest).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	v1.HandleFunc("/portfolio", s.handleResetPortfolio).Methods(http.MethodDelete)
	v1.HandleFunc("/portfolio/trades", s.handleTrade).Methods(http.MethodPost)
	v1.HandleFunc("/calculator/sip", s.handleSIP).Methods(http.MethodPost)
	v1.HandleFunc("/calculator/profit", s.handleProfit).Methods(http.MethodPost)
	v1.HandleFunc("/news", s.handleNews).Methods(http.MethodGet)

	if s.deps.Hub != nil {
		r.HandleFunc("/ws/quotes", s.deps.Hub.ServeWS).Methods(http.MethodGet)
	}
	r.Handle(s.deps.MetricsPath, metrics.Handler()).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrumentMiddleware records request latency by route template
func (s *Server) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		// websocket upgrades hijack the connection
		if route == "/ws/quotes" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(rec.status), elapsed.Seconds())
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"route":       route,
			"status":      rec.status,
			"duration_ms": elapsed.Milliseconds(),
		}).Debug("Request handled")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(s.deps.AllowedOrigins))
	for _, o := range s.deps.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
		}
		next.ServeHTTP(w, r)
	})
}
