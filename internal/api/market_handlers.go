package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/yourusername/invest-tracker/internal/calculator"
	"github.com/yourusername/invest-tracker/internal/feed"
	"github.com/yourusername/invest-tracker/internal/models"
)

type symbolsResponse struct {
	Symbols []string       `json:"symbols"`
	Quotes  []models.Quote `json:"quotes"`
}

type newsResponse struct {
	Enabled   bool                 `json:"enabled"`
	Articles  []models.NewsArticle `json:"articles"`
	FetchedAt *time.Time           `json:"fetched_at,omitempty"`
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, symbolsResponse{
		Symbols: s.deps.Engine.AllowList().Symbols(),
		Quotes:  s.deps.Quotes.Quotes(),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	if !s.deps.Engine.AllowList().Contains(symbol) {
		writeError(w, http.StatusNotFound, "not_found", models.ErrUnknownSymbol)
		return
	}

	series, err := s.deps.Provider.Series(r.Context(), symbol)
	if err != nil {
		if feed.IsUnknownSymbol(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		s.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load series")
		writeError(w, http.StatusBadGateway, "feed_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		writeJSON(w, http.StatusOK, newsResponse{Articles: []models.NewsArticle{}})
		return
	}
	articles, fetched := s.deps.News.Latest()
	resp := newsResponse{Enabled: true, Articles: articles}
	if !fetched.IsZero() {
		resp.FetchedAt = &fetched
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSIP(w http.ResponseWriter, r *http.Request) {
	var req calculator.SIPRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := calculator.SIP(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleProfit(w http.ResponseWriter, r *http.Request) {
	var req calculator.ProfitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := calculator.Profit(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
