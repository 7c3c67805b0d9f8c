package api

import (
	"net/http"

	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/portfolio"
)

const recentTrades = 50

type portfolioResponse struct {
	Summary *models.PortfolioSummary `json:"summary"`
	Trades  []*models.Trade          `json:"trades"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Portfolio.Summary(r.Context(), s.deps.Quotes.Prices())
	if err != nil {
		s.logger.WithError(err).Error("Failed to value portfolio")
		status, errType := statusFor(err)
		writeError(w, status, errType, err)
		return
	}
	trades, err := s.deps.Portfolio.Trades(r.Context(), recentTrades)
	if err != nil {
		status, errType := statusFor(err)
		writeError(w, status, errType, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolioResponse{Summary: summary, Trades: trades})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	trade, err := s.deps.Portfolio.Execute(r.Context(), req)
	if err != nil {
		status, errType := statusFor(err)
		writeError(w, status, errType, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleResetPortfolio(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolio.Reset(r.Context()); err != nil {
		s.logger.WithError(err).Error("Failed to reset portfolio")
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
