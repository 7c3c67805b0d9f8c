package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/yourusername/invest-tracker/internal/backtest"
	"github.com/yourusername/invest-tracker/internal/models"
	"github.com/yourusername/invest-tracker/internal/rules"
)

type parseRequest struct {
	Rules string `json:"rules"`
}

type parseResponse struct {
	Rules   rules.RuleSet `json:"rules"`
	Symbols []string      `json:"symbols"`
}

type walkForwardRequest struct {
	Window int `json:"window"`
	Step   int `json:"step"`
}

// backtestRequest runs rule text over [start_index, end_index]. A missing
// end_index means the configured default window, or the whole series.
type backtestRequest struct {
	Rules                string              `json:"rules"`
	StartIndex           int                 `json:"start_index"`
	EndIndex             *int                `json:"end_index"`
	MonteCarloIterations int                 `json:"monte_carlo_iterations"`
	WalkForward          *walkForwardRequest `json:"walk_forward"`
}

func (r backtestRequest) validate(maxIterations int) error {
	if r.StartIndex < 0 {
		return fmt.Errorf("start_index cannot be negative, got %d", r.StartIndex)
	}
	if r.EndIndex != nil && *r.EndIndex < 0 {
		return fmt.Errorf("end_index cannot be negative, got %d", *r.EndIndex)
	}
	if r.MonteCarloIterations < 0 {
		return fmt.Errorf("monte_carlo_iterations cannot be negative, got %d", r.MonteCarloIterations)
	}
	if r.MonteCarloIterations > maxIterations {
		return fmt.Errorf("monte_carlo_iterations cannot exceed %d, got %d", maxIterations, r.MonteCarloIterations)
	}
	return nil
}

type backtestResponse struct {
	Report      *backtest.Report            `json:"report"`
	MonteCarlo  *backtest.MonteCarloResult  `json:"monte_carlo,omitempty"`
	WalkForward *backtest.WalkForwardResult `json:"walk_forward,omitempty"`
}

func (s *Server) handleParseRules(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rs, err := s.deps.Engine.Parse(req.Rules)
	if err != nil {
		var synErr *rules.SyntaxError
		if errors.As(err, &synErr) {
			writeSyntaxError(w, synErr)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Rules: rs, Symbols: rs.Symbols()})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	engine := s.deps.Engine
	if err := req.validate(engine.Config().MaxMonteCarloIterations()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rs, err := engine.Parse(req.Rules)
	if err != nil {
		var synErr *rules.SyntaxError
		if errors.As(err, &synErr) {
			writeSyntaxError(w, synErr)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	series, err := engine.LoadSeries(r.Context(), rs.Symbols())
	if err != nil {
		s.logger.WithError(err).Error("Failed to load series for backtest")
		writeError(w, http.StatusBadGateway, "feed_unavailable", err)
		return
	}

	end := s.resolveEnd(req, series)
	report, err := engine.EvaluateSeries(r.Context(), rs, series, req.StartIndex, end)
	if err != nil {
		s.logger.WithError(err).Error("Backtest failed")
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	resp := backtestResponse{Report: report}
	if req.MonteCarloIterations > 0 {
		mc, err := backtest.RunMonteCarlo(report.Result, backtest.MonteCarloConfig{
			Iterations: req.MonteCarloIterations,
			Seed:       engine.Config().MonteCarloSeed,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err)
			return
		}
		// the per-iteration distribution stays server side
		mc.Distribution = nil
		resp.MonteCarlo = &mc
	}
	if req.WalkForward != nil {
		wf, err := backtest.RunWalkForward(rs, series, req.StartIndex, end, backtest.WalkForwardConfig{
			WindowSize: req.WalkForward.Window,
			StepSize:   req.WalkForward.Step,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err)
			return
		}
		resp.WalkForward = &wf
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolveEnd(req backtestRequest, series map[string]models.PriceSeries) int {
	last := backtest.LastIndex(series)
	if req.EndIndex != nil {
		if *req.EndIndex > last && last >= 0 {
			return last
		}
		return *req.EndIndex
	}
	if window := s.deps.Engine.Config().DefaultWindow; window > 0 {
		end := req.StartIndex + window - 1
		if end < last {
			return end
		}
	}
	return last
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	records, err := s.deps.Results.GetLatest(r.Context(), limit)
	if err != nil {
		status, errType := statusFor(err)
		writeError(w, status, errType, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"backtests": records})
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("%w: %s", models.ErrInvalidID, mux.Vars(r)["id"]))
		return
	}

	record, err := s.deps.Results.GetByID(r.Context(), id)
	if err != nil {
		status, errType := statusFor(err)
		writeError(w, status, errType, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
