package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pkg/id"
	"github.com/rustyeddy/fxtools/pricing"
	"github.com/rustyeddy/fxtools/risk"
)

// statusFor maps a calculator failure onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, calculator.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrUnknownPair):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, pricing.ErrQuoteFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, risk.ErrCalculation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	s.writeError(w, statusFor(err), calculator.UserMessage(err))
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req calculator.PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountCurrency == "" {
		req.AccountCurrency = s.cfg.AccountCurrency
	}

	res, err := s.cfg.Position.Calculate(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePip(w http.ResponseWriter, r *http.Request) {
	var req calculator.PipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountCurrency == "" {
		req.AccountCurrency = s.cfg.AccountCurrency
	}

	res, err := s.cfg.Pip.Calculate(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type pairInfo struct {
	market.CurrencyPair
	SymbolID            string  `json:"symbol_id"`
	PipSize             float64 `json:"pip_size"`
	UnitsPerStandardLot float64 `json:"units_per_standard_lot"`
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	pairs := s.cfg.Catalog.Pairs()
	out := make([]pairInfo, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairInfo{
			CurrencyPair:        p,
			SymbolID:            p.SymbolID(),
			PipSize:             risk.PipSize(p),
			UnitsPerStandardLot: risk.UnitsPerStandardLot(p),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pairs":      out,
		"currencies": s.cfg.Catalog.Currencies(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Quotes.Stats())
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.cfg.Quotes.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// endOfLog bounds an open-ended since query.
var endOfLog = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// handleLog lists the newest calculations, or with since/until (RFC3339)
// those created in [since, until) oldest first.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Journal == nil {
		s.writeError(w, http.StatusNotFound, "Calculation log is disabled")
		return
	}

	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		recs []journal.CalculationRecord
		err  error
	)
	if q.Get("since") != "" || q.Get("until") != "" {
		start, end := time.Unix(0, 0).UTC(), endOfLog
		if v := q.Get("since"); v != "" {
			if start, err = time.Parse(time.RFC3339, v); err != nil {
				s.writeError(w, http.StatusBadRequest, "since must be an RFC3339 time")
				return
			}
		}
		if v := q.Get("until"); v != "" {
			if end, err = time.Parse(time.RFC3339, v); err != nil {
				s.writeError(w, http.StatusBadRequest, "until must be an RFC3339 time")
				return
			}
		}
		recs, err = s.cfg.Journal.ListBetween(r.Context(), start.UTC(), end.UTC())
		if len(recs) > limit {
			recs = recs[:limit]
		}
	} else {
		recs, err = s.cfg.Journal.ListRecent(r.Context(), limit)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("list calculations")
		s.writeError(w, http.StatusInternalServerError, "Failed to read calculation log")
		return
	}
	if recs == nil {
		recs = []journal.CalculationRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculations": recs,
		"count":        len(recs),
	})
}

func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Journal == nil {
		s.writeError(w, http.StatusNotFound, "Calculation log is disabled")
		return
	}

	recID := chi.URLParam(r, "id")
	if _, err := id.Time(recID); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid calculation id")
		return
	}

	rec, err := s.cfg.Journal.GetCalculation(r.Context(), recID)
	switch {
	case errors.Is(err, journal.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Calculation not found")
		return
	case err != nil:
		s.log.Error().Err(err).Str("id", recID).Msg("get calculation")
		s.writeError(w, http.StatusInternalServerError, "Failed to read calculation log")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
