package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/Modertool999/arb-detection/internal/backtest"
	"github.com/Modertool999/arb-detection/internal/feed"
	"github.com/Modertool999/arb-detection/internal/spread"
	"github.com/Modertool999/arb-detection/internal/store"
)

type scanResponse struct {
	Date       string  `json:"date"`
	CloseUS    float64 `json:"Close_US"`
	CloseUKUSD float64 `json:"Close_UK_USD"`
	Spread     float64 `json:"spread"`
	ZScore     float64 `json:"z_score"`
	ArbSignal  int     `json:"arb_signal"`
}

func newScanResponse(rec spread.ScoredRecord) scanResponse {
	return scanResponse{
		Date:       rec.Time.Format("2006-01-02"),
		CloseUS:    rec.CloseDomestic,
		CloseUKUSD: rec.CloseForeignConverted,
		Spread:     rec.Spread,
		ZScore:     rec.ZScore,
		ArbSignal:  rec.Signal,
	}
}

type backtestResponse struct {
	TotalReturn float64  `json:"total_return"`
	WinRate     float64  `json:"win_rate"`
	SharpeRatio *float64 `json:"sharpe_ratio"`
}

type runResponse struct {
	ID          string          `json:"id"`
	CreatedAt   string          `json:"created_at"`
	Params      store.RunParams `json:"params"`
	TotalReturn float64         `json:"total_return"`
	WinRate     float64         `json:"win_rate"`
	SharpeRatio *float64        `json:"sharpe_ratio"`
	TotalTrades int             `json:"total_trades"`
	MaxDrawdown float64         `json:"max_drawdown"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Latest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newScanResponse(rec))
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Backtest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backtestResponse{
		TotalReturn: res.Stats.TotalReturn,
		WinRate:     res.Stats.WinRate,
		SharpeRatio: res.Stats.SharpeRatio,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid query parameter: limit"})
			return
		}
		limit = n
	}
	runs, err := s.svc.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runResponse{
			ID:          run.ID.String(),
			CreatedAt:   run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Params:      run.Params,
			TotalReturn: run.Stats.TotalReturn,
			WinRate:     run.Stats.WinRate,
			SharpeRatio: run.Stats.SharpeRatio,
			TotalTrades: run.Stats.TotalTrades,
			MaxDrawdown: run.Stats.MaxDrawdown,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor maps pipeline errors onto HTTP statuses. Anything unrecognized is a server fault.
func statusFor(err error) int {
	var bad errBadQuery
	switch {
	case errors.As(err, &bad),
		errors.Is(err, spread.ErrInvalidParameter),
		errors.Is(err, spread.ErrInsufficientData),
		errors.Is(err, backtest.ErrEmptyBacktest),
		errors.Is(err, feed.ErrNoData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", requestIDFrom(r.Context())).Msg("request failed")
		msg = "Internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
