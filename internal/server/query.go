package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Modertool999/arb-detection/internal/scanner"
)

// errBadQuery marks query strings that fail numeric parsing.
type errBadQuery struct{ err error }

func (e errBadQuery) Error() string { return "Invalid query parameter: " + e.err.Error() }
func (e errBadQuery) Unwrap() error { return e.err }

// parseRequest reads us, uk, fx, period, interval, window and z_thresh, falling back to the
// configured defaults for anything absent.
func (s *Server) parseRequest(r *http.Request) (scanner.Request, error) {
	q := r.URL.Query()
	get := func(key, fallback string) string {
		if v := q.Get(key); v != "" {
			return v
		}
		return fallback
	}

	req := s.base
	params := req.Params
	if v := q.Get("window"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return scanner.Request{}, errBadQuery{fmt.Errorf("window: %w", err)}
		}
		params.Window = w
	}
	if v := q.Get("z_thresh"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return scanner.Request{}, errBadQuery{fmt.Errorf("z_thresh: %w", err)}
		}
		params.Threshold = z
	}

	req.Query.Domestic = get("us", req.Query.Domestic)
	req.Query.Foreign = get("uk", req.Query.Foreign)
	req.Query.FX = get("fx", req.Query.FX)
	req.Query.Period = get("period", req.Query.Period)
	req.Query.Interval = get("interval", req.Query.Interval)
	req.Params = params
	return req, nil
}
