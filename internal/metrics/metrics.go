package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scans_total", Help: "Spread scans served, by result"},
		[]string{"result"},
	)
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Backtests run, by result"},
		[]string{"result"},
	)
	PriceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_fetches_total", Help: "Price series fetched from a provider"},
		[]string{"provider", "result"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	LastZScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "last_zscore", Help: "Most recent spread z-score per cross-listed pair"},
		[]string{"pair"},
	)
)

func init() {
	prometheus.MustRegister(ScansTotal, BacktestsTotal, PriceFetchesTotal, RequestDuration, LastZScore)
}

// Result maps an error to the result label used across counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
