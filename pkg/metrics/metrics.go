package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "okx_dex_api_requests_total", Help: "Aggregator API requests by path and outcome"},
		[]string{"path", "outcome"},
	)
	SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "okx_dex_swaps_total", Help: "Swap executions by chain and outcome"},
		[]string{"chain", "outcome"},
	)
	ApprovalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "okx_dex_approvals_total", Help: "Token approvals by chain and outcome"},
		[]string{"chain", "outcome"},
	)
	ExecutionRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "okx_dex_execution_retries_total", Help: "Retried broadcast attempts by chain"},
		[]string{"chain"},
	)
	SwapDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "okx_dex_swap_duration_seconds",
			Help:    "Wall time from swap request to confirmation",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"chain"},
	)
)

func init() {
	prometheus.MustRegister(APIRequestsTotal, SwapsTotal, ApprovalsTotal, ExecutionRetriesTotal, SwapDuration)
}

// Outcome maps an error to a metric label
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Serve exposes /metrics on addr in the background
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
