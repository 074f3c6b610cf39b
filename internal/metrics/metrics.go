package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_command_errors_total",
		Help: "Total CLI command errors",
	}, []string{"command"})
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_api_requests_total",
		Help: "Total gateway requests by endpoint and status class",
	}, []string{"endpoint", "status"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	APIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hottakes_api_request_duration_seconds",
		Help:    "Gateway request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	Votes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_votes_total",
		Help: "Vote actions taken by type",
	}, []string{"type"})
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hottakes_submissions_total",
		Help: "Opinion submissions by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(CommandRuns, CommandErrors, APIRequests, APIRetries, APIDuration, Votes, Submissions)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

// ObserveAPI records one finished gateway call.
func ObserveAPI(endpoint string, code int, start time.Time) {
	APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	APIRequests.WithLabelValues(endpoint, statusClass(code)).Inc()
}

func IncVote(voteType string)      { Votes.WithLabelValues(voteType).Inc() }
func IncSubmission(outcome string) { Submissions.WithLabelValues(outcome).Inc() }

func statusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	}
	return "5xx"
}
