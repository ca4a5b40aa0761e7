/*
Package metrics exposes prometheus collectors for the ledger application.

Collectors are usable right away, Init registers them with the default
prometheus registry so that Handler can serve them.
*/
package metrics

import (
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iov-one/mig/coin"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var (
	once sync.Once

	defaultHistogramBucketsSeconds = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

	deliveredCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mig_delivered_total",
			Help: "The total number of delivered operations split by message path and outcome",
		},
		[]string{"path", "status"},
	)

	deliverDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mig_deliver_duration_seconds",
			Help:    "Histogram of operation processing durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"path", "status"},
	)

	burnedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mig_tokens_burned_total",
			Help: "Total amount of token units burned as transfer fees",
		},
		[]string{"ticker"},
	)

	governorExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mig_governor_executions_total",
			Help: "Number of governor transaction execution attempts split by outcome",
		},
		[]string{"status"},
	)

	committedVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mig_committed_version",
			Help: "Last committed store version",
		},
	)
)

// Init registers all collectors with the default prometheus registry. It is
// safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			deliveredCounter,
			deliverDuration,
			burnedCounter,
			governorExecutions,
			committedVersion,
		)
	})
}

// Handler serves the metrics registered with Init.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDeliver counts a delivered operation and observes its duration.
func RecordDeliver(path string, d time.Duration, failure bool) {
	status := outcome(failure).String()
	deliveredCounter.WithLabelValues(path, status).Inc()
	deliverDuration.WithLabelValues(path, status).Observe(d.Seconds())
}

// RecordBurn adds a burned fee to the ticker total. Very large amounts lose
// precision, the counter is an approximation.
func RecordBurn(ticker string, amount coin.Amount) {
	if amount.IsZero() {
		return
	}
	f, ok := new(big.Float).SetString(amount.String())
	if !ok {
		return
	}
	v, _ := f.Float64()
	burnedCounter.WithLabelValues(ticker).Add(v)
}

// RecordGovernorExecution counts an execution attempt of a confirmed
// governor transaction.
func RecordGovernorExecution(failure bool) {
	governorExecutions.WithLabelValues(outcome(failure).String()).Inc()
}

// SetCommittedVersion publishes the latest committed store version.
func SetCommittedVersion(v int64) {
	committedVersion.Set(float64(v))
}
