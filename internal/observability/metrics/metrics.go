package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	queueSendErrorCounter        prometheus.Counter
	httpRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram      *prometheus.HistogramVec
	ledgerTxCounter              *prometheus.CounterVec
	ledgerTxDuration             *prometheus.HistogramVec
	reservoirBalanceGauge        prometheus.Gauge
	poolTotalStakedGauge         *prometheus.GaugeVec
	committedSequenceGauge       prometheus.Gauge
	dbLatency                    *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming api request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "route", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	ledgerTxCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_tx_total",
			Help: "Number of ledger transactions split by operation, outcome and error kind",
		},
		[]string{"operation", "status", "kind"},
	)

	ledgerTxDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_tx_duration_seconds",
			Help:    "Ledger transaction duration in seconds including persistence.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)

	reservoirBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reservoir_balance",
			Help: "Reward inventory left in the reservoir, in whole tokens",
		},
	)

	poolTotalStakedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_total_staked",
			Help: "Collateral staked per pool, in whole tokens",
		},
		[]string{"pool_id", "asset"},
	)

	committedSequenceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_committed_sequence",
			Help: "Sequence number of the last committed ledger transaction",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		queueSendErrorCounter,
		httpRequestDurationHistogram,
		pollerDurationHistogram,
		ledgerTxCounter,
		ledgerTxDuration,
		reservoirBalanceGauge,
		poolTotalStakedGauge,
		committedSequenceGauge,
		dbLatency,
	)
}

// registered reports whether Init ran. Services are also used without a
// metrics endpoint, in tests and one-shot commands.
func registered() bool {
	return dbLatency != nil
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	if !registered() {
		return
	}
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

// RecordLedgerTx counts a ledger transaction. kind is the error kind of a
// rejected transaction, empty on success.
func RecordLedgerTx(d time.Duration, operation string, kind string) {
	if !registered() {
		return
	}
	status := Success
	if kind != "" {
		status = Error
	}

	ledgerTxCounter.WithLabelValues(operation, status.String(), kind).Inc()
	ledgerTxDuration.WithLabelValues(operation, status.String()).Observe(d.Seconds())
}

func RecordReservoirBalance(balance float64) {
	if !registered() {
		return
	}
	reservoirBalanceGauge.Set(balance)
}

func RecordPoolTotalStaked(pid uint64, asset string, staked float64) {
	if !registered() {
		return
	}
	poolTotalStakedGauge.WithLabelValues(strconv.FormatUint(pid, 10), asset).Set(staked)
}

func RecordCommittedSequence(sequence uint64) {
	if !registered() {
		return
	}
	committedSequenceGauge.Set(float64(sequence))
}

func RecordHttpRequestDuration(d time.Duration, method, route string, statusCode int) {
	if !registered() {
		return
	}
	httpRequestDurationHistogram.WithLabelValues(
		method,
		route,
		strconv.Itoa(statusCode),
	).Observe(d.Seconds())
}

func RecordQueueSendError() {
	if !registered() {
		return
	}
	queueSendErrorCounter.Inc()
}
