package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winwai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "winwai",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	drawOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winwai",
			Subsystem: "draw",
			Name:      "outcomes_total",
			Help:      "Raffle evaluation outcomes by kind and failure code.",
		},
		[]string{"trigger", "kind", "code"},
	)

	drawBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "winwai",
			Subsystem: "draw",
			Name:      "batch_duration_seconds",
			Help:      "Duration of draw batches.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"trigger"},
	)

	vouchersIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winwai",
			Subsystem: "draw",
			Name:      "vouchers_issued_total",
			Help:      "Vouchers issued by the draw engine.",
		},
		[]string{"digital"},
	)

	entriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "winwai",
			Subsystem: "ledger",
			Name:      "entries_total",
			Help:      "Raffle entries appended to the ledger.",
		},
	)

	ticketsSpent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "winwai",
			Subsystem: "ledger",
			Name:      "tickets_spent_total",
			Help:      "Tickets spent on raffle entries.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		drawOutcomes,
		drawBatchDuration,
		vouchersIssued,
		entriesCreated,
		ticketsSpent,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency keyed by the matched route template
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordDrawOutcome counts one raffle evaluation outcome
func RecordDrawOutcome(trigger, kind, code string) {
	if code == "" {
		code = "none"
	}
	drawOutcomes.WithLabelValues(trigger, kind, code).Inc()
}

// RecordDrawBatch observes the duration of a draw batch
func RecordDrawBatch(trigger string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	drawBatchDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordVoucherIssued counts an issued voucher
func RecordVoucherIssued(digital bool) {
	vouchersIssued.WithLabelValues(strconv.FormatBool(digital)).Inc()
}

// RecordEntry counts a ledger entry and the tickets it spent
func RecordEntry(tickets int) {
	entriesCreated.Inc()
	ticketsSpent.Add(float64(tickets))
}
