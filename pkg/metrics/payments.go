package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment-attempt and ledger RPC activity.
type PaymentMetrics struct {
	initiated    *prometheus.CounterVec
	completed    prometheus.Counter
	failed       *prometheus.CounterVec
	pollDuration prometheus.Histogram
	rpcDuration  *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	initiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_initiated_total",
		Help: "Payment attempts submitted to the external processor.",
	}, []string{"kind"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Payment attempts that reached completed status.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Payment attempts that ended in failure, by reason.",
	}, []string{"reason"})
	pollDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_poll_duration_seconds",
		Help:    "Wall-clock time spent polling a payment attempt.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 90},
	})
	rpcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_rpc_duration_seconds",
		Help:    "Duration of ledger RPC calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(initiated, completed, failed, pollDuration, rpcDuration)
	return &PaymentMetrics{
		initiated:    initiated,
		completed:    completed,
		failed:       failed,
		pollDuration: pollDuration,
		rpcDuration:  rpcDuration,
	}
}

// IncInitiated counts a submitted attempt; kind is "request" or "goods".
func (m *PaymentMetrics) IncInitiated(kind string) {
	if m == nil || m.initiated == nil {
		return
	}
	m.initiated.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCompleted counts a completed attempt.
func (m *PaymentMetrics) IncCompleted() {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.Inc()
}

// IncFailed counts a failed attempt by reason.
func (m *PaymentMetrics) IncFailed(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObservePoll records how long a polling loop ran.
func (m *PaymentMetrics) ObservePoll(duration time.Duration) {
	if m == nil || m.pollDuration == nil {
		return
	}
	m.pollDuration.Observe(duration.Seconds())
}

// ObserveRPC records the duration of a ledger RPC call.
func (m *PaymentMetrics) ObserveRPC(method string, duration time.Duration) {
	if m == nil || m.rpcDuration == nil {
		return
	}
	m.rpcDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
