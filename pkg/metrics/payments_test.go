package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPaymentMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.IncInitiated("request")
	m.IncInitiated("goods")
	m.IncCompleted()
	m.IncFailed("timeout")
	m.IncFailed("")
	m.ObservePoll(4 * time.Second)
	m.ObserveRPC("eth_call", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.initiated.WithLabelValues("request")); got != 1 {
		t.Fatalf("initiated request count = %v", got)
	}
	if got := testutil.ToFloat64(m.completed); got != 1 {
		t.Fatalf("completed count = %v", got)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("failed timeout count = %v", got)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty reason should normalize to unknown, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *PaymentMetrics
	m.IncInitiated("request")
	m.IncCompleted()
	m.IncFailed("x")
	m.ObservePoll(time.Second)
	m.ObserveRPC("eth_call", time.Second)

	empty := NewPaymentMetrics(nil)
	empty.IncCompleted()
}
