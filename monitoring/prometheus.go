package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/mezonai/poldrop/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type runPromMetrics struct {
	runStartUnixSeconds prometheus.Gauge
	txOutcomeCount      *prometheus.CounterVec
	receiptWait         prometheus.Histogram
	senderBalanceWei    prometheus.Gauge
	nextNonce           prometheus.Gauge
	walletsGenerated    prometheus.Counter
	panicCount          prometheus.Counter
}

func newRunPromMetrics() *runPromMetrics {
	return &runPromMetrics{
		runStartUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "poldrop_run_start_timestamp_unix_seconds",
				Help: "Unix timestamp the current run started at",
			},
		),
		txOutcomeCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poldrop_tx_outcome_count",
				Help: "Number of distribution transfers by outcome",
			},
			[]string{"status"},
		),
		receiptWait: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "poldrop_receipt_wait_seconds",
				Help:    "Latency in second from broadcast until the receipt was observed",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		senderBalanceWei: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "poldrop_sender_balance_wei",
				Help: "Sender balance observed at preflight",
			},
		),
		nextNonce: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "poldrop_next_nonce",
				Help: "Nonce the next transfer will use",
			},
		),
		walletsGenerated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "poldrop_wallets_generated_count",
				Help: "The total number of generated wallets",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "poldrop_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var (
	runMetrics *runPromMetrics
	initOnce   sync.Once
)

// InitMetrics registers collectors once. Until it is called every recorder below is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		runMetrics = newRunPromMetrics()
		runMetrics.runStartUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("METRICS", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func RecordTxOutcome(status string) {
	if runMetrics == nil {
		return
	}
	runMetrics.txOutcomeCount.With(prometheus.Labels{
		"status": status,
	}).Inc()
}

func RecordReceiptWait(duration time.Duration) {
	if runMetrics == nil {
		return
	}
	runMetrics.receiptWait.Observe(duration.Seconds())
}

func SetSenderBalance(wei float64) {
	if runMetrics == nil {
		return
	}
	runMetrics.senderBalanceWei.Set(wei)
}

func SetNextNonce(nonce uint64) {
	if runMetrics == nil {
		return
	}
	runMetrics.nextNonce.Set(float64(nonce))
}

func IncreaseWalletsGenerated(n int) {
	if runMetrics == nil {
		return
	}
	runMetrics.walletsGenerated.Add(float64(n))
}

func IncreasePanicCount() {
	if runMetrics == nil {
		return
	}
	runMetrics.panicCount.Inc()
}
