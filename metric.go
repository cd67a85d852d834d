package tns

import (
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	MetricNameSpace = "tns"
)

var (
	signerBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "signer_balance",
			Help:      "native token balance of the wallet account",
		},
		[]string{"address", "chainId"},
	)

	txTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_total",
			Help:      "transactions sent to the name service contract",
		},
		[]string{"kind", "status"},
	)

	mintsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "mints",
			Help:      "names returned by the last fetch",
		},
	)

	actionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricNameSpace,
			Name:      "action_duration_seconds",
			Help:      "time spent running a user action",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		signerBalance,
		txTotal,
		mintsGauge,
		actionDuration,
	)
}

func metricSignerBalance(bal *big.Int, addr, chainId string) {
	amount, _ := decimal.NewFromBigInt(bal, -18).Float64()
	signerBalance.WithLabelValues(addr, chainId).Set(amount)
}

func metricTx(kind, status string) {
	txTotal.WithLabelValues(kind, status).Inc()
}

func metricMints(n int) {
	mintsGauge.Set(float64(n))
}

func metricAction(action string, d time.Duration) {
	actionDuration.WithLabelValues(action).Observe(d.Seconds())
}
