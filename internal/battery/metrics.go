package battery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "byd_poll_total",
			Help: "Total number of device poll attempts",
		},
		[]string{"status"}, // committed, retained, connection_error, timeout, protocol_error, malformed_snapshot
	)

	pollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "byd_poll_duration_seconds",
			Help:    "Time taken to fetch one snapshot from the device",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	snapshotTowers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "byd_snapshot_towers",
			Help: "Number of towers in the last committed snapshot",
		},
	)
)

// Collectors returns the poll metrics so callers serving a dedicated
// registry can include them alongside the sensor exporter.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{pollTotal, pollDuration, snapshotTowers}
}
