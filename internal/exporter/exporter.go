// Package exporter publishes the resolved sensor set as Prometheus
// metrics. The descriptor set is built once, from the first committed
// snapshot that carries a serial number, and stays stable afterwards so
// scrape series never churn.
package exporter

import (
	"sync"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/logger"
	"codeberg.org/mutker/bydmon/internal/sensor"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	valueDesc = prometheus.NewDesc(
		"byd_sensor_value",
		"Resolved value of one battery sensor.",
		[]string{"id", "category"},
		nil,
	)
	attrDesc = prometheus.NewDesc(
		"byd_sensor_attribute",
		"Numeric attribute attached to one battery sensor.",
		[]string{"id", "category", "attribute"},
		nil,
	)
	infoDesc = prometheus.NewDesc(
		"byd_battery_info",
		"Battery identity; value is always 1.",
		[]string{"serial", "model", "firmware"},
		nil,
	)
)

// Exporter is a prometheus.Collector over the snapshot cache.
type Exporter struct {
	cache *battery.Cache
	opts  sensor.Options

	mu       sync.Mutex
	set      *sensor.Set
	identity sensor.Identity
}

func New(cache *battery.Cache, opts sensor.Options) *Exporter {
	return &Exporter{
		cache: cache,
		opts:  opts,
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- valueDesc
	ch <- attrDesc
	ch <- infoDesc
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	snapshot := e.cache.Current()

	set := e.sensorSet(snapshot)
	if set == nil {
		return
	}

	e.mu.Lock()
	identity := e.identity
	e.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(infoDesc, prometheus.GaugeValue, 1,
		identity.SerialNumber, identity.Model, identity.Firmware)

	for _, desc := range set.Descriptors() {
		if value, ok := desc.Resolve(snapshot); ok {
			if v, numeric := toFloat(value); numeric {
				ch <- prometheus.MustNewConstMetric(valueDesc, prometheus.GaugeValue, v,
					desc.ID, string(desc.Category))
			}
		}

		if desc.Attrs == nil {
			continue
		}
		resolved, ok := desc.Attrs(snapshot)
		if !ok {
			continue
		}
		attrs, ok := resolved.(map[string]any)
		if !ok {
			continue
		}
		for name, value := range attrs {
			if v, numeric := toFloat(value); numeric {
				ch <- prometheus.MustNewConstMetric(attrDesc, prometheus.GaugeValue, v,
					desc.ID, string(desc.Category), name)
			}
		}
	}
}

// sensorSet returns the descriptor set, building it from the first
// snapshot that identifies the battery.
func (e *Exporter) sensorSet(snapshot *battery.Snapshot) *sensor.Set {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set != nil {
		return e.set
	}
	if snapshot.SerialNumber() == "" {
		return nil
	}

	e.set = sensor.NewSet(sensor.Project(snapshot, e.opts))
	e.identity = sensor.DeviceIdentity(snapshot)
	logger.Info().
		Str("serial", e.identity.SerialNumber).
		Int("sensors", e.set.Len()).
		Msg("Exporter sensor set built")

	return e.set
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
