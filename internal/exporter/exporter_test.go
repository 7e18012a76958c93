package exporter_test

import (
	"testing"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/exporter"
	"codeberg.org/mutker/bydmon/internal/sensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSerial = "P030T020Z0000123"

func testSnapshot() *battery.Snapshot {
	return &battery.Snapshot{
		Globals: map[string]any{
			battery.KeySerialNumber:        testSerial,
			battery.KeyBatteryType:         "HVS",
			battery.KeyBMSFirmware:         "3.21",
			battery.KeyModuleCellCount:     16,
			battery.KeyModuleCellTempCount: 8,
			"soc":                          85.5,
			"error_string":                 "Normal",
		},
		Towers: []battery.Tower{
			{
				CellVoltages:     []float64{3300, 3310, 3290, 3300},
				CellTemperatures: []float64{20, 21},
			},
		},
	}
}

func gatherValues(t *testing.T, registry *prometheus.Registry, family string) map[string]float64 {
	t.Helper()

	values := map[string]float64{}
	families, err := registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, label := range m.GetLabel() {
				if label.GetName() == "id" || label.GetName() == "serial" {
					key = label.GetValue()
				}
			}
			values[key] = m.GetGauge().GetValue()
		}
	}

	return values
}

func TestCollectBeforeFirstCommit(t *testing.T) {
	cache := battery.NewCache()
	exp := exporter.New(cache, sensor.Options{})

	assert.Equal(t, 0, testutil.CollectAndCount(exp))
}

func TestCollectResolvedValues(t *testing.T) {
	cache := battery.NewCache()
	cache.Commit(testSnapshot())

	exp := exporter.New(cache, sensor.Options{ShowCellVoltage: true, AggregateModules: true})
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(exp))

	values := gatherValues(t, registry, "byd_sensor_value")
	assert.InDelta(t, 85.5, values["byd_"+testSerial+"_soc"], 1e-9)
	assert.InDelta(t, 3310, values["byd_"+testSerial+"_cell_voltage_1_0_02"], 1e-9)

	info := gatherValues(t, registry, "byd_battery_info")
	assert.Equal(t, 1.0, info[testSerial])
}

func TestCollectModuleAttributes(t *testing.T) {
	cache := battery.NewCache()
	cache.Commit(testSnapshot())

	exp := exporter.New(cache, sensor.Options{AggregateModules: true})
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(exp))

	attrs := map[string]float64{}
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "byd_sensor_attribute" {
			continue
		}
		for _, m := range mf.GetMetric() {
			attr := ""
			for _, label := range m.GetLabel() {
				if label.GetName() == "attribute" {
					attr = label.GetValue()
				}
			}
			attrs[attr] = m.GetGauge().GetValue()
		}
	}

	assert.InDelta(t, 3310, attrs["voltage_max"], 1e-9)
	assert.InDelta(t, 3290, attrs["voltage_min"], 1e-9)
	assert.InDelta(t, 3300.0, attrs["voltage_avg"], 1e-9)
}

func TestSensorSetStaysStable(t *testing.T) {
	cache := battery.NewCache()
	cache.Commit(testSnapshot())

	exp := exporter.New(cache, sensor.Options{ShowCellVoltage: true})
	before := testutil.CollectAndCount(exp)
	require.Greater(t, before, 0)

	// A later snapshot growing a tower must not grow the series set.
	grown := testSnapshot()
	grown.Towers = append(grown.Towers, battery.Tower{CellVoltages: []float64{3305}})
	cache.Commit(grown)

	assert.Equal(t, before, testutil.CollectAndCount(exp))
}

func TestStringValuesAreSkipped(t *testing.T) {
	cache := battery.NewCache()
	cache.Commit(testSnapshot())

	exp := exporter.New(cache, sensor.Options{})
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(exp))

	values := gatherValues(t, registry, "byd_sensor_value")
	_, present := values["byd_"+testSerial+"_error_string"]
	assert.False(t, present)
}
