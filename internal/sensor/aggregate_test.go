package sensor_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateSnapshot(cellCount, tempCount int, towers ...battery.Tower) *battery.Snapshot {
	return &battery.Snapshot{
		Globals: map[string]any{
			battery.KeySerialNumber:        testSerial,
			battery.KeyModuleCellCount:     cellCount,
			battery.KeyModuleCellTempCount: tempCount,
		},
		Towers: towers,
	}
}

func TestModuleAggregateValueAndStats(t *testing.T) {
	s := aggregateSnapshot(3, 2, battery.Tower{
		CellVoltages:     []float64{3300, 3310, 3290},
		CellTemperatures: []float64{21, 23},
	})

	descriptors := sensor.Project(s, sensor.Options{AggregateModules: true})
	require.Len(t, descriptors, len(sensor.Project(s, sensor.Options{}))+1)

	d := findByID(t, descriptors, fmt.Sprintf("byd_%s_tower1_module1", testSerial))
	assert.Equal(t, sensor.CategoryModuleAggregate, d.Category)
	assert.Equal(t, "Tower 1 Module 1", d.Label)

	v, ok := d.Resolve(s)
	require.True(t, ok)
	assert.InDelta(t, 9900, v, 0.001)

	attrs, ok := d.Attrs(s)
	require.True(t, ok)
	m, ok := attrs.(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3310, m["voltage_max"].(float64), 0.001)
	assert.InDelta(t, 3290, m["voltage_min"].(float64), 0.001)
	assert.InDelta(t, 3300.0, m["voltage_avg"].(float64), 0.0001)
	assert.InDelta(t, 23, m["temperature_max"].(float64), 0.001)
	assert.InDelta(t, 21, m["temperature_min"].(float64), 0.001)
	assert.InDelta(t, 22.0, m["temperature_avg"].(float64), 0.0001)
}

// Averages round to 3 decimal places for both chunks.
func TestModuleAggregateAverageRounding(t *testing.T) {
	s := aggregateSnapshot(3, 3, battery.Tower{
		CellVoltages:     []float64{3300, 3301, 3301},
		CellTemperatures: []float64{20, 20, 21},
	})

	descriptors := sensor.Project(s, sensor.Options{AggregateModules: true})
	d := findByID(t, descriptors, fmt.Sprintf("byd_%s_tower1_module1", testSerial))

	attrs, ok := d.Attrs(s)
	require.True(t, ok)
	m := attrs.(map[string]any)
	assert.InDelta(t, 3300.667, m["voltage_avg"].(float64), 0.0000001)
	assert.InDelta(t, 20.333, m["temperature_avg"].(float64), 0.0000001)
}

func TestModuleAggregatePartialTrailingModule(t *testing.T) {
	// 5 voltages in modules of 3: module 2 has a 2-cell chunk.
	s := aggregateSnapshot(3, 2, battery.Tower{
		CellVoltages: []float64{3300, 3300, 3300, 3310, 3320},
	})

	descriptors := sensor.Project(s, sensor.Options{AggregateModules: true})
	d := findByID(t, descriptors, fmt.Sprintf("byd_%s_tower1_module2", testSerial))

	v, ok := d.Resolve(s)
	require.True(t, ok)
	assert.InDelta(t, 6630, v, 0.001)

	attrs, ok := d.Attrs(s)
	require.True(t, ok)
	m := attrs.(map[string]any)
	assert.InDelta(t, 3315.0, m["voltage_avg"].(float64), 0.0000001)
	assert.NotContains(t, m, "temperature_avg")
}

// A temperature-only module still gets a descriptor, but its voltage sum
// has no value.
func TestModuleAggregateTemperatureOnlyModule(t *testing.T) {
	s := aggregateSnapshot(4, 2, battery.Tower{
		CellVoltages:     []float64{3300, 3300, 3300, 3300},
		CellTemperatures: []float64{20, 21, 22, 23, 24, 25},
	})

	descriptors := sensor.Project(s, sensor.Options{AggregateModules: true})

	// Voltages fill one module, temperatures span three.
	d := findByID(t, descriptors, fmt.Sprintf("byd_%s_tower1_module3", testSerial))
	_, ok := d.Resolve(s)
	assert.False(t, ok)

	attrs, ok := d.Attrs(s)
	require.True(t, ok)
	m := attrs.(map[string]any)
	assert.Contains(t, m, "temperature_avg")
	assert.NotContains(t, m, "voltage_avg")
}

// Modules with zero cells in both chunks are skipped outright.
func TestModuleAggregateSkipsEmptyModules(t *testing.T) {
	s := aggregateSnapshot(0, 0, battery.Tower{
		CellVoltages:     []float64{3300, 3300},
		CellTemperatures: []float64{20},
	})

	descriptors := sensor.Project(s, sensor.Options{AggregateModules: true})
	for _, d := range descriptors {
		assert.NotEqual(t, sensor.CategoryModuleAggregate, d.Category)
	}
}
