package sensor_test

import (
	"testing"

	"codeberg.org/mutker/bydmon/internal/sensor"
	"github.com/stretchr/testify/assert"
)

func TestIdentifierGrammar(t *testing.T) {
	serial := "P030T020Z0000123"

	assert.Equal(t, "byd_P030T020Z0000123_soc", sensor.GlobalID(serial, "soc"))
	assert.Equal(t, "byd_P030T020Z0000123_soh_1", sensor.TowerID(serial, "soh", 0))
	assert.Equal(t, "byd_P030T020Z0000123_soh_3", sensor.TowerID(serial, "soh", 2))
	assert.Equal(t,
		"byd_P030T020Z0000123_cell_voltage_1_2_01",
		sensor.CellID(serial, sensor.CategoryCellVoltage, 0, 2, "01"))
	assert.Equal(t,
		"byd_P030T020Z0000123_cell_temperature_2_0_017",
		sensor.CellID(serial, sensor.CategoryCellTemperature, 1, 0, "017"))
	assert.Equal(t, "byd_P030T020Z0000123_tower2_module3", sensor.ModuleID(serial, 1, 2))
}
