package device

import (
	"context"
	"math/rand"
	"sync"

	"codeberg.org/mutker/bydmon/internal/battery"
)

// Simulator is an in-process Client producing plausible HVS telemetry.
// It exists for development without hardware and for exercising the full
// pipeline in tests.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	towers int
	cells  int
	temps  int
	soc    float64
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rng:    rand.New(rand.NewSource(seed)),
		towers: 2,
		cells:  32,
		temps:  16,
		soc:    85,
	}
}

func (s *Simulator) FetchSnapshot(_ context.Context) (*battery.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drift the state of charge a little every poll.
	s.soc += s.rng.Float64()*2 - 1
	if s.soc > 100 {
		s.soc = 100
	}
	if s.soc < 5 {
		s.soc = 5
	}

	globals := map[string]any{
		battery.KeySerialNumber:        "P030T020Z0000001",
		battery.KeyBatteryType:         "HVS",
		battery.KeyBMUFirmware:         "3.16",
		battery.KeyBMSFirmware:         "3.21",
		battery.KeyModuleCellCount:     16,
		battery.KeyModuleCellTempCount: 8,
		"towers":                       s.towers,
		"modules":                      s.cells / 16,
		"number_of_cells":              s.cells,
		"number_of_temperatures":       s.temps,
		"soc":                          s.soc,
		"soh":                          99.0,
		"battery_voltage":              float64(s.cells) * 3.3,
		"output_voltage":               float64(s.cells)*3.3 - 0.4,
		"current":                      s.rng.Float64()*20 - 10,
		"power":                        s.rng.Float64()*3000 - 1500,
		"error_number":                 0.0,
		"error_string":                 "Normal",
	}

	towers := make([]battery.Tower, s.towers)
	for t := range towers {
		towers[t] = s.simTower()
	}

	snapshot := &battery.Snapshot{Globals: globals, Towers: towers}

	maxV, minV := snapshot.Towers[0].CellVoltages[0], snapshot.Towers[0].CellVoltages[0]
	for _, tower := range snapshot.Towers {
		for _, v := range tower.CellVoltages {
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
	}
	globals["max_voltage"] = maxV / 1000
	globals["min_voltage"] = minV / 1000
	globals["voltage_difference"] = (maxV - minV) / 1000

	return snapshot, nil
}

func (s *Simulator) simTower() battery.Tower {
	voltages := make([]float64, s.cells)
	for i := range voltages {
		voltages[i] = 3280 + s.rng.Float64()*60
	}
	temperatures := make([]float64, s.temps)
	for i := range temperatures {
		temperatures[i] = 18 + s.rng.Float64()*8
	}

	return battery.Tower{
		Attrs: map[string]any{
			"balancing_status":    0.0,
			"balancing_count":     float64(s.rng.Intn(200)),
			"max_cell_voltage_mv": maxOf(voltages),
			"min_cell_voltage_mv": minOf(voltages),
			"max_cell_temp":       maxOf(temperatures),
			"min_cell_temp":       minOf(temperatures),
			"soh":                 99.0,
			"state":               "running",
		},
		CellVoltages:     voltages,
		CellTemperatures: temperatures,
	}
}

func (s *Simulator) Close() error {
	return nil
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values {
		if v > m {
			m = v
		}
	}

	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values {
		if v < m {
			m = v
		}
	}

	return m
}
