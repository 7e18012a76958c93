package sensor

import (
	"fmt"
	"math"

	"codeberg.org/mutker/bydmon/internal/battery"
)

// moduleAggregates emits one descriptor per module that has at least one
// cell in either the voltage or temperature chunk. The value is the sum
// of the module's voltage chunk; max/min/average of each chunk ride along
// as attributes. Averages are rounded to 3 decimal places for voltages
// and temperatures alike.
func moduleAggregates(s *battery.Snapshot, serial string) []Descriptor {
	cellSize := s.ModuleCellCount()
	tempSize := s.ModuleCellTempCount()

	var descriptors []Descriptor
	for t := range s.Towers {
		towerIndex := t
		tower := &s.Towers[t]

		modules := chunkCount(len(tower.CellVoltages), cellSize)
		if n := chunkCount(len(tower.CellTemperatures), tempSize); n > modules {
			modules = n
		}

		for m := 0; m < modules; m++ {
			moduleIndex := m
			voltages := chunk(tower.CellVoltages, cellSize, m)
			temperatures := chunk(tower.CellTemperatures, tempSize, m)
			if len(voltages) == 0 && len(temperatures) == 0 {
				continue
			}

			descriptors = append(descriptors, Descriptor{
				ID:       ModuleID(serial, towerIndex, moduleIndex),
				Label:    fmt.Sprintf("Tower %d Module %d", towerIndex+1, moduleIndex+1),
				Unit:     "mV",
				Icon:     "mdi:battery",
				Class:    ClassVoltage,
				Category: CategoryModuleAggregate,
				Resolve:  moduleSumResolver(towerIndex, moduleIndex, cellSize),
				Attrs:    moduleStatsResolver(towerIndex, moduleIndex, cellSize, tempSize),
			})
		}
	}

	return descriptors
}

// moduleSumResolver sums the module's voltage chunk. A module with no
// voltage cells (temperature-only tail) has no value.
func moduleSumResolver(towerIndex, moduleIndex, cellSize int) Resolver {
	return func(snap *battery.Snapshot) (any, bool) {
		if snap == nil || towerIndex >= len(snap.Towers) {
			return nil, false
		}
		voltages := chunk(snap.Towers[towerIndex].CellVoltages, cellSize, moduleIndex)
		if len(voltages) == 0 {
			return nil, false
		}

		sum := 0.0
		for _, v := range voltages {
			sum += v
		}

		return sum, true
	}
}

func moduleStatsResolver(towerIndex, moduleIndex, cellSize, tempSize int) Resolver {
	return func(snap *battery.Snapshot) (any, bool) {
		if snap == nil || towerIndex >= len(snap.Towers) {
			return nil, false
		}
		tower := &snap.Towers[towerIndex]

		attrs := map[string]any{}
		if voltages := chunk(tower.CellVoltages, cellSize, moduleIndex); len(voltages) > 0 {
			maxV, minV, avgV := stats(voltages)
			attrs["voltage_max"] = maxV
			attrs["voltage_min"] = minV
			attrs["voltage_avg"] = avgV
		}
		if temperatures := chunk(tower.CellTemperatures, tempSize, moduleIndex); len(temperatures) > 0 {
			maxT, minT, avgT := stats(temperatures)
			attrs["temperature_max"] = maxT
			attrs["temperature_min"] = minT
			attrs["temperature_avg"] = avgT
		}
		if len(attrs) == 0 {
			return nil, false
		}

		return attrs, true
	}
}

// chunk returns the index-th consecutive slice of at most size values.
func chunk(values []float64, size, index int) []float64 {
	if size <= 0 || index < 0 {
		return nil
	}
	start := index * size
	if start >= len(values) {
		return nil
	}
	end := start + size
	if end > len(values) {
		end = len(values)
	}

	return values[start:end]
}

func chunkCount(length, size int) int {
	if size <= 0 || length <= 0 {
		return 0
	}

	return (length + size - 1) / size
}

// stats returns max, min and the 3-decimal rounded average.
func stats(values []float64) (maxV, minV, avg float64) {
	maxV = values[0]
	minV = values[0]
	sum := 0.0
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
		sum += v
	}

	return maxV, minV, round3(sum / float64(len(values)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
