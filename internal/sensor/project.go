package sensor

import (
	"fmt"

	"codeberg.org/mutker/bydmon/internal/battery"
)

// Options select which descriptor families Project emits and how cells
// are numbered. They are fixed for the life of a deployment; cell
// identifiers depend on ShowResetCounter and ShowModules.
type Options struct {
	ShowCellVoltage     bool
	ShowCellTemperature bool
	ShowTowers          bool
	ShowModules         bool
	ShowResetCounter    bool
	AggregateModules    bool
}

// Project derives the full descriptor list from a snapshot's shape. It is
// deterministic: the same snapshot and options always produce the same
// descriptors in the same order.
func Project(s *battery.Snapshot, opts Options) []Descriptor {
	serial := s.SerialNumber()

	descriptors := make([]Descriptor, 0, len(globalMetrics))

	for _, m := range globalMetrics {
		key := m.Key
		descriptors = append(descriptors, Descriptor{
			ID:       GlobalID(serial, key),
			Label:    m.Name,
			Unit:     m.Unit,
			Icon:     m.Icon,
			Class:    m.Class,
			Category: CategoryGlobal,
			Resolve: func(snap *battery.Snapshot) (any, bool) {
				return snap.Global(key)
			},
		})
	}

	if opts.ShowTowers {
		for t := range s.Towers {
			towerIndex := t
			for _, m := range towerMetrics {
				key := m.Key
				descriptors = append(descriptors, Descriptor{
					ID:       TowerID(serial, key, towerIndex),
					Label:    fmt.Sprintf("Tower %d %s", towerIndex+1, m.Name),
					Unit:     m.Unit,
					Icon:     m.Icon,
					Class:    m.Class,
					Category: CategoryTower,
					Resolve:  towerResolver(towerIndex, key),
				})
			}
		}
	}

	if opts.ShowCellVoltage {
		descriptors = append(descriptors, cellDescriptors(s, opts, serial, CategoryCellVoltage)...)
	}

	if opts.ShowCellTemperature {
		descriptors = append(descriptors, cellDescriptors(s, opts, serial, CategoryCellTemperature)...)
	}

	if opts.AggregateModules {
		descriptors = append(descriptors, moduleAggregates(s, serial)...)
	}

	return descriptors
}

// cellValues selects the cell array a category projects over.
func cellValues(tower *battery.Tower, category Category) []float64 {
	if category == CategoryCellTemperature {
		return tower.CellTemperatures
	}

	return tower.CellVoltages
}

// cellDescriptors emits one descriptor per cell of every tower.
//
// Numbering rules, shared by both cell categories:
//   - labels are zero-padded to 3 digits when a tower has 100+ cells,
//     2 otherwise; the reset-counter mode forces 2 since a per-module
//     count never reaches 100
//   - with the reset counter the displayed number restarts at 1 on each
//     module boundary; without it, cells count continuously from 1
//   - the module number is part of the identifier only when module
//     display is on (0 otherwise)
func cellDescriptors(s *battery.Snapshot, opts Options, serial string, category Category) []Descriptor {
	noun := "Cell Voltage"
	unit := "mV"
	icon := "mdi:current-dc"
	class := ClassVoltage
	moduleSize := s.ModuleCellCount()
	if category == CategoryCellTemperature {
		noun = "Cell Temperature"
		unit = "°C"
		icon = "mdi:thermometer"
		class = ClassTemperature
		moduleSize = s.ModuleCellTempCount()
	}

	var descriptors []Descriptor
	for t := range s.Towers {
		towerIndex := t
		values := cellValues(&s.Towers[t], category)

		numDigits := 2
		if len(values) >= 100 {
			numDigits = 3
		}
		if opts.ShowResetCounter {
			numDigits = 2
		}

		counter := 0
		for c := range values {
			cellIndex := c
			counter++
			if opts.ShowResetCounter && moduleSize > 0 && counter > moduleSize {
				counter = 1
			}

			moduleNo := 0
			if opts.ShowModules && moduleSize > 0 {
				moduleNo = cellIndex/moduleSize + 1
			}

			// Without the reset counter this is just the 1-based cell
			// index, since the counter never restarts.
			cellLabel := fmt.Sprintf("%0*d", numDigits, counter)

			label := fmt.Sprintf("%s Tower %d", noun, towerIndex+1)
			if moduleNo > 0 {
				label += fmt.Sprintf(" Module %d", moduleNo)
			}
			label += fmt.Sprintf(" Cell %s", cellLabel)

			descriptors = append(descriptors, Descriptor{
				ID:       CellID(serial, category, towerIndex, moduleNo, cellLabel),
				Label:    label,
				Unit:     unit,
				Icon:     icon,
				Class:    class,
				Category: category,
				Resolve:  cellResolver(category, towerIndex, cellIndex),
			})
		}
	}

	return descriptors
}

func towerResolver(towerIndex int, key string) Resolver {
	return func(snap *battery.Snapshot) (any, bool) {
		if snap == nil || towerIndex >= len(snap.Towers) {
			return nil, false
		}

		return snap.Towers[towerIndex].Attr(key)
	}
}

func cellResolver(category Category, towerIndex, cellIndex int) Resolver {
	return func(snap *battery.Snapshot) (any, bool) {
		if snap == nil || towerIndex >= len(snap.Towers) {
			return nil, false
		}
		values := cellValues(&snap.Towers[towerIndex], category)
		if cellIndex >= len(values) {
			return nil, false
		}

		return values[cellIndex], true
	}
}
