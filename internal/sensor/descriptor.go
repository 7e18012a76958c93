// Package sensor projects a battery snapshot into a flat set of uniquely
// identified metric descriptors.
//
// Descriptors are built once, from the shape of the first valid snapshot
// (tower count, cells per tower). Their resolvers are pure functions over
// whatever snapshot the caller hands them, so the set outlives individual
// polls: a stale or empty snapshot simply resolves to "no value".
package sensor

import "codeberg.org/mutker/bydmon/internal/battery"

// Category tags which projection rule produced a descriptor.
type Category string

const (
	CategoryGlobal          Category = "global"
	CategoryTower           Category = "tower"
	CategoryCellVoltage     Category = "cell_voltage"
	CategoryCellTemperature Category = "cell_temperature"
	CategoryModuleAggregate Category = "module_aggregate"
)

// DeviceClass hints the front end how to render a metric.
type DeviceClass string

const (
	ClassNone        DeviceClass = ""
	ClassVoltage     DeviceClass = "voltage"
	ClassCurrent     DeviceClass = "current"
	ClassPower       DeviceClass = "power"
	ClassTemperature DeviceClass = "temperature"
)

// Resolver reads one metric value out of a snapshot. Missing or short
// data yields ok=false, never an error: a resolver must not fail.
type Resolver func(*battery.Snapshot) (any, bool)

// Descriptor is the host-consumable representation of one measurable
// quantity. ID is globally unique and stable across polls for the same
// physical entity.
type Descriptor struct {
	ID       string
	Label    string
	Unit     string
	Icon     string
	Class    DeviceClass
	Category Category
	Resolve  Resolver

	// Attrs resolves attached statistics for module aggregates; nil for
	// every other category.
	Attrs Resolver
}

// Set is an ordered descriptor list with an ID index.
type Set struct {
	descriptors []Descriptor
	byID        map[string]int
}

func NewSet(descriptors []Descriptor) *Set {
	byID := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		byID[d.ID] = i
	}

	return &Set{descriptors: descriptors, byID: byID}
}

func (s *Set) Len() int {
	return len(s.descriptors)
}

func (s *Set) Descriptors() []Descriptor {
	return s.descriptors
}

// Resolve reads the metric with the given ID from the snapshot. The second
// return is false for unknown IDs and for values absent from the snapshot.
func (s *Set) Resolve(id string, snapshot *battery.Snapshot) (any, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	return s.descriptors[i].Resolve(snapshot)
}

// Identity groups all metrics of one physical battery under one logical
// device for the front end.
type Identity struct {
	SerialNumber string
	Model        string
	Firmware     string
}

// DeviceIdentity derives the device identity from snapshot globals.
func DeviceIdentity(s *battery.Snapshot) Identity {
	return Identity{
		SerialNumber: s.SerialNumber(),
		Model:        s.GlobalString(battery.KeyBatteryType),
		Firmware:     s.GlobalString(battery.KeyBMSFirmware),
	}
}
