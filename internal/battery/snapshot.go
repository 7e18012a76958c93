package battery

// Global keys the core itself depends on. The full set of scalar keys a
// device may report is enumerated by the sensor tables.
const (
	KeySerialNumber        = "serial_number"
	KeyBatteryType         = "battery_type_from_serial"
	KeyBMUFirmware         = "bmu_firmware"
	KeyBMSFirmware         = "bms_firmware"
	KeyModuleCellCount     = "module_cell_count"
	KeyModuleCellTempCount = "module_cell_temp_count"
)

// Tower is a physically grouped subset of battery cells with its own
// aggregate attributes. Cell slices are ordered by physical cell position.
type Tower struct {
	Attrs            map[string]any
	CellVoltages     []float64
	CellTemperatures []float64
}

// Attr returns a tower attribute by key.
func (t *Tower) Attr(key string) (any, bool) {
	if t == nil || t.Attrs == nil {
		return nil, false
	}
	v, ok := t.Attrs[key]

	return v, ok
}

// Snapshot is one complete telemetry read from the device. Snapshots are
// immutable once committed to the cache; readers never mutate them.
type Snapshot struct {
	Globals map[string]any
	Towers  []Tower
}

// Empty returns a valid snapshot with no data. It is what the cache holds
// before the first successful poll.
func Empty() *Snapshot {
	return &Snapshot{
		Globals: map[string]any{},
		Towers:  []Tower{},
	}
}

// Valid reports whether the snapshot is structurally sound enough to
// commit: the tower sequence must be present, though it may be empty.
func (s *Snapshot) Valid() bool {
	return s != nil && s.Towers != nil
}

// Global returns a global scalar by key.
func (s *Snapshot) Global(key string) (any, bool) {
	if s == nil || s.Globals == nil {
		return nil, false
	}
	v, ok := s.Globals[key]

	return v, ok
}

// GlobalString returns a global scalar as a string, or "" when absent or
// not a string.
func (s *Snapshot) GlobalString(key string) string {
	v, ok := s.Global(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)

	return str
}

// GlobalInt returns a global scalar coerced to int. Numeric globals may
// arrive as int or float64 depending on the decode path.
func (s *Snapshot) GlobalInt(key string) (int, bool) {
	v, ok := s.Global(key)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// ModuleCellCount returns the number of voltage cells per module, or 0
// when the device did not report one.
func (s *Snapshot) ModuleCellCount() int {
	n, _ := s.GlobalInt(KeyModuleCellCount)
	if n < 0 {
		return 0
	}

	return n
}

// ModuleCellTempCount returns the number of temperature sensors per
// module, or 0 when the device did not report one.
func (s *Snapshot) ModuleCellTempCount() int {
	n, _ := s.GlobalInt(KeyModuleCellTempCount)
	if n < 0 {
		return 0
	}

	return n
}

// SerialNumber returns the device serial, or "" before the first poll.
func (s *Snapshot) SerialNumber() string {
	return s.GlobalString(KeySerialNumber)
}
