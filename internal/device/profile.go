package device

import (
	"os"

	"codeberg.org/mutker/bydmon/internal/errors"
	"gopkg.in/yaml.v3"
)

// Point maps one scalar to its holding registers. Addresses in the tower
// block are relative to the block base.
type Point struct {
	Key     string  `yaml:"key"`
	Address uint16  `yaml:"address"`
	Type    string  `yaml:"type"`             // u16 | s16 | str
	Length  uint16  `yaml:"length,omitempty"` // registers, str only (2 chars each)
	Scale   float64 `yaml:"scale,omitempty"`
	Offset  float64 `yaml:"offset,omitempty"`
}

// TowerBlock describes the per-tower register layout. Tower t occupies
// registers [Base + t*Stride, Base + (t+1)*Stride).
type TowerBlock struct {
	Base            uint16  `yaml:"base"`
	Stride          uint16  `yaml:"stride"`
	Attrs           []Point `yaml:"attrs"`
	CellVoltageBase uint16  `yaml:"cell_voltage_base"`
	CellTempBase    uint16  `yaml:"cell_temp_base"`
}

// Profile is the register map for one BMU firmware family. The embedded
// default covers HVS/HVM units; deviating units can ship their own file.
type Profile struct {
	Globals []Point    `yaml:"globals"`
	Tower   TowerBlock `yaml:"tower"`
}

func (p *Profile) validate() error {
	errFactory := errors.New()

	if len(p.Globals) == 0 {
		return errFactory.New(ErrInvalidProfile).WithMessage("profile has no global points")
	}
	if p.Tower.Stride == 0 {
		return errFactory.New(ErrInvalidProfile).WithMessage("tower stride must be positive")
	}
	for _, pt := range p.Globals {
		if pt.Type == "str" && pt.Length == 0 {
			return errFactory.WithData(ErrInvalidProfile, pt.Key)
		}
	}

	return nil
}

// LoadProfile reads a register profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrProfileRead, err)
	}

	profile := &Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, errFactory.Wrap(ErrInvalidProfile, err)
	}
	if err := profile.validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// DefaultProfile returns the built-in HVS/HVM register map.
func DefaultProfile() *Profile {
	return &Profile{
		Globals: []Point{
			{Key: "serial_number", Address: 0x0000, Type: "str", Length: 10},
			{Key: "bmu_firmware", Address: 0x000C, Type: "ver"},
			{Key: "bms_firmware", Address: 0x000D, Type: "ver"},
			{Key: "towers", Address: 0x0010, Type: "u16"},
			{Key: "modules", Address: 0x0011, Type: "u16"},
			{Key: "module_cell_count", Address: 0x0012, Type: "u16"},
			{Key: "module_cell_temp_count", Address: 0x0013, Type: "u16"},
			{Key: "number_of_cells", Address: 0x0014, Type: "u16"},
			{Key: "number_of_temperatures", Address: 0x0015, Type: "u16"},
			{Key: "soc", Address: 0x0020, Type: "u16"},
			{Key: "soh", Address: 0x0021, Type: "u16"},
			{Key: "battery_voltage", Address: 0x0022, Type: "u16", Scale: 0.01},
			{Key: "output_voltage", Address: 0x0023, Type: "u16", Scale: 0.01},
			{Key: "current", Address: 0x0024, Type: "s16", Scale: 0.1},
			{Key: "power", Address: 0x0025, Type: "s16", Scale: 10},
			{Key: "max_voltage", Address: 0x0026, Type: "u16", Scale: 0.01},
			{Key: "min_voltage", Address: 0x0027, Type: "u16", Scale: 0.01},
			{Key: "max_temperature", Address: 0x0028, Type: "s16"},
			{Key: "min_temperature", Address: 0x0029, Type: "s16"},
			{Key: "battery_temperature", Address: 0x002A, Type: "s16"},
			{Key: "error_number", Address: 0x002B, Type: "u16"},
			{Key: "charge_total", Address: 0x002C, Type: "u16", Scale: 0.1},
			{Key: "discharge_total", Address: 0x002E, Type: "u16", Scale: 0.1},
		},
		Tower: TowerBlock{
			Base:   0x0100,
			Stride: 0x0200,
			Attrs: []Point{
				{Key: "balancing_status", Address: 0x0000, Type: "u16"},
				{Key: "balancing_count", Address: 0x0001, Type: "u16"},
				{Key: "max_cell_voltage_mv", Address: 0x0002, Type: "u16"},
				{Key: "min_cell_voltage_mv", Address: 0x0003, Type: "u16"},
				{Key: "max_cell_voltage_cell", Address: 0x0004, Type: "u16"},
				{Key: "min_cell_voltage_cell", Address: 0x0005, Type: "u16"},
				{Key: "max_cell_temp", Address: 0x0006, Type: "s16"},
				{Key: "min_cell_temp", Address: 0x0007, Type: "s16"},
				{Key: "max_cell_temp_cell", Address: 0x0008, Type: "u16"},
				{Key: "min_cell_temp_cell", Address: 0x0009, Type: "u16"},
				{Key: "battery_volt", Address: 0x000A, Type: "u16", Scale: 0.01},
				{Key: "out_volt", Address: 0x000B, Type: "u16", Scale: 0.01},
				{Key: "soc_diagnosis", Address: 0x000C, Type: "u16", Scale: 0.1},
				{Key: "soh", Address: 0x000D, Type: "u16"},
				{Key: "state", Address: 0x000E, Type: "u16"},
			},
			CellVoltageBase: 0x0040,
			CellTempBase:    0x0140,
		},
	}
}
