package device

import (
	"context"
	"fmt"
	"testing"
	"time"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/errors"
	mb "github.com/goburrow/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePoint(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		data  []byte
		want  any
	}{
		{
			name:  "u16",
			point: Point{Type: "u16"},
			data:  []byte{0x00, 0x55},
			want:  85.0,
		},
		{
			name:  "u16 scaled",
			point: Point{Type: "u16", Scale: 0.01},
			data:  []byte{0x59, 0xD8}, // 23000 -> 230.00 V
			want:  230.0,
		},
		{
			name:  "s16 negative",
			point: Point{Type: "s16", Scale: 0.1},
			data:  []byte{0xFF, 0x9C}, // -100 -> -10.0 A
			want:  -10.0,
		},
		{
			name:  "s16 offset",
			point: Point{Type: "s16", Offset: -40},
			data:  []byte{0x00, 0x41},
			want:  25.0,
		},
		{
			name:  "str strips padding",
			point: Point{Type: "str", Length: 4},
			data:  []byte{'P', '0', '3', '0', 'T', ' ', 0x00, 0x00},
			want:  "P030T",
		},
		{
			name:  "ver",
			point: Point{Type: "ver"},
			data:  []byte{0x03, 0x10},
			want:  "3.16",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodePoint(tt.point, tt.data))
		})
	}
}

func TestBatteryTypeFromSerial(t *testing.T) {
	assert.Equal(t, "HVS", batteryTypeFromSerial("P030T020Z0000123"))
	assert.Equal(t, "HVM", batteryTypeFromSerial("P021T020Z0000123"))
	assert.Equal(t, "LVS", batteryTypeFromSerial("P011T020Z0000123"))
	assert.Equal(t, "", batteryTypeFromSerial("X999"))
}

func TestDeriveGlobals(t *testing.T) {
	globals := map[string]any{
		battery.KeySerialNumber: "P030T020Z0000123",
		"max_voltage":           3.35,
		"min_voltage":           3.30,
		"error_number":          0.0,
	}

	deriveGlobals(globals)

	assert.Equal(t, "HVS", globals[battery.KeyBatteryType])
	assert.InDelta(t, 0.05, globals["voltage_difference"].(float64), 1e-9)
	assert.Equal(t, "Normal", globals["error_string"])
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Normal", errorText(0))
	assert.Equal(t, "Cell undervoltage", errorText(2))
	assert.Equal(t, "Error 999", errorText(999))
}

func TestClassifyFetchErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{
			name: "modbus exception",
			err:  fmt.Errorf("read: %w", &mb.ModbusError{FunctionCode: 0x83, ExceptionCode: 2}),
			want: battery.ErrProtocolFault,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("read: %w", context.DeadlineExceeded),
			want: battery.ErrFetchTimeout,
		},
		{
			name: "refused",
			err:  fmt.Errorf("dial tcp: connection refused"),
			want: battery.ErrConnectionFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.CodeOf(classifyFetchErr(tt.err)))
		})
	}
}

func TestNewModbusClientRejectsEmptyAddress(t *testing.T) {
	_, err := NewModbusClient("", 1, 10*time.Second, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidAddress))
}

func TestSimulatorSnapshot(t *testing.T) {
	sim := NewSimulator(42)
	defer sim.Close()

	snapshot, err := sim.FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, snapshot.Valid())

	assert.Equal(t, "P030T020Z0000001", snapshot.SerialNumber())
	assert.Equal(t, "HVS", snapshot.GlobalString(battery.KeyBatteryType))
	require.Len(t, snapshot.Towers, 2)

	for _, tower := range snapshot.Towers {
		assert.Len(t, tower.CellVoltages, 32)
		assert.Len(t, tower.CellTemperatures, 16)
		for _, v := range tower.CellVoltages {
			assert.Greater(t, v, 3000.0)
			assert.Less(t, v, 3500.0)
		}
	}

	diff, ok := snapshot.Global("voltage_difference")
	require.True(t, ok)
	assert.Greater(t, diff.(float64), 0.0)
}

func TestSimulatorSnapshotsAreIndependent(t *testing.T) {
	sim := NewSimulator(1)

	first, err := sim.FetchSnapshot(context.Background())
	require.NoError(t, err)
	second, err := sim.FetchSnapshot(context.Background())
	require.NoError(t, err)

	// Mutating one snapshot must not leak into the other.
	first.Towers[0].CellVoltages[0] = -1
	assert.NotEqual(t, -1.0, second.Towers[0].CellVoltages[0])
}
