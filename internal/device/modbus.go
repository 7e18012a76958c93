package device

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/errors"
	"codeberg.org/mutker/bydmon/internal/logger"
	mb "github.com/goburrow/modbus"
)

// Modbus caps one read at 125 registers; stay under it so cell arrays of
// any size are fetched in uniform chunks.
const maxRegistersPerRead = 100

// maxTowers bounds the tower loop against a garbage tower-count register.
const maxTowers = 8

// ModbusClient fetches snapshots from a BMU speaking Modbus-TCP. The
// connection is established lazily and dropped after any read error, so a
// later fetch starts from a clean dial.
type ModbusClient struct {
	mu        sync.Mutex
	handler   *mb.TCPClientHandler
	client    mb.Client
	profile   *Profile
	address   string
	connected bool
}

func NewModbusClient(address string, slaveID byte, timeout time.Duration, profile *Profile) (*ModbusClient, error) {
	errFactory := errors.New()

	if address == "" {
		return nil, errFactory.New(ErrInvalidAddress)
	}
	if profile == nil {
		profile = DefaultProfile()
	}
	if err := profile.validate(); err != nil {
		return nil, err
	}

	handler := mb.NewTCPClientHandler(address)
	handler.Timeout = timeout
	handler.SlaveId = slaveID

	return &ModbusClient{
		handler: handler,
		client:  mb.NewClient(handler),
		profile: profile,
		address: address,
	}, nil
}

// FetchSnapshot reads one full snapshot. Any failure is wrapped with a
// battery failure code and includes the device address for diagnosis.
func (c *ModbusClient) FetchSnapshot(ctx context.Context) (*battery.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.handler.Connect(); err != nil {
			return nil, c.fetchFailed(err)
		}
		c.connected = true
		logger.Debug().Str("address", c.address).Msg("Connected to BMU")
	}

	globals, err := c.readGlobals(ctx)
	if err != nil {
		return nil, c.fetchFailed(err)
	}

	snapshot := &battery.Snapshot{Globals: globals, Towers: []battery.Tower{}}

	towers, err := c.readTowers(ctx, snapshot)
	if err != nil {
		return nil, c.fetchFailed(err)
	}
	snapshot.Towers = towers

	return snapshot, nil
}

func (c *ModbusClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if err := c.handler.Close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err)
	}

	return nil
}

// fetchFailed drops the connection and classifies the error. Caller holds
// the lock.
func (c *ModbusClient) fetchFailed(err error) error {
	if c.connected {
		c.connected = false
		_ = c.handler.Close()
	}

	return classifyFetchErr(fmt.Errorf("device %s: %w", c.address, err))
}

func (c *ModbusClient) readGlobals(ctx context.Context) (map[string]any, error) {
	globals := make(map[string]any, len(c.profile.Globals)+4)
	for _, point := range c.profile.Globals {
		value, err := c.readPoint(ctx, point, 0)
		if err != nil {
			return nil, err
		}
		globals[point.Key] = value
	}

	deriveGlobals(globals)

	return globals, nil
}

// deriveGlobals fills in scalars the BMU does not report directly.
func deriveGlobals(globals map[string]any) {
	if serial, ok := globals[battery.KeySerialNumber].(string); ok {
		globals[battery.KeyBatteryType] = batteryTypeFromSerial(serial)
	}

	maxV, okMax := globals["max_voltage"].(float64)
	minV, okMin := globals["min_voltage"].(float64)
	if okMax && okMin {
		globals["voltage_difference"] = maxV - minV
	}

	if n, ok := globals["error_number"].(float64); ok {
		globals["error_string"] = errorText(int(n))
	}
}

func (c *ModbusClient) readTowers(ctx context.Context, snapshot *battery.Snapshot) ([]battery.Tower, error) {
	towerCount, _ := snapshot.GlobalInt("towers")
	if towerCount < 0 {
		towerCount = 0
	}
	if towerCount > maxTowers {
		logger.Warn().Int("towers", towerCount).Msg("Implausible tower count, clamping")
		towerCount = maxTowers
	}

	cells, _ := snapshot.GlobalInt("number_of_cells")
	temps, _ := snapshot.GlobalInt("number_of_temperatures")

	towers := make([]battery.Tower, 0, towerCount)
	for t := 0; t < towerCount; t++ {
		base := c.profile.Tower.Base + uint16(t)*c.profile.Tower.Stride

		attrs := make(map[string]any, len(c.profile.Tower.Attrs))
		for _, point := range c.profile.Tower.Attrs {
			value, err := c.readPoint(ctx, point, base)
			if err != nil {
				return nil, err
			}
			attrs[point.Key] = value
		}

		voltages, err := c.readCellArray(ctx, base+c.profile.Tower.CellVoltageBase, cells, false)
		if err != nil {
			return nil, err
		}
		temperatures, err := c.readCellArray(ctx, base+c.profile.Tower.CellTempBase, temps, true)
		if err != nil {
			return nil, err
		}

		towers = append(towers, battery.Tower{
			Attrs:            attrs,
			CellVoltages:     voltages,
			CellTemperatures: temperatures,
		})
	}

	return towers, nil
}

func (c *ModbusClient) readPoint(ctx context.Context, point Point, base uint16) (any, error) {
	quantity := uint16(1)
	if point.Type == "str" {
		quantity = point.Length
	}

	data, err := c.readRegisters(ctx, base+point.Address, quantity)
	if err != nil {
		return nil, err
	}

	return decodePoint(point, data), nil
}

func (c *ModbusClient) readCellArray(ctx context.Context, address uint16, count int, signed bool) ([]float64, error) {
	if count <= 0 {
		return []float64{}, nil
	}

	data, err := c.readRegisters(ctx, address, uint16(count))
	if err != nil {
		return nil, err
	}

	values := make([]float64, count)
	for i := 0; i < count; i++ {
		raw := binary.BigEndian.Uint16(data[2*i:])
		if signed {
			values[i] = float64(int16(raw))
		} else {
			values[i] = float64(raw)
		}
	}

	return values, nil
}

// readRegisters fetches quantity holding registers starting at address,
// chunking large spans to stay within the protocol read limit.
func (c *ModbusClient) readRegisters(ctx context.Context, address, quantity uint16) ([]byte, error) {
	errFactory := errors.New()

	data := make([]byte, 0, 2*quantity)
	for quantity > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := quantity
		if n > maxRegistersPerRead {
			n = maxRegistersPerRead
		}

		chunk, err := c.client.ReadHoldingRegisters(address, n)
		if err != nil {
			return nil, err
		}
		if len(chunk) != int(2*n) {
			return nil, errFactory.WithData(battery.ErrMalformedSnapshot, struct {
				Address uint16
				Want    int
				Got     int
			}{
				Address: address,
				Want:    int(2 * n),
				Got:     len(chunk),
			})
		}

		data = append(data, chunk...)
		address += n
		quantity -= n
	}

	return data, nil
}

// decodePoint turns raw register bytes into the point's value.
func decodePoint(point Point, data []byte) any {
	switch point.Type {
	case "str":
		var b strings.Builder
		for _, c := range data {
			if c == 0 {
				continue
			}
			b.WriteByte(c)
		}
		return strings.TrimSpace(b.String())
	case "ver":
		return fmt.Sprintf("%d.%d", data[0], data[1])
	case "s16":
		return scale(float64(int16(binary.BigEndian.Uint16(data))), point)
	default: // u16
		return scale(float64(binary.BigEndian.Uint16(data)), point)
	}
}

func scale(v float64, point Point) float64 {
	if point.Scale != 0 {
		v *= point.Scale
	}

	return v + point.Offset
}

// batteryTypeFromSerial decodes the product family from the serial prefix.
func batteryTypeFromSerial(serial string) string {
	switch {
	case strings.HasPrefix(serial, "P03"):
		return "HVS"
	case strings.HasPrefix(serial, "P02"):
		return "HVM"
	case strings.HasPrefix(serial, "P01"):
		return "LVS"
	default:
		return ""
	}
}

// errorText maps the BMU error register to a readable message.
func errorText(code int) string {
	texts := map[int]string{
		0:  "Normal",
		1:  "Cell overvoltage",
		2:  "Cell undervoltage",
		4:  "Overtemperature",
		8:  "Undertemperature",
		16: "Overcurrent charge",
		32: "Overcurrent discharge",
	}
	if text, ok := texts[code]; ok {
		return text
	}

	return fmt.Sprintf("Error %d", code)
}
