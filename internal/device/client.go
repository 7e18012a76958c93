// Package device acquires telemetry snapshots from a battery BMU. The
// wire protocol lives entirely behind the Client interface; everything
// above it only sees snapshots and the failure taxonomy from the battery
// package.
package device

import (
	"context"
	"net"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/errors"
	mb "github.com/goburrow/modbus"
)

// Client yields one snapshot per fetch or fails with a battery failure
// code. All failures are recoverable by the poller.
type Client interface {
	battery.DeviceClient
	Close() error
}

// classifyFetchErr wraps a transport error with the matching failure code.
func classifyFetchErr(err error) error {
	errFactory := errors.New()

	var mbErr *mb.ModbusError
	if errors.As(err, &mbErr) {
		return errFactory.Wrap(battery.ErrProtocolFault, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errFactory.Wrap(battery.ErrFetchTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errFactory.Wrap(battery.ErrFetchTimeout, err)
	}

	return errFactory.Wrap(battery.ErrConnectionFailed, err)
}
