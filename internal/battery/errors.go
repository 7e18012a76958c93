package battery

import (
	"context"

	"codeberg.org/mutker/bydmon/internal/errors"
)

// Failure taxonomy for snapshot acquisition. Every kind is recoverable:
// the poller logs it and retains the previous snapshot.
const (
	ErrConnectionFailed  = errors.ErrorCode("device_connection_failed")
	ErrFetchTimeout      = errors.ErrorCode("device_fetch_timeout")
	ErrProtocolFault     = errors.ErrorCode("device_protocol_fault")
	ErrMalformedSnapshot = errors.ErrorCode("device_malformed_snapshot")

	ErrInvalidInterval = errors.ErrInvalidInterval
)

// FailureStatus maps a fetch error to the status label used on poll
// counters and to pick log severity. Unclassified errors count as
// connection failures, the most common transient cause.
func FailureStatus(err error) string {
	switch {
	case errors.HasCode(err, ErrFetchTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.HasCode(err, ErrProtocolFault):
		return "protocol_error"
	case errors.HasCode(err, ErrMalformedSnapshot):
		return "malformed_snapshot"
	default:
		return "connection_error"
	}
}
