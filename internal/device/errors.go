package device

import "codeberg.org/mutker/bydmon/internal/errors"

const (
	// Profile Errors
	ErrProfileRead    = errors.ErrorCode("device_profile_read_failed")
	ErrInvalidProfile = errors.ErrorCode("device_invalid_profile")

	// Client Errors
	ErrInvalidAddress = errors.ErrorCode("device_invalid_address")
	ErrCloseFailed    = errors.ErrorCode("device_close_failed")
)
