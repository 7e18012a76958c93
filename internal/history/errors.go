package history

import "codeberg.org/mutker/bydmon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidDBPath = errors.ErrorCode("history_invalid_db_path")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("history_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("history_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("history_storage_close_failed")
	ErrInvalidRecord = errors.ErrorCode("history_invalid_record")
	ErrEncodeGlobals = errors.ErrorCode("history_encode_globals_failed")
)
