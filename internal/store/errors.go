package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable marks the store file as locked, corrupt or
	// otherwise unreachable. The operation failed but a later one may succeed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNewerSchema means the on-disk schema version is higher than this
	// build supports. Opening such a store must not proceed.
	ErrNewerSchema = errors.New("schema newer than supported")

	// ErrInvalidArgument marks a write call with an empty identifier or
	// missing market data.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExportFailed marks a filesystem or permission failure during export.
	ErrExportFailed = errors.New("export failed")

	// ErrIntegrity marks a fatal integrity finding (empty or NULL required
	// fields). Advisory findings are returned as issues, not errors.
	ErrIntegrity = errors.New("integrity check failed")
)

// MigrationError reports a failed step of the migration chain. The caller
// must treat it as fatal; the pre-step backup stays on disk.
type MigrationError struct {
	From  int
	To    int
	Cause error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate schema v%d to v%d: %v", e.From, e.To, e.Cause)
}

func (e *MigrationError) Unwrap() error { return e.Cause }
