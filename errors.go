package sage

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a store handle is used before Open or
// after Close.
var ErrNotInitialized = errors.New("store not initialized")

// InitError wraps a failure to open the embedded store. Open failures are
// fatal and always surfaced to the caller with the underlying cause.
type InitError struct {
	Dir string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize store at %s: %v", e.Dir, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// PersistError wraps a write-path failure (create, update, batch create,
// batch delete). Writes fail loud: the error is logged at the repository and
// re-returned to the caller, since silently losing a write is unacceptable.
// Read-path failures never produce a PersistError; they degrade to empty or
// absent results after logging.
type PersistError struct {
	Entity string // table name
	Op     string // "create", "update", ...
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
