package hier

import "errors"

// Precondition violations. Callers treat these as programming errors, not
// transient conditions.
var (
	ErrUnknownBox        = errors.New("box is not part of the level")
	ErrNotInitialized    = errors.New("boundaries not computed for block")
	ErrAlreadyComputed   = errors.New("boundaries already computed; clear first")
	ErrBoundaryType      = errors.New("boundary type out of range")
	ErrConnectorMismatch = errors.New("connector does not match level")

	ErrAlreadyAllocated = errors.New("patch data component already allocated")
	ErrNotAllocated     = errors.New("patch data component not allocated")
	ErrUnknownComponent = errors.New("patch data component not registered")
	ErrReservedName     = errors.New("component name is empty or a patch record key")

	ErrVersionMismatch  = errors.New("persisted format version mismatch")
	ErrIdentityMismatch = errors.New("persisted patch identity mismatch")
	ErrNilDatabase      = errors.New("nil database")
)
