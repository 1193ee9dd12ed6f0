package osr

import "errors"

// Common errors returned by Compositor operations.
var (
	// ErrClosed is returned when an operation is attempted on a closed
	// Compositor.
	ErrClosed = errors.New("osr: compositor is closed")

	// ErrSurfaceNotFound is returned when an operation references a
	// surface id that was never created or has been destroyed.
	ErrSurfaceNotFound = errors.New("osr: surface not found")

	// ErrSurfaceDestroyed resolves readback requests that were still
	// pending when their surface was destroyed.
	ErrSurfaceDestroyed = errors.New("osr: surface destroyed")

	// ErrBusy resolves readback requests rejected because the per-surface
	// queue is full. The renderer has stalled; retry after the next paint.
	ErrBusy = errors.New("osr: readback queue full")

	// ErrNoPixelData resolves readback requests against a delivered frame
	// whose source offers no CPU readback path.
	ErrNoPixelData = errors.New("osr: frame has no CPU-accessible pixels")

	// ErrInvalidOption is returned by New and CreateSurface for invalid
	// arguments: a nil host or client, or out-of-range surface options.
	ErrInvalidOption = errors.New("osr: invalid surface option")

	// ErrInvalidRelation is returned by Attach for self-attachment,
	// cycles, and unknown relationship kinds.
	ErrInvalidRelation = errors.New("osr: invalid view relationship")
)
