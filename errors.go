package flight

import "errors"

// Errors returned by the root package. Device-level setup errors
// (shader lookup, compilation) live in package device and are wrapped
// by Renderer construction.
var (
	// ErrClosed is returned when a Renderer is used after Close.
	ErrClosed = errors.New("flight: renderer is closed")

	// ErrNilDevice is returned when New is called without a device.
	ErrNilDevice = errors.New("flight: nil device")

	// ErrNilRenderable is returned when a frame operation is given a
	// nil renderable.
	ErrNilRenderable = errors.New("flight: nil renderable")

	// ErrNilTarget is returned when a frame operation is given a nil
	// drawable or texture.
	ErrNilTarget = errors.New("flight: nil render target")

	// ErrInvalidConfig is returned for malformed renderer or movie
	// configuration.
	ErrInvalidConfig = errors.New("flight: invalid configuration")

	// ErrSinkOpen wraps a recording sink's failure to open. Opening
	// the sink is a setup step: movie rendering cannot start past it.
	ErrSinkOpen = errors.New("flight: recording sink open failed")
)

// errEncodeCapture is returned when a capture frame could not be
// encoded. The underlying device failure has already been logged.
var errEncodeCapture = errors.New("flight: capture frame encoding failed")
