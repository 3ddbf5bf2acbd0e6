package device

import "errors"

// Setup-time errors. These are fatal: a renderer cannot be constructed
// past any of them.
var (
	// ErrShaderNotFound is returned when a pipeline references a
	// program name absent from the device's shader library.
	ErrShaderNotFound = errors.New("device: shader not found")

	// ErrShaderCompile is returned when shader source fails
	// validation or compilation at registration time.
	ErrShaderCompile = errors.New("device: shader compile failed")

	// ErrInvalidDescriptor is returned for malformed resource
	// descriptors.
	ErrInvalidDescriptor = errors.New("device: invalid descriptor")

	// ErrDeviceClosed is returned when operations are attempted on a
	// closed device.
	ErrDeviceClosed = errors.New("device: device is closed")
)
