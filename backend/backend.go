package backend

import (
	"errors"
	"time"

	"github.com/gogpu/flight/device"
)

// Backend names. Register keys must match the backend's Name().
const (
	// BackendWGPU is the hardware backend on top of wgpu.
	BackendWGPU = "wgpu"

	// BackendSoftware is the CPU reference backend.
	BackendSoftware = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// DeviceOptions configures device creation on an initialized backend.
type DeviceOptions struct {
	// Label tags the device's GPU objects for debugging.
	Label string

	// Provider optionally supplies an already-open device owned by the
	// host application. The wgpu backend accepts a value exposing
	// HalDevice()/HalQueue() accessors and renders on the shared
	// device instead of opening its own adapter. Nil means the backend
	// creates and owns a device.
	Provider any

	// CompletionLatency delays submit completion callbacks on the
	// software backend, simulating GPU execution time. Zero completes
	// synchronously. The wgpu backend ignores it.
	CompletionLatency time.Duration
}

// Backend creates rendering devices. Implementations register
// themselves via Register from an init function and are selected via
// Get or Default.
type Backend interface {
	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Init initializes the backend. It must be called before
	// NewDevice.
	Init() error

	// Close releases all backend resources. The backend should not be
	// used after Close.
	Close()

	// NewDevice opens a rendering device. Devices are independent;
	// closing one does not affect others from the same backend.
	NewDevice(opts *DeviceOptions) (device.Device, error)
}
