package soft

import (
	"time"

	"github.com/gogpu/flight/backend"
	"github.com/gogpu/flight/device"
)

func init() {
	backend.Register(backend.BackendSoftware, func() backend.Backend {
		return &softBackend{}
	})
}

// softBackend creates software devices. It holds no global state of its
// own; devices are independent.
type softBackend struct {
	initialized bool
}

var _ backend.Backend = (*softBackend)(nil)

func (b *softBackend) Name() string { return backend.BackendSoftware }

func (b *softBackend) Init() error {
	b.initialized = true
	return nil
}

func (b *softBackend) Close() {
	b.initialized = false
}

func (b *softBackend) NewDevice(opts *backend.DeviceOptions) (device.Device, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	var label string
	var latency time.Duration
	if opts != nil {
		label = opts.Label
		latency = opts.CompletionLatency
	}
	if label == "" {
		label = "soft"
	}
	return newDevice(label, latency), nil
}
