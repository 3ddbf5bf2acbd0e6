package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flight/backend"
	"github.com/gogpu/flight/device"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return &wgpuBackend{}
	})
}

// Backend errors.
var (
	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrBadProvider is returned when DeviceOptions.Provider does not
	// expose a hal device and queue.
	ErrBadProvider = errors.New("wgpu: provider does not expose a hal device")
)

// halProvider is what a shared-device host must implement. The
// accessors return hal.Device and hal.Queue as opaque values so hosts
// do not have to import hal in their public surface.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// wgpuBackend creates hal-backed devices. Init opens the Vulkan
// instance; NewDevice enumerates adapters per device.
type wgpuBackend struct {
	mu       sync.Mutex
	instance hal.Instance
}

var _ backend.Backend = (*wgpuBackend)(nil)

func (b *wgpuBackend) Name() string { return backend.BackendWGPU }

func (b *wgpuBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != nil {
		return nil
	}

	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok || halBackend == nil {
		return fmt.Errorf("%w: vulkan backend not compiled in", backend.ErrBackendNotAvailable)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	b.instance = instance
	return nil
}

func (b *wgpuBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}

func (b *wgpuBackend) NewDevice(opts *backend.DeviceOptions) (device.Device, error) {
	var label string
	var provider any
	if opts != nil {
		label = opts.Label
		provider = opts.Provider
	}
	if label == "" {
		label = "wgpu"
	}

	if provider != nil {
		hdev, hq, err := unwrapProvider(provider)
		if err != nil {
			return nil, err
		}
		return newDevice(label, hdev, hq, false), nil
	}

	b.mu.Lock()
	instance := b.instance
	b.mu.Unlock()
	if instance == nil {
		return nil, backend.ErrNotInitialized
	}

	adapter, err := selectAdapter(instance)
	if err != nil {
		return nil, err
	}
	openDev, err := adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("wgpu: open adapter: %w", err)
	}
	return newDevice(label, openDev.Device, openDev.Queue, true), nil
}

// unwrapProvider extracts the hal handles from a shared-device host.
func unwrapProvider(provider any) (hal.Device, hal.Queue, error) {
	p, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrBadProvider
	}
	hdev, ok := p.HalDevice().(hal.Device)
	if !ok || hdev == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice() is %T", ErrBadProvider, p.HalDevice())
	}
	hq, ok := p.HalQueue().(hal.Queue)
	if !ok || hq == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue() is %T", ErrBadProvider, p.HalQueue())
	}
	return hdev, hq, nil
}

// selectAdapter prefers discrete GPUs, then integrated, then whatever
// the instance exposes first.
func selectAdapter(instance hal.Instance) (hal.Adapter, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}

	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return a.Adapter, nil
		}
	}
	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return a.Adapter, nil
		}
	}
	return adapters[0].Adapter, nil
}
