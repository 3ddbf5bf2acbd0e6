// Package backend provides a pluggable rendering device abstraction.
//
// The backend package allows flight to run on multiple device
// implementations: the wgpu backend drives real GPU hardware, while
// the software backend is a deterministic CPU device used for tests
// and headless environments.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Importing a backend package registers it:
//
//	import _ "github.com/gogpu/flight/backend/soft"
//	import _ "github.com/gogpu/flight/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("software")
//
// # Opening a Device
//
// An initialized backend opens devices that implement device.Device:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	dev, err := b.NewDevice(&backend.DeviceOptions{Label: "app"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "wgpu": GPU hardware via gogpu/wgpu (preferred when present)
//   - "software": CPU reference device (always available)
package backend
