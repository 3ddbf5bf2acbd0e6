// Package device defines the narrow GPU device abstraction driven by the
// flight renderer.
//
// The interfaces here mirror the subset of a WebGPU-style HAL that frame
// scheduling needs: buffer and texture creation, a named shader library,
// render pipeline construction, command encoding with a single
// clear-then-draw render pass, and queue submission with completion
// notification.
//
// Two implementations ship with flight:
//   - backend/soft: a pure-CPU device for tests and headless use
//   - backend/wgpu: a real GPU device on gogpu/wgpu
//
// Key principle: flight RECEIVES a device, it does not own GPU setup
// policy. Hosts embedding flight into a larger application hand it a
// shared device through the backend layer.
package device
