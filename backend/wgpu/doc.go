// Package wgpu implements the hardware rendering backend on top of
// gogpu/wgpu's hardware abstraction layer.
//
// The backend opens a Vulkan instance, picks the best available adapter
// (discrete over integrated) and exposes hal devices through the
// device.Device interface. Shaders are WGSL, compiled to SPIR-V with
// gogpu/naga at registration time so invalid programs fail before any
// pipeline is built. Submission completion is tracked with hal fences;
// a watcher goroutine waits on the fence and fires the caller's
// completion callback.
//
// Hosts that already own a hal device (a windowed application with its
// own surface and swapchain) can share it through
// backend.DeviceOptions.Provider instead of letting the backend open a
// second adapter.
//
// Importing the package registers the backend under the name "wgpu".
package wgpu
