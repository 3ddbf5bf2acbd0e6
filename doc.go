// Package flight coordinates CPU scene updates with GPU command
// execution across a fixed number of frames in flight.
//
// # Overview
//
// A Renderer drives one render pipeline and schedules frames so that up
// to N (default 3) submissions may be pending on the device at once.
// Two structures enforce the frame contract:
//
//   - a slot ring of per-frame uniform slots (256-byte aligned) holding
//     each frame's projection and model-view matrices, and
//   - an in-flight limiter, a counting semaphore whose capacity equals
//     the ring size, so a slot is never rewritten while the device may
//     still be reading it.
//
// The device completion callback releases the limiter permit and does
// nothing else.
//
// # Quick start
//
//	import (
//	    "github.com/gogpu/flight"
//	    "github.com/gogpu/flight/backend"
//	    _ "github.com/gogpu/flight/backend/soft"
//	)
//
//	b, _ := backend.InitDefault()
//	dev, _ := b.NewDevice(nil)
//	_ = dev.RegisterShader("scene", sceneWGSL)
//
//	r, err := flight.New(dev, flight.Config{
//	    VertexShader:   "scene",
//	    FragmentShader: "scene",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	err = r.Present(ctx, obj, drawable) // per frame
//
// # Rendering modes
//
// Present encodes a frame against a host-supplied Drawable and schedules
// presentation. RenderToTexture renders offscreen and synchronizes the
// result back to the host before returning. RenderMovie steps an
// Updatable scene on a fixed timestep and streams captured frames into
// a Sink, strictly one frame at a time.
//
// # Error model
//
// Construction-time failures (missing shader program, compile error,
// resource allocation) are fatal and returned as wrapped typed errors.
// Per-frame runtime problems are logged through the package logger and
// do not propagate; Present returns an error only for context
// cancellation or use after Close.
package flight
