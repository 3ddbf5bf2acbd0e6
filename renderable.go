package flight

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight/device"
)

// Renderable is the capability a scene object needs to be drawn by the
// Renderer. Implementations describe one frame's worth of state; the
// Renderer reads all of it during a single Present or RenderToTexture
// call.
type Renderable interface {
	// VertexCount is the number of vertices for the frame's single
	// non-indexed draw.
	VertexCount() uint32

	// ClearColor is the color the frame's attachment is cleared to
	// before drawing.
	ClearColor() gputypes.Color

	// Projection returns the frame's projection matrix.
	Projection() mgl32.Mat4

	// ModelView returns the frame's model-view matrix.
	ModelView() mgl32.Mat4

	// Bind attaches the object's own resources (vertex buffers,
	// textures) to the in-progress render pass. The pass handle is a
	// scoped borrow valid only for the duration of the call; it must
	// not be retained or used from another goroutine.
	//
	// Bind runs after the pipeline is set and before the frame's
	// uniform slot is bound and the draw is issued.
	Bind(rp device.RenderPass)
}

// Updatable is implemented by scene objects that advance their own
// state on a timestep, e.g. between captured movie frames.
type Updatable interface {
	// Update advances the object's state by dt seconds.
	Update(dt float64)
}

// MovieRenderable is what RenderMovie drives: a renderable scene that
// can be stepped forward in time.
type MovieRenderable interface {
	Renderable
	Updatable
}
