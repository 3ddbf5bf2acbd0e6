package flight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight/device"
)

// DefaultFramesInFlight is the number of frames the CPU may run ahead
// of the GPU. It also sizes the uniform slot ring.
const DefaultFramesInFlight = 3

// Config describes a Renderer. VertexShader and FragmentShader name
// programs previously registered on the device; everything else has a
// usable default.
type Config struct {
	// VertexShader and FragmentShader are the names of registered
	// shader programs. Both are required.
	VertexShader   string
	FragmentShader string

	// VertexEntry and FragmentEntry override the shader entry points.
	// Empty values default to vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string

	// Topology is the primitive topology for every draw. Zero value is
	// a triangle list.
	Topology gputypes.PrimitiveTopology

	// VertexLayout describes the renderable's vertex buffers, if any.
	VertexLayout []gputypes.VertexBufferLayout

	// FramesInFlight bounds concurrent frames. Zero defaults to
	// DefaultFramesInFlight.
	FramesInFlight int

	// Label tags GPU objects for debugging.
	Label string
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.FramesInFlight <= 0 {
		out.FramesInFlight = DefaultFramesInFlight
	}
	if out.Label == "" {
		out.Label = "flight"
	}
	return out
}

// Renderer coordinates CPU frame preparation with GPU execution. It
// owns one render pipeline, a ring of per-frame uniform slots and an
// in-flight limiter sized to the ring.
//
// A Renderer is safe for concurrent use, though frames are encoded one
// at a time.
type Renderer struct {
	mu sync.Mutex

	dev     device.Device
	queue   device.Queue
	cfg     Config
	limiter *FrameLimiter
	ring    *SlotRing

	pipeline   device.Pipeline
	uniformBuf device.Buffer
	slotGroups []device.BindGroup

	closed bool
}

// New builds a Renderer on dev. Pipeline construction is a setup step:
// a missing or uncompilable shader fails here with a typed error and
// nothing is left allocated.
func New(dev device.Device, cfg Config) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	cfg = cfg.withDefaults()

	desc := &device.PipelineDescriptor{
		Label:          cfg.Label,
		VertexShader:   cfg.VertexShader,
		VertexEntry:    cfg.VertexEntry,
		FragmentShader: cfg.FragmentShader,
		FragmentEntry:  cfg.FragmentEntry,
		Topology:       cfg.Topology,
		VertexLayout:   cfg.VertexLayout,
	}
	pipeline, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("flight: create pipeline: %w", err)
	}

	ring := NewSlotRing(cfg.FramesInFlight, uniformPayloadSize)
	uniformBuf, err := dev.CreateBuffer(&device.BufferDescriptor{
		Label: cfg.Label + ".uniforms",
		Size:  ring.Size(),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Destroy()
		return nil, fmt.Errorf("flight: create uniform ring buffer: %w", err)
	}

	groups := make([]device.BindGroup, ring.Count())
	for i := range groups {
		bg, err := pipeline.UniformBinding(uniformBuf, uint64(i)*ring.Stride(), uniformPayloadSize)
		if err != nil {
			for _, g := range groups[:i] {
				g.Destroy()
			}
			uniformBuf.Destroy()
			pipeline.Destroy()
			return nil, fmt.Errorf("flight: bind uniform slot %d: %w", i, err)
		}
		groups[i] = bg
	}

	return &Renderer{
		dev:        dev,
		queue:      dev.Queue(),
		cfg:        cfg,
		limiter:    NewFrameLimiter(cfg.FramesInFlight),
		ring:       ring,
		pipeline:   pipeline,
		uniformBuf: uniformBuf,
		slotGroups: groups,
	}, nil
}

// FramesInFlight returns the renderer's in-flight frame bound.
func (r *Renderer) FramesInFlight() int { return r.limiter.Capacity() }

// Present renders obj into target and schedules it for presentation.
// It blocks while FramesInFlight frames are already pending on the
// device and returns once the new frame is submitted; completion is
// signaled asynchronously through the limiter.
//
// Device failures during encoding or submission are logged and
// swallowed: a dropped frame is not an error the caller can act on.
// Present returns an error only for nil arguments, a closed renderer
// or ctx cancellation while waiting for a permit.
func (r *Renderer) Present(ctx context.Context, obj Renderable, target device.Drawable) error {
	if obj == nil {
		return ErrNilRenderable
	}
	if target == nil {
		return ErrNilTarget
	}
	if err := r.limiter.Acquire(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.limiter.Release()
		return ErrClosed
	}

	cmd, ok := r.encodeFrame(obj, target.View())
	if !ok {
		r.limiter.Release()
		return nil
	}

	target.Present()
	if err := r.queue.Submit(cmd, r.limiter.Release); err != nil {
		Logger().Warn("flight: frame submit failed", slog.String("error", err.Error()))
		r.limiter.Release()
	}
	return nil
}

// RenderToTexture renders obj into tex and blocks until the device has
// finished, so the texture's contents are host-observable when the call
// returns. The rendered pixels are read back and returned as a Frame.
//
// Unlike Present, readback failures are returned: the caller asked for
// the pixels and there is no frame to hand over without them.
func (r *Renderer) RenderToTexture(ctx context.Context, obj Renderable, tex device.Texture) (*Frame, error) {
	if obj == nil {
		return nil, ErrNilRenderable
	}
	if tex == nil {
		return nil, ErrNilTarget
	}
	if err := r.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.limiter.Release()
		return nil, ErrClosed
	}

	w, h := int(tex.Width()), int(tex.Height())
	alignedRow := AlignUp(w*4, device.CopyPitchAlignment)
	staging, err := r.dev.CreateBuffer(&device.BufferDescriptor{
		Label: r.cfg.Label + ".readback",
		Size:  uint64(alignedRow * h),
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead,
	})
	if err != nil {
		r.limiter.Release()
		return nil, fmt.Errorf("flight: create readback buffer: %w", err)
	}
	defer staging.Destroy()

	cmd, ok := r.encodeCapture(obj, tex, staging, alignedRow)
	if !ok {
		r.limiter.Release()
		return nil, errEncodeCapture
	}

	done := make(chan struct{})
	if err := r.queue.Submit(cmd, func() {
		r.limiter.Release()
		close(done)
	}); err != nil {
		r.limiter.Release()
		return nil, fmt.Errorf("flight: capture submit: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		// The GPU still owns the staging buffer; wait it out so the
		// deferred Destroy is safe.
		<-done
		return nil, ctx.Err()
	}

	raw := make([]byte, alignedRow*h)
	if err := r.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("flight: read back frame: %w", err)
	}

	frame := newFrame(w, h)
	for y := 0; y < h; y++ {
		copy(frame.Pix[y*frame.Stride:(y+1)*frame.Stride], raw[y*alignedRow:])
	}
	return frame, nil
}

// encodeFrame records obj's frame targeting view. It advances the
// uniform ring, writes the frame's matrices into the now-current slot
// and encodes the clear-draw pass. Reports false if encoding failed;
// the failure has already been logged.
func (r *Renderer) encodeFrame(obj Renderable, view device.TextureView) (device.CommandBuffer, bool) {
	offset := r.ring.Advance()
	slot := r.ring.Index()

	u := frameUniforms{projection: obj.Projection(), modelView: obj.ModelView()}
	r.queue.WriteBuffer(r.uniformBuf, offset, u.bytes())

	enc, err := r.dev.CreateCommandEncoder(r.cfg.Label + ".frame")
	if err != nil {
		Logger().Warn("flight: create command encoder failed", slog.String("error", err.Error()))
		return nil, false
	}

	rp := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label:      r.cfg.Label + ".pass",
		View:       view,
		ClearColor: obj.ClearColor(),
	})
	rp.SetPipeline(r.pipeline)
	obj.Bind(rp)
	rp.SetBindGroup(UniformGroup, r.slotGroups[slot], nil)
	rp.Draw(obj.VertexCount(), 1, 0, 0)
	rp.End()

	cmd, err := enc.Finish()
	if err != nil {
		Logger().Warn("flight: finish frame encoding failed", slog.String("error", err.Error()))
		enc.Discard()
		return nil, false
	}
	return cmd, true
}

// encodeCapture is encodeFrame plus a texture-to-buffer copy so the
// frame can be read back after the device retires it.
func (r *Renderer) encodeCapture(obj Renderable, tex device.Texture, staging device.Buffer, alignedRow int) (device.CommandBuffer, bool) {
	offset := r.ring.Advance()
	slot := r.ring.Index()

	u := frameUniforms{projection: obj.Projection(), modelView: obj.ModelView()}
	r.queue.WriteBuffer(r.uniformBuf, offset, u.bytes())

	enc, err := r.dev.CreateCommandEncoder(r.cfg.Label + ".capture")
	if err != nil {
		Logger().Warn("flight: create command encoder failed", slog.String("error", err.Error()))
		return nil, false
	}

	rp := enc.BeginRenderPass(&device.RenderPassDescriptor{
		Label:      r.cfg.Label + ".pass",
		View:       tex.View(),
		ClearColor: obj.ClearColor(),
	})
	rp.SetPipeline(r.pipeline)
	obj.Bind(rp)
	rp.SetBindGroup(UniformGroup, r.slotGroups[slot], nil)
	rp.Draw(obj.VertexCount(), 1, 0, 0)
	rp.End()

	enc.CopyTextureToBuffer(tex, staging, &device.CopyLayout{
		BytesPerRow:  uint32(alignedRow),
		RowsPerImage: tex.Height(),
	})

	cmd, err := enc.Finish()
	if err != nil {
		Logger().Warn("flight: finish capture encoding failed", slog.String("error", err.Error()))
		enc.Discard()
		return nil, false
	}
	return cmd, true
}

// Close releases the renderer's GPU objects. It does not close the
// device, which the caller owns. Close is idempotent and waits for no
// in-flight frames; callers should drain their own presentation loop
// first.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	for _, g := range r.slotGroups {
		g.Destroy()
	}
	r.slotGroups = nil
	if r.uniformBuf != nil {
		r.uniformBuf.Destroy()
		r.uniformBuf = nil
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
	return nil
}
