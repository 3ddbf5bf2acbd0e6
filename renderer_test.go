package flight_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight"
	"github.com/gogpu/flight/backend"
	"github.com/gogpu/flight/backend/soft"
	"github.com/gogpu/flight/device"
)

const testShader = `
struct FrameUniforms {
    projection: mat4x4<f32>,
    model_view: mat4x4<f32>,
}
@group(0) @binding(0) var<uniform> frame: FrameUniforms;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0), vec2<f32>(3.0, -1.0), vec2<f32>(-1.0, 3.0));
    return frame.projection * frame.model_view * vec4<f32>(pos[i], 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

// spinner is a minimal scene object: a rotating triangle.
type spinner struct {
	clear   gputypes.Color
	angle   float64
	updates int
	binds   int
}

func (s *spinner) VertexCount() uint32 { return 3 }

func (s *spinner) ClearColor() gputypes.Color { return s.clear }

func (s *spinner) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
}

func (s *spinner) ModelView() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(float32(s.angle))
}

func (s *spinner) Bind(rp device.RenderPass) { s.binds++ }

func (s *spinner) Update(dt float64) {
	s.updates++
	s.angle += dt
}

func newTestDevice(t *testing.T, latency time.Duration) device.Device {
	t.Helper()
	b := backend.Get(backend.BackendSoftware)
	if b == nil {
		t.Fatal("software backend not registered")
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)

	dev, err := b.NewDevice(&backend.DeviceOptions{
		Label:             "renderer-test",
		CompletionLatency: latency,
	})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })

	if err := dev.RegisterShader("test", testShader); err != nil {
		t.Fatalf("RegisterShader() error = %v", err)
	}
	return dev
}

func newTestRenderer(t *testing.T, dev device.Device) *flight.Renderer {
	t.Helper()
	r, err := flight.New(dev, flight.Config{
		VertexShader:   "test",
		FragmentShader: "test",
		Label:          "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newTargetTexture(t *testing.T, dev device.Device, w, h uint32) device.Texture {
	t.Helper()
	tex, err := dev.CreateTexture(&device.TextureDescriptor{
		Label:  "target",
		Width:  w,
		Height: h,
		Format: device.ColorFormat,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	t.Cleanup(tex.Destroy)
	return tex
}

func TestNewNilDevice(t *testing.T) {
	if _, err := flight.New(nil, flight.Config{}); !errors.Is(err, flight.ErrNilDevice) {
		t.Errorf("New(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestNewUnknownShader(t *testing.T) {
	dev := newTestDevice(t, 0)
	_, err := flight.New(dev, flight.Config{
		VertexShader:   "no-such-program",
		FragmentShader: "no-such-program",
	})
	if !errors.Is(err, device.ErrShaderNotFound) {
		t.Errorf("New() error = %v, want ErrShaderNotFound", err)
	}
}

func TestNewDefaultFramesInFlight(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	if r.FramesInFlight() != flight.DefaultFramesInFlight {
		t.Errorf("FramesInFlight() = %d, want %d", r.FramesInFlight(), flight.DefaultFramesInFlight)
	}
}

func TestPresentNilArguments(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 4, 4)
	target := soft.NewDrawable(tex)

	if err := r.Present(context.Background(), nil, target); !errors.Is(err, flight.ErrNilRenderable) {
		t.Errorf("Present(nil renderable) error = %v, want ErrNilRenderable", err)
	}
	if err := r.Present(context.Background(), &spinner{}, nil); !errors.Is(err, flight.ErrNilTarget) {
		t.Errorf("Present(nil target) error = %v, want ErrNilTarget", err)
	}
}

func TestPresentSchedulesPresentation(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 8, 8)
	target := soft.NewDrawable(tex)

	obj := &spinner{clear: gputypes.Color{R: 0, G: 0, B: 1, A: 1}}
	for i := 0; i < 5; i++ {
		if err := r.Present(context.Background(), obj, target); err != nil {
			t.Fatalf("Present() #%d error = %v", i, err)
		}
	}
	if target.PresentCount() != 5 {
		t.Errorf("PresentCount() = %d, want 5", target.PresentCount())
	}
	if obj.binds != 5 {
		t.Errorf("bind callback ran %d times, want 5", obj.binds)
	}
}

func TestPresentBackpressure(t *testing.T) {
	const latency = 60 * time.Millisecond
	dev := newTestDevice(t, latency)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 8, 8)
	target := soft.NewDrawable(tex)
	obj := &spinner{}

	// The first FramesInFlight presents must not block: the device is
	// still "executing" them behind the latency.
	start := time.Now()
	for i := 0; i < flight.DefaultFramesInFlight; i++ {
		if err := r.Present(context.Background(), obj, target); err != nil {
			t.Fatalf("Present() #%d error = %v", i, err)
		}
	}
	if d := time.Since(start); d >= latency {
		t.Fatalf("first %d presents took %v, should not block", flight.DefaultFramesInFlight, d)
	}

	// The next present must block until the oldest frame completes,
	// i.e. roughly one completion latency, never longer than all
	// in-flight frames take together.
	blockStart := time.Now()
	if err := r.Present(context.Background(), obj, target); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	blocked := time.Since(blockStart)
	if blocked < latency/2 {
		t.Errorf("saturated Present blocked %v, want at least ~%v", blocked, latency)
	}
	if blocked > 3*latency {
		t.Errorf("saturated Present blocked %v, want at most ~%v", blocked, latency)
	}
}

func TestPresentContextCancelWhileSaturated(t *testing.T) {
	dev := newTestDevice(t, time.Second)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 4, 4)
	target := soft.NewDrawable(tex)
	obj := &spinner{}

	for i := 0; i < flight.DefaultFramesInFlight; i++ {
		if err := r.Present(context.Background(), obj, target); err != nil {
			t.Fatalf("Present() #%d error = %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Present(ctx, obj, target); err != context.DeadlineExceeded {
		t.Errorf("Present() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRenderToTextureReturnsClearColor(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 16, 16)

	obj := &spinner{clear: gputypes.Color{R: 1, G: 0, B: 0, A: 1}}
	frame, err := r.RenderToTexture(context.Background(), obj, tex)
	if err != nil {
		t.Fatalf("RenderToTexture() error = %v", err)
	}

	if frame.Width != 16 || frame.Height != 16 {
		t.Fatalf("frame size = %dx%d, want 16x16", frame.Width, frame.Height)
	}
	want := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	if got := frame.At(0, 0); got != want {
		t.Errorf("At(0, 0) = %v, want %v", got, want)
	}
	if got := frame.At(15, 15); got != want {
		t.Errorf("At(15, 15) = %v, want %v", got, want)
	}
}

func TestRenderToTextureDeterministic(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 32, 32)

	obj := &spinner{clear: gputypes.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}}
	a, err := r.RenderToTexture(context.Background(), obj, tex)
	if err != nil {
		t.Fatalf("RenderToTexture() #1 error = %v", err)
	}
	b, err := r.RenderToTexture(context.Background(), obj, tex)
	if err != nil {
		t.Fatalf("RenderToTexture() #2 error = %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical scene state must capture bit-identical frames")
	}
}

func TestRenderToTextureSynchronous(t *testing.T) {
	const latency = 40 * time.Millisecond
	dev := newTestDevice(t, latency)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 8, 8)

	obj := &spinner{clear: gputypes.Color{G: 1, A: 1}}
	start := time.Now()
	frame, err := r.RenderToTexture(context.Background(), obj, tex)
	if err != nil {
		t.Fatalf("RenderToTexture() error = %v", err)
	}
	if d := time.Since(start); d < latency {
		t.Errorf("capture returned after %v, must wait for device completion (%v)", d, latency)
	}

	// The read-back frame observes the just-rendered content.
	want := color.RGBA{G: 255, A: 255}
	if got := frame.At(3, 3); got != want {
		t.Errorf("At(3, 3) = %v, want %v", got, want)
	}
}

func TestRendererClose(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	tex := newTargetTexture(t, dev, 4, 4)
	target := soft.NewDrawable(tex)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := r.Present(context.Background(), &spinner{}, target); !errors.Is(err, flight.ErrClosed) {
		t.Errorf("Present() after Close error = %v, want ErrClosed", err)
	}
	if _, err := r.RenderToTexture(context.Background(), &spinner{}, tex); !errors.Is(err, flight.ErrClosed) {
		t.Errorf("RenderToTexture() after Close error = %v, want ErrClosed", err)
	}
}
