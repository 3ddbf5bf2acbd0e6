package soft

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight/device"
)

// Device is the software implementation of device.Device. All resources
// live in host memory and submissions execute on the CPU.
type Device struct {
	mu      sync.Mutex
	label   string
	shaders map[string]string
	queue   *queue
	closed  bool
}

var _ device.Device = (*Device)(nil)

func newDevice(label string, latency time.Duration) *Device {
	d := &Device{
		label:   label,
		shaders: make(map[string]string),
	}
	d.queue = &queue{dev: d, latency: latency}
	return d
}

// RegisterShader stores a named WGSL program. The software device does
// not compile WGSL; validation is limited to rejecting empty sources.
func (d *Device) RegisterShader(name, source string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrDeviceClosed
	}
	if name == "" || strings.TrimSpace(source) == "" {
		return fmt.Errorf("%w: shader %q has no source", device.ErrShaderCompile, name)
	}
	d.shaders[name] = source
	return nil
}

// CreateRenderPipeline resolves the descriptor's shader names against
// the device library. A program whose source does not mention the
// requested entry point fails the way a real compiler would, with
// ErrShaderCompile.
func (d *Device) CreateRenderPipeline(desc *device.PipelineDescriptor) (device.Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}

	if err := d.checkEntry(desc.VertexShader, desc.VertexEntryOrDefault()); err != nil {
		return nil, err
	}
	if err := d.checkEntry(desc.FragmentShader, desc.FragmentEntryOrDefault()); err != nil {
		return nil, err
	}
	return &pipeline{label: desc.Label}, nil
}

func (d *Device) checkEntry(name, entry string) error {
	src, ok := d.shaders[name]
	if !ok {
		return fmt.Errorf("%w: %q", device.ErrShaderNotFound, name)
	}
	if !strings.Contains(src, entry) {
		return fmt.Errorf("%w: shader %q has no entry point %q", device.ErrShaderCompile, name, entry)
	}
	return nil
}

func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: zero-size buffer %q", device.ErrInvalidDescriptor, desc.Label)
	}
	return &buffer{
		label: desc.Label,
		data:  make([]byte, desc.Size),
		usage: desc.Usage,
	}, nil
}

func (d *Device) CreateTexture(desc *device.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: empty texture %q", device.ErrInvalidDescriptor, desc.Label)
	}
	t := &texture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		pix:    make([]byte, int(desc.Width)*int(desc.Height)*4),
	}
	t.view = &textureView{label: desc.Label + ".view", tex: t}
	return t, nil
}

func (d *Device) CreateCommandEncoder(label string) (device.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	return &encoder{label: label}, nil
}

func (d *Device) Queue() device.Queue { return d.queue }

// Close marks the device closed. Resources already created stay usable
// until individually destroyed; new creation fails.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// buffer is a host memory allocation.
type buffer struct {
	mu        sync.Mutex
	label     string
	data      []byte
	usage     gputypes.BufferUsage
	destroyed bool
}

func (b *buffer) Size() uint64 { return uint64(len(b.data)) }

func (b *buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
	b.data = nil
}

// write copies data into the buffer at offset, clamped to the
// allocation.
func (b *buffer) write(offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed || offset >= uint64(len(b.data)) {
		return
	}
	copy(b.data[offset:], data)
}

// texture is a host BGRA8 image with tightly packed rows.
type texture struct {
	mu     sync.Mutex
	label  string
	width  uint32
	height uint32
	format gputypes.TextureFormat
	pix    []byte
	view   *textureView
}

func (t *texture) Width() uint32                  { return t.width }
func (t *texture) Height() uint32                 { return t.height }
func (t *texture) Format() gputypes.TextureFormat { return t.format }
func (t *texture) View() device.TextureView       { return t.view }

func (t *texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pix = nil
}

// fill clears every pixel to the given color.
func (t *texture) fill(c gputypes.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := colorByte(c.B)
	g := colorByte(c.G)
	r := colorByte(c.R)
	a := colorByte(c.A)
	for i := 0; i+3 < len(t.pix); i += 4 {
		t.pix[i+0] = b
		t.pix[i+1] = g
		t.pix[i+2] = r
		t.pix[i+3] = a
	}
}

// copyTo writes the texture's rows into dst with the given row pitch.
func (t *texture) copyTo(dst *buffer, bytesPerRow uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rowLen := int(t.width) * 4
	for y := 0; y < int(t.height); y++ {
		dst.write(uint64(y)*uint64(bytesPerRow), t.pix[y*rowLen:(y+1)*rowLen])
	}
}

func colorByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// textureView is the texture's single full view.
type textureView struct {
	label string
	tex   *texture
}

func (v *textureView) Label() string { return v.label }

// pipeline is a resolved shader pair. The software device keeps no
// compiled state; the pipeline exists to mint uniform bind groups and
// to be bound during validation.
type pipeline struct {
	label string
}

func (p *pipeline) UniformBinding(buf device.Buffer, offset, size uint64) (device.BindGroup, error) {
	b, ok := buf.(*buffer)
	if !ok {
		return nil, fmt.Errorf("%w: foreign buffer in uniform binding", device.ErrInvalidDescriptor)
	}
	if offset+size > b.Size() {
		return nil, fmt.Errorf("%w: uniform binding [%d, %d) exceeds buffer size %d",
			device.ErrInvalidDescriptor, offset, offset+size, b.Size())
	}
	return &bindGroup{buf: b, offset: offset, size: size}, nil
}

func (p *pipeline) Destroy() {}

// bindGroup is a view of a uniform slot within a buffer.
type bindGroup struct {
	buf    *buffer
	offset uint64
	size   uint64
}

func (g *bindGroup) Destroy() {}

// queue executes command streams at submit time. Execution is
// synchronous; the completion callback is deferred by the configured
// latency to model a device still working after Submit returns.
type queue struct {
	mu      sync.Mutex
	dev     *Device
	latency time.Duration
}

var _ device.Queue = (*queue)(nil)

func (q *queue) WriteBuffer(buf device.Buffer, offset uint64, data []byte) {
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	b.write(offset, data)
}

func (q *queue) ReadBuffer(buf device.Buffer, offset uint64, dst []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer in read", device.ErrInvalidDescriptor)
	}
	if b.usage&gputypes.BufferUsageMapRead == 0 {
		return fmt.Errorf("%w: buffer %q is not readable", device.ErrInvalidDescriptor, b.label)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed || offset >= uint64(len(b.data)) {
		return fmt.Errorf("%w: read past end of buffer %q", device.ErrInvalidDescriptor, b.label)
	}
	copy(dst, b.data[offset:])
	return nil
}

func (q *queue) Submit(cmd device.CommandBuffer, done func()) error {
	cb, ok := cmd.(*commandBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign command buffer", device.ErrInvalidDescriptor)
	}

	q.mu.Lock()
	for _, op := range cb.ops {
		op()
	}
	q.mu.Unlock()

	if done == nil {
		return nil
	}
	if q.latency > 0 {
		time.AfterFunc(q.latency, done)
	} else {
		go done()
	}
	return nil
}
