package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flight/device"
)

// Device is the hal implementation of device.Device.
type Device struct {
	mu      sync.Mutex
	label   string
	hdev    hal.Device
	shaders map[string]*shaderEntry
	queue   *queue
	owned   bool
	closed  bool
}

// shaderEntry is a registered program: the validated module plus its
// SPIR-V, kept so pipelines can be rebuilt if needed.
type shaderEntry struct {
	module hal.ShaderModule
	spirv  []uint32
}

var _ device.Device = (*Device)(nil)

func newDevice(label string, hdev hal.Device, hq hal.Queue, owned bool) *Device {
	d := &Device{
		label:   label,
		hdev:    hdev,
		shaders: make(map[string]*shaderEntry),
		owned:   owned,
	}
	d.queue = &queue{dev: d, hq: hq}
	return d
}

// RegisterShader compiles a WGSL program to SPIR-V and adds it to the
// device library. Compilation is the validation step: a program naga
// rejects never reaches pipeline creation.
func (d *Device) RegisterShader(name, source string) error {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", device.ErrShaderCompile, name, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrDeviceClosed
	}
	module, err := d.hdev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  name,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", device.ErrShaderCompile, name, err)
	}

	if old, ok := d.shaders[name]; ok {
		d.hdev.DestroyShaderModule(old.module)
	}
	d.shaders[name] = &shaderEntry{module: module, spirv: spirv}
	return nil
}

func (d *Device) CreateRenderPipeline(desc *device.PipelineDescriptor) (device.Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}

	vert, ok := d.shaders[desc.VertexShader]
	if !ok {
		return nil, fmt.Errorf("%w: %q", device.ErrShaderNotFound, desc.VertexShader)
	}
	frag, ok := d.shaders[desc.FragmentShader]
	if !ok {
		return nil, fmt.Errorf("%w: %q", device.ErrShaderNotFound, desc.FragmentShader)
	}

	bgLayout, err := d.hdev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: desc.Label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type: gputypes.BufferBindingTypeUniform,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}

	layout, err := d.hdev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		d.hdev.DestroyBindGroupLayout(bgLayout)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	halPipeline, err := d.hdev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vert.module,
			EntryPoint: desc.VertexEntryOrDefault(),
			Buffers:    desc.VertexLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     frag.module,
			EntryPoint: desc.FragmentEntryOrDefault(),
			Targets: []gputypes.ColorTargetState{{
				Format:    device.ColorFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: desc.Topology,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		d.hdev.DestroyPipelineLayout(layout)
		d.hdev.DestroyBindGroupLayout(bgLayout)
		return nil, fmt.Errorf("%w: %q/%q: %v", device.ErrShaderCompile,
			desc.VertexShader, desc.FragmentShader, err)
	}

	return &pipeline{
		dev:      d,
		label:    desc.Label,
		hpipe:    halPipeline,
		layout:   layout,
		bgLayout: bgLayout,
	}, nil
}

func (d *Device) CreateBuffer(desc *device.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	hbuf, err := d.hdev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}
	return &buffer{dev: d, hbuf: hbuf, size: desc.Size}, nil
}

func (d *Device) CreateTexture(desc *device.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	htex, err := d.hdev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	hview, err := d.hdev.CreateTextureView(htex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.hdev.DestroyTexture(htex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	t := &texture{
		dev:    d,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		htex:   htex,
	}
	t.view = &textureView{label: desc.Label + "_view", hview: hview, tex: t}
	return t, nil
}

func (d *Device) CreateCommandEncoder(label string) (device.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, device.ErrDeviceClosed
	}
	henc, err := d.hdev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := henc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return &encoder{dev: d, label: label, henc: henc}, nil
}

func (d *Device) Queue() device.Queue { return d.queue }

// Close destroys the device's shader library and, for devices the
// backend opened itself, the hal device. Shared devices stay alive for
// their owning host.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	for _, s := range d.shaders {
		d.hdev.DestroyShaderModule(s.module)
	}
	d.shaders = nil
	if d.owned {
		d.hdev.Destroy()
	}
	return nil
}

// buffer wraps a hal buffer.
type buffer struct {
	dev  *Device
	hbuf hal.Buffer
	size uint64
}

func (b *buffer) Size() uint64 { return b.size }

func (b *buffer) Destroy() {
	b.dev.hdev.DestroyBuffer(b.hbuf)
}

// texture wraps a hal texture and its single full view.
type texture struct {
	dev    *Device
	label  string
	width  uint32
	height uint32
	format gputypes.TextureFormat
	htex   hal.Texture
	view   *textureView
}

func (t *texture) Width() uint32                  { return t.width }
func (t *texture) Height() uint32                 { return t.height }
func (t *texture) Format() gputypes.TextureFormat { return t.format }
func (t *texture) View() device.TextureView       { return t.view }

func (t *texture) Destroy() {
	t.dev.hdev.DestroyTextureView(t.view.hview)
	t.dev.hdev.DestroyTexture(t.htex)
}

type textureView struct {
	label string
	hview hal.TextureView
	tex   *texture
}

func (v *textureView) Label() string { return v.label }

// pipeline wraps a hal render pipeline and the uniform bind group
// layout it was built with.
type pipeline struct {
	dev      *Device
	label    string
	hpipe    hal.RenderPipeline
	layout   hal.PipelineLayout
	bgLayout hal.BindGroupLayout
}

func (p *pipeline) UniformBinding(buf device.Buffer, offset, size uint64) (device.BindGroup, error) {
	b, ok := buf.(*buffer)
	if !ok {
		return nil, fmt.Errorf("%w: foreign buffer in uniform binding", device.ErrInvalidDescriptor)
	}
	hbg, err := p.dev.hdev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.label + "_uniforms",
		Layout: p.bgLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: b.hbuf.NativeHandle(),
				Offset: offset,
				Size:   size,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create uniform bind group: %w", err)
	}
	return &bindGroup{dev: p.dev, hbg: hbg}, nil
}

func (p *pipeline) Destroy() {
	p.dev.hdev.DestroyRenderPipeline(p.hpipe)
	p.dev.hdev.DestroyPipelineLayout(p.layout)
	p.dev.hdev.DestroyBindGroupLayout(p.bgLayout)
}

type bindGroup struct {
	dev *Device
	hbg hal.BindGroup
}

func (g *bindGroup) Destroy() {
	g.dev.hdev.DestroyBindGroup(g.hbg)
}
