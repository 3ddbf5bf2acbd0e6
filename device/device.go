package device

import (
	"github.com/gogpu/gputypes"
)

// Device is the GPU device handle the renderer drives.
//
// Device creation belongs to the backend layer (see package backend);
// the renderer only consumes an existing handle. All Create* methods
// return setup-time errors: a caller that cannot create its pipeline or
// buffers cannot proceed, so these errors are fatal to construction.
//
// Implementations must be safe for concurrent use.
type Device interface {
	// RegisterShader adds a named program to the device's shader
	// library. Source is WGSL. Registration validates the source;
	// invalid programs fail here rather than at pipeline creation.
	RegisterShader(name, source string) error

	// CreateRenderPipeline builds a render pipeline from registered
	// shader programs. A missing program name or a compile failure
	// returns an error wrapping ErrShaderNotFound or ErrShaderCompile.
	CreateRenderPipeline(desc *PipelineDescriptor) (Pipeline, error)

	// CreateBuffer allocates a GPU buffer.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// CreateTexture allocates a GPU texture.
	CreateTexture(desc *TextureDescriptor) (Texture, error)

	// CreateCommandEncoder begins recording a new command stream.
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Queue returns the device's submission queue.
	Queue() Queue

	// Close releases all device-owned resources. Idempotent.
	Close() error
}

// Queue submits recorded work and transfers data between host and device.
type Queue interface {
	// WriteBuffer schedules a host-to-device copy into buf at offset.
	// The data is consumed before WriteBuffer returns.
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// ReadBuffer copies buffer contents back to the host. The buffer
	// must have been created with BufferUsageMapRead. Callers must
	// ensure the producing submission has completed first.
	ReadBuffer(buf Buffer, offset uint64, dst []byte) error

	// Submit hands a finished command buffer to the device for
	// execution. done, if non-nil, is invoked exactly once when the
	// device has finished executing cmd. The callback runs off the
	// caller's goroutine and must not encode new GPU work.
	Submit(cmd CommandBuffer, done func()) error
}

// Buffer is a device memory allocation.
type Buffer interface {
	Size() uint64
	Destroy()
}

// Texture is a device image allocation.
type Texture interface {
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat

	// View returns the texture's render/copy view. The view shares the
	// texture's lifetime; callers do not destroy it separately.
	View() TextureView

	Destroy()
}

// TextureView is a bindable view of a texture, used as a render pass
// color attachment.
type TextureView interface {
	// Label returns the view's debug label, if any.
	Label() string
}

// Drawable is a presentable render target, typically wrapping a
// swapchain image owned by the host windowing layer. flight never
// creates drawables; the host supplies one per presented frame.
type Drawable interface {
	// View returns the color attachment view for this frame.
	View() TextureView

	// Present schedules the drawable for display. Called after the
	// frame's command buffer has been submitted.
	Present()
}

// CommandBuffer is an opaque finished command stream.
type CommandBuffer interface {
	// Label returns the command buffer's debug label, if any.
	Label() string
}

// CommandEncoder records GPU commands for one submission.
//
// Encoders are single-use: record, Finish, submit. They are not safe
// for concurrent use.
type CommandEncoder interface {
	// BeginRenderPass opens the frame's render pass. The attachment is
	// cleared to desc.ClearColor on load and stored on end; flight
	// frames never preserve previous attachment contents.
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass

	// CopyTextureToBuffer records a texture-to-buffer copy for host
	// readback. layout.BytesPerRow must be 256-byte aligned.
	CopyTextureToBuffer(tex Texture, buf Buffer, layout *CopyLayout)

	// Finish ends recording and returns the command buffer.
	Finish() (CommandBuffer, error)

	// Discard abandons the encoder without producing a command buffer.
	Discard()
}

// RenderPass records draw commands between BeginRenderPass and End.
//
// The pass handle is a scoped borrow: Renderable bind callbacks receive
// it for the duration of one frame's encoding and must not retain it.
type RenderPass interface {
	SetPipeline(p Pipeline)

	// SetBindGroup binds a resource group at the given index.
	// dynamicOffsets may be nil.
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)

	SetVertexBuffer(slot uint32, buf Buffer, offset uint64)
	SetIndexBuffer(buf Buffer, format IndexFormat, offset uint64)

	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	End()
}

// BindGroup is a bound resource set (for flight, the per-slot uniform
// binding minted by Pipeline.UniformBinding).
type BindGroup interface {
	Destroy()
}

// Pipeline is a compiled render pipeline.
type Pipeline interface {
	// UniformBinding creates a bind group exposing size bytes of buf at
	// offset through the pipeline's uniform interface (group 0,
	// binding 0). Offset must honor the device's uniform alignment.
	UniformBinding(buf Buffer, offset, size uint64) (BindGroup, error)

	Destroy()
}

// IndexFormat selects the element width of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// TextureDescriptor describes a 2D texture allocation.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
}

// RenderPassDescriptor configures the single color attachment of a
// frame's render pass. Load is always clear, store is always store.
type RenderPassDescriptor struct {
	Label      string
	View       TextureView
	ClearColor gputypes.Color
}

// CopyLayout describes the buffer-side layout of a texture copy.
type CopyLayout struct {
	// BytesPerRow is the row pitch in the destination buffer. Must be
	// a multiple of CopyPitchAlignment.
	BytesPerRow uint32

	// RowsPerImage is the number of rows copied.
	RowsPerImage uint32
}

// CopyPitchAlignment is the required row pitch alignment for
// texture-to-buffer copies (WebGPU and DX12 mandate 256).
const CopyPitchAlignment = 256
