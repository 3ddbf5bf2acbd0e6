package wgpu

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flight/device"
)

// fenceWaitTimeout bounds how long the completion watcher waits for a
// submission. A device that takes longer is considered lost.
const fenceWaitTimeout = 5 * time.Second

// encoder wraps a hal command encoder that is already recording.
type encoder struct {
	dev   *Device
	label string
	henc  hal.CommandEncoder
}

var _ device.CommandEncoder = (*encoder)(nil)

func (e *encoder) BeginRenderPass(desc *device.RenderPassDescriptor) device.RenderPass {
	view, ok := desc.View.(*textureView)
	if !ok {
		// Recording continues; Finish will produce a command buffer
		// that simply lacks the pass. This mirrors hal's tolerance of
		// empty encoders and keeps the scoped-borrow contract simple.
		slogger().Error("wgpu: foreign texture view in render pass",
			slog.String("encoder", e.label))
		return &renderPass{}
	}

	hrp := e.henc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view.hview,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: desc.ClearColor,
		}},
	})
	return &renderPass{hrp: hrp}
}

func (e *encoder) CopyTextureToBuffer(tex device.Texture, buf device.Buffer, layout *device.CopyLayout) {
	t, ok := tex.(*texture)
	if !ok {
		slogger().Error("wgpu: foreign texture in copy", slog.String("encoder", e.label))
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		slogger().Error("wgpu: foreign buffer in copy", slog.String("encoder", e.label))
		return
	}

	// The attachment is in render-target layout after the pass; copies
	// need transfer-source. Transition, copy, transition back so the
	// texture stays usable as an attachment for the next frame.
	e.henc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.htex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	e.henc.CopyTextureToBuffer(t.htex, b.hbuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.htex,
			MipLevel: 0,
		},
		Size: hal.Extent3D{
			Width:              t.width,
			Height:             t.height,
			DepthOrArrayLayers: 1,
		},
	}})

	e.henc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.htex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

func (e *encoder) Finish() (device.CommandBuffer, error) {
	hcb, err := e.henc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	return &commandBuffer{label: e.label, hcb: hcb}, nil
}

func (e *encoder) Discard() {
	e.henc.DiscardEncoding()
}

// renderPass wraps a hal render pass encoder. A zero renderPass (from a
// failed BeginRenderPass) absorbs all commands.
type renderPass struct {
	hrp hal.RenderPassEncoder
}

var _ device.RenderPass = (*renderPass)(nil)

func (rp *renderPass) SetPipeline(p device.Pipeline) {
	hp, ok := p.(*pipeline)
	if rp.hrp == nil || !ok {
		return
	}
	rp.hrp.SetPipeline(hp.hpipe)
}

func (rp *renderPass) SetBindGroup(index uint32, group device.BindGroup, dynamicOffsets []uint32) {
	g, ok := group.(*bindGroup)
	if rp.hrp == nil || !ok {
		return
	}
	rp.hrp.SetBindGroup(index, g.hbg, dynamicOffsets)
}

func (rp *renderPass) SetVertexBuffer(slot uint32, buf device.Buffer, offset uint64) {
	b, ok := buf.(*buffer)
	if rp.hrp == nil || !ok {
		return
	}
	rp.hrp.SetVertexBuffer(slot, b.hbuf, offset)
}

func (rp *renderPass) SetIndexBuffer(buf device.Buffer, format device.IndexFormat, offset uint64) {
	b, ok := buf.(*buffer)
	if rp.hrp == nil || !ok {
		return
	}
	halFormat := gputypes.IndexFormatUint16
	if format == device.IndexFormatUint32 {
		halFormat = gputypes.IndexFormatUint32
	}
	rp.hrp.SetIndexBuffer(b.hbuf, halFormat, offset)
}

func (rp *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if rp.hrp == nil {
		return
	}
	rp.hrp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (rp *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if rp.hrp == nil {
		return
	}
	rp.hrp.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (rp *renderPass) End() {
	if rp.hrp == nil {
		return
	}
	rp.hrp.End()
}

// commandBuffer wraps a finished hal command buffer.
type commandBuffer struct {
	label string
	hcb   hal.CommandBuffer
}

func (c *commandBuffer) Label() string { return c.label }

// queue wraps the hal queue. Completion callbacks ride on hal fences:
// each Submit with a callback creates a fence and a watcher goroutine
// that waits for it.
type queue struct {
	dev *Device
	hq  hal.Queue
}

var _ device.Queue = (*queue)(nil)

func (q *queue) WriteBuffer(buf device.Buffer, offset uint64, data []byte) {
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	q.hq.WriteBuffer(b.hbuf, offset, data)
}

func (q *queue) ReadBuffer(buf device.Buffer, offset uint64, dst []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer in read", device.ErrInvalidDescriptor)
	}
	return q.hq.ReadBuffer(b.hbuf, offset, dst)
}

func (q *queue) Submit(cmd device.CommandBuffer, done func()) error {
	cb, ok := cmd.(*commandBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign command buffer", device.ErrInvalidDescriptor)
	}

	fence, err := q.dev.hdev.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	if err := q.hq.Submit([]hal.CommandBuffer{cb.hcb}, fence, 1); err != nil {
		q.dev.hdev.DestroyFence(fence)
		return fmt.Errorf("wgpu: submit: %w", err)
	}

	go func() {
		signaled, err := q.dev.hdev.Wait(fence, 1, fenceWaitTimeout)
		if err != nil || !signaled {
			slogger().Error("wgpu: fence wait failed",
				slog.String("command_buffer", cb.label),
				slog.Bool("signaled", signaled),
				slog.Any("error", err))
		}
		q.dev.hdev.DestroyFence(fence)
		q.dev.hdev.FreeCommandBuffer(cb.hcb)
		if done != nil {
			done()
		}
	}()
	return nil
}
