package soft

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/flight/device"
)

// encoder records a command stream as a list of closures executed at
// submit time.
type encoder struct {
	label    string
	ops      []func()
	inPass   bool
	finished bool
	err      error
}

var _ device.CommandEncoder = (*encoder)(nil)

func (e *encoder) BeginRenderPass(desc *device.RenderPassDescriptor) device.RenderPass {
	if e.finished || e.inPass {
		e.fail(fmt.Errorf("%w: render pass begun on a %s encoder",
			device.ErrInvalidDescriptor, e.state()))
		return &renderPass{enc: e, ended: true}
	}

	view, ok := desc.View.(*textureView)
	if !ok {
		e.fail(fmt.Errorf("%w: foreign texture view in render pass", device.ErrInvalidDescriptor))
		return &renderPass{enc: e, ended: true}
	}

	e.inPass = true
	clear := desc.ClearColor
	target := view.tex
	e.ops = append(e.ops, func() {
		target.fill(clear)
	})
	return &renderPass{enc: e, target: target}
}

func (e *encoder) CopyTextureToBuffer(tex device.Texture, buf device.Buffer, layout *device.CopyLayout) {
	if e.finished || e.inPass {
		e.fail(fmt.Errorf("%w: copy recorded on a %s encoder",
			device.ErrInvalidDescriptor, e.state()))
		return
	}
	src, ok := tex.(*texture)
	if !ok {
		e.fail(fmt.Errorf("%w: foreign texture in copy", device.ErrInvalidDescriptor))
		return
	}
	dst, ok := buf.(*buffer)
	if !ok {
		e.fail(fmt.Errorf("%w: foreign buffer in copy", device.ErrInvalidDescriptor))
		return
	}
	if layout.BytesPerRow%device.CopyPitchAlignment != 0 {
		e.fail(fmt.Errorf("%w: copy row pitch %d is not %d-byte aligned",
			device.ErrInvalidDescriptor, layout.BytesPerRow, device.CopyPitchAlignment))
		return
	}
	pitch := layout.BytesPerRow
	e.ops = append(e.ops, func() {
		src.copyTo(dst, pitch)
	})
}

func (e *encoder) Finish() (device.CommandBuffer, error) {
	if e.finished {
		return nil, fmt.Errorf("%w: encoder already finished", device.ErrInvalidDescriptor)
	}
	if e.inPass {
		return nil, fmt.Errorf("%w: encoder finished with an open render pass", device.ErrInvalidDescriptor)
	}
	if e.err != nil {
		return nil, e.err
	}
	e.finished = true
	return &commandBuffer{label: e.label, ops: e.ops}, nil
}

func (e *encoder) Discard() {
	e.finished = true
	e.ops = nil
}

// fail latches the first recording error; Finish reports it.
func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
	slogger().Warn("soft: invalid command recording",
		slog.String("encoder", e.label),
		slog.String("error", err.Error()))
}

func (e *encoder) state() string {
	switch {
	case e.finished:
		return "finished"
	case e.inPass:
		return "recording-pass"
	default:
		return "recording"
	}
}

// renderPass validates draw-state ordering. The software device
// rasterizes nothing; a pass's observable effect is its clear.
type renderPass struct {
	enc         *encoder
	target      *texture
	pipelineSet bool
	ended       bool
}

var _ device.RenderPass = (*renderPass)(nil)

func (rp *renderPass) SetPipeline(p device.Pipeline) {
	if rp.ended {
		return
	}
	if _, ok := p.(*pipeline); !ok {
		rp.enc.fail(fmt.Errorf("%w: foreign pipeline bound", device.ErrInvalidDescriptor))
		return
	}
	rp.pipelineSet = true
}

func (rp *renderPass) SetBindGroup(index uint32, group device.BindGroup, dynamicOffsets []uint32) {
	if rp.ended {
		return
	}
	if _, ok := group.(*bindGroup); !ok {
		rp.enc.fail(fmt.Errorf("%w: foreign bind group at index %d", device.ErrInvalidDescriptor, index))
	}
}

func (rp *renderPass) SetVertexBuffer(slot uint32, buf device.Buffer, offset uint64) {
	if rp.ended {
		return
	}
	if _, ok := buf.(*buffer); !ok {
		rp.enc.fail(fmt.Errorf("%w: foreign vertex buffer in slot %d", device.ErrInvalidDescriptor, slot))
	}
}

func (rp *renderPass) SetIndexBuffer(buf device.Buffer, format device.IndexFormat, offset uint64) {
	if rp.ended {
		return
	}
	if _, ok := buf.(*buffer); !ok {
		rp.enc.fail(fmt.Errorf("%w: foreign index buffer", device.ErrInvalidDescriptor))
	}
}

func (rp *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if rp.ended {
		return
	}
	if !rp.pipelineSet {
		rp.enc.fail(fmt.Errorf("%w: draw without a pipeline", device.ErrInvalidDescriptor))
	}
}

func (rp *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if rp.ended {
		return
	}
	if !rp.pipelineSet {
		rp.enc.fail(fmt.Errorf("%w: indexed draw without a pipeline", device.ErrInvalidDescriptor))
	}
}

func (rp *renderPass) End() {
	if rp.ended {
		return
	}
	rp.ended = true
	rp.enc.inPass = false
}

// commandBuffer is a finished, executable command stream.
type commandBuffer struct {
	label string
	ops   []func()
}

func (c *commandBuffer) Label() string { return c.label }
