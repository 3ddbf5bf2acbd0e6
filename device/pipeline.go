package device

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ColorFormat is the fixed color attachment format for flight pipelines:
// 32-bit BGRA, 8 bits per channel, unsigned normalized.
const ColorFormat = gputypes.TextureFormatBGRA8Unorm

// PipelineDescriptor describes a render pipeline built from the device's
// shader library.
//
// VertexShader and FragmentShader name programs previously added with
// Device.RegisterShader. Entry points default to "vs_main" and "fs_main"
// when empty, matching the WGSL convention.
type PipelineDescriptor struct {
	Label string

	// VertexShader is the shader library name of the vertex program.
	VertexShader string

	// VertexEntry is the vertex entry point. Empty means "vs_main".
	VertexEntry string

	// FragmentShader is the shader library name of the fragment program.
	FragmentShader string

	// FragmentEntry is the fragment entry point. Empty means "fs_main".
	FragmentEntry string

	// Topology selects primitive assembly. Zero value is
	// PrimitiveTopologyTriangleList semantics; set explicitly via
	// DefaultPipelineDescriptor for clarity.
	Topology gputypes.PrimitiveTopology

	// VertexLayout describes the vertex buffers the caller's bind
	// callback will attach. Nil means the vertex stage is driven by
	// vertex index alone.
	VertexLayout []gputypes.VertexBufferLayout
}

// DefaultPipelineDescriptor returns a descriptor with triangle-list
// topology and conventional entry points. Only the shader names need
// to be set afterwards.
func DefaultPipelineDescriptor(label string) *PipelineDescriptor {
	return &PipelineDescriptor{
		Label:         label,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Topology:      gputypes.PrimitiveTopologyTriangleList,
	}
}

// Validate checks the descriptor for the failures every backend would
// reject, so callers get one consistent error shape.
func (d *PipelineDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil pipeline descriptor", ErrInvalidDescriptor)
	}
	if d.VertexShader == "" {
		return fmt.Errorf("%w: empty vertex shader name", ErrInvalidDescriptor)
	}
	if d.FragmentShader == "" {
		return fmt.Errorf("%w: empty fragment shader name", ErrInvalidDescriptor)
	}
	return nil
}

// VertexEntryOrDefault returns the vertex entry point, applying the
// "vs_main" default.
func (d *PipelineDescriptor) VertexEntryOrDefault() string {
	if d.VertexEntry == "" {
		return "vs_main"
	}
	return d.VertexEntry
}

// FragmentEntryOrDefault returns the fragment entry point, applying the
// "fs_main" default.
func (d *PipelineDescriptor) FragmentEntryOrDefault() string {
	if d.FragmentEntry == "" {
		return "fs_main"
	}
	return d.FragmentEntry
}
