package flight

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// UniformAlign is the minimum uniform buffer offset alignment.
	// Per-frame slots are padded to this stride so every slot offset
	// is a legal dynamic uniform offset on all backends.
	UniformAlign = 256

	// UniformGroup and UniformBindingIndex locate the per-frame
	// uniform slot in the pipeline's bind interface. Shaders declare
	// the frame uniforms at @group(0) @binding(0).
	UniformGroup        = 0
	UniformBindingIndex = 0

	// uniformPayloadSize is the packed size of frameUniforms:
	// two 4x4 float32 matrices = 2 * 64 bytes.
	uniformPayloadSize = 128
)

// AlignUp rounds size up to the next multiple of align. align must be a
// power of two. Sizes already aligned are returned unchanged.
func AlignUp(size, align int) int {
	return (size + align - 1) &^ (align - 1)
}

// frameUniforms is the per-frame CPU-side uniform payload. The packed
// layout must match the frame uniform struct in the caller's WGSL:
//
//	struct FrameUniforms {
//	    projection: mat4x4<f32>,
//	    model_view: mat4x4<f32>,
//	}
type frameUniforms struct {
	projection mgl32.Mat4
	modelView  mgl32.Mat4
}

// bytes packs the uniforms as little-endian float32, projection first.
// mgl32 matrices are column-major, matching WGSL mat4x4 layout.
func (u *frameUniforms) bytes() []byte {
	out := make([]byte, uniformPayloadSize)
	packMat4(out[0:64], u.projection)
	packMat4(out[64:128], u.modelView)
	return out
}

func packMat4(dst []byte, m mgl32.Mat4) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
