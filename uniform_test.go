package flight

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		size, align, want int
	}{
		{0, 256, 0},
		{1, 256, 256},
		{128, 256, 256},
		{255, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{512, 256, 512},
		{100, 4, 100},
		{101, 4, 104},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.size, tt.align); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.size, tt.align, got, tt.want)
		}
	}
}

func TestFrameUniformsLayout(t *testing.T) {
	u := frameUniforms{
		projection: mgl32.Ident4(),
		modelView:  mgl32.Translate3D(1, 2, 3),
	}
	got := u.bytes()

	if len(got) != uniformPayloadSize {
		t.Fatalf("payload size = %d, want %d", len(got), uniformPayloadSize)
	}

	// Projection occupies the first 64 bytes, column-major little-endian.
	first := math.Float32frombits(binary.LittleEndian.Uint32(got[0:4]))
	if first != 1 {
		t.Errorf("projection[0] = %v, want 1", first)
	}

	// The translation column of the model-view matrix lands at the tail
	// of the second matrix: elements 12..14 hold x, y, z.
	tx := math.Float32frombits(binary.LittleEndian.Uint32(got[64+12*4:]))
	ty := math.Float32frombits(binary.LittleEndian.Uint32(got[64+13*4:]))
	tz := math.Float32frombits(binary.LittleEndian.Uint32(got[64+14*4:]))
	if tx != 1 || ty != 2 || tz != 3 {
		t.Errorf("model-view translation = (%v, %v, %v), want (1, 2, 3)", tx, ty, tz)
	}
}

func TestFrameUniformsDeterministic(t *testing.T) {
	u := frameUniforms{
		projection: mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100),
		modelView:  mgl32.HomogRotate3DZ(0.7),
	}
	if !bytes.Equal(u.bytes(), u.bytes()) {
		t.Error("identical uniforms must pack to identical bytes")
	}
}
