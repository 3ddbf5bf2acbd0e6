package flight

import (
	"image"
	"image/color"
)

// Frame is a captured render target read back to host memory. Pixels
// are tightly packed BGRA8, the renderer's fixed output format, with no
// row padding.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Stride int // bytes per row, Width*4
}

// newFrame allocates a zeroed frame of the given size.
func newFrame(w, h int) *Frame {
	return &Frame{
		Pix:    make([]byte, w*h*4),
		Width:  w,
		Height: h,
		Stride: w * 4,
	}
}

// At returns the pixel at (x, y). Out-of-bounds coordinates return the
// zero color.
func (f *Frame) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	i := y*f.Stride + x*4
	return color.RGBA{
		R: f.Pix[i+2],
		G: f.Pix[i+1],
		B: f.Pix[i+0],
		A: f.Pix[i+3],
	}
}

// Image converts the frame to an *image.RGBA, swizzling BGRA to RGBA.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride : y*f.Stride+f.Width*4]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			dst[x*4+0] = src[x*4+2]
			dst[x*4+1] = src[x*4+1]
			dst[x*4+2] = src[x*4+0]
			dst[x*4+3] = src[x*4+3]
		}
	}
	return img
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Pix = make([]byte, len(f.Pix))
	copy(c.Pix, f.Pix)
	return &c
}
