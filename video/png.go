package video

import (
	"image"
	"image/png"
	"os"

	"github.com/gogpu/flight"
)

// PNGSequence writes frames as numbered PNG files in a directory.
type PNGSequence struct {
	sequence
}

var _ flight.Sink = (*PNGSequence)(nil)

// NewPNGSequence writes <prefix>_NNNN.png files into dir, creating the
// directory on Open if needed.
func NewPNGSequence(dir, prefix string) *PNGSequence {
	if prefix == "" {
		prefix = "frame"
	}
	return &PNGSequence{sequence: sequence{
		dir:    dir,
		prefix: prefix,
		ext:    ".png",
		encode: func(f *os.File, img *image.RGBA) error {
			return png.Encode(f, img)
		},
	}}
}
