package video

import (
	"image"
	"os"

	"golang.org/x/image/bmp"

	"github.com/gogpu/flight"
)

// BMPSequence writes frames as numbered BMP files in a directory.
// BMP trades disk space for encode speed, which matters when recording
// long movies at large frame sizes.
type BMPSequence struct {
	sequence
}

var _ flight.Sink = (*BMPSequence)(nil)

// NewBMPSequence writes <prefix>_NNNN.bmp files into dir, creating the
// directory on Open if needed.
func NewBMPSequence(dir, prefix string) *BMPSequence {
	if prefix == "" {
		prefix = "frame"
	}
	return &BMPSequence{sequence: sequence{
		dir:    dir,
		prefix: prefix,
		ext:    ".bmp",
		encode: func(f *os.File, img *image.RGBA) error {
			return bmp.Encode(f, img)
		},
	}}
}
