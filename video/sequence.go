package video

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gogpu/flight"
)

// encodeFunc writes one frame image to w-style destination file.
type encodeFunc func(f *os.File, img *image.RGBA) error

// sequence is the shared machinery of the file-based sinks: directory
// creation, frame numbering and the open/closed state.
type sequence struct {
	dir    string
	prefix string
	ext    string
	encode encodeFunc

	open bool
	next int
	size image.Point
}

func (s *sequence) Open(size image.Point) error {
	if s.open {
		return fmt.Errorf("video: sequence in %s already open", s.dir)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("video: create output directory: %w", err)
	}
	s.size = size
	s.next = 0
	s.open = true
	return nil
}

func (s *sequence) WriteFrame(f *flight.Frame, t float64) error {
	if !s.open {
		return fmt.Errorf("video: sequence in %s is not open", s.dir)
	}
	name := filepath.Join(s.dir, fmt.Sprintf("%s_%04d%s", s.prefix, s.next, s.ext))
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("video: create %s: %w", name, err)
	}
	if err := s.encode(out, f.Image()); err != nil {
		out.Close()
		return fmt.Errorf("video: encode %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("video: close %s: %w", name, err)
	}
	s.next++
	return nil
}

func (s *sequence) Close() error {
	s.open = false
	return nil
}

// FrameCount returns the number of frames written so far.
func (s *sequence) FrameCount() int { return s.next }
