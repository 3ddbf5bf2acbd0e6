package video

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/flight"
)

// Memory buffers recorded frames in RAM. It is the sink of choice for
// tests and for callers that post-process frames themselves.
type Memory struct {
	mu     sync.Mutex
	size   image.Point
	open   bool
	frames []*flight.Frame
	times  []float64
}

var _ flight.Sink = (*Memory)(nil)

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Open(size image.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return fmt.Errorf("video: memory sink already open")
	}
	m.size = size
	m.open = true
	m.frames = nil
	m.times = nil
	return nil
}

func (m *Memory) WriteFrame(f *flight.Frame, t float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return fmt.Errorf("video: memory sink is not open")
	}
	m.frames = append(m.frames, f.Clone())
	m.times = append(m.times, t)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// Len returns the number of recorded frames.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Frame returns the i-th recorded frame and its timestamp.
func (m *Memory) Frame(i int) (*flight.Frame, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames[i], m.times[i]
}

// Timestamps returns a copy of the recorded timestamps in order.
func (m *Memory) Timestamps() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.times))
	copy(out, m.times)
	return out
}

// Size returns the frame size the sink was opened with.
func (m *Memory) Size() image.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}
