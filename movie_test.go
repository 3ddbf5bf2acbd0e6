package flight_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight"
	"github.com/gogpu/flight/video"
)

func TestRenderMovieFrameCount(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	obj := &spinner{clear: gputypes.Color{B: 1, A: 1}}
	sink := video.NewMemory()
	opts := flight.MovieOptions{
		Size:         image.Pt(16, 16),
		TotalSeconds: 1.0,
		StepSeconds:  0.25,
	}
	if err := r.RenderMovie(context.Background(), opts, obj, sink); err != nil {
		t.Fatalf("RenderMovie() error = %v", err)
	}

	// A 1.0s movie at 0.25s steps has frames at 0, 0.25, 0.5, 0.75
	// and 1.0: five in total, endpoints included.
	want := []float64{0, 0.25, 0.5, 0.75, 1.0}
	got := sink.Timestamps()
	if len(got) != len(want) {
		t.Fatalf("frame count = %d, want %d (timestamps %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamp[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRenderMovieUpdatesBeforeEachFrame(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	obj := &spinner{}
	sink := video.NewMemory()
	opts := flight.MovieOptions{
		Size:         image.Pt(8, 8),
		TotalSeconds: 1.0,
		StepSeconds:  0.25,
	}
	if err := r.RenderMovie(context.Background(), opts, obj, sink); err != nil {
		t.Fatalf("RenderMovie() error = %v", err)
	}
	if obj.updates != sink.Len() {
		t.Errorf("updates = %d, frames = %d; the scene must step once per captured frame",
			obj.updates, sink.Len())
	}
}

func TestRenderMovieFrameSize(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	sink := video.NewMemory()
	opts := flight.MovieOptions{
		Size:         image.Pt(24, 12),
		TotalSeconds: 0,
		StepSeconds:  0.5,
	}
	if err := r.RenderMovie(context.Background(), opts, &spinner{}, sink); err != nil {
		t.Fatalf("RenderMovie() error = %v", err)
	}
	if sink.Len() != 1 {
		t.Fatalf("zero-duration movie should capture exactly the t=0 frame, got %d", sink.Len())
	}
	f, _ := sink.Frame(0)
	if f.Width != 24 || f.Height != 12 {
		t.Errorf("frame size = %dx%d, want 24x12", f.Width, f.Height)
	}
}

func TestRenderMovieInvalidOptions(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)
	sink := video.NewMemory()

	tests := []flight.MovieOptions{
		{Size: image.Pt(0, 16), TotalSeconds: 1, StepSeconds: 0.25},
		{Size: image.Pt(16, 16), TotalSeconds: 1, StepSeconds: 0},
		{Size: image.Pt(16, 16), TotalSeconds: -1, StepSeconds: 0.25},
	}
	for i, opts := range tests {
		if err := r.RenderMovie(context.Background(), opts, &spinner{}, sink); !errors.Is(err, flight.ErrInvalidConfig) {
			t.Errorf("#%d: RenderMovie() error = %v, want ErrInvalidConfig", i, err)
		}
	}
}

// failingSink refuses to open or write, for error-path coverage.
type failingSink struct {
	openErr  error
	writeErr error
	closed   bool
}

func (s *failingSink) Open(size image.Point) error { return s.openErr }

func (s *failingSink) WriteFrame(f *flight.Frame, t float64) error { return s.writeErr }

func (s *failingSink) Close() error {
	s.closed = true
	return nil
}

func TestRenderMovieSinkOpenFailureIsFatal(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	obj := &spinner{}
	sink := &failingSink{openErr: fmt.Errorf("disk full")}
	opts := flight.MovieOptions{Size: image.Pt(8, 8), TotalSeconds: 1, StepSeconds: 0.25}

	err := r.RenderMovie(context.Background(), opts, obj, sink)
	if !errors.Is(err, flight.ErrSinkOpen) {
		t.Fatalf("RenderMovie() error = %v, want ErrSinkOpen", err)
	}
	if obj.updates != 0 {
		t.Error("no frames may be rendered when the sink fails to open")
	}
}

func TestRenderMovieWriteFailureStopsAndCloses(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	obj := &spinner{}
	sink := &failingSink{writeErr: fmt.Errorf("pipe broken")}
	opts := flight.MovieOptions{Size: image.Pt(8, 8), TotalSeconds: 1, StepSeconds: 0.25}

	if err := r.RenderMovie(context.Background(), opts, obj, sink); err == nil {
		t.Fatal("RenderMovie() should propagate write errors")
	}
	if obj.updates != 1 {
		t.Errorf("updates = %d, want 1 (abort after the first failed write)", obj.updates)
	}
	if !sink.closed {
		t.Error("the sink must be closed even when a write fails")
	}
}

func TestRenderMoviePNGEndToEnd(t *testing.T) {
	dev := newTestDevice(t, 0)
	r := newTestRenderer(t, dev)

	sink := video.NewPNGSequence(t.TempDir(), "movie")
	opts := flight.MovieOptions{
		Size:         image.Pt(8, 8),
		TotalSeconds: 0.5,
		StepSeconds:  0.25,
	}
	obj := &spinner{clear: gputypes.Color{R: 1, G: 1, B: 0, A: 1}}
	if err := r.RenderMovie(context.Background(), opts, obj, sink); err != nil {
		t.Fatalf("RenderMovie() error = %v", err)
	}
	if sink.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3", sink.FrameCount())
	}
}
