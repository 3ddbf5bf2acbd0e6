package flight

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/flight/device"
)

// Sink receives captured movie frames. Implementations live in the
// video package; anything that can store a timestamped frame sequence
// qualifies.
type Sink interface {
	// Open starts a recording session for frames of the given size.
	// RenderMovie calls it once, before the first frame.
	Open(size image.Point) error

	// WriteFrame stores one frame captured at timestamp t seconds.
	// The frame is owned by the caller; implementations that retain
	// pixels past the call must copy them.
	WriteFrame(f *Frame, t float64) error

	// Close ends the session and flushes any buffered output.
	Close() error
}

// MovieOptions describes an offline movie render.
type MovieOptions struct {
	// Size is the output frame size in pixels.
	Size image.Point

	// TotalSeconds is the movie duration. Frames are captured at
	// every step from 0 through TotalSeconds inclusive.
	TotalSeconds float64

	// StepSeconds is the timestep between frames.
	StepSeconds float64
}

func (o *MovieOptions) validate() error {
	if o.Size.X <= 0 || o.Size.Y <= 0 {
		return fmt.Errorf("%w: movie size %dx%d", ErrInvalidConfig, o.Size.X, o.Size.Y)
	}
	if o.StepSeconds <= 0 {
		return fmt.Errorf("%w: movie step %v", ErrInvalidConfig, o.StepSeconds)
	}
	if o.TotalSeconds < 0 {
		return fmt.Errorf("%w: movie duration %v", ErrInvalidConfig, o.TotalSeconds)
	}
	return nil
}

// frameTimeEpsilon absorbs float accumulation when deciding whether a
// timestamp still falls within the movie, so a duration that is an
// exact multiple of the step gets its final frame.
const frameTimeEpsilon = 1e-9

// RenderMovie renders obj frame by frame into sink. Each iteration
// advances obj by StepSeconds, captures a frame synchronously and
// writes it with its timestamp; timestamps run 0, step, 2*step, ...
// through TotalSeconds inclusive.
//
// The whole render is synchronous: when RenderMovie returns, the sink
// has been closed and every frame written. Opening the sink is a setup
// step and failing it aborts before any rendering; write errors abort
// the remaining frames.
func (r *Renderer) RenderMovie(ctx context.Context, opts MovieOptions, obj MovieRenderable, sink Sink) error {
	if obj == nil {
		return ErrNilRenderable
	}
	if sink == nil {
		return ErrNilTarget
	}
	if err := opts.validate(); err != nil {
		return err
	}

	tex, err := r.dev.CreateTexture(&device.TextureDescriptor{
		Label:  r.cfg.Label + ".movie",
		Width:  uint32(opts.Size.X),
		Height: uint32(opts.Size.Y),
		Format: device.ColorFormat,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("flight: create movie texture: %w", err)
	}
	defer tex.Destroy()

	if err := sink.Open(opts.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkOpen, err)
	}

	writeErr := func() error {
		for i := 0; ; i++ {
			t := float64(i) * opts.StepSeconds
			if t > opts.TotalSeconds+frameTimeEpsilon {
				return nil
			}
			obj.Update(opts.StepSeconds)
			frame, err := r.RenderToTexture(ctx, obj, tex)
			if err != nil {
				return fmt.Errorf("flight: movie frame at t=%v: %w", t, err)
			}
			if err := sink.WriteFrame(frame, t); err != nil {
				return fmt.Errorf("flight: write movie frame at t=%v: %w", t, err)
			}
		}
	}()

	if err := sink.Close(); err != nil && writeErr == nil {
		return fmt.Errorf("flight: close movie sink: %w", err)
	}
	return writeErr
}
