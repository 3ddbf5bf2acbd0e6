package soft

import (
	"sync/atomic"

	"github.com/gogpu/flight/device"
)

// Drawable adapts a software texture into a presentable render target.
// Real hosts supply swapchain drawables; headless hosts and tests use
// this one, which counts presentations instead of displaying them.
type Drawable struct {
	tex      device.Texture
	presents atomic.Int64
}

var _ device.Drawable = (*Drawable)(nil)

// NewDrawable wraps tex as a presentable target. The texture must come
// from a software device.
func NewDrawable(tex device.Texture) *Drawable {
	return &Drawable{tex: tex}
}

func (d *Drawable) View() device.TextureView { return d.tex.View() }

// Present records one presentation.
func (d *Drawable) Present() {
	d.presents.Add(1)
}

// PresentCount reports how many times the drawable has been presented.
func (d *Drawable) PresentCount() int64 {
	return d.presents.Load()
}

// Texture returns the underlying texture, letting tests inspect what
// was presented.
func (d *Drawable) Texture() device.Texture { return d.tex }
