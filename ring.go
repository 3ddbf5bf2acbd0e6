package flight

// SlotRing cycles through a fixed set of uniform slots inside one GPU
// buffer. Each frame advances the ring and writes its uniforms into the
// now-current slot; because the ring size equals the in-flight limit,
// a slot is only reused after the frame that last wrote it has been
// retired by the device.
//
// SlotRing does its own arithmetic only; the Renderer owns the backing
// buffer and the per-slot bind groups. It is not safe for concurrent
// use and is guarded by the Renderer's mutex.
type SlotRing struct {
	stride uint64
	count  int
	cur    int
}

// NewSlotRing creates a ring of count slots, each sized to hold payload
// bytes rounded up to UniformAlign. count must be at least 1.
func NewSlotRing(count, payload int) *SlotRing {
	if count < 1 {
		count = 1
	}
	return &SlotRing{
		stride: uint64(AlignUp(payload, UniformAlign)),
		count:  count,
		// Start on the last slot so the first Advance lands on slot 0.
		cur: count - 1,
	}
}

// Advance moves to the next slot and returns its byte offset within the
// backing buffer. Successive calls cycle 0, S, 2S, ..., 0 where S is
// the slot stride.
func (r *SlotRing) Advance() uint64 {
	r.cur = (r.cur + 1) % r.count
	return r.Offset()
}

// Offset returns the current slot's byte offset without advancing.
func (r *SlotRing) Offset() uint64 {
	return uint64(r.cur) * r.stride
}

// Index returns the current slot index.
func (r *SlotRing) Index() int { return r.cur }

// Count returns the number of slots.
func (r *SlotRing) Count() int { return r.count }

// Stride returns the byte stride between slots.
func (r *SlotRing) Stride() uint64 { return r.stride }

// Size returns the total byte size of the backing buffer the ring
// expects: count * stride.
func (r *SlotRing) Size() uint64 { return uint64(r.count) * r.stride }
