package osr

import (
	"image"

	"github.com/gogpu/osr/pixel"
)

// Frame is one composited frame delivered by the renderer: pixel content
// (or a GPU handle), the damage region relative to the previous delivery,
// and the geometry it was produced at.
//
// A Frame is treated as immutable after delivery. The compositor owns it
// until the paint callback and any queued readbacks have consumed it.
type Frame struct {
	// Size is the pixel dimensions the frame was produced at. Deliveries
	// whose Size does not match the surface's current target size are
	// dropped, which is expected during resize races.
	Size image.Point

	// Scale is the device scale factor the frame was produced at.
	// Zero is treated as 1.
	Scale float32

	// Damage is the sub-rectangle that changed since the previous
	// delivery. An empty Damage means the full frame.
	Damage image.Rectangle

	// Source supplies the frame's pixels. A *pixel.Buffer delivers CPU
	// pixels directly; a *pixel.TextureSource wraps a GPU handle.
	Source pixel.Source
}

func (f Frame) scale() float32 {
	if f.Scale == 0 {
		return 1
	}
	return f.Scale
}

// bounds returns the frame extent anchored at the origin.
func (f Frame) bounds() image.Rectangle {
	return image.Rectangle{Max: f.Size}
}

// damageBounds returns the effective damage: the declared damage clipped
// to the frame, or the full frame when none was declared.
func (f Frame) damageBounds() image.Rectangle {
	if f.Damage.Empty() {
		return f.bounds()
	}
	return f.Damage.Intersect(f.bounds())
}
