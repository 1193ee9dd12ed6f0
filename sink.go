package osr

import (
	"image"
	"log/slog"

	"github.com/gogpu/osr/pixel"
)

// frameSink receives composited frames for one surface, owns the current
// frame until its consumers are done with it, and is the host-facing
// invalidation point: damage plus pixels become a single Paint callback.
type frameSink struct {
	s       *surface
	current *Frame
	// delivered is false until the first accepted frame; the first paint
	// always reports full-frame damage regardless of what was declared.
	delivered bool
	// scrollPending coalesces scroll offset notifications onto the next
	// accepted frame.
	scrollPending bool
}

func newFrameSink(s *surface) *frameSink {
	return &frameSink{s: s}
}

// onFrameDelivered validates a delivery against the current target
// geometry. Mismatched frames are dropped without a callback; that is the
// expected outcome of a resize race, not an error. Matching frames
// consume the outstanding request, become current, and are dispatched.
func (fs *frameSink) onFrameDelivered(f Frame) {
	s := fs.s
	if !s.visible {
		Logger().Debug("osr: dropping frame for hidden surface",
			slog.Uint64("surface", uint64(s.id)))
		return
	}
	if f.scale() != s.scale {
		Logger().Warn("osr: dropping frame at stale scale",
			slog.Uint64("surface", uint64(s.id)),
			slog.Any("scale", f.scale()), slog.Any("want", s.scale))
		return
	}
	target := s.targetSize()
	if f.Size != target {
		if _, held := s.resize.pendingTarget(); held {
			Logger().Debug("osr: dropping stale-size frame during resize",
				slog.Uint64("surface", uint64(s.id)),
				slog.Int("w", f.Size.X), slog.Int("h", f.Size.Y))
		} else {
			Logger().Warn("osr: dropping frame with unexpected size",
				slog.Uint64("surface", uint64(s.id)),
				slog.Int("w", f.Size.X), slog.Int("h", f.Size.Y),
				slog.Int("want_w", target.X), slog.Int("want_h", target.Y))
		}
		return
	}

	s.state = frameIdle
	s.resize.frameAccepted(f.Size)

	damage := f.damageBounds()
	if !fs.delivered {
		damage = f.bounds()
		fs.delivered = true
	}
	fs.current = &f
	fs.dispatch(damage)
	s.readback.onFrame(&f)
}

// dispatch runs the invalidation path for the current frame: one Paint
// per accepted delivery, then the coalesced scroll notification, then
// guest swap propagation to an embedder if this surface is a guest.
func (fs *frameSink) dispatch(damage image.Rectangle) {
	s := fs.s
	buf, err := fs.current.Source.Pixels()
	if err != nil {
		Logger().Warn("osr: frame has no CPU pixels, skipping paint",
			slog.Uint64("surface", uint64(s.id)), slog.Any("err", err))
	} else {
		s.c.host.Paint(s.id, damage, buf)
	}
	if fs.scrollPending {
		fs.scrollPending = false
		s.c.host.ScrollOffsetChanged(s.id, s.scrollOffset)
	}
	if embedder, rect, ok := s.c.tree.Embedder(s.id); ok {
		s.c.host.GuestSwap(embedder, rect)
	}
}

// dispatchSynthetic paints full-surface damage at a size the renderer
// never delivered. Used by the forced resize release: the held frame is
// resampled to the new geometry when present, otherwise a blank buffer is
// painted. The stale frame is released either way.
func (fs *frameSink) dispatchSynthetic(size image.Point) {
	s := fs.s
	if !s.visible {
		return
	}
	full := image.Rectangle{Max: size}

	var buf *pixel.Buffer
	if fs.current != nil {
		if src, err := fs.current.Source.Pixels(); err == nil {
			if scaled, err := pixel.Extract(src, src.Bounds(), size); err == nil {
				buf = scaled
			}
		}
		fs.current = nil
	}
	if buf == nil {
		buf = pixel.NewBuffer(size.X, size.Y)
		if buf == nil {
			return
		}
		if !s.transparent {
			// Opaque surfaces never paint see-through pixels, even blank
			// ones.
			data := buf.Data()
			for i := 3; i < len(data); i += 4 {
				data[i] = 0xff
			}
		}
	}
	fs.delivered = true
	s.c.host.Paint(s.id, full, buf)
}

// invalidate re-dispatches the current frame with full damage, or asks
// the renderer for one when nothing is held.
func (fs *frameSink) invalidate() {
	if fs.current == nil {
		fs.s.requestFrame()
		return
	}
	fs.dispatch(image.Rectangle{Max: fs.current.Size})
}

// clearFrame releases the current frame eagerly on hide and destroy so an
// invisible surface does not pin a full pixel buffer.
func (fs *frameSink) clearFrame() {
	fs.current = nil
}

// currentBuffer returns the held frame's pixels when the frame matches
// the surface's reported size, for immediate readback resolution.
func (fs *frameSink) currentBuffer() (*pixel.Buffer, bool) {
	if fs.current == nil || fs.current.Size != fs.s.size {
		return nil, false
	}
	buf, err := fs.current.Source.Pixels()
	if err != nil {
		return nil, false
	}
	return buf, true
}
