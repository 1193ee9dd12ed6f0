package osr

import (
	"image"
	"log/slog"
	"time"
)

// resizeCoordinator decides when a size change is allowed to take effect.
// The surface's externally reported size never changes without either a
// frame delivered at the new geometry or the bounded-timeout fallback, so
// the host is never painted content rendered for stale geometry.
type resizeCoordinator struct {
	s      *surface
	held   bool
	target image.Point
	timer  *time.Timer
}

func newResizeCoordinator(s *surface) *resizeCoordinator {
	return &resizeCoordinator{s: s}
}

// pendingTarget reports the size the renderer should be producing at
// while a hold is in place.
func (rc *resizeCoordinator) pendingTarget() (image.Point, bool) {
	if rc.held {
		return rc.target, true
	}
	return image.Point{}, false
}

// requestResize records a new target size. If a frame is in flight at the
// old geometry the hold is set: delivered frames that do not match the
// target are discarded until a matching one arrives or the hold times
// out. With nothing in flight the size applies immediately.
func (rc *resizeCoordinator) requestResize(size image.Point) {
	s := rc.s
	if s.destroyed || size.X <= 0 || size.Y <= 0 {
		return
	}
	current := s.size
	if rc.held {
		current = rc.target
	}
	if size == current {
		return
	}

	if s.state == frameWaiting || rc.held {
		rc.held = true
		rc.target = size
		// The in-flight request was for the old geometry; cancel it and
		// ask again at the target so the renderer learns the new size.
		s.cancelFrameRequest()
		s.requestFrame()
		rc.resetTimer()
		return
	}

	// Nothing in flight: apply now and ask for content at the new size.
	s.size = size
	s.client.ResizeAck(s.id, size)
	s.requestFrame()
}

// frameAccepted is called by the sink for every geometry-matching
// delivery. It releases the hold when the delivery matches the target.
func (rc *resizeCoordinator) frameAccepted(size image.Point) {
	s := rc.s
	if rc.held && size == rc.target {
		rc.held = false
		rc.stopTimer()
		s.size = size
		s.client.ResizeAck(s.id, size)
	}
}

// forceRelease is the bounded-timeout fallback: the renderer never
// produced a frame at the target size, so the hold is cleared anyway and
// the host is painted synthetic full-surface damage at the new size
// rather than being left stuck. The content is the held frame resampled
// to the new geometry when one exists, a blank buffer otherwise.
func (rc *resizeCoordinator) forceRelease() {
	s := rc.s
	if s.destroyed || !s.visible || !rc.held {
		return
	}
	Logger().Warn("osr: resize hold timed out, forcing release",
		slog.Uint64("surface", uint64(s.id)),
		slog.Int("w", rc.target.X), slog.Int("h", rc.target.Y))
	rc.held = false
	rc.stopTimer()
	s.size = rc.target
	s.client.ResizeAck(s.id, s.size)
	s.sink.dispatchSynthetic(s.size)
}

// cancel stops the timeout on the destroy path.
func (rc *resizeCoordinator) cancel() {
	rc.held = false
	rc.stopTimer()
}

// suspend pauses the hold timeout while the surface is hidden. The hold
// and its target survive; hidden surfaces paint nothing, so there is no
// release to force.
func (rc *resizeCoordinator) suspend() {
	rc.stopTimer()
}

// resume re-arms the timeout when a held surface is shown again.
func (rc *resizeCoordinator) resume() {
	if rc.held {
		rc.resetTimer()
	}
}

func (rc *resizeCoordinator) resetTimer() {
	rc.stopTimer()
	c := rc.s.c
	rc.timer = time.AfterFunc(c.cfg.resizeHoldTimeout(), func() {
		c.post(rc.forceRelease)
	})
}

func (rc *resizeCoordinator) stopTimer() {
	if rc.timer != nil {
		rc.timer.Stop()
		rc.timer = nil
	}
}
