package osr

import (
	"image"
	"log/slog"
)

// SurfaceID identifies one off-screen surface within a Compositor. IDs
// are never reused, so a stale ID held by the renderer after destruction
// can only miss, never alias a new surface.
type SurfaceID uint64

// frameState tracks the single outstanding frame request per surface.
// Requests are never pipelined: a tick while waiting is a no-op.
type frameState uint8

const (
	frameIdle frameState = iota
	frameWaiting
)

// surface is the loop-owned state for one off-screen rendering target.
// Nothing outside the compositor loop touches it.
type surface struct {
	id     SurfaceID
	c      *Compositor
	client RendererClient

	// size is the externally reported size. It only changes when a
	// matching frame is delivered or a resize hold is force-released.
	size         image.Point
	scale        float32
	visible      bool
	transparent  bool
	frameRate    int
	focused      bool
	scrollOffset image.Point
	parent       SurfaceID
	popupRect    image.Rectangle

	state    frameState
	clock    *frameClock
	resize   *resizeCoordinator
	sink     *frameSink
	readback *readbackManager
	input    *inputRouter

	destroyed bool
}

func newSurface(c *Compositor, id SurfaceID, client RendererClient, opts surfaceOptions) *surface {
	s := &surface{
		id:          id,
		c:           c,
		client:      client,
		size:        opts.size,
		scale:       opts.scale,
		visible:     opts.visible,
		transparent: opts.transparent,
		frameRate:   opts.frameRate,
		parent:      opts.parent,
		popupRect:   opts.popupRect,
	}
	if s.frameRate == 0 {
		s.frameRate = c.cfg.FrameRate
	}
	s.frameRate = clampFrameRate(s.frameRate)
	s.clock = newFrameClock(c, id, s.frameRate)
	s.resize = newResizeCoordinator(s)
	s.sink = newFrameSink(s)
	s.readback = newReadbackManager(s, c.cfg.ReadbackQueueCap)
	s.input = newInputRouter(s)
	if s.visible {
		s.clock.Start()
	}
	return s
}

// targetSize is the geometry the renderer should produce frames at: the
// pending resize target while one exists, the reported size otherwise.
func (s *surface) targetSize() image.Point {
	if t, ok := s.resize.pendingTarget(); ok {
		return t
	}
	return s.size
}

// requestFrame asks the renderer for a new frame unless one is already
// outstanding. Hidden surfaces never request; work queued for them (a
// readback, an invalidation) waits until the surface is shown. This is
// the only place a surface leaves frameIdle.
func (s *surface) requestFrame() {
	if s.destroyed || !s.visible || s.state == frameWaiting {
		return
	}
	s.state = frameWaiting
	size := s.targetSize()
	Logger().Debug("osr: begin frame", slog.Uint64("surface", uint64(s.id)),
		slog.Int("w", size.X), slog.Int("h", size.Y))
	s.client.BeginFrame(s.id, size, s.scale)
}

// cancelFrameRequest drops the outstanding request, if any. The renderer
// may still answer it; the delivery will be dropped by geometry or
// liveness checks.
func (s *surface) cancelFrameRequest() {
	s.state = frameIdle
}

// setVisible switches visibility. Hiding releases the held frame eagerly
// to bound memory held by invisible surfaces and stops the clock; showing
// restarts the clock and asks for fresh content immediately.
func (s *surface) setVisible(visible bool) {
	if s.destroyed || visible == s.visible {
		return
	}
	s.visible = visible
	if visible {
		s.clock.Start()
		s.resize.resume()
		s.requestFrame()
		return
	}
	s.clock.Stop()
	s.resize.suspend()
	s.cancelFrameRequest()
	s.sink.clearFrame()
}

// setFrameRate restarts the clock at a new cadence on a live surface.
func (s *surface) setFrameRate(fps int) {
	fps = clampFrameRate(fps)
	if s.destroyed || fps == s.frameRate {
		return
	}
	s.frameRate = fps
	s.clock.SetRate(fps)
}

// setScaleFactor changes the device scale factor. Held content is stale
// at the new scale, so a fresh frame is requested right away.
func (s *surface) setScaleFactor(scale float32) {
	if s.destroyed || scale <= 0 || scale == s.scale {
		return
	}
	s.scale = scale
	s.cancelFrameRequest()
	s.requestFrame()
}

// destroy tears the surface down in the order the cancellation contract
// requires: stop the clock, cancel the outstanding frame request, fail
// every queued readback, release the held frame, detach from the view
// tree. After destroy returns, no callback for this surface fires again.
func (s *surface) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.clock.Stop()
	s.resize.cancel()
	s.cancelFrameRequest()
	s.readback.failAll(ErrSurfaceDestroyed)
	s.sink.clearFrame()
	s.input.surfaceDestroyed()
	s.c.tree.Detach(s.id)
	Logger().Info("osr: surface destroyed", slog.Uint64("surface", uint64(s.id)))
}
