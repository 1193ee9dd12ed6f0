package osr

import (
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/osr/pixel"
)

// Host receives the compositor's outbound callbacks. All methods are
// invoked on the compositor loop; they may call back into the Compositor
// freely (such calls are queued behind the current task) but must not
// block on Sync or on a RequestCopy result, which would stall the loop.
type Host interface {
	// Paint delivers one accepted frame: the damage rectangle that
	// changed and the frame's pixels. Exactly one Paint per accepted
	// delivery. The buffer is only valid for the duration of the call;
	// hosts that keep pixels must copy (or pixel.Upload them).
	Paint(id SurfaceID, damage image.Rectangle, buf *pixel.Buffer)

	// GuestSwap reports that a guest embedded in this surface delivered
	// a frame, so the embedder should repaint the area the guest
	// occupies.
	GuestSwap(embedder SurfaceID, guestRect image.Rectangle)

	// ScrollOffsetChanged reports the surface's scroll offset, coalesced
	// onto frame delivery.
	ScrollOffsetChanged(id SurfaceID, offset image.Point)

	// CursorChanged reports the pointer shape the renderer wants shown
	// over the surface. Only fired when the shape actually changes.
	CursorChanged(id SurfaceID, cursor CursorType)
}

// RendererClient is the compositor's outbound interface to the remote
// renderer for one surface, supplied at surface creation. Methods are
// invoked on the compositor loop and must not block; implementations
// typically post to an IPC channel.
type RendererClient interface {
	// BeginFrame asks the renderer to produce a composited frame at the
	// given size and scale. At most one BeginFrame is outstanding per
	// surface until DeliverFrame answers it.
	BeginFrame(id SurfaceID, size image.Point, scale float32)

	// ResizeAck confirms an applied resize, unblocking the renderer's
	// next production cycle at the acknowledged size.
	ResizeAck(id SurfaceID, size image.Point)

	// Focus reports focus changes.
	Focus(id SurfaceID, focused bool)

	ForwardKey(id SurfaceID, ev KeyEvent)
	ForwardMouse(id SurfaceID, ev MouseEvent)
	ForwardWheel(id SurfaceID, ev WheelEvent)

	ImeSetComposition(id SurfaceID, text string, underlines []Underline, selection Range)
	ImeCommitText(id SurfaceID, text string)
	ImeFinishComposingText(id SurfaceID, text string, keepSelection bool)
	ImeCancelComposition(id SurfaceID)
}

// Compositor is the registry owning all off-screen surfaces and the
// single entry point for both host and renderer calls. Every method is
// safe for concurrent use: work is serialized onto the compositor's event
// loop in call order.
type Compositor struct {
	cfg  Config
	host Host
	loop *loop

	nextID atomic.Uint64

	// Loop-owned state. Only tasks running on the loop touch these.
	surfaces map[SurfaceID]*surface
	tree     *viewTree
}

// New creates a Compositor delivering callbacks to host. Zero fields in
// cfg take the DefaultConfig values.
func New(host Host, cfg Config) (*Compositor, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: nil host", ErrInvalidOption)
	}
	c := &Compositor{
		cfg:      cfg.normalize(),
		host:     host,
		surfaces: make(map[SurfaceID]*surface),
		tree:     newViewTree(),
	}
	c.loop = newLoop()
	return c, nil
}

// Close destroys every surface — cancelling outstanding frame requests,
// failing queued readbacks, stopping frame clocks — and stops the event
// loop. No callback fires after Close returns. Idempotent.
func (c *Compositor) Close() error {
	c.loop.close(func() {
		for _, s := range c.surfaces {
			s.destroy()
		}
		c.surfaces = nil
	})
	return nil
}

// Sync blocks until every operation submitted before it has been
// processed. Useful for hosts that need a barrier, e.g. before reading
// state they changed. Must not be called from Host or RendererClient
// callbacks.
func (c *Compositor) Sync() {
	c.loop.sync()
}

func (c *Compositor) post(f func()) bool {
	return c.loop.post(f)
}

// lookup resolves an id on the loop. Calls referencing unknown or
// destroyed surfaces are rejected here: the caller's operation is simply
// not acted upon. The renderer's delivery racing host teardown lands in
// this path by design.
func (c *Compositor) lookup(id SurfaceID, op string) *surface {
	s := c.surfaces[id]
	if s == nil || s.destroyed {
		Logger().Debug("osr: ignoring call for dead surface",
			slog.String("op", op), slog.Uint64("surface", uint64(id)))
		return nil
	}
	return s
}

// CreateSurface registers a new off-screen surface whose frames come from
// client. The returned id is valid immediately; operations posted with it
// are queued behind the registration.
func (c *Compositor) CreateSurface(client RendererClient, opts ...SurfaceOption) (SurfaceID, error) {
	if client == nil {
		return 0, fmt.Errorf("%w: nil renderer client", ErrInvalidOption)
	}
	o := defaultSurfaceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.size.X <= 0 || o.size.Y <= 0 {
		return 0, fmt.Errorf("%w: size %dx%d", ErrInvalidOption, o.size.X, o.size.Y)
	}
	if o.scale <= 0 {
		return 0, fmt.Errorf("%w: scale %v", ErrInvalidOption, o.scale)
	}

	id := SurfaceID(c.nextID.Add(1))
	ok := c.post(func() {
		s := newSurface(c, id, client, o)
		c.surfaces[id] = s
		Logger().Info("osr: surface created",
			slog.Uint64("surface", uint64(id)),
			slog.Int("w", o.size.X), slog.Int("h", o.size.Y))
		if s.parent != 0 && c.lookup(s.parent, "create") != nil {
			if err := c.tree.Attach(id, s.parent, RelationPopup, s.popupRect); err != nil {
				Logger().Warn("osr: popup attach rejected", slog.Any("err", err))
			}
		}
		if s.visible {
			s.requestFrame()
		}
	})
	if !ok {
		return 0, ErrClosed
	}
	return id, nil
}

// DestroySurface tears a surface down: the outstanding frame request is
// cancelled, every queued readback resolves as a failure, the surface is
// detached from the view tree, and its clock stops. Later calls with the
// id are ignored. Destroying an unknown id is a no-op.
func (c *Compositor) DestroySurface(id SurfaceID) {
	c.post(func() {
		s := c.lookup(id, "destroy")
		if s == nil {
			return
		}
		s.destroy()
		delete(c.surfaces, id)
	})
}

// DeliverFrame hands a composited frame from the renderer to the surface's
// sink. Deliveries are processed in call order per surface. A delivery
// for a destroyed surface is silently ignored; one at a stale size during
// a resize race is dropped without a paint.
func (c *Compositor) DeliverFrame(id SurfaceID, f Frame) {
	if f.Source == nil {
		Logger().Warn("osr: dropping frame with nil source", slog.Uint64("surface", uint64(id)))
		return
	}
	c.post(func() {
		s := c.lookup(id, "deliver")
		if s == nil {
			return
		}
		s.sink.onFrameDelivered(f)
	})
}

// RequestResize asks for a new surface size. If a frame is in flight at
// the old geometry the change is held until a matching frame arrives (or
// the hold times out); otherwise it applies immediately. Either way the
// renderer receives a ResizeAck when the size takes effect.
func (c *Compositor) RequestResize(id SurfaceID, size image.Point) {
	c.post(func() {
		if s := c.lookup(id, "resize"); s != nil {
			s.resize.requestResize(size)
		}
	})
}

// SetVisible shows or hides a surface. Hiding releases the held frame and
// stops the frame clock; showing restarts both.
func (c *Compositor) SetVisible(id SurfaceID, visible bool) {
	c.post(func() {
		if s := c.lookup(id, "visible"); s != nil {
			s.setVisible(visible)
		}
	})
}

// Focus changes keyboard focus. Losing focus cancels any in-progress IME
// composition.
func (c *Compositor) Focus(id SurfaceID, focused bool) {
	c.post(func() {
		if s := c.lookup(id, "focus"); s != nil {
			s.input.setFocus(focused)
		}
	})
}

// Invalidate forces a repaint: the current frame is re-dispatched with
// full damage, or a fresh frame is requested when none is held.
func (c *Compositor) Invalidate(id SurfaceID) {
	c.post(func() {
		if s := c.lookup(id, "invalidate"); s != nil {
			s.sink.invalidate()
		}
	})
}

// SetFrameRate changes the surface's frame request cadence, clamped to
// [MinFrameRate, MaxFrameRate].
func (c *Compositor) SetFrameRate(id SurfaceID, fps int) {
	c.post(func() {
		if s := c.lookup(id, "framerate"); s != nil {
			s.setFrameRate(fps)
		}
	})
}

// SetScaleFactor changes the device scale factor and requests a frame at
// the new scale.
func (c *Compositor) SetScaleFactor(id SurfaceID, scale float32) {
	c.post(func() {
		if s := c.lookup(id, "scale"); s != nil {
			s.setScaleFactor(scale)
		}
	})
}

// SetScrollOffset records the surface's scroll offset; the host is
// notified on the next accepted frame.
func (c *Compositor) SetScrollOffset(id SurfaceID, offset image.Point) {
	c.post(func() {
		if s := c.lookup(id, "scroll"); s != nil && offset != s.scrollOffset {
			s.scrollOffset = offset
			s.sink.scrollPending = true
		}
	})
}

// RequestCopy asks for pixels from the current frame, or from the next
// accepted one when none is held. The sub rectangle is clamped to the
// frame; a zero target means "same size as sub". The returned channel
// receives exactly one CopyResult — success or failure — even if the
// surface is destroyed first. Results arrive in request order and all
// requests queued before a delivery resolve from that same delivery.
func (c *Compositor) RequestCopy(id SurfaceID, sub image.Rectangle, target image.Point) <-chan CopyResult {
	result := make(chan CopyResult, 1)
	req := &readbackRequest{result: result}
	ok := c.post(func() {
		s := c.lookup(id, "copy")
		if s == nil {
			req.resolve(CopyResult{Err: ErrSurfaceNotFound})
			return
		}
		s.readback.requestCopy(sub, target, req)
	})
	if !ok {
		req.resolve(CopyResult{Err: ErrClosed})
	}
	return result
}

// ForwardKeyEvent forwards a key event to the renderer. Dropped unless
// the surface is alive and focused.
func (c *Compositor) ForwardKeyEvent(id SurfaceID, ev KeyEvent) {
	c.post(func() {
		if s := c.lookup(id, "key"); s != nil {
			s.input.forwardKey(ev)
		}
	})
}

// ForwardMouseEvent forwards a mouse event to the renderer.
func (c *Compositor) ForwardMouseEvent(id SurfaceID, ev MouseEvent) {
	c.post(func() {
		if s := c.lookup(id, "mouse"); s != nil {
			s.input.forwardMouse(ev)
		}
	})
}

// ForwardWheelEvent forwards a wheel event to the renderer.
func (c *Compositor) ForwardWheelEvent(id SurfaceID, ev WheelEvent) {
	c.post(func() {
		if s := c.lookup(id, "wheel"); s != nil {
			s.input.forwardWheel(ev)
		}
	})
}

// UpdateCursor records the cursor shape reported by the renderer and
// notifies the host when it differs from the current one.
func (c *Compositor) UpdateCursor(id SurfaceID, cursor CursorType) {
	c.post(func() {
		if s := c.lookup(id, "cursor"); s != nil {
			s.input.updateCursor(cursor)
		}
	})
}

// ImeSetComposition starts or replaces in-progress composition text.
func (c *Compositor) ImeSetComposition(id SurfaceID, text string, underlines []Underline, selection Range) {
	c.post(func() {
		if s := c.lookup(id, "ime"); s != nil {
			s.input.setComposition(text, underlines, selection)
		}
	})
}

// ImeCommitText commits final text, ending the composition. A no-op when
// no composition is in progress.
func (c *Compositor) ImeCommitText(id SurfaceID, text string) {
	c.post(func() {
		if s := c.lookup(id, "ime"); s != nil {
			s.input.commitText(text)
		}
	})
}

// ImeFinishComposingText commits whatever is currently composed.
func (c *Compositor) ImeFinishComposingText(id SurfaceID, keepSelection bool) {
	c.post(func() {
		if s := c.lookup(id, "ime"); s != nil {
			s.input.finishComposingText(keepSelection)
		}
	})
}

// ImeCancelComposition discards the in-progress composition, if any.
func (c *Compositor) ImeCancelComposition(id SurfaceID) {
	c.post(func() {
		if s := c.lookup(id, "ime"); s != nil {
			s.input.cancelComposition()
		}
	})
}

// Attach creates a view relationship of the given kind from child to
// parent. rect positions the child within the parent for popup and guest
// relationships. Invalid attachments (self, cycles, dead surfaces) are
// rejected and logged.
func (c *Compositor) Attach(child, parent SurfaceID, kind RelationKind, rect image.Rectangle) {
	c.post(func() {
		if c.lookup(child, "attach") == nil || c.lookup(parent, "attach") == nil {
			return
		}
		if err := c.tree.Attach(child, parent, kind, rect); err != nil {
			Logger().Warn("osr: attach rejected", slog.Any("err", err))
			return
		}
		Logger().Info("osr: attached",
			slog.Uint64("child", uint64(child)), slog.Uint64("parent", uint64(parent)),
			slog.String("kind", kind.String()))
	})
}

// Detach removes a surface's view relationships, recursively detaching
// anything attached below it. Detaching a detached surface is a no-op.
func (c *Compositor) Detach(id SurfaceID) {
	c.post(func() {
		c.tree.Detach(id)
	})
}
