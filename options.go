package osr

import "image"

// SurfaceOption configures a surface during creation.
// Use functional options to customize surface behavior.
//
// Example:
//
//	// A visible 800x600 opaque surface at the default frame rate
//	id, err := c.CreateSurface(client, osr.WithSize(image.Pt(800, 600)))
//
//	// A transparent popup attached to a parent surface
//	id, err := c.CreateSurface(client,
//		osr.WithTransparency(true),
//		osr.WithParent(parentID),
//		osr.WithPopupRect(image.Rect(100, 40, 300, 240)))
type SurfaceOption func(*surfaceOptions)

// surfaceOptions holds optional configuration for surface creation.
type surfaceOptions struct {
	size        image.Point
	scale       float32
	frameRate   int
	transparent bool
	visible     bool
	parent      SurfaceID
	popupRect   image.Rectangle
}

// defaultSurfaceOptions returns the default surface options. The frame
// rate is zero here so that the compositor config's default applies.
func defaultSurfaceOptions() surfaceOptions {
	return surfaceOptions{
		size:    image.Pt(800, 600),
		scale:   1,
		visible: true,
	}
}

// WithSize sets the initial logical size of the surface.
func WithSize(size image.Point) SurfaceOption {
	return func(o *surfaceOptions) {
		o.size = size
	}
}

// WithScale sets the initial device scale factor. Values <= 0 are
// rejected by CreateSurface.
func WithScale(scale float32) SurfaceOption {
	return func(o *surfaceOptions) {
		o.scale = scale
	}
}

// WithFrameRate sets the per-surface frame request cadence in frames per
// second, overriding the compositor config. The value is clamped to
// [MinFrameRate, MaxFrameRate].
func WithFrameRate(fps int) SurfaceOption {
	return func(o *surfaceOptions) {
		o.frameRate = fps
	}
}

// WithTransparency marks the surface as transparent: delivered frames
// carry meaningful alpha and the host should not assume an opaque
// background.
func WithTransparency(transparent bool) SurfaceOption {
	return func(o *surfaceOptions) {
		o.transparent = transparent
	}
}

// WithHidden creates the surface hidden. Hidden surfaces hold no frame
// and run no frame clock until SetVisible(id, true).
func WithHidden() SurfaceOption {
	return func(o *surfaceOptions) {
		o.visible = false
	}
}

// WithParent creates the surface as a popup of parent: it is attached in
// the view tree at creation, positioned by WithPopupRect. Child and guest
// relationships are made with Attach instead.
func WithParent(parent SurfaceID) SurfaceOption {
	return func(o *surfaceOptions) {
		o.parent = parent
	}
}

// WithPopupRect sets the rectangle a popup surface occupies within its
// parent, in the parent's coordinate space.
func WithPopupRect(rect image.Rectangle) SurfaceOption {
	return func(o *surfaceOptions) {
		o.popupRect = rect
	}
}
