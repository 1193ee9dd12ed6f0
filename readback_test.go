package osr

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/osr/pixel"
)

func collectCopy(t *testing.T, ch <-chan CopyResult) CopyResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("copy result never arrived")
		return CopyResult{}
	}
}

func TestRequestCopy_ImmediateFromCurrentFrame(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(100, 80)))
	c.DeliverFrame(id, solidFrame(image.Pt(100, 80)))
	c.Sync()

	res := collectCopy(t, c.RequestCopy(id, image.Rect(10, 10, 60, 50), image.Point{}))
	if res.Err != nil {
		t.Fatalf("copy failed: %v", res.Err)
	}
	if got := res.Buffer.Size(); got != image.Pt(50, 40) {
		t.Errorf("copy size = %v, want 50x40", got)
	}
}

func TestRequestCopy_Resampled(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(100, 80)))
	c.DeliverFrame(id, solidFrame(image.Pt(100, 80)))
	c.Sync()

	res := collectCopy(t, c.RequestCopy(id, image.Rect(0, 0, 100, 80), image.Pt(25, 20)))
	if res.Err != nil {
		t.Fatalf("copy failed: %v", res.Err)
	}
	if got := res.Buffer.Size(); got != image.Pt(25, 20) {
		t.Errorf("copy size = %v, want 25x20", got)
	}
}

// Three requests queued with no frame present all resolve, in FIFO order,
// from the single delivered frame — each with its own geometry.
func TestRequestCopy_QueueResolvesFromOneFrame(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(100, 100)))
	c.Sync() // request outstanding, nothing delivered

	chans := []<-chan CopyResult{
		c.RequestCopy(id, image.Rect(0, 0, 10, 10), image.Point{}),
		c.RequestCopy(id, image.Rect(0, 0, 40, 20), image.Point{}),
		c.RequestCopy(id, image.Rect(0, 0, 100, 100), image.Pt(50, 50)),
	}
	wants := []image.Point{{X: 10, Y: 10}, {X: 40, Y: 20}, {X: 50, Y: 50}}

	c.DeliverFrame(id, solidFrame(image.Pt(100, 100)))

	for i, ch := range chans {
		res := collectCopy(t, ch)
		if res.Err != nil {
			t.Fatalf("copy %d failed: %v", i, res.Err)
		}
		if got := res.Buffer.Size(); got != wants[i] {
			t.Errorf("copy %d size = %v, want %v", i, got, wants[i])
		}
	}
	if begins := r.beginCount(); begins != 1 {
		t.Errorf("BeginFrame count = %d, want 1 (one frame serves all requests)", begins)
	}
}

// coloredFrame builds a frame filled with one byte value, so results can
// be traced back to the delivery that produced them.
func coloredFrame(size image.Point, v uint8) Frame {
	buf := pixel.NewBuffer(size.X, size.Y)
	data := buf.Data()
	for i := range data {
		data[i] = v
	}
	return Frame{Size: size, Scale: 1, Source: buf}
}

// A request queued before a delivery resolves using that delivery, never
// a later one.
func TestRequestCopy_UsesFirstDeliveryAfterQueueing(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(20, 20)))
	c.Sync()

	res := c.RequestCopy(id, image.Rect(0, 0, 5, 5), image.Point{})
	c.DeliverFrame(id, coloredFrame(image.Pt(20, 20), 0x11))
	c.DeliverFrame(id, coloredFrame(image.Pt(20, 20), 0x22))

	got := collectCopy(t, res)
	if got.Err != nil {
		t.Fatalf("copy failed: %v", got.Err)
	}
	if got.Buffer.Data()[0] != 0x11 {
		t.Errorf("copy pixels from later delivery: got 0x%02x, want 0x11", got.Buffer.Data()[0])
	}
}

func TestRequestCopy_BusyBeyondCap(t *testing.T) {
	host := &recordingHost{}
	c, err := New(host, Config{FrameRate: 1, ReadbackQueueCap: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = c.Close() }()
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(10, 10)))
	c.Sync()

	a := c.RequestCopy(id, image.Rect(0, 0, 5, 5), image.Point{})
	b := c.RequestCopy(id, image.Rect(0, 0, 5, 5), image.Point{})
	over := collectCopy(t, c.RequestCopy(id, image.Rect(0, 0, 5, 5), image.Point{}))
	if !errors.Is(over.Err, ErrBusy) {
		t.Errorf("over-cap result = %v, want ErrBusy", over.Err)
	}

	c.DeliverFrame(id, solidFrame(image.Pt(10, 10)))
	for _, ch := range []<-chan CopyResult{a, b} {
		if res := collectCopy(t, ch); res.Err != nil {
			t.Errorf("queued copy failed: %v", res.Err)
		}
	}
}

func TestRequestCopy_UnknownSurface(t *testing.T) {
	c, _ := newTestCompositor(t)
	res := collectCopy(t, c.RequestCopy(SurfaceID(99), image.Rect(0, 0, 5, 5), image.Point{}))
	if !errors.Is(res.Err, ErrSurfaceNotFound) {
		t.Errorf("result = %v, want ErrSurfaceNotFound", res.Err)
	}
}

func TestRequestCopy_NoCPUPixels(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r, WithSize(image.Pt(10, 10)))
	c.Sync()

	res := c.RequestCopy(id, image.Rect(0, 0, 5, 5), image.Point{})
	// A GPU-only source with no reader: paint is skipped, readbacks fail.
	c.DeliverFrame(id, Frame{
		Size:   image.Pt(10, 10),
		Scale:  1,
		Source: pixel.NewTextureSource(struct{}{}, image.Pt(10, 10), 0),
	})
	got := collectCopy(t, res)
	if !errors.Is(got.Err, ErrNoPixelData) {
		t.Errorf("result = %v, want ErrNoPixelData", got.Err)
	}
}
