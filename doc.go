// Package osr coordinates off-screen rendering between a remote renderer
// that produces composited frames and a host application that consumes raw
// pixel buffers instead of presenting through a windowing system.
//
// # Overview
//
// osr is not a compositor: it does not rasterize and it does not own a
// windowing system. It is the synchronization layer in between, deciding
// when a frame is requested from the renderer, when a resize is allowed to
// take effect, and how damage and pixel-readback requests are serialized
// against frame delivery. Three independently changing timelines meet
// here: the renderer's frame production cadence, the host's resize and
// visibility requests, and asynchronous readback requests.
//
// # Quick Start
//
//	import "github.com/gogpu/osr"
//
//	c, err := osr.New(host, osr.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	id, _ := c.CreateSurface(renderer, osr.WithSize(image.Pt(800, 600)))
//
//	// The renderer answers BeginFrame calls with frame deliveries:
//	c.DeliverFrame(id, osr.Frame{Size: image.Pt(800, 600), Scale: 1, Source: buf})
//
//	// The host receives Paint callbacks with damage and pixels, and may
//	// ask for copies at any time:
//	res := <-c.RequestCopy(id, image.Rect(0, 0, 400, 300), image.Pt(200, 150))
//
// # Concurrency model
//
// Each Compositor owns one event loop goroutine; every surface registered
// with it is driven from that loop. Public methods post onto the loop and
// return, so they are safe to call from any goroutine, including from the
// renderer's delivery path and from host callbacks (which already run on
// the loop). There is no locking around surface state because nothing
// touches it off the loop.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Compositor, Surface options, Frame, Host, RendererClient
//   - Per-surface machinery: frame clock, resize coordinator, frame sink,
//     readback queue, input router (one set per surface, loop-owned)
//   - pixel: CPU buffers, GPU texture sources, sub-rect extraction
package osr
