package osr

import (
	"image"
	"log/slog"

	"github.com/gogpu/osr/pixel"
)

// CopyResult is the outcome of one readback request. Exactly one of
// Buffer and Err is set.
type CopyResult struct {
	// Buffer holds the requested pixels, extracted from the source
	// sub-rectangle and resampled to the target size.
	Buffer *pixel.Buffer

	// Err reports why the request failed: ErrBusy, ErrSurfaceDestroyed,
	// ErrNoPixelData, or a pixel extraction error.
	Err error
}

// readbackRequest is one queued ask for the next valid frame's pixels.
type readbackRequest struct {
	sub    image.Rectangle
	target image.Point
	result chan CopyResult
}

// resolve delivers the result. The channel is 1-buffered and each request
// is resolved exactly once, so the send never blocks the loop.
func (r *readbackRequest) resolve(res CopyResult) {
	r.result <- res
}

// readbackManager serializes copy requests against frame delivery for one
// surface. Requests that cannot be satisfied immediately wait, FIFO, for
// the next accepted frame; all of them are resolved from that single
// delivery rather than one frame per request, so renderer load does not
// scale with the number of requesters.
type readbackManager struct {
	s     *surface
	cap   int
	queue []*readbackRequest
}

func newReadbackManager(s *surface, queueCap int) *readbackManager {
	return &readbackManager{s: s, cap: queueCap}
}

// requestCopy resolves against the current frame when one is held at the
// surface's reported size, queues otherwise. A full queue fails fast with
// ErrBusy: the renderer has stalled and queuing further would leave
// callers waiting indefinitely.
func (rm *readbackManager) requestCopy(sub image.Rectangle, target image.Point, req *readbackRequest) {
	if rm.s.destroyed {
		req.resolve(CopyResult{Err: ErrSurfaceDestroyed})
		return
	}
	req.sub = sub
	req.target = target

	if buf, ok := rm.s.sink.currentBuffer(); ok {
		req.resolve(extract(buf, req))
		return
	}
	if len(rm.queue) >= rm.cap {
		Logger().Warn("osr: readback queue full",
			slog.Uint64("surface", uint64(rm.s.id)), slog.Int("cap", rm.cap))
		req.resolve(CopyResult{Err: ErrBusy})
		return
	}
	rm.queue = append(rm.queue, req)
	// Make sure a frame is actually on the way for the queued requests.
	rm.s.requestFrame()
}

// onFrame resolves every request queued before this delivery, in FIFO
// order, all from the same frame. Requests arriving during resolution
// (from result handlers) see the now-current frame and resolve
// immediately, never this batch.
func (rm *readbackManager) onFrame(f *Frame) {
	if len(rm.queue) == 0 {
		return
	}
	batch := rm.queue
	rm.queue = nil

	buf, err := f.Source.Pixels()
	if err != nil {
		for _, req := range batch {
			req.resolve(CopyResult{Err: ErrNoPixelData})
		}
		return
	}
	for _, req := range batch {
		req.resolve(extract(buf, req))
	}
}

// failAll resolves every pending request as a failure. Called on surface
// destruction so no caller is left waiting forever.
func (rm *readbackManager) failAll(err error) {
	batch := rm.queue
	rm.queue = nil
	for _, req := range batch {
		req.resolve(CopyResult{Err: err})
	}
}

func extract(buf *pixel.Buffer, req *readbackRequest) CopyResult {
	out, err := pixel.Extract(buf, req.sub, req.target)
	if err != nil {
		return CopyResult{Err: err}
	}
	return CopyResult{Buffer: out}
}
