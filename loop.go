package osr

import "sync"

// loop is the single logical owner of all surface state in a Compositor.
// Everything that mutates a surface — frame requests, deliveries, resize
// holds, readback queues, input — runs as a task on one goroutine, so the
// components never lock against each other.
//
// The queue is unbounded: posters never block, which keeps the renderer's
// delivery path and host callbacks (which run on the loop and may post
// further work) free of self-deadlock.
type loop struct {
	mu     sync.Mutex
	closed bool
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
}

func newLoop() *loop {
	l := &loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// post queues f for execution on the loop goroutine. Tasks run in the
// order posted. Returns false once the loop has begun closing; the task
// is dropped in that case, never run.
func (l *loop) post(f func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, f)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// close runs final on the loop after all previously posted tasks, then
// stops the goroutine. Tasks posted after close begins are dropped.
// Blocks until the loop has exited. Idempotent.
func (l *loop) close(final func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	if final != nil {
		l.queue = append(l.queue, final)
	}
	l.closed = true
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

// sync blocks until every task posted before it has run. Must not be
// called from the loop goroutine itself.
func (l *loop) sync() {
	ran := make(chan struct{})
	if !l.post(func() { close(ran) }) {
		return
	}
	<-ran
}

func (l *loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, f := range batch {
			f()
		}
		if closed {
			// Teardown may have been the last task in the batch. Nothing
			// further can be posted, so one more drain is exhaustive.
			l.mu.Lock()
			rest := l.queue
			l.queue = nil
			l.mu.Unlock()
			for _, f := range rest {
				f()
			}
			return
		}
		if len(batch) == 0 {
			<-l.wake
		}
	}
}
