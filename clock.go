package osr

import "time"

// frameClock drives periodic frame requests for one surface. Ticks fire
// on a timer goroutine and are posted onto the compositor loop, where the
// at-most-one-outstanding-request rule in surface.requestFrame makes a
// tick during an in-flight request a no-op.
type frameClock struct {
	c        *Compositor
	id       SurfaceID
	interval time.Duration
	ticker   *time.Ticker
	stop     chan struct{}
}

func newFrameClock(c *Compositor, id SurfaceID, fps int) *frameClock {
	return &frameClock{
		c:        c,
		id:       id,
		interval: time.Second / time.Duration(clampFrameRate(fps)),
	}
}

// Start begins ticking. Starting a running clock is a no-op.
func (fc *frameClock) Start() {
	if fc.ticker != nil {
		return
	}
	fc.ticker = time.NewTicker(fc.interval)
	fc.stop = make(chan struct{})
	go fc.run(fc.ticker, fc.stop)
}

// Stop halts ticking. Safe to call repeatedly and from the destroy path
// even if the clock was never started.
func (fc *frameClock) Stop() {
	if fc.ticker == nil {
		return
	}
	fc.ticker.Stop()
	close(fc.stop)
	fc.ticker = nil
	fc.stop = nil
}

// SetRate changes the cadence. A running clock is restarted so the new
// interval takes effect immediately.
func (fc *frameClock) SetRate(fps int) {
	fc.interval = time.Second / time.Duration(clampFrameRate(fps))
	if fc.ticker != nil {
		fc.Stop()
		fc.Start()
	}
}

func (fc *frameClock) run(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C:
			fc.c.post(func() {
				if s := fc.c.surfaces[fc.id]; s != nil {
					s.requestFrame()
				}
			})
		case <-stop:
			return
		}
	}
}
