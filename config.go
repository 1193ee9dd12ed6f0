package osr

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Frame rate bounds enforced by the frame clock. The renderer is never
// asked for frames faster than MaxFrameRate regardless of configuration.
const (
	MinFrameRate = 1
	MaxFrameRate = 240
)

// Config holds compositor-wide tuning knobs. The zero value is usable;
// zero fields are replaced by the DefaultConfig values when the
// Compositor is created.
type Config struct {
	// FrameRate is the default frame request cadence in frames per
	// second for surfaces that do not set their own rate.
	FrameRate int `toml:"frame_rate"`

	// ReadbackQueueCap bounds the number of copy requests queued per
	// surface while no frame is available. Requests beyond the cap fail
	// fast with ErrBusy instead of queuing indefinitely.
	ReadbackQueueCap int `toml:"readback_queue_cap"`

	// ResizeHoldMillis is how long frame dispatch stays held waiting for
	// the renderer to produce a frame at a newly requested size before
	// the hold is force-released with synthetic full-surface damage.
	ResizeHoldMillis int `toml:"resize_hold_millis"`
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		FrameRate:        30,
		ReadbackQueueCap: 8,
		ResizeHoldMillis: 500,
	}
}

// LoadConfig reads a TOML configuration file. Missing fields keep their
// zero value and are defaulted at Compositor creation, so a partial file
// is fine.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("osr: reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("osr: parsing config: %w", err)
	}
	return cfg, nil
}

// normalize fills zero fields from DefaultConfig and clamps out-of-range
// values.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.FrameRate == 0 {
		c.FrameRate = def.FrameRate
	}
	c.FrameRate = clampFrameRate(c.FrameRate)
	if c.ReadbackQueueCap <= 0 {
		c.ReadbackQueueCap = def.ReadbackQueueCap
	}
	if c.ResizeHoldMillis <= 0 {
		c.ResizeHoldMillis = def.ResizeHoldMillis
	}
	return c
}

func (c Config) resizeHoldTimeout() time.Duration {
	return time.Duration(c.ResizeHoldMillis) * time.Millisecond
}

func clampFrameRate(fps int) int {
	if fps < MinFrameRate {
		return MinFrameRate
	}
	if fps > MaxFrameRate {
		return MaxFrameRate
	}
	return fps
}
