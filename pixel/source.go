// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Common errors returned by pixel sources and extraction.
var (
	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

	// ErrEmptyRect is returned when an extraction rectangle does not
	// intersect the source buffer.
	ErrEmptyRect = errors.New("pixel: empty source rectangle")

	// ErrNoCPUAccess is returned when a source's pixels live only on the
	// GPU and the underlying handle offers no readback path.
	ErrNoCPUAccess = errors.New("pixel: source has no CPU-accessible pixels")

	// ErrUnsupportedFormat is returned for pixel formats other than RGBA8
	// and BGRA8, the only layouts a Buffer can hold.
	ErrUnsupportedFormat = errors.New("pixel: unsupported pixel format")
)

// Source supplies the pixel content of one composited frame. A delivered
// frame carries either CPU pixels (a *Buffer is itself a Source) or a GPU
// resource handle wrapped in a TextureSource.
//
// Pixels may be called more than once per frame (paint dispatch and queued
// readbacks share a delivery); implementations should make repeated calls
// cheap.
type Source interface {
	// Size returns the pixel dimensions of the content.
	Size() image.Point

	// Pixels returns the content as a CPU buffer, or ErrNoCPUAccess if
	// the content cannot be read back.
	Pixels() (*Buffer, error)
}

// TextureReader is the narrow readback capability a GPU texture handle may
// offer. Host texture types that support downloading their contents
// implement it; TextureSource discovers it by type assertion.
type TextureReader interface {
	// ReadData returns the texture contents as tightly packed pixel
	// bytes, 4 bytes per pixel.
	ReadData() ([]byte, error)
}

// TextureSource wraps a GPU texture handle as a frame pixel source.
//
// The handle is opaque to the compositor; it is typically a
// gpucontext.Texture created by the host. If the handle also implements
// TextureReader, Pixels reads the texture back and caches the result for
// the lifetime of the source (one frame).
type TextureSource struct {
	handle any
	size   image.Point
	format gputypes.TextureFormat
	cached *Buffer
}

// NewTextureSource wraps a texture handle. The size and format describe
// the texture; they are not validated against the handle.
func NewTextureSource(handle any, size image.Point, format gputypes.TextureFormat) *TextureSource {
	return &TextureSource{handle: handle, size: size, format: format}
}

// Handle returns the wrapped texture handle.
func (t *TextureSource) Handle() any { return t.handle }

// Size returns the texture dimensions.
func (t *TextureSource) Size() image.Point { return t.size }

// Pixels reads the texture back through the TextureReader capability.
// The first successful read is cached; later calls return the same buffer.
func (t *TextureSource) Pixels() (*Buffer, error) {
	if t.cached != nil {
		return t.cached, nil
	}
	r, ok := t.handle.(TextureReader)
	if !ok {
		return nil, ErrNoCPUAccess
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, fmt.Errorf("pixel: texture readback failed: %w", err)
	}
	buf, err := FromData(t.size.X, t.size.Y, t.format, data)
	if err != nil {
		return nil, err
	}
	t.cached = buf
	return buf, nil
}
