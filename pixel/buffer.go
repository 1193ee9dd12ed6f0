// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/gputypes"
)

// Buffer is a CPU-side pixel buffer holding one composited frame, or a
// region extracted from one. Pixels are stored row-major, 4 bytes per
// pixel, in the byte order given by Format.
//
// Buffer is NOT safe for concurrent use. The compositor hands each Buffer
// to exactly one consumer at a time.
type Buffer struct {
	width  int
	height int
	format gputypes.TextureFormat
	data   []uint8
}

// NewBuffer creates a zero-filled RGBA8 buffer with the given dimensions.
// Returns nil if either dimension is not positive.
func NewBuffer(width, height int) *Buffer {
	return NewBufferWithFormat(width, height, gputypes.TextureFormatRGBA8Unorm)
}

// NewBufferWithFormat creates a zero-filled buffer in the given format.
// Only RGBA8 and BGRA8 formats are supported; other formats return nil.
func NewBufferWithFormat(width, height int, format gputypes.TextureFormat) *Buffer {
	if width <= 0 || height <= 0 {
		return nil
	}
	if format != gputypes.TextureFormatRGBA8Unorm && format != gputypes.TextureFormatBGRA8Unorm {
		return nil
	}
	return &Buffer{
		width:  width,
		height: height,
		format: format,
		data:   make([]uint8, width*height*4),
	}
}

// FromData wraps existing pixel bytes in a Buffer without copying.
// The data length must be exactly width*height*4, and the format must be
// one of the supported 4-byte layouts.
func FromData(width, height int, format gputypes.TextureFormat, data []uint8) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if format != gputypes.TextureFormatRGBA8Unorm && format != gputypes.TextureFormatBGRA8Unorm {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if len(data) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDimensions, len(data), width*height*4)
	}
	return &Buffer{width: width, height: height, format: format, data: data}, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Bounds returns the buffer extent as an image.Rectangle anchored at the
// origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Format returns the pixel byte order of the buffer.
func (b *Buffer) Format() gputypes.TextureFormat { return b.format }

// Data returns the raw pixel bytes. The slice aliases the buffer's
// storage; callers that keep it past the paint callback must copy.
func (b *Buffer) Data() []uint8 { return b.data }

// Size returns the buffer dimensions. Part of the Source interface, so a
// Buffer can be delivered directly as a frame's pixel source.
func (b *Buffer) Size() image.Point {
	return image.Pt(b.width, b.height)
}

// Pixels returns the buffer itself. Part of the Source interface.
func (b *Buffer) Pixels() (*Buffer, error) { return b, nil }

// ToRGBA returns the buffer contents in RGBA byte order as an image.RGBA.
// BGRA8 buffers are swizzled; RGBA8 buffers are copied as-is.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	if b.format == gputypes.TextureFormatBGRA8Unorm {
		for i := 0; i < len(b.data); i += 4 {
			img.Pix[i+0] = b.data[i+2]
			img.Pix[i+1] = b.data[i+1]
			img.Pix[i+2] = b.data[i+0]
			img.Pix[i+3] = b.data[i+3]
		}
		return img
	}
	copy(img.Pix, b.data)
	return img
}

// FromImage creates an RGBA8 buffer from an image, copying its pixels.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	buf := NewBuffer(bounds.Dx(), bounds.Dy())
	if buf == nil {
		return nil
	}
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			r, g, bl, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*buf.width + x) * 4
			buf.data[i+0] = uint8(r >> 8)
			buf.data[i+1] = uint8(g >> 8)
			buf.data[i+2] = uint8(bl >> 8)
			buf.data[i+3] = uint8(a >> 8)
		}
	}
	return buf
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &Buffer{width: b.width, height: b.height, format: b.format, data: data}
}

// SavePNG writes the buffer to a PNG file. Intended for debugging and
// example programs, not for the frame hot path.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is caller-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, b.ToRGBA())
}
