// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

// gradient fills a buffer so every pixel's first byte is unique per row,
// making extraction offsets checkable.
func gradient(w, h int) *Buffer {
	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			b.data[i+0] = uint8(x)
			b.data[i+1] = uint8(y)
			b.data[i+3] = 0xff
		}
	}
	return b
}

func TestExtract_DirectCopy(t *testing.T) {
	src := gradient(10, 10)
	got, err := Extract(src, image.Rect(2, 3, 7, 8), image.Point{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Size() != image.Pt(5, 5) {
		t.Fatalf("size = %v, want 5x5", got.Size())
	}
	// Top-left of the extraction is source pixel (2,3).
	if got.data[0] != 2 || got.data[1] != 3 {
		t.Errorf("corner pixel = (%d,%d), want (2,3)", got.data[0], got.data[1])
	}
	// Bottom-right is source pixel (6,7).
	last := (4*5 + 4) * 4
	if got.data[last] != 6 || got.data[last+1] != 7 {
		t.Errorf("corner pixel = (%d,%d), want (6,7)", got.data[last], got.data[last+1])
	}
}

func TestExtract_ClampsToBounds(t *testing.T) {
	src := gradient(4, 4)
	got, err := Extract(src, image.Rect(-5, -5, 100, 100), image.Point{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Size() != image.Pt(4, 4) {
		t.Errorf("size = %v, want full 4x4", got.Size())
	}
}

func TestExtract_EmptyRect(t *testing.T) {
	src := gradient(4, 4)
	if _, err := Extract(src, image.Rect(10, 10, 20, 20), image.Point{}); !errors.Is(err, ErrEmptyRect) {
		t.Errorf("err = %v, want ErrEmptyRect", err)
	}
}

func TestExtract_NegativeTarget(t *testing.T) {
	src := gradient(4, 4)
	if _, err := Extract(src, src.Bounds(), image.Pt(-1, 2)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestExtract_Resample(t *testing.T) {
	src := NewBuffer(8, 8)
	// Solid opaque gray resamples to solid opaque gray at any size.
	for i := 0; i < len(src.data); i += 4 {
		src.data[i+0] = 0x80
		src.data[i+1] = 0x80
		src.data[i+2] = 0x80
		src.data[i+3] = 0xff
	}

	got, err := Extract(src, src.Bounds(), image.Pt(3, 5))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Size() != image.Pt(3, 5) {
		t.Fatalf("size = %v, want 3x5", got.Size())
	}
	for i := 0; i < len(got.data); i += 4 {
		if got.data[i] != 0x80 || got.data[i+3] != 0xff {
			t.Fatalf("pixel %d = % x, want 80 80 80 ff", i/4, got.data[i:i+4])
		}
	}
}

// A buffer in an unsupported format must surface an error from the
// same-size copy path, never crash it.
func TestExtract_UnsupportedFormat(t *testing.T) {
	src := &Buffer{
		width:  4,
		height: 4,
		format: gputypes.TextureFormatR8Unorm,
		data:   make([]uint8, 4*4*4),
	}
	if _, err := Extract(src, image.Rect(0, 0, 2, 2), image.Point{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtract_CarriesFormat(t *testing.T) {
	src := NewBufferWithFormat(4, 4, gputypes.TextureFormatBGRA8Unorm)
	direct, err := Extract(src, image.Rect(0, 0, 2, 2), image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if direct.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("direct copy format = %v", direct.Format())
	}
	scaled, err := Extract(src, src.Bounds(), image.Pt(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if scaled.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("resampled format = %v", scaled.Format())
	}
}
