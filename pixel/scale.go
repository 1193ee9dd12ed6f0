// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Extract copies the sub-rectangle sub out of src, resampled to target.
//
// sub is clamped to the source bounds; a sub that does not intersect the
// source at all returns ErrEmptyRect. A zero target means "same size as
// sub". When the clamped sub already matches target the copy is a direct
// row-by-row extraction; otherwise the region is resampled with bilinear
// filtering (draw.BiLinear). Bilinear is the only filter used, so repeated
// readbacks of the same frame are deterministic.
//
// The result is always a new buffer in the source's pixel format.
func Extract(src *Buffer, sub image.Rectangle, target image.Point) (*Buffer, error) {
	sub = sub.Intersect(src.Bounds())
	if sub.Empty() {
		return nil, ErrEmptyRect
	}
	if target == (image.Point{}) {
		target = sub.Size()
	}
	if target.X <= 0 || target.Y <= 0 {
		return nil, ErrInvalidDimensions
	}

	if target == sub.Size() {
		dst := NewBufferWithFormat(target.X, target.Y, src.format)
		if dst == nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, src.format)
		}
		rowBytes := sub.Dx() * 4
		for y := 0; y < sub.Dy(); y++ {
			srcOff := ((sub.Min.Y+y)*src.width + sub.Min.X) * 4
			copy(dst.data[y*rowBytes:(y+1)*rowBytes], src.data[srcOff:srcOff+rowBytes])
		}
		return dst, nil
	}

	// Resample path. The scaler works on image.RGBA; the byte order does
	// not matter to the filter, so BGRA sources are scaled in place of
	// their raw bytes and the format tag is carried through.
	srcImg := &image.RGBA{
		Pix:    src.data,
		Stride: src.width * 4,
		Rect:   src.Bounds(),
	}
	dstImg := image.NewRGBA(image.Rect(0, 0, target.X, target.Y))
	draw.BiLinear.Scale(dstImg, dstImg.Rect, srcImg, sub, draw.Src, nil)

	return &Buffer{
		width:  target.X,
		height: target.Y,
		format: src.format,
		data:   dstImg.Pix,
	}, nil
}
