// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// ErrNilTexture is returned by Upload when the destination is nil.
var ErrNilTexture = errors.New("pixel: nil texture")

// Upload pushes a buffer's pixels into a host GPU texture.
//
// Embedders that composite an off-screen surface into their own GPU scene
// call this from the paint callback to keep a texture mirror of the
// surface current. The texture must have been created at the buffer's
// dimensions; UpdateData is responsible for rejecting size mismatches.
func Upload(buf *Buffer, dst gpucontext.TextureUpdater) error {
	if dst == nil {
		return ErrNilTexture
	}
	if err := dst.UpdateData(buf.Data()); err != nil {
		return fmt.Errorf("pixel: texture upload failed: %w", err)
	}
	return nil
}
