// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "errors"

// Package errors for GPU resource management.
var (
	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("gpu: backend not initialized")

	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("gpu: no GPU adapter available")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")

	// ErrTextureReleased is returned when operating on a released texture.
	ErrTextureReleased = errors.New("gpu: texture has been released")

	// ErrNilPixels is returned when a pixel buffer is nil.
	ErrNilPixels = errors.New("gpu: pixel buffer is nil")

	// ErrSizeMismatch is returned when a pixel buffer does not match the
	// texture dimensions and format.
	ErrSizeMismatch = errors.New("gpu: pixel buffer size does not match texture")

	// ErrCacheDisposed is returned when operating on a disposed texture cache.
	ErrCacheDisposed = errors.New("gpu: texture cache disposed")
)
