// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu manages GPU-resident image resources for the darkroom
// pipeline: device bring-up over gogpu/wgpu, texture lifecycle, and a
// byte-budgeted LRU texture cache keyed by logical identity and
// dimensions.
//
// The package tolerates running without a GPU. When the backend is nil
// or uninitialized, textures are logical: dimensions, format, and a CPU
// shadow of the pixel data are tracked, and the GPU handles stay zero.
// This is the mode the test suite and headless tools run in.
package gpu
