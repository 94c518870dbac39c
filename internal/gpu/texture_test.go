// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"
)

func TestCreateTextureValidatesDimensions(t *testing.T) {
	for _, d := range [][2]int{{0, 10}, {10, 0}, {-1, 10}} {
		_, err := CreateTexture(nil, TextureConfig{Width: d[0], Height: d[1]})
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("CreateTexture(%dx%d): err = %v, want ErrInvalidDimensions", d[0], d[1], err)
		}
	}
}

func TestTextureFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format TextureFormat
		want   int
	}{
		{FormatRGBA8, 4},
		{FormatRGBA16F, 8},
		{FormatRGBA32F, 16},
	}
	for _, tt := range tests {
		if got := tt.format.BytesPerPixel(); got != tt.want {
			t.Errorf("%s.BytesPerPixel() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestTextureUploadDownload(t *testing.T) {
	tex, err := CreateTexture(nil, TextureConfig{Width: 2, Height: 2, Format: FormatRGBA8})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	pix := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	if err := tex.Upload(pix); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got := tex.Download()
	if len(got) != len(pix) {
		t.Fatalf("Download length = %d, want %d", len(got), len(pix))
	}
	for i := range pix {
		if got[i] != pix[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], pix[i])
		}
	}

	// Download returns a copy, not the shadow buffer.
	got[0] = 99
	if tex.Download()[0] == 99 {
		t.Error("Download must return a copy")
	}
}

func TestTextureUploadErrors(t *testing.T) {
	tex, _ := CreateTexture(nil, TextureConfig{Width: 2, Height: 2, Format: FormatRGBA8})

	if err := tex.Upload(nil); !errors.Is(err, ErrNilPixels) {
		t.Errorf("Upload(nil): err = %v, want ErrNilPixels", err)
	}
	if err := tex.Upload(make([]byte, 3)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Upload(short): err = %v, want ErrSizeMismatch", err)
	}

	tex.Close()
	if err := tex.Upload(make([]byte, 16)); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("Upload after Close: err = %v, want ErrTextureReleased", err)
	}
}

func TestTextureCloseIdempotent(t *testing.T) {
	tex, _ := CreateTexture(nil, TextureConfig{Width: 2, Height: 2})
	tex.Close()
	tex.Close()
	if !tex.IsReleased() {
		t.Error("texture should be released")
	}
}

func TestTextureSizeBytes(t *testing.T) {
	tex, _ := CreateTexture(nil, TextureConfig{Width: 100, Height: 50, Format: FormatRGBA16F})
	if got := tex.SizeBytes(); got != 100*50*8 {
		t.Errorf("SizeBytes = %d, want %d", got, 100*50*8)
	}
}
