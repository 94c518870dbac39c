// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import _ "embed"

// Built-in library modules, embedded at build time the same way the
// pipeline's pass bodies are.

//go:embed shaders/colorspace.wgsl
var colorspaceSource string

//go:embed shaders/tonemap.wgsl
var tonemapSource string

//go:embed shaders/gamut.wgsl
var gamutSource string

//go:embed shaders/noise.wgsl
var noiseSource string

// registerBuiltins loads the built-in library into a fresh composer.
func registerBuiltins(c *Composer) {
	builtins := []Module{
		{
			Name:        "colorspace",
			Source:      colorspaceSource,
			Version:     "1.0",
			Description: "sRGB/linear conversions and Rec.709 luminance",
		},
		{
			Name:         "tonemap",
			Source:       tonemapSource,
			Dependencies: []string{"colorspace"},
			Version:      "1.0",
			Description:  "Reinhard and ACES tone mapping operators",
		},
		{
			Name:         "gamut",
			Source:       gamutSource,
			Dependencies: []string{"colorspace"},
			Version:      "1.0",
			Description:  "display gamut clip and soft compression",
		},
		{
			Name:        "noise",
			Source:      noiseSource,
			Version:     "1.0",
			Description: "hash noise for film grain",
		},
	}
	for _, m := range builtins {
		// Names are compile-time constants; registration cannot fail.
		_ = c.RegisterModule(m)
	}
}
