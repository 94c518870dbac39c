// Package filter provides separable convolution used by the detail pass.
package filter

import (
	"math"
	"sync"
)

// GaussianBlurRGBA applies a separable Gaussian blur to an interleaved
// float32 RGBA buffer and returns a new buffer of the same size.
// Edge pixels are handled by clamping sample coordinates to the image.
//
// The source buffer is never modified; passes treat their inputs as
// immutable because skipped pipeline stages forward buffers by reference.
func GaussianBlurRGBA(src []float32, width, height int, radius float64) []float32 {
	if width <= 0 || height <= 0 || len(src) < width*height*4 {
		return src
	}
	kernel := cachedKernel(radius)
	if len(kernel) == 1 {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	tmp := make([]float32, len(src))
	out := make([]float32, len(src))

	convolveH(tmp, src, width, height, kernel)
	convolveV(out, tmp, width, height, kernel)
	return out
}

// gaussianKernel builds a normalized 1D Gaussian with sigma = radius.
// Taps extend three sigmas to each side, which holds ~99.7% of the
// curve's mass. radius <= 0 yields the identity kernel.
func gaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(radius * 3))
	kernel := make([]float32, 2*half+1)

	inv := -1 / (2 * radius * radius)
	var sum float64
	for i := 0; i <= half; i++ {
		x := float64(i)
		v := math.Exp(x * x * inv)
		kernel[half+i] = float32(v)
		kernel[half-i] = float32(v)
		sum += v
		if i > 0 {
			sum += v
		}
	}
	scale := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= scale
	}
	return kernel
}

// Kernels are memoized across calls because interactive sharpening
// re-blurs at the same radius on every edit. Radii are quantized to
// 0.01 for the key; past the cap the map is simply rebuilt.
const maxCachedKernels = 64

var (
	kernelMu sync.Mutex
	kernels  = make(map[int][]float32)
)

func cachedKernel(radius float64) []float32 {
	key := int(math.Round(radius * 100))

	kernelMu.Lock()
	defer kernelMu.Unlock()
	if k, ok := kernels[key]; ok {
		return k
	}
	if len(kernels) >= maxCachedKernels {
		kernels = make(map[int][]float32, maxCachedKernels)
	}
	k := gaussianKernel(radius)
	kernels[key] = k
	return k
}

// convolveH convolves each row with the kernel, clamping at the edges.
func convolveH(dst, src []float32, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		row := y * width * 4
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, w := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				i := row + sx*4
				r += src[i] * w
				g += src[i+1] * w
				b += src[i+2] * w
				a += src[i+3] * w
			}
			i := row + x*4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
		}
	}
}

// convolveV convolves each column with the kernel, clamping at the edges.
func convolveV(dst, src []float32, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, w := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				i := (sy*width + x) * 4
				r += src[i] * w
				g += src[i+1] * w
				b += src[i+2] * w
				a += src[i+3] * w
			}
			i := (y*width + x) * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
		}
	}
}
