package darkroom

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/darkroom/internal/color"
)

// ImageBuffer is a working-space image: linear-light RGBA stored as
// float32, 4 components per pixel, row-major. All pipeline passes read
// and write this representation; sRGB encoding happens only at the
// edges (Load and export).
type ImageBuffer struct {
	// Pix holds linear RGBA samples, length Width*Height*4.
	Pix    []float32
	Width  int
	Height int
}

// NewImageBuffer allocates a zeroed buffer.
func NewImageBuffer(width, height int) (*ImageBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &ImageBuffer{
		Pix:    make([]float32, width*height*4),
		Width:  width,
		Height: height,
	}, nil
}

// FromImage decodes img into a linear working buffer. Color channels
// pass through sRGB-to-linear conversion; alpha stays linear.
func FromImage(img image.Image) (*ImageBuffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf, err := NewImageBuffer(w, h)
	if err != nil {
		return nil, err
	}

	// Normalize to RGBA first so pixel access is one code path.
	rgba, ok := img.(*image.RGBA)
	if !ok || !bounds.Min.Eq(image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		dst := buf.Pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			dst[x*4+0] = color.SRGBToLinear(float32(src[x*4+0]) / 255)
			dst[x*4+1] = color.SRGBToLinear(float32(src[x*4+1]) / 255)
			dst[x*4+2] = color.SRGBToLinear(float32(src[x*4+2]) / 255)
			dst[x*4+3] = float32(src[x*4+3]) / 255
		}
	}
	return buf, nil
}

// ToRGBA encodes the buffer to an 8-bit sRGB image.
func (b *ImageBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Width*4 : (y+1)*b.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+b.Width*4]
		for x := 0; x < b.Width; x++ {
			dst[x*4+0] = encode8(color.LinearToSRGB(src[x*4+0]))
			dst[x*4+1] = encode8(color.LinearToSRGB(src[x*4+1]))
			dst[x*4+2] = encode8(color.LinearToSRGB(src[x*4+2]))
			dst[x*4+3] = encode8(src[x*4+3])
		}
	}
	return img
}

// Clone returns a deep copy.
func (b *ImageBuffer) Clone() *ImageBuffer {
	pix := make([]float32, len(b.Pix))
	copy(pix, b.Pix)
	return &ImageBuffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// At returns the RGBA sample at (x, y). Out-of-range coordinates panic
// like a slice index would.
func (b *ImageBuffer) At(x, y int) (r, g, bl, a float32) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// Set writes the RGBA sample at (x, y).
func (b *ImageBuffer) Set(x, y int, r, g, bl, a float32) {
	i := (y*b.Width + x) * 4
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// Fill sets every pixel to the given RGBA value.
func (b *ImageBuffer) Fill(r, g, bl, a float32) {
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
	}
}

// Bytes serializes the buffer to raw little-endian float32 bytes,
// 16 bytes per pixel. This is the upload layout for RGBA32F textures.
func (b *ImageBuffer) Bytes() []byte {
	out := make([]byte, len(b.Pix)*4)
	for i, v := range b.Pix {
		bits := math.Float32bits(v)
		out[i*4+0] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

func encode8(v float32) uint8 {
	return uint8(color.Clamp01(v)*255 + 0.5)
}
