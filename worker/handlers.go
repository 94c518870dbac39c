package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/darkroom/internal/color"
)

func (t *HistogramTask) run(ctx context.Context) (any, error) {
	if err := validateBuffer(t.Pix, t.Width, t.Height); err != nil {
		return nil, err
	}
	bins := t.Bins
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	h := &Histogram{
		Bins: bins,
		R:    make([]uint32, bins),
		G:    make([]uint32, bins),
		B:    make([]uint32, bins),
		Luma: make([]uint32, bins),
	}

	rowFloats := t.Width * 4
	for y := 0; y < t.Height; y++ {
		if y%64 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		row := t.Pix[y*rowFloats : (y+1)*rowFloats]
		for x := 0; x < t.Width; x++ {
			r := color.Clamp01(row[x*4+0])
			g := color.Clamp01(row[x*4+1])
			b := color.Clamp01(row[x*4+2])
			h.R[bucket(r, bins)]++
			h.G[bucket(g, bins)]++
			h.B[bucket(b, bins)]++
			h.Luma[bucket(color.Luminance(r, g, b), bins)]++
		}
	}

	for i := 0; i < bins; i++ {
		for _, c := range [4]uint32{h.R[i], h.G[i], h.B[i], h.Luma[i]} {
			if c > h.MaxCount {
				h.MaxCount = c
			}
		}
	}
	return h, nil
}

func bucket(v float32, bins int) int {
	i := int(v * float32(bins))
	if i >= bins {
		i = bins - 1
	}
	return i
}

func (t *ThumbnailTask) run(ctx context.Context) (any, error) {
	if err := validateBuffer(t.Pix, t.Width, t.Height); err != nil {
		return nil, err
	}
	if t.MaxEdge <= 0 {
		return nil, fmt.Errorf("worker: thumbnail max edge %d", t.MaxEdge)
	}

	src := encodeSRGB(t.Pix, t.Width, t.Height)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tw, th := fitEdge(t.Width, t.Height, t.MaxEdge)
	if tw == t.Width && th == t.Height {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// fitEdge scales (w, h) down so the longer side is at most maxEdge,
// preserving aspect ratio. Never upscales.
func fitEdge(w, h, maxEdge int) (int, int) {
	long := w
	if h > long {
		long = h
	}
	if long <= maxEdge {
		return w, h
	}
	tw := w * maxEdge / long
	th := h * maxEdge / long
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

func (t *ExportTask) run(ctx context.Context) (any, error) {
	if err := validateBuffer(t.Pix, t.Width, t.Height); err != nil {
		return nil, err
	}
	format := t.Format
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatJPEG {
		return nil, fmt.Errorf("worker: unsupported export format %q", format)
	}

	img := encodeSRGB(t.Pix, t.Width, t.Height)
	outW, outH := t.Width, t.Height

	if t.TargetWidth > 0 && t.TargetHeight > 0 && (t.TargetWidth != t.Width || t.TargetHeight != t.Height) {
		dst := image.NewRGBA(image.Rect(0, 0, t.TargetWidth, t.TargetHeight))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = dst
		outW, outH = t.TargetWidth, t.TargetHeight
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("worker: png encode: %w", err)
		}
	case FormatJPEG:
		quality := t.Quality
		if quality <= 0 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("worker: jpeg encode: %w", err)
		}
	}

	return &Export{Format: format, Width: outW, Height: outH, Data: buf.Bytes()}, nil
}

// encodeSRGB converts a linear RGBA float buffer to an 8-bit sRGB image.
func encodeSRGB(pix []float32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := pix[y*width*4 : (y+1)*width*4]
		out := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			out[x*4+0] = toByte(color.LinearToSRGB(row[x*4+0]))
			out[x*4+1] = toByte(color.LinearToSRGB(row[x*4+1]))
			out[x*4+2] = toByte(color.LinearToSRGB(row[x*4+2]))
			out[x*4+3] = toByte(color.Clamp01(row[x*4+3]))
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(color.Clamp01(v)*255 + 0.5)
}
