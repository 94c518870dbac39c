package worker

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"image/png"
	"testing"
)

// solidBuffer builds a linear RGBA buffer filled with one color.
func solidBuffer(w, h int, r, g, b, a float32) []float32 {
	pix := make([]float32, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4+0] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = a
	}
	return pix
}

func runTask(t *testing.T, task Task) any {
	t.Helper()
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()

	pending, err := p.Submit(task)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	result, err := pending.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return result
}

func TestHistogramSolidColor(t *testing.T) {
	const w, h = 8, 8
	pix := solidBuffer(w, h, 0, 0, 0, 1)
	result := runTask(t, NewHistogramTask(pix, w, h, 256))

	hist := result.(*Histogram)
	if hist.Bins != 256 {
		t.Fatalf("Bins = %d", hist.Bins)
	}
	// Black image: every pixel in bucket 0 of every channel.
	if hist.R[0] != w*h || hist.G[0] != w*h || hist.B[0] != w*h || hist.Luma[0] != w*h {
		t.Fatalf("bucket 0 counts = %d/%d/%d/%d, want all %d",
			hist.R[0], hist.G[0], hist.B[0], hist.Luma[0], w*h)
	}
	if hist.MaxCount != w*h {
		t.Fatalf("MaxCount = %d, want %d", hist.MaxCount, w*h)
	}
}

func TestHistogramFullScaleClamped(t *testing.T) {
	const w, h = 4, 4
	// Over-range values land in the top bucket, not out of bounds.
	pix := solidBuffer(w, h, 2.5, 1.0, 0.999, 1)
	result := runTask(t, NewHistogramTask(pix, w, h, 0))

	hist := result.(*Histogram)
	if hist.Bins != DefaultHistogramBins {
		t.Fatalf("Bins = %d, want default %d", hist.Bins, DefaultHistogramBins)
	}
	top := hist.Bins - 1
	if hist.R[top] != w*h || hist.G[top] != w*h {
		t.Fatalf("top bucket R=%d G=%d, want %d", hist.R[top], hist.G[top], w*h)
	}
}

func TestHistogramBadBuffer(t *testing.T) {
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()

	pending, err := p.Submit(NewHistogramTask(make([]float32, 10), 4, 4, 256))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := pending.Wait(context.Background()); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestThumbnailDownscale(t *testing.T) {
	const w, h = 64, 32
	pix := solidBuffer(w, h, 0.5, 0.5, 0.5, 1)
	result := runTask(t, NewThumbnailTask(pix, w, h, 16))

	img := result.(*image.RGBA)
	b := img.Bounds()
	if b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("thumbnail %dx%d, want 16x8", b.Dx(), b.Dy())
	}
}

func TestThumbnailNeverUpscales(t *testing.T) {
	const w, h = 10, 6
	pix := solidBuffer(w, h, 0.1, 0.1, 0.1, 1)
	result := runTask(t, NewThumbnailTask(pix, w, h, 100))

	img := result.(*image.RGBA)
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		t.Fatalf("thumbnail %dx%d, want source size %dx%d", b.Dx(), b.Dy(), w, h)
	}
}

func TestExportPNG(t *testing.T) {
	const w, h = 12, 9
	pix := solidBuffer(w, h, 1, 1, 1, 1)
	result := runTask(t, NewExportTask(pix, w, h, FormatPNG))

	exp := result.(*Export)
	if exp.Format != FormatPNG || exp.Width != w || exp.Height != h {
		t.Fatalf("export meta = %+v", exp)
	}
	decoded, err := png.Decode(bytes.NewReader(exp.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("decoded %dx%d", b.Dx(), b.Dy())
	}
	// Linear 1.0 encodes to sRGB 255.
	r, _, _, _ := decoded.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Fatalf("white pixel R = %d, want 255", r>>8)
	}
}

func TestExportResizedJPEG(t *testing.T) {
	const w, h = 32, 32
	pix := solidBuffer(w, h, 0.25, 0.5, 0.75, 1)
	task := NewExportTask(pix, w, h, FormatJPEG)
	task.TargetWidth = 16
	task.TargetHeight = 16
	result := runTask(t, task)

	exp := result.(*Export)
	if exp.Width != 16 || exp.Height != 16 {
		t.Fatalf("export size %dx%d, want 16x16", exp.Width, exp.Height)
	}
	cfg, err := decodeConfig(exp.Data)
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 16 {
		t.Fatalf("encoded %dx%d", cfg.Width, cfg.Height)
	}
}

func decodeConfig(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	return cfg, err
}

func TestExportUnknownFormat(t *testing.T) {
	p := NewPool(Config{Workers: 1})
	defer p.Dispose()

	pending, err := p.Submit(NewExportTask(solidBuffer(2, 2, 0, 0, 0, 1), 2, 2, "bmp"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := pending.Wait(context.Background()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTaskIDsUnique(t *testing.T) {
	a := NewHistogramTask(nil, 0, 0, 0)
	b := NewHistogramTask(nil, 0, 0, 0)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("ids %q, %q", a.ID(), b.ID())
	}
}
