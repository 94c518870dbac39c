// Command darkroomdemo runs the processing pipeline headlessly over a
// synthetic test image and writes the edited result as PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/darkroom"
)

func main() {
	var (
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		output   = flag.String("output", "demo.png", "output file")
		ev       = flag.Float64("ev", 0.7, "exposure in stops")
		kelvin   = flag.Float64("kelvin", 5200, "white balance temperature")
		contrast = flag.Float64("contrast", 1.15, "contrast multiplier")
		detail   = flag.Float64("detail", 0.6, "sharpen amount")
		vignette = flag.Float64("vignette", 0.35, "vignette strength")
		verbose  = flag.Bool("v", false, "verbose logging")
		showProf = flag.Bool("profile", false, "print profiling JSON")
	)
	flag.Parse()

	if *verbose {
		darkroom.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	engine, err := darkroom.New(darkroom.WithShaderValidation())
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	if err := engine.Load(testImage(*width, *height)); err != nil {
		log.Fatalf("load: %v", err)
	}

	engine.SetExposure(*ev)
	engine.SetWhiteBalance(*kelvin, 0)
	engine.SetContrast(*contrast)
	engine.SetToneMapOperator(darkroom.ToneMapACES)
	engine.SetDetail(*detail, 2)
	engine.SetVignette(*vignette)

	ctx := context.Background()
	export, err := engine.Export(ctx, "png")
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	if err := os.WriteFile(*output, export.Data, 0o644); err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("wrote %s (%dx%d, %d bytes)", *output, export.Width, export.Height, len(export.Data))

	hist, err := engine.Histogram(ctx, 0)
	if err != nil {
		log.Fatalf("histogram: %v", err)
	}
	log.Printf("histogram: %d bins, peak bucket count %d", hist.Bins, hist.MaxCount)

	for _, rec := range engine.Recommendations() {
		log.Printf("recommendation [%s]: %s", rec.Severity, rec.Message)
	}

	if *showProf {
		snap := engine.Profile()
		fmt.Printf("frames: %d, avg %.2f ms, fps %.1f\n",
			snap.FrameSamples, snap.AvgFrameMs, snap.CurrentFPS)
		for _, ps := range snap.Passes {
			fmt.Printf("  %-12s calls=%d skips=%d avg=%.3f ms\n",
				ps.Name, ps.Calls, ps.Skips, ps.AverageMs)
		}
	}
}

// testImage renders a color gradient with a bright highlight so tone
// mapping and gamut handling have something to chew on.
func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxD
			i := y*img.Stride + x*4
			img.Pix[i+0] = uint8(255 * (1 - d) * (float64(x) / float64(w)))
			img.Pix[i+1] = uint8(200 * (1 - d))
			img.Pix[i+2] = uint8(255 * (float64(y) / float64(h)))
			img.Pix[i+3] = 255
		}
	}
	return img
}
