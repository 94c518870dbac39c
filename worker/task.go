// Package worker runs heavy image analysis off the render thread: a
// fixed pool of goroutines drains a bounded FIFO queue of typed tasks.
// Tasks carry their own pixel payloads rather than references into live
// pipeline buffers, so a task never races the executor.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Response is the uniform completion envelope for every task kind:
// either OK with a typed Data payload, or an error message.
type Response struct {
	OK   bool
	Data any
	Err  string
}

// Task is a unit of background work. Implementations are the task types
// in this package; the unexported run method seals the interface.
type Task interface {
	// ID is a unique identifier assigned at construction.
	ID() string
	// Kind names the task type for logging and errors.
	Kind() string

	run(ctx context.Context) (any, error)
	taskTimeout() time.Duration
}

// taskBase carries the fields shared by all task types.
type taskBase struct {
	id string

	// Timeout overrides the pool's per-task timeout when non-zero.
	// Negative disables the deadline for this task.
	Timeout time.Duration
}

func newTaskBase() taskBase { return taskBase{id: uuid.NewString()} }

func (t taskBase) ID() string { return t.id }

func (t taskBase) taskTimeout() time.Duration { return t.Timeout }

// HistogramTask computes per-channel and luminance histograms from a
// linear RGBA pixel buffer.
type HistogramTask struct {
	taskBase

	// Pix is linear RGBA, 4 floats per pixel, length Width*Height*4.
	Pix    []float32
	Width  int
	Height int

	// Bins is the bucket count; DefaultHistogramBins if <= 0.
	Bins int
}

// DefaultHistogramBins is the histogram resolution used when a task
// does not specify one.
const DefaultHistogramBins = 256

// Histogram is the result payload of a HistogramTask.
type Histogram struct {
	Bins int
	R    []uint32
	G    []uint32
	B    []uint32
	Luma []uint32
	// MaxCount is the largest bucket across all four channels, for
	// display normalization.
	MaxCount uint32
}

// NewHistogramTask builds a histogram task over a linear RGBA buffer.
func NewHistogramTask(pix []float32, width, height, bins int) *HistogramTask {
	return &HistogramTask{
		taskBase: newTaskBase(),
		Pix:      pix,
		Width:    width,
		Height:   height,
		Bins:     bins,
	}
}

func (t *HistogramTask) Kind() string { return "histogram" }

// ThumbnailTask downscales a linear RGBA buffer to fit a bounding edge
// and returns the result as an sRGB image.RGBA.
type ThumbnailTask struct {
	taskBase

	Pix    []float32
	Width  int
	Height int

	// MaxEdge bounds the longer side of the thumbnail.
	MaxEdge int
}

// NewThumbnailTask builds a thumbnail task. maxEdge bounds the longer
// side of the output.
func NewThumbnailTask(pix []float32, width, height, maxEdge int) *ThumbnailTask {
	return &ThumbnailTask{
		taskBase: newTaskBase(),
		Pix:      pix,
		Width:    width,
		Height:   height,
		MaxEdge:  maxEdge,
	}
}

func (t *ThumbnailTask) Kind() string { return "thumbnail" }

// Export output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ExportTask encodes a linear RGBA buffer to PNG or JPEG bytes,
// optionally rescaling first.
type ExportTask struct {
	taskBase

	Pix    []float32
	Width  int
	Height int

	// Format is FormatPNG or FormatJPEG; FormatPNG if empty.
	Format string
	// Quality is the JPEG quality 1..100; 90 if <= 0. Ignored for PNG.
	Quality int
	// TargetWidth and TargetHeight rescale the output when both are
	// positive; zero keeps the source size.
	TargetWidth  int
	TargetHeight int
}

// Export is the result payload of an ExportTask.
type Export struct {
	Format string
	Width  int
	Height int
	Data   []byte
}

// NewExportTask builds an export task encoding to format at source size.
func NewExportTask(pix []float32, width, height int, format string) *ExportTask {
	return &ExportTask{
		taskBase: newTaskBase(),
		Pix:      pix,
		Width:    width,
		Height:   height,
		Format:   format,
	}
}

func (t *ExportTask) Kind() string { return "export" }

// FuncTask wraps an arbitrary function as a task. It exists for tests
// and one-off work; prefer the typed tasks for pipeline operations.
type FuncTask struct {
	taskBase

	name string
	fn   func(ctx context.Context) (any, error)
}

// NewFuncTask wraps fn as a task named name.
func NewFuncTask(name string, fn func(ctx context.Context) (any, error)) *FuncTask {
	return &FuncTask{taskBase: newTaskBase(), name: name, fn: fn}
}

func (t *FuncTask) Kind() string { return t.name }

func (t *FuncTask) run(ctx context.Context) (any, error) {
	if t.fn == nil {
		return nil, fmt.Errorf("worker: func task %q has no function", t.name)
	}
	return t.fn(ctx)
}

func validateBuffer(pix []float32, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("worker: invalid dimensions %dx%d", width, height)
	}
	if want := width * height * 4; len(pix) != want {
		return fmt.Errorf("worker: pixel buffer length %d, want %d", len(pix), want)
	}
	return nil
}
