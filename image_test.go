package darkroom

import (
	"image"
	"math"
	"testing"
)

func TestImageBufferDimensions(t *testing.T) {
	if _, err := NewImageBuffer(0, 10); err == nil {
		t.Fatal("zero width accepted")
	}
	if _, err := NewImageBuffer(10, -1); err == nil {
		t.Fatal("negative height accepted")
	}
	buf, err := NewImageBuffer(3, 2)
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	if len(buf.Pix) != 3*2*4 {
		t.Fatalf("len(Pix) = %d", len(buf.Pix))
	}
}

func TestFromImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := y*img.Stride + x*4
			img.Pix[i+0] = 200
			img.Pix[i+1] = 100
			img.Pix[i+2] = 50
			img.Pix[i+3] = 255
		}
	}

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	back := buf.ToRGBA()
	for c := 0; c < 4; c++ {
		got := int(back.Pix[c])
		want := int(img.Pix[c])
		if got < want-1 || got > want+1 {
			t.Fatalf("channel %d: %d, want %d±1", c, got, want)
		}
	}
}

func TestFromImageNonZeroOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	buf, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if buf.Width != 4 || buf.Height != 3 {
		t.Fatalf("buffer %dx%d, want 4x3", buf.Width, buf.Height)
	}
}

func TestSRGBDecodeIsLinear(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	// sRGB 188 is roughly linear 0.5.
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 188, 188, 188, 255

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	r, _, _, _ := buf.At(0, 0)
	if math.Abs(float64(r)-0.5) > 0.01 {
		t.Fatalf("linear value = %v, want ~0.5", r)
	}
}

func TestCloneIndependent(t *testing.T) {
	a := &ImageBuffer{Pix: []float32{1, 2, 3, 4}, Width: 1, Height: 1}
	b := a.Clone()
	b.Pix[0] = 9
	if a.Pix[0] != 1 {
		t.Fatal("clone shares storage")
	}
}

func TestSetAt(t *testing.T) {
	buf, _ := NewImageBuffer(4, 4)
	buf.Set(2, 3, 0.1, 0.2, 0.3, 0.4)
	r, g, b, a := buf.At(2, 3)
	if r != 0.1 || g != 0.2 || b != 0.3 || a != 0.4 {
		t.Fatalf("At = (%v, %v, %v, %v)", r, g, b, a)
	}
}

func TestBytesLayout(t *testing.T) {
	buf, _ := NewImageBuffer(1, 1)
	buf.Set(0, 0, 1, 0, 0, 0)
	raw := buf.Bytes()
	if len(raw) != 16 {
		t.Fatalf("len = %d, want 16 bytes per RGBA32F pixel", len(raw))
	}
	// float32(1.0) little-endian: 00 00 80 3f
	if raw[0] != 0x00 || raw[1] != 0x00 || raw[2] != 0x80 || raw[3] != 0x3f {
		t.Fatalf("red bytes = % x", raw[:4])
	}
}
