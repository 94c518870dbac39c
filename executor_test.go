package darkroom

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/darkroom/profile"
	"github.com/gogpu/darkroom/shader"
)

func grayBuffer(t *testing.T, w, h int, v float32) *ImageBuffer {
	t.Helper()
	buf, err := NewImageBuffer(w, h)
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	buf.Fill(v, v, v, 1)
	return buf
}

func passStats(t *testing.T, s profile.Snapshot, name string) profile.PassSnapshot {
	t.Helper()
	for _, ps := range s.Passes {
		if ps.Name == name {
			return ps
		}
	}
	t.Fatalf("pass %q not in snapshot", name)
	return profile.PassSnapshot{}
}

// Disabled and identity passes are skipped; enabled passes execute; the
// pixel result reflects only the executed passes.
func TestExecuteSkipsDisabledAndIdentity(t *testing.T) {
	profiler := profile.New(profile.Config{})
	ex := NewExecutor(shader.NewComposer(), nil, profiler, false)

	wb := NewWhiteBalancePass()
	wb.SetTemperature(5000) // not identity
	wb.SetEnabled(false)    // but disabled

	exp := NewExposurePass()
	exp.SetEV(1) // one stop up: gain 2.0

	gm := NewGamutPass()
	gm.SetMode(GamutCompress)
	gm.SetEnabled(false)

	for _, p := range []Pass{wb, exp, gm} {
		if err := ex.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", p.Name(), err)
		}
	}

	ex.SetSource(grayBuffer(t, 16, 16, 0.25))
	out, err := ex.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	r, g, b, a := out.At(8, 8)
	for _, v := range []float32{r, g, b} {
		if math.Abs(float64(v)-0.5) > 1e-6 {
			t.Fatalf("pixel = (%v, %v, %v), want 0.5 gray", r, g, b)
		}
	}
	if a != 1 {
		t.Fatalf("alpha = %v, want 1", a)
	}

	s := profiler.Profile()
	if ps := passStats(t, s, PassWhiteBalance); ps.Calls != 0 || ps.Skips != 1 {
		t.Fatalf("whitebalance calls=%d skips=%d, want 0/1", ps.Calls, ps.Skips)
	}
	if ps := passStats(t, s, PassExposure); ps.Calls != 1 || ps.Skips != 0 {
		t.Fatalf("exposure calls=%d skips=%d, want 1/0", ps.Calls, ps.Skips)
	}
	if ps := passStats(t, s, PassGamut); ps.Calls != 0 || ps.Skips != 1 {
		t.Fatalf("gamut calls=%d skips=%d, want 0/1", ps.Calls, ps.Skips)
	}
}

func TestExecuteNoSourceFails(t *testing.T) {
	ex := NewExecutor(shader.NewComposer(), nil, nil, false)
	if _, err := ex.Execute(); err != ErrNoImage {
		t.Fatalf("Execute: err = %v, want ErrNoImage", err)
	}
}

func TestRedundantRenderReturnsCached(t *testing.T) {
	profiler := profile.New(profile.Config{})
	ex := NewExecutor(shader.NewComposer(), nil, profiler, false)

	exp := NewExposurePass()
	exp.SetEV(0.5)
	if err := ex.Register(exp); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ex.SetSource(grayBuffer(t, 8, 8, 0.25))
	first, err := ex.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := ex.Execute()
	if err != nil {
		t.Fatalf("Execute again: %v", err)
	}
	if first != second {
		t.Fatal("clean pipeline did not return the cached buffer")
	}
	if got := profiler.Profile().RedundantRenders; got != 1 {
		t.Fatalf("RedundantRenders = %d, want 1", got)
	}
}

// MarkDirty on a later pass must not re-run the clean prefix.
func TestDirtyPrefixSelectiveReexecution(t *testing.T) {
	profiler := profile.New(profile.Config{})
	ex := NewExecutor(shader.NewComposer(), nil, profiler, false)

	wb := NewWhiteBalancePass()
	wb.SetTemperature(5000)
	exp := NewExposurePass()
	exp.SetEV(1)
	for _, p := range []Pass{wb, exp} {
		if err := ex.Register(p); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	ex.SetSource(grayBuffer(t, 8, 8, 0.25))
	if _, err := ex.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	exp.SetEV(2)
	if err := ex.MarkDirty(PassExposure); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}
	out, err := ex.Execute()
	if err != nil {
		t.Fatalf("Execute after dirty: %v", err)
	}

	s := profiler.Profile()
	if ps := passStats(t, s, PassWhiteBalance); ps.Calls != 1 {
		t.Fatalf("whitebalance re-ran: calls = %d, want 1", ps.Calls)
	}
	if ps := passStats(t, s, PassExposure); ps.Calls != 2 {
		t.Fatalf("exposure calls = %d, want 2", ps.Calls)
	}

	// 0.25 through warm white balance then 4x exposure: red channel
	// must have moved with the new gain.
	r1, _, _, _ := out.At(4, 4)
	if r1 <= 0.25 {
		t.Fatalf("red = %v after 2 EV, want amplified", r1)
	}
}

func TestSetSourceInvalidatesEverything(t *testing.T) {
	profiler := profile.New(profile.Config{})
	ex := NewExecutor(shader.NewComposer(), nil, profiler, false)

	exp := NewExposurePass()
	exp.SetEV(1)
	if err := ex.Register(exp); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ex.SetSource(grayBuffer(t, 8, 8, 0.1))
	if _, err := ex.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ex.SetSource(grayBuffer(t, 8, 8, 0.2))
	out, err := ex.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	r, _, _, _ := out.At(0, 0)
	if math.Abs(float64(r)-0.4) > 1e-6 {
		t.Fatalf("red = %v, want 0.4 from new source", r)
	}
	if got := profiler.Profile().RedundantRenders; got != 0 {
		t.Fatalf("RedundantRenders = %d, want 0", got)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	ex := NewExecutor(shader.NewComposer(), nil, nil, false)
	if err := ex.Register(NewExposurePass()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := ex.Register(NewExposurePass()); err == nil {
		t.Fatal("duplicate Register succeeded")
	}
}

func TestProgramComposition(t *testing.T) {
	ex := NewExecutor(shader.NewComposer(), nil, nil, false)

	tm := NewToneMapPass()
	if err := ex.Register(tm); err != nil {
		t.Fatalf("Register: %v", err)
	}

	program, err := ex.Program(PassToneMap)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	for _, fn := range []string{"tonemap_reinhard", "tonemap_aces", "apply_tonemap"} {
		if !strings.Contains(program, "fn "+fn) {
			t.Fatalf("composed program missing %s", fn)
		}
	}
}
