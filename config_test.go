package darkroom

import (
	"path/filepath"
	"testing"
	"time"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "darkroom.toml")

	want := Config{
		TextureBudgetMB: 128,
		Workers:         3,
		QueueSize:       32,
		TaskTimeoutSec:  2.5,
		TargetFPS:       30,
		SampleWindow:    60,
		ValidateShaders: true,
	}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	got, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != (Config{}) {
		t.Fatalf("missing file returned %+v, want zero config", got)
	}
}

func TestConfigOptionsDefaults(t *testing.T) {
	o := Config{}.Options()
	if o.TextureBudgetMB != DefaultTextureBudgetMB {
		t.Fatalf("TextureBudgetMB = %d", o.TextureBudgetMB)
	}
	if o.TaskTimeout != DefaultTaskTimeout {
		t.Fatalf("TaskTimeout = %v", o.TaskTimeout)
	}
	if o.TargetFPS != DefaultTargetFPS {
		t.Fatalf("TargetFPS = %v", o.TargetFPS)
	}
}

func TestConfigOptionsOverrides(t *testing.T) {
	o := Config{
		TextureBudgetMB: 64,
		TaskTimeoutSec:  0.5,
		GPU:             true,
	}.Options()
	if o.TextureBudgetMB != 64 {
		t.Fatalf("TextureBudgetMB = %d", o.TextureBudgetMB)
	}
	if o.TaskTimeout != 500*time.Millisecond {
		t.Fatalf("TaskTimeout = %v", o.TaskTimeout)
	}
	if !o.InitGPU {
		t.Fatal("GPU flag not mapped")
	}
}

func TestOptionFunctions(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithTextureBudget(48),
		WithWorkers(2),
		WithQueueSize(16),
		WithTaskTimeout(time.Second),
		WithTargetFPS(30),
		WithShaderValidation(),
		WithDebugShaderComments(),
	} {
		opt(&o)
	}
	if o.TextureBudgetMB != 48 || o.WorkerCount != 2 || o.QueueSize != 16 {
		t.Fatalf("options = %+v", o)
	}
	if o.TaskTimeout != time.Second || o.TargetFPS != 30 {
		t.Fatalf("options = %+v", o)
	}
	if !o.ValidateShaders || !o.DebugShaderComments {
		t.Fatalf("options = %+v", o)
	}
}
