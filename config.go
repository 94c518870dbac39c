package darkroom

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk engine configuration. All fields are optional;
// zero values fall back to the built-in defaults.
type Config struct {
	TextureBudgetMB int     `toml:"texture_budget_mb"`
	Workers         int     `toml:"workers"`
	QueueSize       int     `toml:"queue_size"`
	TaskTimeoutSec  float64 `toml:"task_timeout_sec"`
	TargetFPS       float64 `toml:"target_fps"`
	SampleWindow    int     `toml:"sample_window"`

	DebugShaderComments bool `toml:"debug_shader_comments"`
	ValidateShaders     bool `toml:"validate_shaders"`
	GPU                 bool `toml:"gpu"`
}

// Options converts the file representation to engine options, filling
// defaults for unset fields.
func (c Config) Options() Options {
	o := DefaultOptions()
	if c.TextureBudgetMB > 0 {
		o.TextureBudgetMB = c.TextureBudgetMB
	}
	if c.Workers > 0 {
		o.WorkerCount = c.Workers
	}
	if c.QueueSize > 0 {
		o.QueueSize = c.QueueSize
	}
	if c.TaskTimeoutSec != 0 {
		o.TaskTimeout = time.Duration(c.TaskTimeoutSec * float64(time.Second))
	}
	if c.TargetFPS > 0 {
		o.TargetFPS = c.TargetFPS
	}
	if c.SampleWindow > 0 {
		o.SampleWindow = c.SampleWindow
	}
	o.DebugShaderComments = c.DebugShaderComments
	o.ValidateShaders = c.ValidateShaders
	o.InitGPU = c.GPU
	return o
}

// LoadConfig reads a TOML config file. A missing file is not an error;
// it returns the zero Config so defaults apply.
func LoadConfig(path string) (Config, error) {
	var c Config
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("darkroom: load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		slogger().Warn("unknown config keys", "path", path, "keys", fmt.Sprint(undecoded))
	}
	return c, nil
}

// SaveConfig writes a TOML config file, creating parent directories as
// needed.
func SaveConfig(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("darkroom: save config %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("darkroom: save config %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("darkroom: save config %s: %w", path, err)
	}
	return nil
}
